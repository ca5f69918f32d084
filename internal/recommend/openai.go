package recommend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAIGenerator calls an OpenAI-compatible chat completions endpoint
// (OpenAI, Ollama, Groq, vLLM).
type OpenAIGenerator struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
}

// NewOpenAIGenerator creates a generator for model at baseURL. An empty apiKey
// sends no Authorization header, which local servers accept.
func NewOpenAIGenerator(apiKey, model, baseURL string, timeout time.Duration) *OpenAIGenerator {
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OpenAIGenerator{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Name identifies the generator in logs.
func (g *OpenAIGenerator) Name() string {
	return "openai"
}

// Generate sends prompt as one user message and returns the first choice.
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string, params GenerationParams) (string, error) {
	body := map[string]any{
		"model":    g.model,
		"messages": []map[string]string{{"role": "user", "content": prompt}},
	}
	if params.MaxTokens > 0 {
		body["max_tokens"] = params.MaxTokens
	}
	if params.Temperature > 0 {
		body["temperature"] = params.Temperature
	}
	if params.TopP > 0 {
		body["top_p"] = params.TopP
	}
	data, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: openai: %w", ErrGeneration, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: openai: %w", ErrGeneration, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: openai: %w", ErrGeneration, &StatusError{Code: resp.StatusCode, Body: string(respBody)})
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("%w: openai: decode response: %v", ErrGeneration, err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("%w: openai returned no choices", ErrGeneration)
	}
	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}

// Close releases idle connections.
func (g *OpenAIGenerator) Close() error {
	g.http.CloseIdleConnections()
	return nil
}
