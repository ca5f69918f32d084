package recommend

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiGenerator calls a Google generative model such as gemini-1.5-flash.
type GeminiGenerator struct {
	client    *genai.Client
	modelName string
}

// NewGeminiGenerator creates a client authenticated with apiKey.
func NewGeminiGenerator(ctx context.Context, apiKey, modelName string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini generator: missing API key")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini generator: %w", err)
	}
	return &GeminiGenerator{client: client, modelName: modelName}, nil
}

// Name identifies the generator in logs.
func (g *GeminiGenerator) Name() string {
	return "gemini"
}

// Generate sends prompt as a single user turn and joins the text parts of the first candidate.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string, params GenerationParams) (string, error) {
	model := g.client.GenerativeModel(g.modelName)
	if params.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(params.MaxTokens))
	}
	if params.Temperature > 0 {
		model.SetTemperature(float32(params.Temperature))
	}
	if params.TopP > 0 {
		model.SetTopP(float32(params.TopP))
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("%w: gemini: %v", ErrGeneration, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("%w: gemini returned no candidates", ErrGeneration)
	}

	var parts []string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n")), nil
}

// Close closes the underlying client.
func (g *GeminiGenerator) Close() error {
	return g.client.Close()
}
