package embedding

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// geminiBatchLimit is the most texts the API accepts in one BatchEmbedContents call.
const geminiBatchLimit = 100

// GeminiEmbedder calls a Google embedding model such as text-embedding-004.
type GeminiEmbedder struct {
	client     *genai.Client
	model      *genai.EmbeddingModel
	dimensions int
}

// NewGeminiEmbedder creates a client authenticated with apiKey.
func NewGeminiEmbedder(ctx context.Context, apiKey, modelName string, dimensions int) (*GeminiEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini embedder: missing API key")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini embedder: %w", err)
	}
	return &GeminiEmbedder{
		client:     client,
		model:      client.EmbeddingModel(modelName),
		dimensions: dimensions,
	}, nil
}

// Embed returns the embedding for text.
func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds texts in chunks the API accepts. Blank texts are not sent
// and get a zero vector.
func (e *GeminiEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var pending []int
	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		batch := e.model.NewBatch()
		for _, i := range pending {
			batch.AddContent(genai.Text(texts[i]))
		}
		rsp, err := e.model.BatchEmbedContents(ctx, batch)
		if err != nil {
			return fmt.Errorf("gemini batch embed: %w", err)
		}
		if len(rsp.Embeddings) != len(pending) {
			return fmt.Errorf("gemini batch embed: got %d embeddings for %d texts", len(rsp.Embeddings), len(pending))
		}
		for j, i := range pending {
			if rsp.Embeddings[j] == nil {
				return fmt.Errorf("gemini batch embed: missing embedding %d", j)
			}
			out[i] = rsp.Embeddings[j].Values
		}
		pending = pending[:0]
		return nil
	}

	for i, text := range texts {
		if len(Terms(text)) == 0 {
			out[i] = make([]float32, e.dimensions)
			continue
		}
		pending = append(pending, i)
		if len(pending) == geminiBatchLimit {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return out, nil
}

// Dimensions returns the configured embedding dimension.
func (e *GeminiEmbedder) Dimensions() int {
	return e.dimensions
}

// Close closes the underlying client.
func (e *GeminiEmbedder) Close() error {
	return e.client.Close()
}
