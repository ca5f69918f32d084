// Package recommend turns ranked search results into conversational food
// recommendations, using a text generator when one is configured.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrGeneration is returned when a generator cannot produce text.
var ErrGeneration = errors.New("generation failed")

// GenerationParams tunes a single generation call.
type GenerationParams struct {
	MaxTokens   int
	Temperature float64
	TopP        float64
}

// DefaultParams are the sampling settings used when none are configured.
var DefaultParams = GenerationParams{MaxTokens: 400, Temperature: 0.7, TopP: 0.9}

// Generator produces text from a prompt.
type Generator interface {
	Name() string
	Generate(ctx context.Context, prompt string, params GenerationParams) (string, error)
	Close() error
}

// StatusError is an unsuccessful HTTP response from a generation API.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Code, http.StatusText(e.Code), e.Body)
}

// Temporary reports whether retrying the request may succeed.
func (e *StatusError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}
