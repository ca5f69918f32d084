package recommend

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// RetryGenerator retries transient failures of another generator with Fibonacci backoff.
type RetryGenerator struct {
	next       Generator
	maxRetries uint64
	base       time.Duration
	logger     *zap.Logger
}

// NewRetryGenerator wraps next. maxRetries counts retries after the first attempt.
func NewRetryGenerator(next Generator, maxRetries int, base time.Duration, logger *zap.Logger) *RetryGenerator {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if base <= 0 {
		base = 500 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RetryGenerator{next: next, maxRetries: uint64(maxRetries), base: base, logger: logger}
}

// Name reports the wrapped generator's name.
func (g *RetryGenerator) Name() string {
	return g.next.Name()
}

// Generate calls the wrapped generator until it succeeds, fails permanently, or runs out of retries.
func (g *RetryGenerator) Generate(ctx context.Context, prompt string, params GenerationParams) (string, error) {
	var out string
	attempt := 0
	b := retry.WithMaxRetries(g.maxRetries, retry.NewFibonacci(g.base))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		text, err := g.next.Generate(ctx, prompt, params)
		if err == nil {
			out = text
			return nil
		}
		if !isTransient(err) {
			return err
		}
		g.logger.Debug("generation failed, retrying",
			zap.String("generator", g.next.Name()),
			zap.Int("attempt", attempt),
			zap.Error(err))
		return retry.RetryableError(err)
	})
	return out, err
}

// Close closes the wrapped generator.
func (g *RetryGenerator) Close() error {
	return g.next.Close()
}

func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var status *StatusError
	if errors.As(err, &status) {
		return status.Temporary()
	}
	return true
}
