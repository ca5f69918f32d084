package embedding

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Loader builds an Embedder. A Provider calls it at most once.
type Loader func(ctx context.Context) (Embedder, error)

// Provider owns one embedding model for the lifetime of the process. The model is
// loaded on first use and shared by every later call. A Provider is constructed
// once by the caller and passed to whatever needs embeddings.
type Provider struct {
	load    Loader
	once    sync.Once
	mu      sync.Mutex
	model   Embedder
	loadErr error
	logger  *zap.Logger
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithLogger sets a logger for model load events.
func WithLogger(l *zap.Logger) ProviderOption {
	return func(p *Provider) { p.logger = l }
}

// NewProvider returns a provider that loads its model lazily with load.
func NewProvider(load Loader, opts ...ProviderOption) *Provider {
	p := &Provider{load: load}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewStaticProvider returns a provider around an already constructed embedder.
func NewStaticProvider(e Embedder, opts ...ProviderOption) *Provider {
	return NewProvider(func(context.Context) (Embedder, error) { return e, nil }, opts...)
}

func (p *Provider) embedder(ctx context.Context) (Embedder, error) {
	p.once.Do(func() {
		if p.load == nil {
			p.loadErr = errors.New("no embedding model configured")
			return
		}
		m, err := p.load(ctx)
		p.mu.Lock()
		p.model, p.loadErr = m, err
		p.mu.Unlock()
		if p.logger != nil {
			if err != nil {
				p.logger.Error("embedding model load failed", zap.Error(err))
			} else {
				p.logger.Debug("embedding model loaded", zap.Int("dimensions", m.Dimensions()))
			}
		}
	})
	p.mu.Lock()
	m, err := p.model, p.loadErr
	p.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("%w: load model: %v", ErrEmbedding, err)
	}
	return m, nil
}

// Embed returns one vector per text, in input order. Empty strings are allowed;
// an empty slice of texts is an error.
func (p *Provider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: no input texts", ErrEmbedding)
	}
	m, err := p.embedder(ctx)
	if err != nil {
		return nil, err
	}
	vecs, err := m.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d texts", ErrEmbedding, len(vecs), len(texts))
	}
	dims := m.Dimensions()
	for i, v := range vecs {
		if len(v) != dims {
			return nil, fmt.Errorf("%w: vector %d has %d dimensions, want %d", ErrEmbedding, i, len(v), dims)
		}
	}
	return vecs, nil
}

// EmbedOne embeds a single text.
func (p *Provider) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vecs, err := p.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// Dimensions loads the model if needed and reports its vector length.
func (p *Provider) Dimensions(ctx context.Context) (int, error) {
	m, err := p.embedder(ctx)
	if err != nil {
		return 0, err
	}
	return m.Dimensions(), nil
}

// Close releases the model if it was loaded.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.model == nil {
		return nil
	}
	err := p.model.Close()
	p.model = nil
	p.loadErr = errors.New("provider closed")
	return err
}
