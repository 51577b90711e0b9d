package embedding

import (
	"context"
	"sync"

	"rag-chat-be/internal/apperror"
)

// ProviderFactory builds the underlying provider. It is called at most once per Engine.
type ProviderFactory func() (EmbeddingProvider, error)

// Engine is the process-wide embedding entry point shared by ingestion and query.
// Both paths must go through the same Engine so their vectors live in one space.
type Engine struct {
	factory   ProviderFactory
	dimension int
	cache     VectorCache

	once     sync.Once
	provider EmbeddingProvider
	initErr  error
}

type EngineOption func(*Engine)

// WithCache enables the query-vector cache used by Embed.
func WithCache(cache VectorCache) EngineOption {
	return func(e *Engine) {
		e.cache = cache
	}
}

func NewEngine(factory ProviderFactory, dimension int, opts ...EngineOption) *Engine {
	e := &Engine{
		factory:   factory,
		dimension: dimension,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewEngineFromProvider wraps an already constructed provider.
func NewEngineFromProvider(provider EmbeddingProvider, dimension int, opts ...EngineOption) *Engine {
	return NewEngine(func() (EmbeddingProvider, error) { return provider, nil }, dimension, opts...)
}

func (e *Engine) load() (EmbeddingProvider, error) {
	e.once.Do(func() {
		p, err := e.factory()
		if err != nil {
			e.initErr = apperror.New(apperror.KindConfiguration, "embedding.init", err)
			return
		}
		if p == nil {
			e.initErr = apperror.Newf(apperror.KindConfiguration, "embedding.init", "provider factory returned nil")
			return
		}
		if d := p.Dimensions(); d != 0 && d != e.dimension {
			e.initErr = apperror.Newf(apperror.KindConfiguration, "embedding.init",
				"model %s produces %d dimensions, store expects %d", p.ModelName(), d, e.dimension)
			return
		}
		e.provider = p
	})
	return e.provider, e.initErr
}

// Dimension is the vector length every output is guaranteed to have.
func (e *Engine) Dimension() int {
	return e.dimension
}

// ModelName initializes the provider if needed.
func (e *Engine) ModelName() (string, error) {
	p, err := e.load()
	if err != nil {
		return "", err
	}
	return p.ModelName(), nil
}

// Embed returns the unit-length embedding of text.
func (e *Engine) Embed(ctx context.Context, text string) ([]float32, error) {
	p, err := e.load()
	if err != nil {
		return nil, err
	}

	var key string
	if e.cache != nil {
		key = CacheKey(p.ModelName(), text)
		if vec, ok := e.cache.Get(ctx, key); ok && len(vec) == e.dimension {
			return vec, nil
		}
	}

	raw, err := p.Generate(ctx, text)
	if err != nil {
		return nil, apperror.New(apperror.KindEmbedding, "embedding.embed", err)
	}
	vec, err := e.finalize(raw)
	if err != nil {
		return nil, err
	}

	if e.cache != nil {
		e.cache.Set(ctx, key, vec)
	}
	return vec, nil
}

// EmbedMany is Embed mapped over texts, issued as a single batched provider call.
func (e *Engine) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	p, err := e.load()
	if err != nil {
		return nil, err
	}

	raw, err := p.GenerateBatch(ctx, texts)
	if err != nil {
		return nil, apperror.New(apperror.KindEmbedding, "embedding.embed_many", err)
	}
	if len(raw) != len(texts) {
		return nil, apperror.Newf(apperror.KindEmbedding, "embedding.embed_many",
			"provider returned %d vectors for %d texts", len(raw), len(texts))
	}

	out := make([][]float32, len(raw))
	for i, v := range raw {
		vec, err := e.finalize(v)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (e *Engine) finalize(raw []float32) ([]float32, error) {
	if len(raw) != e.dimension {
		return nil, apperror.Newf(apperror.KindConfiguration, "embedding.validate",
			"got %d dimensions, want %d", len(raw), e.dimension)
	}
	if L2Norm(raw) == 0 {
		return nil, apperror.Newf(apperror.KindEmbedding, "embedding.validate", "zero vector cannot be normalized")
	}
	return Normalize(raw), nil
}
