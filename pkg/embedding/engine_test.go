package embedding

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"rag-chat-be/internal/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	dim    int
	vec    []float32
	err    error
	calls  atomic.Int32
	batchN atomic.Int32
}

func (s *stubProvider) Dimensions() int   { return s.dim }
func (s *stubProvider) ModelName() string { return "stub" }

func (s *stubProvider) Generate(ctx context.Context, text string) ([]float32, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return append([]float32(nil), s.vec...), nil
}

func (s *stubProvider) GenerateBatch(ctx context.Context, texts []string) ([][]float32, error) {
	s.batchN.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = append([]float32(nil), s.vec...)
	}
	return out, nil
}

func TestEngine_EmbedIsUnitLengthAndDeterministic(t *testing.T) {
	engine := NewEngineFromProvider(NewHashProvider(768), 768)
	ctx := context.Background()

	inputs := []string{
		"Paris is the capital of France.",
		"",
		"a",
		"The mitochondria is the powerhouse of the cell.",
	}
	for _, in := range inputs {
		v1, err := engine.Embed(ctx, in)
		require.NoError(t, err)
		assert.Len(t, v1, 768)
		assert.InDelta(t, 1.0, L2Norm(v1), 1e-5)

		v2, err := engine.Embed(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, v1, v2)
	}
}

func TestEngine_EmbedManyMatchesEmbed(t *testing.T) {
	engine := NewEngineFromProvider(NewHashProvider(768), 768)
	ctx := context.Background()

	texts := []string{"first chunk of text", "second chunk of text"}
	many, err := engine.EmbedMany(ctx, texts)
	require.NoError(t, err)
	require.Len(t, many, 2)

	for i, text := range texts {
		single, err := engine.Embed(ctx, text)
		require.NoError(t, err)
		assert.Equal(t, single, many[i])
	}

	empty, err := engine.EmbedMany(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestEngine_SimilarTextsAreCloser(t *testing.T) {
	engine := NewEngineFromProvider(NewHashProvider(768), 768)
	ctx := context.Background()

	q, _ := engine.Embed(ctx, "capital of France")
	near, _ := engine.Embed(ctx, "Paris is the capital of France.")
	far, _ := engine.Embed(ctx, "The mitochondria is the powerhouse of the cell.")

	assert.Less(t, L2Distance(q, near), L2Distance(q, far))
}

func TestEngine_InitializesOnceUnderConcurrency(t *testing.T) {
	var factoryCalls atomic.Int32
	engine := NewEngine(func() (EmbeddingProvider, error) {
		factoryCalls.Add(1)
		time.Sleep(10 * time.Millisecond)
		return NewHashProvider(768), nil
	}, 768)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.Embed(context.Background(), "concurrent")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), factoryCalls.Load())
}

func TestEngine_InitFailureIsSticky(t *testing.T) {
	var factoryCalls atomic.Int32
	engine := NewEngine(func() (EmbeddingProvider, error) {
		factoryCalls.Add(1)
		return nil, errors.New("model not found")
	}, 768)

	_, err := engine.Embed(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindConfiguration))

	_, err = engine.EmbedMany(context.Background(), []string{"x"})
	assert.True(t, apperror.Is(err, apperror.KindConfiguration))
	assert.Equal(t, int32(1), factoryCalls.Load())
}

func TestEngine_DimensionMismatchIsConfigurationError(t *testing.T) {
	engine := NewEngineFromProvider(NewHashProvider(384), 768)

	_, err := engine.Embed(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindConfiguration))

	// provider that under-reports its dimension is caught per vector
	stub := &stubProvider{dim: 0, vec: []float32{1, 2, 3}}
	engine = NewEngineFromProvider(stub, 768)
	_, err = engine.Embed(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindConfiguration))
}

func TestEngine_ProviderErrorIsEmbeddingError(t *testing.T) {
	stub := &stubProvider{dim: 3, err: errors.New("connection refused")}
	engine := NewEngineFromProvider(stub, 3)

	_, err := engine.Embed(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindEmbedding))

	_, err = engine.EmbedMany(context.Background(), []string{"a", "b"})
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindEmbedding))
}

func TestEngine_ZeroVectorIsRejected(t *testing.T) {
	stub := &stubProvider{dim: 3, vec: []float32{0, 0, 0}}
	engine := NewEngineFromProvider(stub, 3)

	_, err := engine.Embed(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindEmbedding))
}

func TestEngine_CacheSkipsProvider(t *testing.T) {
	stub := &stubProvider{dim: 3, vec: []float32{3, 4, 0}}
	engine := NewEngineFromProvider(stub, 3, WithCache(NewMemoryCache(time.Minute)))
	ctx := context.Background()

	v1, err := engine.Embed(ctx, "cached")
	require.NoError(t, err)
	v2, err := engine.Embed(ctx, "cached")
	require.NoError(t, err)

	assert.Equal(t, v1, v2)
	assert.InDeltaSlice(t, []float32{0.6, 0.8, 0}, v1, 1e-6)
	assert.Equal(t, int32(1), stub.calls.Load())
}
