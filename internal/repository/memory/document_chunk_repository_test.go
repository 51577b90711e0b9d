package memory

import (
	"context"
	"errors"
	"testing"

	"rag-chat-be/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// axis returns the unit vector along dimension i.
func axis(i int) []float32 {
	v := make([]float32, entity.EmbeddingDimension)
	v[i] = 1
	return v
}

func chunk(t *testing.T, text string, emb []float32) *entity.DocumentChunk {
	t.Helper()
	c, err := entity.NewDocumentChunk(text, emb)
	require.NoError(t, err)
	return c
}

func TestDocumentChunkRepository_InsertAssignsIds(t *testing.T) {
	repo := NewDocumentChunkRepository()
	ctx := context.Background()

	chunks := []*entity.DocumentChunk{chunk(t, "a", axis(0)), chunk(t, "b", axis(1))}
	require.NoError(t, repo.InsertBatch(ctx, chunks))

	assert.NotZero(t, chunks[0].Id)
	assert.Greater(t, chunks[1].Id, chunks[0].Id)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestDocumentChunkRepository_InsertIsAllOrNothing(t *testing.T) {
	repo := NewDocumentChunkRepository()
	ctx := context.Background()

	bad := &entity.DocumentChunk{Text: "bad", Embedding: []float32{1, 0, 0}}
	err := repo.InsertBatch(ctx, []*entity.DocumentChunk{chunk(t, "good", axis(0)), bad})
	require.Error(t, err)
	assert.True(t, errors.Is(err, entity.ErrDimensionMismatch))

	n, _ := repo.Count(ctx)
	assert.Zero(t, n)
}

func TestDocumentChunkRepository_QueryNearest(t *testing.T) {
	repo := NewDocumentChunkRepository()
	ctx := context.Background()

	require.NoError(t, repo.InsertBatch(ctx, []*entity.DocumentChunk{
		chunk(t, "x", axis(0)),
		chunk(t, "y", axis(1)),
		chunk(t, "z", axis(2)),
	}))

	t.Run("ordered by distance", func(t *testing.T) {
		q := make([]float32, entity.EmbeddingDimension)
		q[1], q[0] = 0.8, 0.6
		got, err := repo.QueryNearest(ctx, q, 3)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "y", got[0].Chunk.Text)
		assert.Equal(t, "x", got[1].Chunk.Text)
		assert.Equal(t, "z", got[2].Chunk.Text)
		assert.LessOrEqual(t, got[0].Distance, got[1].Distance)
		assert.LessOrEqual(t, got[1].Distance, got[2].Distance)
	})

	t.Run("k larger than store", func(t *testing.T) {
		got, err := repo.QueryNearest(ctx, axis(0), 10)
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})

	t.Run("ties break by id", func(t *testing.T) {
		got, err := repo.QueryNearest(ctx, axis(5), 3)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Less(t, got[0].Chunk.Id, got[1].Chunk.Id)
		assert.Less(t, got[1].Chunk.Id, got[2].Chunk.Id)
	})

	t.Run("results do not alias storage", func(t *testing.T) {
		got, err := repo.QueryNearest(ctx, axis(0), 1)
		require.NoError(t, err)
		got[0].Chunk.Embedding[0] = 42

		again, _ := repo.QueryNearest(ctx, axis(0), 1)
		assert.Equal(t, float32(1), again[0].Chunk.Embedding[0])
	})
}

func TestDocumentChunkRepository_QueryNearestCopiesOnlyTopK(t *testing.T) {
	repo := NewDocumentChunkRepository()
	ctx := context.Background()

	chunks := make([]*entity.DocumentChunk, 200)
	for i := range chunks {
		chunks[i] = chunk(t, "c", axis(i))
	}
	require.NoError(t, repo.InsertBatch(ctx, chunks))

	got, err := repo.QueryNearest(ctx, axis(150), 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, chunks[150].Id, got[0].Chunk.Id)
	assert.Zero(t, got[0].Distance)
	// every other axis is sqrt(2) away, so the runner-up is the lowest id
	assert.Equal(t, chunks[0].Id, got[1].Chunk.Id)
	assert.InDelta(t, 1.41421356, got[1].Distance, 1e-6)

	allocs := testing.AllocsPerRun(20, func() {
		_, _ = repo.QueryNearest(ctx, axis(150), 1)
	})
	assert.Less(t, allocs, float64(len(chunks)))
}

func TestDocumentChunkRepository_QueryEmptyStore(t *testing.T) {
	repo := NewDocumentChunkRepository()
	got, err := repo.QueryNearest(context.Background(), axis(0), 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDocumentChunkRepository_CancelledContext(t *testing.T) {
	repo := NewDocumentChunkRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.QueryNearest(ctx, axis(0), 5)
	assert.ErrorIs(t, err, context.Canceled)
}
