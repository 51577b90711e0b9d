package contract

import (
	"context"

	"rag-chat-be/internal/entity"
)

// DefaultNearestLimit is used when QueryNearest is called with k <= 0.
const DefaultNearestLimit = 5

// ScoredDocumentChunk wraps a DocumentChunk with its L2 distance to the query vector.
type ScoredDocumentChunk struct {
	Chunk    *entity.DocumentChunk
	Distance float64
}

// DocumentChunkRepository is the vector store. Implementations may scan or use
// an ANN index; callers only rely on the ordering contract.
type DocumentChunkRepository interface {
	// InsertBatch writes every chunk or none of them. Ids are assigned on success.
	InsertBatch(ctx context.Context, chunks []*entity.DocumentChunk) error
	// QueryNearest returns up to k chunks by ascending L2 distance, ties by ascending id.
	// With an ANN index, which of several equidistant chunks make the cut at k is
	// decided by the index. An empty store yields an empty slice and no error.
	QueryNearest(ctx context.Context, vector []float32, k int) ([]*ScoredDocumentChunk, error)
	Count(ctx context.Context) (int64, error)
}
