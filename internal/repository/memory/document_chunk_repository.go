package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"rag-chat-be/internal/entity"
	"rag-chat-be/internal/repository/contract"
	"rag-chat-be/pkg/embedding"
)

// DocumentChunkRepository is a brute-force vector store. QueryNearest scans every record.
type DocumentChunkRepository struct {
	mu     sync.RWMutex
	nextId int64
	chunks []entity.DocumentChunk
}

func NewDocumentChunkRepository() *DocumentChunkRepository {
	return &DocumentChunkRepository{}
}

var _ contract.DocumentChunkRepository = (*DocumentChunkRepository)(nil)

func (r *DocumentChunkRepository) InsertBatch(ctx context.Context, chunks []*entity.DocumentChunk) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	// Validate everything before touching state so a bad record leaves nothing behind.
	for i, c := range chunks {
		if err := entity.ValidateChunk(c.Text, c.Embedding); err != nil {
			return fmt.Errorf("chunk %d: %w", i, err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for _, c := range chunks {
		r.nextId++
		stored := entity.DocumentChunk{
			Id:        r.nextId,
			Text:      c.Text,
			Embedding: append([]float32(nil), c.Embedding...),
			CreatedAt: now,
		}
		r.chunks = append(r.chunks, stored)
		c.Id = stored.Id
		c.CreatedAt = stored.CreatedAt
	}
	return nil
}

func (r *DocumentChunkRepository) QueryNearest(ctx context.Context, vector []float32, k int) ([]*contract.ScoredDocumentChunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if k <= 0 {
		k = contract.DefaultNearestLimit
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	// chunks are kept in id order, so a stable sort on distance breaks ties by id
	type candidate struct {
		index    int
		distance float64
	}
	candidates := make([]candidate, len(r.chunks))
	for i := range r.chunks {
		candidates[i] = candidate{index: i, distance: embedding.L2Distance(vector, r.chunks[i].Embedding)}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].distance < candidates[j].distance
	})

	if k > len(candidates) {
		k = len(candidates)
	}

	// only the survivors are copied out
	scored := make([]*contract.ScoredDocumentChunk, k)
	for i, cand := range candidates[:k] {
		c := r.chunks[cand.index]
		c.Embedding = append([]float32(nil), c.Embedding...)
		scored[i] = &contract.ScoredDocumentChunk{
			Chunk:    &c,
			Distance: cand.distance,
		}
	}
	return scored, nil
}

func (r *DocumentChunkRepository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.chunks)), nil
}
