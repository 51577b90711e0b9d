package implementation

import (
	"context"
	"fmt"
	"sort"

	"rag-chat-be/internal/entity"
	"rag-chat-be/internal/mapper"
	"rag-chat-be/internal/model"
	"rag-chat-be/internal/repository/contract"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// insertBatchSize caps rows per INSERT statement; the whole batch still shares one transaction.
const insertBatchSize = 100

type DocumentChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DocumentChunkMapper
}

func NewDocumentChunkRepository(db *gorm.DB) contract.DocumentChunkRepository {
	return &DocumentChunkRepositoryImpl{
		db:     db,
		mapper: mapper.NewDocumentChunkMapper(),
	}
}

func (r *DocumentChunkRepositoryImpl) InsertBatch(ctx context.Context, chunks []*entity.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	for i, c := range chunks {
		if err := entity.ValidateChunk(c.Text, c.Embedding); err != nil {
			return fmt.Errorf("chunk %d: %w", i, err)
		}
	}

	models := r.mapper.ToModels(chunks)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(models, insertBatchSize).Error
	})
	if err != nil {
		return err
	}

	// Update IDs back to entities
	for i, m := range models {
		*chunks[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *DocumentChunkRepositoryImpl) QueryNearest(ctx context.Context, vector []float32, k int) ([]*contract.ScoredDocumentChunk, error) {
	if k <= 0 {
		k = contract.DefaultNearestLimit
	}

	// <-> is the pgvector L2 distance operator, served by the HNSW vector_l2_ops index.
	// A second ORDER BY key would force a sort over the candidates, so ties are
	// broken in Go over the k returned rows.
	type result struct {
		model.DocumentChunk
		Distance float64
	}
	var results []result

	queryVector := pgvector.NewVector(vector)

	err := r.db.WithContext(ctx).
		Table("document_chunks").
		Select("document_chunks.*, embedding <-> ? AS distance", queryVector).
		Order(gorm.Expr("embedding <-> ?", queryVector)).
		Limit(k).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredDocumentChunk, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredDocumentChunk{
			Chunk:    r.mapper.ToEntity(&res.DocumentChunk),
			Distance: res.Distance,
		}
	}
	sortByDistance(scored)
	return scored, nil
}

// sortByDistance orders by ascending distance, then ascending id.
func sortByDistance(scored []*contract.ScoredDocumentChunk) {
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Distance != scored[j].Distance {
			return scored[i].Distance < scored[j].Distance
		}
		return scored[i].Chunk.Id < scored[j].Chunk.Id
	})
}

func (r *DocumentChunkRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.DocumentChunk{}).Count(&count).Error
	return count, err
}
