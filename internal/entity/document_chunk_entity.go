package entity

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// EmbeddingDimension is the vector length shared by the ingestion and query paths.
const EmbeddingDimension = 768

// UnitNormTolerance bounds how far a stored embedding's L2 norm may drift from 1.
const UnitNormTolerance = 1e-3

var (
	ErrEmptyChunkText     = errors.New("chunk text is empty")
	ErrDimensionMismatch  = errors.New("embedding dimension mismatch")
	ErrEmbeddingNotNormal = errors.New("embedding is not unit length")
)

type DocumentChunk struct {
	Id        int64
	Text      string
	Embedding []float32
	CreatedAt time.Time
}

// NewDocumentChunk is the only way ingestion builds chunks, so every stored
// record has D entries and unit norm.
func NewDocumentChunk(text string, embedding []float32) (*DocumentChunk, error) {
	if err := ValidateChunk(text, embedding); err != nil {
		return nil, err
	}
	return &DocumentChunk{
		Text:      text,
		Embedding: embedding,
	}, nil
}

func ValidateChunk(text string, embedding []float32) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyChunkText
	}
	if len(embedding) != EmbeddingDimension {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(embedding), EmbeddingDimension)
	}
	var sum float64
	for _, v := range embedding {
		sum += float64(v) * float64(v)
	}
	if norm := math.Sqrt(sum); math.Abs(norm-1) > UnitNormTolerance {
		return fmt.Errorf("%w: norm %.6f", ErrEmbeddingNotNormal, norm)
	}
	return nil
}
