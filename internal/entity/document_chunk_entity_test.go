package entity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitVector(dim int) []float32 {
	v := make([]float32, dim)
	v[0] = 1
	return v
}

func TestNewDocumentChunk(t *testing.T) {
	chunk, err := NewDocumentChunk("hello world", unitVector(EmbeddingDimension))
	require.NoError(t, err)
	assert.Equal(t, "hello world", chunk.Text)
	assert.Zero(t, chunk.Id)
}

func TestNewDocumentChunkRejects(t *testing.T) {
	scaled := make([]float32, EmbeddingDimension)
	for i := range scaled {
		scaled[i] = float32(1 / math.Sqrt(EmbeddingDimension) * 2)
	}

	tests := []struct {
		name      string
		text      string
		embedding []float32
		wantErr   error
	}{
		{"empty text", "   ", unitVector(EmbeddingDimension), ErrEmptyChunkText},
		{"short vector", "x", unitVector(384), ErrDimensionMismatch},
		{"not normalized", "x", scaled, ErrEmbeddingNotNormal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDocumentChunk(tt.text, tt.embedding)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
