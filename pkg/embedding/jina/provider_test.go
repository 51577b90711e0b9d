package jina

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dataItem struct {
	Object    string    `json:"object"`
	Index     int       `json:"index"`
	Embedding []float32 `json:"embedding"`
}

func newTestProvider(t *testing.T, data []dataItem) *JinaProvider {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))

		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "jina-embeddings-v2-base-en", req.Model)

		_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
	}))
	t.Cleanup(srv.Close)

	return &JinaProvider{
		apiKey:  "k",
		baseURL: srv.URL,
		model:   "jina-embeddings-v2-base-en",
		client:  srv.Client(),
	}
}

func TestJinaProvider_ReordersByIndex(t *testing.T) {
	p := newTestProvider(t, []dataItem{
		{Object: "embedding", Index: 2, Embedding: []float32{3}},
		{Object: "embedding", Index: 0, Embedding: []float32{1}},
		{Object: "embedding", Index: 1, Embedding: []float32{2}},
	})

	vectors, err := p.GenerateBatch(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1}, {2}, {3}}, vectors)
}

func TestJinaProvider_RejectsBadIndexes(t *testing.T) {
	tests := []struct {
		name string
		data []dataItem
	}{
		{"duplicate", []dataItem{{Index: 0, Embedding: []float32{1}}, {Index: 0, Embedding: []float32{2}}}},
		{"out of range", []dataItem{{Index: 0, Embedding: []float32{1}}, {Index: 5, Embedding: []float32{2}}}},
		{"short", []dataItem{{Index: 0, Embedding: []float32{1}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProvider(t, tt.data)
			_, err := p.GenerateBatch(context.Background(), []string{"a", "b"})
			assert.Error(t, err)
		})
	}
}
