package main

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"rag-chat-be/internal/bootstrap"
	"rag-chat-be/internal/config"
	"rag-chat-be/internal/pkg/logger"
	"rag-chat-be/internal/service"
	"rag-chat-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() *config.Config {
	return &config.Config{
		Database: config.DatabaseConfig{StorageDriver: config.StorageDriverMemory},
		Ai: config.AIConfig{
			EmbeddingProvider: "hash",
			LLMProvider:       "ollama",
			GenerationTimeout: time.Second,
		},
		Rag: config.RagConfig{ChunkWords: 512, TopK: 5},
	}
}

func TestResolveSourcePath(t *testing.T) {
	t.Setenv("DATA_PATH", "")
	assert.Equal(t, defaultSourcePath, resolveSourcePath(nil))

	t.Setenv("DATA_PATH", "/data/docs.tsv")
	assert.Equal(t, "/data/docs.tsv", resolveSourcePath(nil))
	assert.Equal(t, "notes.pdf", resolveSourcePath([]string{"notes.pdf"}))
}

func TestRunIngest_MemoryStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "source.csv")
	require.NoError(t, os.WriteFile(path, []byte("text\nParis is the capital of France.\nBerlin is in Germany.\n"), 0o644))

	assert.NoError(t, runIngest(context.Background(), memoryConfig(), path))
}

func TestRunIngest_MissingFile(t *testing.T) {
	assert.Error(t, runIngest(context.Background(), memoryConfig(), filepath.Join(t.TempDir(), "missing.csv")))
}

func TestRunIngest_InvalidConfig(t *testing.T) {
	cfg := memoryConfig()
	cfg.Rag.ChunkWords = 0
	assert.Error(t, runIngest(context.Background(), cfg, "unused.csv"))
}

type recordingSink struct {
	mu    sync.Mutex
	types []string
}

func (s *recordingSink) PublishRaw(_ context.Context, eventType string, _ []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.types = append(s.types, eventType)
	return nil
}

func TestIngestAndRelay_ForwardsCompletionBeforeReturning(t *testing.T) {
	path := filepath.Join(t.TempDir(), "source.txt")
	require.NoError(t, os.WriteFile(path, []byte("Paris is the capital of France."), 0o644))

	c, err := bootstrap.NewContainer(nil, memoryConfig(), logger.NewNopLogger(), nil, bootstrap.WithSynchronousEvents())
	require.NoError(t, err)
	defer c.Close()

	sink := &recordingSink{}
	c.EventRelayService = service.NewEventRelayService(c.EventBus, sink, logger.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	written, err := ingestAndRelay(ctx, c, path)
	require.NoError(t, err)
	assert.Equal(t, 1, written)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	assert.Equal(t, []string{events.TypeIngestionCompleted}, sink.types)
}
