package service

import (
	"context"
	"errors"
	"sync"

	"rag-chat-be/internal/entity"
	"rag-chat-be/internal/repository/contract"
	"rag-chat-be/internal/repository/memory"
	"rag-chat-be/pkg/embedding"
	"rag-chat-be/pkg/events"
	"rag-chat-be/pkg/llm"
)

var errBackend = errors.New("backend unavailable")

func newTestEngine() *embedding.Engine {
	return embedding.NewEngineFromProvider(embedding.NewHashProvider(entity.EmbeddingDimension), entity.EmbeddingDimension)
}

// stubLLM returns a fixed answer or error and remembers the prompts it saw.
type stubLLM struct {
	mu      sync.Mutex
	answer  string
	err     error
	wait    bool
	prompts []string
}

func (s *stubLLM) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return s.Generate(ctx, history[len(history)-1].Content, opts...)
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	s.mu.Lock()
	s.prompts = append(s.prompts, prompt)
	s.mu.Unlock()

	if s.wait {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if s.err != nil {
		return "", s.err
	}
	return s.answer, nil
}

func (s *stubLLM) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

// failingChunkRepo wraps the memory store and fails the selected operations.
type failingChunkRepo struct {
	*memory.DocumentChunkRepository
	failInsert bool
	failQuery  bool
	inserts    int
}

func (r *failingChunkRepo) InsertBatch(ctx context.Context, chunks []*entity.DocumentChunk) error {
	r.inserts++
	if r.failInsert {
		return errBackend
	}
	return r.DocumentChunkRepository.InsertBatch(ctx, chunks)
}

func (r *failingChunkRepo) QueryNearest(ctx context.Context, vector []float32, k int) ([]*contract.ScoredDocumentChunk, error) {
	if r.failQuery {
		return nil, errBackend
	}
	return r.DocumentChunkRepository.QueryNearest(ctx, vector, k)
}

type failingTurnRepo struct {
	*memory.TurnRepository
	failAppend bool
}

func (r *failingTurnRepo) Append(ctx context.Context, turn *entity.Turn) error {
	if r.failAppend {
		return errBackend
	}
	return r.TurnRepository.Append(ctx, turn)
}

type failingProvider struct{}

func (failingProvider) Dimensions() int   { return entity.EmbeddingDimension }
func (failingProvider) ModelName() string { return "failing" }
func (failingProvider) Generate(context.Context, string) ([]float32, error) {
	return nil, errBackend
}
func (failingProvider) GenerateBatch(context.Context, []string) ([][]float32, error) {
	return nil, errBackend
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}
