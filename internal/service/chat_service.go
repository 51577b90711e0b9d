package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"rag-chat-be/internal/apperror"
	"rag-chat-be/internal/entity"
	"rag-chat-be/internal/metrics"
	"rag-chat-be/internal/pkg/logger"
	"rag-chat-be/internal/repository/contract"
	"rag-chat-be/pkg/database"
	"rag-chat-be/pkg/embedding"
	"rag-chat-be/pkg/events"
	"rag-chat-be/pkg/llm"
	"rag-chat-be/pkg/rag/history"
	"rag-chat-be/pkg/rag/prompt"
	"rag-chat-be/pkg/rag/session"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// AnswerResult is what a caller gets back for one question.
type AnswerResult struct {
	Answer    string
	SessionId string
	Sources   []*contract.ScoredDocumentChunk
}

// IChatService answers questions grounded in the stored chunks and keeps the session log.
type IChatService interface {
	Answer(ctx context.Context, question string, sessionId string) (*AnswerResult, error)
	History(ctx context.Context, sessionId string, limit, offset int) ([]*entity.Turn, error)
}

type ChatOptions struct {
	Instruction       string
	TopK              int
	GenerationTimeout time.Duration
	// HistoryLimit is the page size of History when the caller passes no limit.
	HistoryLimit int
}

type chatService struct {
	engine      *embedding.Engine
	chunkRepo   contract.DocumentChunkRepository
	log         *history.Log
	llmProvider llm.LLMProvider
	publisher   events.Publisher
	metrics     *metrics.Metrics
	logger      logger.ILogger
	opts        ChatOptions
}

func NewChatService(
	engine *embedding.Engine,
	chunkRepo contract.DocumentChunkRepository,
	turnRepo contract.TurnRepository,
	llmProvider llm.LLMProvider,
	publisher events.Publisher,
	m *metrics.Metrics,
	log logger.ILogger,
	opts ChatOptions,
) IChatService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if opts.TopK <= 0 {
		opts.TopK = contract.DefaultNearestLimit
	}
	if opts.GenerationTimeout <= 0 {
		opts.GenerationTimeout = 60 * time.Second
	}
	return &chatService{
		engine:      engine,
		chunkRepo:   chunkRepo,
		log:         history.NewLog(turnRepo, opts.HistoryLimit),
		llmProvider: llmProvider,
		publisher:   publisher,
		metrics:     m,
		logger:      log,
		opts:        opts,
	}
}

func (s *chatService) Answer(ctx context.Context, question string, sessionId string) (*AnswerResult, error) {
	ctx, span := otel.Tracer("chat").Start(ctx, "chat.Answer")
	defer span.End()

	start := time.Now()
	result, err := s.answer(ctx, question, sessionId)
	if err != nil {
		kind := apperror.KindOf(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, kind.String())
		s.countAnswer(kind.String())
		return nil, err
	}

	span.SetAttributes(
		attribute.String("chat.session_id", result.SessionId),
		attribute.Int("chat.sources", len(result.Sources)),
	)
	s.countAnswer("ok")

	if err := s.publisher.Publish(ctx, events.NewChatAnswered(result.SessionId, len(result.Sources), time.Since(start))); err != nil {
		s.logger.Warn("CHAT", "Failed to publish answer event", map[string]interface{}{"error": err.Error()})
	}
	return result, nil
}

func (s *chatService) answer(ctx context.Context, question string, sessionId string) (*AnswerResult, error) {
	if strings.TrimSpace(question) == "" {
		return nil, apperror.Newf(apperror.KindValidation, "chat.answer", "question must not be empty")
	}

	// 1. Session
	sessionId = session.Resolve(sessionId)

	// 2. The user turn is logged before generation and is never rolled back
	if _, err := s.log.RecordUser(ctx, sessionId, question); err != nil {
		s.logStorageError("Failed to record user turn", sessionId, err)
		return nil, apperror.New(apperror.KindStorage, "chat.record_user", err)
	}

	// 3. Retrieval
	stageStart := time.Now()
	hits, err := s.retrieve(ctx, question)
	s.observeStage("retrieve", stageStart)
	if err != nil {
		s.logger.Error("CHAT", "Retrieval failed", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
		return nil, err
	}

	// 4. Prompt
	documents := make([]string, len(hits))
	sourceIds := make([]int64, len(hits))
	for i, hit := range hits {
		documents[i] = hit.Chunk.Text
		sourceIds[i] = hit.Chunk.Id
	}
	fullPrompt := prompt.NewGroundedBuilder(s.opts.Instruction, documents, question).Build()

	// 5. Generation
	stageStart = time.Now()
	answer, err := s.generate(ctx, fullPrompt)
	s.observeStage("generate", stageStart)
	if err != nil {
		s.logger.Error("CHAT", "Generation failed", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
		return nil, err
	}

	// 6. Assistant turn
	if _, err := s.log.RecordAssistant(ctx, sessionId, answer, sourceIds); err != nil {
		s.logStorageError("Failed to record assistant turn", sessionId, err)
		return nil, apperror.New(apperror.KindStorage, "chat.record_assistant", err)
	}

	s.logger.Info("CHAT", "Question answered", map[string]interface{}{
		"session_id": sessionId,
		"sources":    len(hits),
	})

	return &AnswerResult{
		Answer:    answer,
		SessionId: sessionId,
		Sources:   hits,
	}, nil
}

func (s *chatService) retrieve(ctx context.Context, question string) ([]*contract.ScoredDocumentChunk, error) {
	vector, err := s.engine.Embed(ctx, question)
	if err != nil {
		// a broken embedding setup stays a configuration problem
		if apperror.Is(err, apperror.KindConfiguration) {
			return nil, apperror.New(apperror.KindConfiguration, "chat.retrieve", err)
		}
		return nil, apperror.New(apperror.KindRetrieval, "chat.retrieve", err)
	}

	hits, err := s.chunkRepo.QueryNearest(ctx, vector, s.opts.TopK)
	if err != nil {
		return nil, apperror.New(apperror.KindRetrieval, "chat.retrieve", err)
	}
	if s.metrics != nil {
		s.metrics.RetrievedChunks.Observe(float64(len(hits)))
	}
	return hits, nil
}

func (s *chatService) generate(ctx context.Context, fullPrompt string) (string, error) {
	genCtx, cancel := context.WithTimeout(ctx, s.opts.GenerationTimeout)
	defer cancel()

	answer, err := s.llmProvider.Generate(genCtx, fullPrompt)
	if err != nil {
		if ctxErr := genCtx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			err = fmt.Errorf("%w: %v", ctxErr, err)
		}
		return "", apperror.New(apperror.KindGeneration, "chat.generate", err)
	}
	return answer, nil
}

func (s *chatService) History(ctx context.Context, sessionId string, limit, offset int) ([]*entity.Turn, error) {
	if sessionId == "" {
		return nil, apperror.Newf(apperror.KindValidation, "chat.history", "session id must not be empty")
	}
	turns, err := s.log.Load(ctx, sessionId, limit, offset)
	if err != nil {
		s.logStorageError("Failed to load history", sessionId, err)
		return nil, apperror.New(apperror.KindStorage, "chat.history", err)
	}
	return turns, nil
}

func (s *chatService) logStorageError(message, sessionId string, err error) {
	s.logger.Error("CHAT", message, map[string]interface{}{
		"session_id": sessionId,
		"error":      err.Error(),
		"sqlstate":   database.SQLState(err),
	})
}

func (s *chatService) countAnswer(outcome string) {
	if s.metrics != nil {
		s.metrics.AnswersTotal.WithLabelValues(outcome).Inc()
	}
}

func (s *chatService) observeStage(stage string, start time.Time) {
	if s.metrics != nil {
		s.metrics.AnswerDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	}
}
