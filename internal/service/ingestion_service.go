package service

import (
	"context"
	"time"

	"rag-chat-be/internal/apperror"
	"rag-chat-be/internal/entity"
	"rag-chat-be/internal/metrics"
	"rag-chat-be/internal/pkg/logger"
	"rag-chat-be/internal/repository/contract"
	"rag-chat-be/pkg/database"
	"rag-chat-be/pkg/embedding"
	"rag-chat-be/pkg/events"
	"rag-chat-be/pkg/source"
	"rag-chat-be/pkg/utils"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// IIngestionService turns raw documents into stored, embedded chunks.
type IIngestionService interface {
	// Ingest chunks, embeds and stores every document in one all-or-nothing run.
	// It returns the number of chunks written.
	Ingest(ctx context.Context, documents []string) (int, error)
	// IngestFile loads documents from a csv, tsv, pdf or plain text file, then ingests them.
	IngestFile(ctx context.Context, path string) (int, error)
}

type ingestionService struct {
	engine     *embedding.Engine
	chunkRepo  contract.DocumentChunkRepository
	publisher  events.Publisher
	metrics    *metrics.Metrics
	logger     logger.ILogger
	chunkWords int
}

func NewIngestionService(
	engine *embedding.Engine,
	chunkRepo contract.DocumentChunkRepository,
	publisher events.Publisher,
	m *metrics.Metrics,
	log logger.ILogger,
	chunkWords int,
) IIngestionService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if chunkWords <= 0 {
		chunkWords = utils.DefaultChunkWords
	}
	return &ingestionService{
		engine:     engine,
		chunkRepo:  chunkRepo,
		publisher:  publisher,
		metrics:    m,
		logger:     log,
		chunkWords: chunkWords,
	}
}

func (s *ingestionService) IngestFile(ctx context.Context, path string) (int, error) {
	documents, err := source.Load(path)
	if err != nil {
		return 0, apperror.New(apperror.KindValidation, "ingest.read", err)
	}
	s.logger.Info("INGEST", "Source loaded", map[string]interface{}{
		"path":      path,
		"documents": len(documents),
	})
	return s.Ingest(ctx, documents)
}

func (s *ingestionService) Ingest(ctx context.Context, documents []string) (int, error) {
	ctx, span := otel.Tracer("ingestion").Start(ctx, "ingestion.Ingest")
	defer span.End()

	start := time.Now()
	written, err := s.ingest(ctx, documents)
	elapsed := time.Since(start)

	span.SetAttributes(
		attribute.Int("ingest.documents", len(documents)),
		attribute.Int("ingest.chunks", written),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, apperror.KindOf(err).String())
		s.observe(apperror.KindOf(err).String(), 0, elapsed)
		return 0, err
	}
	s.observe("ok", written, elapsed)

	if written > 0 {
		if err := s.publisher.Publish(ctx, events.NewIngestionCompleted(len(documents), written, elapsed)); err != nil {
			s.logger.Warn("INGEST", "Failed to publish ingestion event", map[string]interface{}{"error": err.Error()})
		}
	}
	return written, nil
}

func (s *ingestionService) ingest(ctx context.Context, documents []string) (int, error) {
	var texts []string
	for _, doc := range documents {
		texts = append(texts, utils.SplitWords(doc, s.chunkWords)...)
	}
	if len(texts) == 0 {
		s.logger.Info("INGEST", "Nothing to ingest", map[string]interface{}{"documents": len(documents)})
		return 0, nil
	}

	s.logger.Info("INGEST", "Embedding chunks", map[string]interface{}{
		"documents": len(documents),
		"chunks":    len(texts),
	})

	vectors, err := s.engine.EmbedMany(ctx, texts)
	if err != nil {
		s.logger.Error("INGEST", "Embedding failed", map[string]interface{}{"error": err.Error()})
		return 0, apperror.New(apperror.KindUnknown, "ingest.embed", err)
	}

	chunks := make([]*entity.DocumentChunk, len(texts))
	for i, text := range texts {
		chunk, err := entity.NewDocumentChunk(text, vectors[i])
		if err != nil {
			return 0, apperror.New(apperror.KindEmbedding, "ingest.build", err)
		}
		chunks[i] = chunk
	}

	if err := s.chunkRepo.InsertBatch(ctx, chunks); err != nil {
		s.logger.Error("INGEST", "Storing chunks failed", map[string]interface{}{
			"error":    err.Error(),
			"sqlstate": database.SQLState(err),
			"chunks":   len(chunks),
		})
		return 0, apperror.New(apperror.KindStorage, "ingest.store", err)
	}

	s.logger.Info("INGEST", "Chunks stored", map[string]interface{}{"chunks": len(chunks)})
	return len(chunks), nil
}

func (s *ingestionService) observe(outcome string, written int, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.IngestionsTotal.WithLabelValues(outcome).Inc()
	s.metrics.IngestionSeconds.Observe(elapsed.Seconds())
	s.metrics.IngestedChunks.Add(float64(written))
}
