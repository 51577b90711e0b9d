package bootstrap

import (
	"context"

	"rag-chat-be/internal/apperror"
	"rag-chat-be/internal/config"
	"rag-chat-be/internal/controller"
	"rag-chat-be/internal/metrics"
	"rag-chat-be/internal/pkg/logger"
	"rag-chat-be/internal/repository/contract"
	"rag-chat-be/internal/repository/implementation"
	"rag-chat-be/internal/repository/memory"
	"rag-chat-be/internal/service"
	"rag-chat-be/pkg/embedding"
	"rag-chat-be/pkg/events"
	"rag-chat-be/pkg/llm"

	pktNats "rag-chat-be/pkg/nats"

	"gorm.io/gorm"
)

type Container struct {
	Logger  logger.ILogger
	Metrics *metrics.Metrics

	// Shared
	Engine          *embedding.Engine
	ChunkRepository contract.DocumentChunkRepository
	TurnRepository  contract.TurnRepository
	EventBus        *events.Bus

	// Services
	IngestionService service.IIngestionService
	ChatService      service.IChatService

	// Background Services (nil when NATS is not configured)
	EventRelayService service.IEventRelayService

	// Controllers
	ChatController   controller.IChatController
	HealthController controller.IHealthController

	closers []func()
}

type options struct {
	syncEvents bool
}

type Option func(*options)

// WithSynchronousEvents makes publishers wait until the event relay has handled
// each event, so a process that exits right after its work still forwards them.
func WithSynchronousEvents() Option {
	return func(o *options) {
		o.syncEvents = true
	}
}

// NewContainer wires every component. db may be nil for the memory storage driver.
// llmProvider may be nil for binaries that never answer questions.
func NewContainer(db *gorm.DB, cfg *config.Config, sysLogger logger.ILogger, llmProvider llm.LLMProvider, opts ...Option) (*Container, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	c := &Container{
		Logger:  sysLogger,
		Metrics: metrics.New(),
	}

	// 1. Storage
	switch cfg.Database.StorageDriver {
	case config.StorageDriverMemory:
		c.ChunkRepository = memory.NewDocumentChunkRepository()
		c.TurnRepository = memory.NewTurnRepository()
	default:
		if db == nil {
			return nil, apperror.Newf(apperror.KindConfiguration, "bootstrap", "postgres storage driver needs a database connection")
		}
		c.ChunkRepository = implementation.NewDocumentChunkRepository(db)
		c.TurnRepository = implementation.NewTurnRepository(db)
	}

	// 2. Event Bus
	var busOpts []events.BusOption
	if o.syncEvents {
		busOpts = append(busOpts, events.WithSynchronousDelivery())
	}
	c.EventBus = events.NewBus(logger.NewWatermillAdapter(sysLogger), busOpts...)
	c.closers = append(c.closers, func() { _ = c.EventBus.Close() })

	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(context.Background(), cfg.App.NatsURL)
		if err != nil {
			sysLogger.Warn("BOOTSTRAP", "Failed to connect to NATS, events stay in-process", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			c.EventRelayService = service.NewEventRelayService(c.EventBus, natsPub, sysLogger)
			c.closers = append(c.closers, natsPub.Close)
		}
	}

	// 3. Services
	c.Engine = NewEmbeddingEngine(cfg, sysLogger)

	c.IngestionService = service.NewIngestionService(
		c.Engine,
		c.ChunkRepository,
		c.EventBus,
		c.Metrics,
		sysLogger,
		cfg.Rag.ChunkWords,
	)

	if llmProvider != nil {
		c.ChatService = service.NewChatService(
			c.Engine,
			c.ChunkRepository,
			c.TurnRepository,
			llmProvider,
			c.EventBus,
			c.Metrics,
			sysLogger,
			service.ChatOptions{
				Instruction:       cfg.Ai.AssistantInstruction,
				TopK:              cfg.Rag.TopK,
				GenerationTimeout: cfg.Ai.GenerationTimeout,
				HistoryLimit:      cfg.Rag.HistoryLimit,
			},
		)
		c.ChatController = controller.NewChatController(c.ChatService)
	}

	// 4. Controllers
	c.HealthController = controller.NewHealthController(c.Metrics)

	return c, nil
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}
