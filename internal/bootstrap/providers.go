package bootstrap

import (
	"context"
	"fmt"

	"rag-chat-be/internal/config"
	"rag-chat-be/internal/entity"
	"rag-chat-be/internal/pkg/logger"
	"rag-chat-be/pkg/embedding"
	"rag-chat-be/pkg/embedding/jina"
	"rag-chat-be/pkg/llm"
	"rag-chat-be/pkg/llm/factory"

	"github.com/redis/go-redis/v9"
)

// NewEmbeddingEngine builds the single engine shared by ingestion and chat.
// The provider itself is created on first use.
func NewEmbeddingEngine(cfg *config.Config, log logger.ILogger) *embedding.Engine {
	providerFactory := func() (embedding.EmbeddingProvider, error) {
		p, err := newEmbeddingProvider(cfg)
		if err != nil {
			return nil, err
		}
		log.Info("BOOTSTRAP", "Embedding provider ready", map[string]interface{}{
			"provider": cfg.Ai.EmbeddingProvider,
			"model":    p.ModelName(),
		})
		return p, nil
	}

	var opts []embedding.EngineOption
	if cache := newVectorCache(cfg, log); cache != nil {
		opts = append(opts, embedding.WithCache(cache))
	}
	return embedding.NewEngine(providerFactory, entity.EmbeddingDimension, opts...)
}

func newEmbeddingProvider(cfg *config.Config) (embedding.EmbeddingProvider, error) {
	switch cfg.Ai.EmbeddingProvider {
	case "ollama":
		return embedding.NewOllamaProvider(cfg.Ai.EmbeddingBaseURL, cfg.Ai.EmbeddingModel, entity.EmbeddingDimension), nil
	case "gemini":
		return embedding.NewGeminiProvider(cfg.Keys.GoogleGemini), nil
	case "jina":
		return jina.NewJinaProvider(cfg.Keys.Jina), nil
	case "openai":
		return embedding.NewOpenAIProvider(cfg.Keys.OpenAI, "", cfg.Ai.EmbeddingModel, entity.EmbeddingDimension), nil
	case "hash":
		return embedding.NewHashProvider(entity.EmbeddingDimension), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Ai.EmbeddingProvider)
	}
}

// newVectorCache uses Redis when configured and reachable, otherwise an in-process cache.
// A zero TTL disables caching.
func newVectorCache(cfg *config.Config, log logger.ILogger) embedding.VectorCache {
	if cfg.Ai.EmbeddingCacheTTL <= 0 {
		return nil
	}
	if cfg.App.RedisURL == "" {
		return embedding.NewMemoryCache(cfg.Ai.EmbeddingCacheTTL)
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Warn("BOOTSTRAP", "Failed to parse Redis URL, using direct Addr", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{Addr: cfg.App.RedisURL}
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Warn("BOOTSTRAP", "Redis unreachable, using in-process vector cache", map[string]interface{}{"error": err.Error()})
		_ = rdb.Close()
		return embedding.NewMemoryCache(cfg.Ai.EmbeddingCacheTTL)
	}
	return embedding.NewRedisCache(rdb, cfg.Ai.EmbeddingCacheTTL)
}

func NewLLMProvider(cfg *config.Config) (llm.LLMProvider, error) {
	return factory.NewLLMProvider(factory.Config{
		Provider: cfg.Ai.LLMProvider,
		Model:    cfg.Ai.LLMModel,
		BaseURL:  cfg.Ai.LLMBaseURL,
		APIKey:   cfg.APIKeyFor(cfg.Ai.LLMProvider),
	})
}
