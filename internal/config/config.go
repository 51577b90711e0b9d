package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"rag-chat-be/internal/apperror"

	"github.com/joho/godotenv"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
	Rag      RagConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	RateLimitPerMinute int
	OtelEnabled        bool
	OtelEndpoint       string
}

type DatabaseConfig struct {
	Connection    string
	StorageDriver string // "postgres" or "memory"
}

type APIKeys struct {
	GoogleGemini string
	Jina         string
	OpenAI       string
	HuggingFace  string
}

type AIConfig struct {
	EmbeddingProvider    string // "ollama", "gemini", "jina", "openai" or "hash"
	EmbeddingModel       string
	EmbeddingBaseURL     string
	EmbeddingCacheTTL    time.Duration
	LLMProvider          string // "ollama", "gemini", "openai" or "huggingface"
	LLMModel             string
	LLMBaseURL           string
	AssistantInstruction string
	GenerationTimeout    time.Duration
}

type RagConfig struct {
	ChunkWords   int
	TopK         int
	HistoryLimit int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 10),
			OtelEnabled:        getEnv("OTEL_ENABLED", "false") == "true",
			OtelEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
		Database: DatabaseConfig{
			Connection:    getEnv("DB_CONNECTION_STRING", ""),
			StorageDriver: getEnv("STORAGE_DRIVER", StorageDriverPostgres),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			Jina:         getEnv("JINA_API_KEY", ""),
			OpenAI:       getEnv("OPENAI_API_KEY", ""),
			HuggingFace:  getEnv("HUGGINGFACE_API_KEY", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider:    getEnv("EMBEDDING_PROVIDER", "ollama"),
			EmbeddingModel:       getEnv("EMBEDDING_MODEL", ""),
			EmbeddingBaseURL:     getEnv("EMBEDDING_BASE_URL", getEnv("OLLAMA_BASE_URL", "http://localhost:11434")),
			EmbeddingCacheTTL:    getEnvAsDuration("EMBEDDING_CACHE_TTL", 10*time.Minute),
			LLMProvider:          getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:             getEnv("LLM_MODEL", ""),
			LLMBaseURL:           getEnv("LLM_BASE_URL", ""),
			AssistantInstruction: getEnv("ASSISTANT_INSTRUCTION", ""),
			GenerationTimeout:    getEnvAsDuration("GENERATION_TIMEOUT", 60*time.Second),
		},
		Rag: RagConfig{
			ChunkWords:   getEnvAsInt("CHUNK_WORDS", 512),
			TopK:         getEnvAsInt("RETRIEVAL_TOP_K", 5),
			HistoryLimit: getEnvAsInt("HISTORY_LIMIT", 50),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// Validate fails fast on settings that would only surface on the first request.
func (c *Config) Validate() error {
	const op = "config.validate"

	switch c.Database.StorageDriver {
	case StorageDriverPostgres:
		if c.Database.Connection == "" {
			return apperror.Newf(apperror.KindConfiguration, op, "DB_CONNECTION_STRING is required for the postgres storage driver")
		}
	case StorageDriverMemory:
	default:
		return apperror.Newf(apperror.KindConfiguration, op, "unknown STORAGE_DRIVER %q", c.Database.StorageDriver)
	}

	if err := c.requireKey("EMBEDDING_PROVIDER", c.Ai.EmbeddingProvider); err != nil {
		return apperror.New(apperror.KindConfiguration, op, err)
	}
	if c.Ai.EmbeddingProvider == "huggingface" {
		return apperror.Newf(apperror.KindConfiguration, op, "huggingface is not an embedding provider")
	}
	if err := c.requireKey("LLM_PROVIDER", c.Ai.LLMProvider); err != nil {
		return apperror.New(apperror.KindConfiguration, op, err)
	}
	if c.Ai.LLMProvider == "jina" || c.Ai.LLMProvider == "hash" {
		return apperror.Newf(apperror.KindConfiguration, op, "%s is not an LLM provider", c.Ai.LLMProvider)
	}

	if c.Rag.ChunkWords <= 0 || c.Rag.TopK <= 0 {
		return apperror.Newf(apperror.KindConfiguration, op, "CHUNK_WORDS and RETRIEVAL_TOP_K must be positive")
	}
	if c.Ai.GenerationTimeout <= 0 {
		return apperror.Newf(apperror.KindConfiguration, op, "GENERATION_TIMEOUT must be positive")
	}
	return nil
}

// APIKeyFor returns the credential used by the named provider; empty for local ones.
func (c *Config) APIKeyFor(provider string) string {
	switch provider {
	case "gemini":
		return c.Keys.GoogleGemini
	case "jina":
		return c.Keys.Jina
	case "openai":
		return c.Keys.OpenAI
	case "huggingface":
		return c.Keys.HuggingFace
	default:
		return ""
	}
}

func (c *Config) requireKey(setting, provider string) error {
	switch provider {
	case "ollama", "hash":
		return nil
	case "gemini", "jina", "openai", "huggingface":
		if c.APIKeyFor(provider) == "" {
			return fmt.Errorf("%s=%s requires an API key", setting, provider)
		}
		return nil
	default:
		return fmt.Errorf("unknown %s %q", setting, provider)
	}
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS on commas.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.App.CorsAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	// plain integers are seconds
	if secs, err := strconv.Atoi(strValue); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
