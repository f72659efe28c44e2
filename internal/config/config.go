package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI string
	DBName   string

	Port        string
	GinMode     string
	CORSOrigins []string

	RateLimitReqs   int
	RateLimitWindow int // seconds

	// Redis (asynq broker + token revocation list)
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// S3 blob store
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSRegion          string
	S3BucketName       string

	// Qdrant vector store
	QdrantHost           string
	QdrantPort           int
	QdrantAPIKey         string
	QdrantUseTLS         bool
	QdrantCollectionName string

	// Embeddings
	EmbeddingProvider  string // "local" or "openai"
	EmbeddingModel     string
	OpenAIAPIKey       string
	LocalEmbedderURL   string
	LocalEmbedderDim   int
	EmbedderTimeoutSec int

	// Ingestion pipeline
	ChunkSize    int
	ChunkOverlap int
	MaxFileSize  int64
	AllowedTypes []string

	// Telemetry
	OTLPEndpoint   string
	TracingEnabled bool
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017/course_materials"),
		DBName:   getEnv("DB_NAME", "course_materials"),

		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080"), ","),

		RateLimitReqs:   getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow: getEnvInt("RATE_LIMIT_WINDOW", 60),

		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		S3BucketName:       getEnv("S3_BUCKET_NAME", ""),

		QdrantHost:           getEnv("QDRANT_HOST", "localhost"),
		QdrantPort:           getEnvInt("QDRANT_PORT", 6334),
		QdrantAPIKey:         getEnv("QDRANT_API_KEY", ""),
		QdrantUseTLS:         getEnvBool("QDRANT_USE_TLS", false),
		QdrantCollectionName: getEnv("QDRANT_COLLECTION_NAME", "course_documents"),

		EmbeddingProvider:  getEnv("EMBEDDING_PROVIDER", "local"),
		EmbeddingModel:     getEnv("EMBEDDING_MODEL", "sentence-transformers/all-MiniLM-L6-v2"),
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		LocalEmbedderURL:   getEnv("LOCAL_EMBEDDER_URL", "http://localhost:8081"),
		LocalEmbedderDim:   getEnvInt("LOCAL_EMBEDDER_DIMENSION", 384),
		EmbedderTimeoutSec: getEnvInt("EMBEDDER_TIMEOUT_SECONDS", 60),

		ChunkSize:    getEnvInt("CHUNK_SIZE", 1000),
		ChunkOverlap: getEnvInt("CHUNK_OVERLAP", 150),
		MaxFileSize:  getEnvInt64("MAX_FILE_SIZE", 104857600), // 100MB
		AllowedTypes: strings.Split(getEnv("ALLOWED_FILE_TYPES", "application/pdf"), ","),

		OTLPEndpoint:   getEnv("OTLP_ENDPOINT", "localhost:4317"),
		TracingEnabled: getEnvBool("TRACING_ENABLED", false),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("CHUNK_SIZE must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 {
		return fmt.Errorf("CHUNK_OVERLAP cannot be negative, got %d", c.ChunkOverlap)
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("CHUNK_OVERLAP (%d) must be less than CHUNK_SIZE (%d)", c.ChunkOverlap, c.ChunkSize)
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("MAX_FILE_SIZE must be positive, got %d", c.MaxFileSize)
	}
	switch c.EmbeddingProvider {
	case "local", "openai":
	default:
		return fmt.Errorf("EMBEDDING_PROVIDER must be \"local\" or \"openai\", got %q", c.EmbeddingProvider)
	}
	if c.EmbeddingProvider == "openai" && c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required when EMBEDDING_PROVIDER=openai")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
