package ai

import (
	"context"

	"course-material-service/internal/config"
	"course-material-service/models"
)

// Embedder turns text into fixed-dimension float vectors. Batch calls
// preserve input order and empty input returns empty output. Implementations
// must be safe for concurrent use from multiple orchestrator tasks.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// NewEmbedder builds the configured embedder. Called once at startup; the
// instance is injected into orchestrator tasks.
func NewEmbedder(cfg *config.Config) (Embedder, error) {
	switch cfg.EmbeddingProvider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, &models.EmbeddingError{Reason: "OpenAI API key is required for OpenAI embeddings"}
		}
		return NewOpenAIEmbedder(cfg.OpenAIAPIKey, cfg.EmbeddingModel), nil
	default:
		return NewLocalEmbedder(cfg.LocalEmbedderURL, cfg.EmbeddingModel, cfg.LocalEmbedderDim, cfg.EmbedderTimeoutSec), nil
	}
}
