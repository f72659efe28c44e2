package ai

import (
	"context"
	"log"
	"strings"
	"time"

	"course-material-service/models"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// OpenAIEmbedder calls the OpenAI embeddings API. Requests go through a
// circuit breaker and a client-side rate limiter so a degraded upstream
// fails fast instead of stalling every in-flight job.
type OpenAIEmbedder struct {
	client    *openai.Client
	model     string
	dimension int
	breaker   *gobreaker.CircuitBreaker
	limiter   *rate.Limiter
}

func NewOpenAIEmbedder(apiKey, model string) *OpenAIEmbedder {
	dimension := 3072
	if strings.Contains(model, "3-small") || strings.Contains(model, "ada-002") {
		dimension = 1536
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "OpenAIEmbeddings",
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Printf("Circuit breaker %s: %s -> %s", name, from, to)
		},
	})

	return &OpenAIEmbedder{
		client:    openai.NewClient(apiKey),
		model:     model,
		dimension: dimension,
		breaker:   breaker,
		limiter:   rate.NewLimiter(rate.Limit(5), 10), // 5 req/s sustained
	}
}

func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return nil, &models.EmbeddingError{Reason: "rate limiter wait aborted", Err: err}
	}

	result, err := e.breaker.Execute(func() (interface{}, error) {
		resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: texts,
			Model: openai.EmbeddingModel(e.model),
		})
		if err != nil {
			return nil, err
		}
		vectors := make([][]float32, len(resp.Data))
		for i, d := range resp.Data {
			vectors[i] = d.Embedding
		}
		return vectors, nil
	})
	if err != nil {
		return nil, &models.EmbeddingError{Reason: "OpenAI batch embedding failed", Err: err}
	}

	vectors := result.([][]float32)
	if len(vectors) != len(texts) {
		return nil, &models.EmbeddingError{Reason: "OpenAI returned wrong number of embeddings"}
	}
	return vectors, nil
}

func (e *OpenAIEmbedder) Dimension() int {
	return e.dimension
}
