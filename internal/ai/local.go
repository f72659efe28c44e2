package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"course-material-service/models"

	"github.com/sony/gobreaker"
)

// LocalEmbedder talks to a self-hosted embedding server (text-embeddings-
// inference style API): POST /embed {"inputs": [...]} -> [[...], ...].
// The vector dimension comes from configuration since the server does not
// advertise it.
type LocalEmbedder struct {
	baseURL    string
	model      string
	dimension  int
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

func NewLocalEmbedder(baseURL, model string, dimension, timeoutSec int) *LocalEmbedder {
	if timeoutSec <= 0 {
		timeoutSec = 60
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "LocalEmbeddings",
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
	})

	return &LocalEmbedder{
		baseURL:   baseURL,
		model:     model,
		dimension: dimension,
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutSec) * time.Second,
		},
		breaker: breaker,
	}
}

type localEmbedRequest struct {
	Inputs []string `json:"inputs"`
	Model  string   `json:"model,omitempty"`
}

func (e *LocalEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	body, err := json.Marshal(localEmbedRequest{Inputs: texts, Model: e.model})
	if err != nil {
		return nil, &models.EmbeddingError{Reason: "failed to encode embed request", Err: err}
	}

	result, err := e.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embed", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := e.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			return nil, fmt.Errorf("embedding server returned %d: %s", resp.StatusCode, payload)
		}

		var vectors [][]float32
		if err := json.NewDecoder(resp.Body).Decode(&vectors); err != nil {
			return nil, fmt.Errorf("failed to decode embeddings: %w", err)
		}
		return vectors, nil
	})
	if err != nil {
		return nil, &models.EmbeddingError{Reason: "local batch embedding failed", Err: err}
	}

	vectors := result.([][]float32)
	if len(vectors) != len(texts) {
		return nil, &models.EmbeddingError{Reason: "embedding server returned wrong number of vectors"}
	}
	for _, vec := range vectors {
		if len(vec) != e.dimension {
			return nil, &models.EmbeddingError{
				Reason: fmt.Sprintf("embedding server returned dimension %d, expected %d", len(vec), e.dimension),
			}
		}
	}
	return vectors, nil
}

func (e *LocalEmbedder) Dimension() int {
	return e.dimension
}
