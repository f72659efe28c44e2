package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"course-material-service/internal/config"
	"course-material-service/internal/logger"
	"course-material-service/internal/telemetry"

	"github.com/hibiken/asynq"
)

const (
	TaskIngestionProcess = "ingestion:process"
)

// RedisConnOpt builds the asynq broker connection from config, accepting the
// same URL-or-host:port forms as the shared go-redis client so both always
// point at the same instance.
func RedisConnOpt(cfg *config.Config) (asynq.RedisConnOpt, error) {
	if strings.HasPrefix(cfg.RedisURL, "redis://") || strings.HasPrefix(cfg.RedisURL, "rediss://") {
		return asynq.ParseRedisURI(cfg.RedisURL)
	}
	return asynq.RedisClientOpt{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}

type IngestionProcessPayload struct {
	JobID string `json:"job_id"`
}

// NewIngestionProcessTask enqueues one job execution. MaxRetry is zero on
// purpose: retry lives in the job state machine, not the queue, so a failed
// run stays FAILED until a retry request re-enqueues it.
func NewIngestionProcessTask(jobID string) (*asynq.Task, error) {
	payload, err := json.Marshal(IngestionProcessPayload{JobID: jobID})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskIngestionProcess,
		payload,
		asynq.MaxRetry(0),
		asynq.Timeout(30*time.Minute),
		asynq.Queue("ingestion"),
	), nil
}

// JobProcessor runs one job end to end.
type JobProcessor interface {
	ProcessJob(ctx context.Context, jobID string) error
}

// TaskProcessor adapts the ingestion worker to asynq handlers.
type TaskProcessor struct {
	worker  JobProcessor
	metrics *telemetry.Metrics
}

func NewTaskProcessor(worker JobProcessor, metrics *telemetry.Metrics) *TaskProcessor {
	return &TaskProcessor{worker: worker, metrics: metrics}
}

func (p *TaskProcessor) ProcessIngestion(ctx context.Context, t *asynq.Task) error {
	var payload IngestionProcessPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal failed: %w", asynq.SkipRetry)
	}

	logger.Info("ingestion task received", "job_id", payload.JobID)

	start := time.Now()
	err := p.worker.ProcessJob(ctx, payload.JobID)
	if p.metrics != nil {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		p.metrics.RecordIngestionJob(outcome, time.Since(start).Seconds())
	}
	if err != nil {
		logger.Error("ingestion task failed", "job_id", payload.JobID, "error", err.Error())
		return err
	}
	return nil
}
