package services

import (
	"context"
	"fmt"
	"time"

	"course-material-service/internal/logger"
	"course-material-service/internal/repositories"
	"course-material-service/models"

	"github.com/google/uuid"
)

// IngestionService implements the ingestion job submission surface:
// create, get, list, cancel, retry. Processing itself is the
// IngestionWorker's job.
type IngestionService struct {
	jobs    repositories.JobRepository
	docs    repositories.DocumentRepository
	courses repositories.CourseRepository
}

func NewIngestionService(jobs repositories.JobRepository, docs repositories.DocumentRepository, courses repositories.CourseRepository) *IngestionService {
	return &IngestionService{jobs: jobs, docs: docs, courses: courses}
}

// Create registers a QUEUED job. docs_total is fixed here, from the
// creation-time selector resolution; the worker re-resolves the set at claim
// time but never rewrites docs_total.
func (s *IngestionService) Create(ctx context.Context, req *models.StartIngestionRequest, createdBy string) (*models.IngestionJob, error) {
	course, err := s.courses.FindByCode(ctx, req.CourseCode)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, &models.CourseNotFoundError{Code: req.CourseCode}
	}

	documents, err := s.docs.FindForIngestion(ctx, req.CourseCode, req.Mode, req.DocumentIDs)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	job := &models.IngestionJob{
		JobID:       uuid.NewString(),
		CourseCode:  req.CourseCode,
		Status:      models.IngestionStatusQueued,
		Mode:        req.Mode,
		DocumentIDs: req.DocumentIDs,
		DocsTotal:   len(documents),
		CreatedAt:   now,
		UpdatedAt:   now,
		CreatedBy:   createdBy,
		MaxRetries:  *req.MaxRetries,
	}

	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}

	logger.Info("ingestion job created",
		"job_id", job.JobID, "course_code", job.CourseCode,
		"mode", job.Mode, "docs_total", job.DocsTotal, "created_by", createdBy)
	return job, nil
}

func (s *IngestionService) Get(ctx context.Context, jobID string) (*models.IngestionJob, error) {
	job, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, &models.IngestionJobNotFoundError{JobID: jobID}
	}
	return job, nil
}

func (s *IngestionService) List(ctx context.Context, courseCode string) ([]models.IngestionJob, error) {
	return s.jobs.ListByCourse(ctx, courseCode)
}

// Cancel flips a QUEUED or RUNNING job to CANCELED. The running orchestrator
// observes this cooperatively; already-written progress is frozen, not
// rolled back.
func (s *IngestionService) Cancel(ctx context.Context, jobID, actor string) (*models.IngestionJob, error) {
	job, err := s.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status.IsTerminal() {
		return nil, &models.IngestionJobError{Reason: fmt.Sprintf("Cannot cancel job with status %s", job.Status)}
	}

	canceled, err := s.jobs.Cancel(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !canceled {
		// Lost a race against a terminal transition; report the state we see now.
		job, err = s.Get(ctx, jobID)
		if err != nil {
			return nil, err
		}
		return nil, &models.IngestionJobError{Reason: fmt.Sprintf("Cannot cancel job with status %s", job.Status)}
	}

	logger.Info("ingestion job canceled", "job_id", jobID, "actor", actor)
	return s.Get(ctx, jobID)
}

// Retry re-queues a FAILED job, bounded by max_retries. CANCELED and
// COMPLETED are terminal and never retried.
func (s *IngestionService) Retry(ctx context.Context, jobID string) (*models.IngestionJob, error) {
	job, err := s.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != models.IngestionStatusFailed {
		return nil, &models.IngestionJobError{
			Reason: fmt.Sprintf("Can only retry failed jobs. Current status: %s", job.Status),
		}
	}
	if job.RetryCount >= job.MaxRetries {
		return nil, &models.IngestionJobError{
			Reason: fmt.Sprintf("Job has already been retried %d times (max: %d)", job.RetryCount, job.MaxRetries),
		}
	}

	retried, err := s.jobs.Retry(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !retried {
		// The precondition moved between the read and the CAS.
		job, err = s.Get(ctx, jobID)
		if err != nil {
			return nil, err
		}
		if job.Status != models.IngestionStatusFailed {
			return nil, &models.IngestionJobError{
				Reason: fmt.Sprintf("Can only retry failed jobs. Current status: %s", job.Status),
			}
		}
		return nil, &models.IngestionJobError{
			Reason: fmt.Sprintf("Job has already been retried %d times (max: %d)", job.RetryCount, job.MaxRetries),
		}
	}

	job, err = s.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	logger.Info("ingestion job retried",
		"job_id", jobID, "retry_count", job.RetryCount, "max_retries", job.MaxRetries)
	return job, nil
}
