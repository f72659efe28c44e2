package services

import (
	"context"
	"fmt"

	"course-material-service/internal/logger"
	"course-material-service/internal/repositories"
	"course-material-service/internal/storage"
	"course-material-service/internal/vectorstore"
	"course-material-service/models"
)

// errJobCanceled is the sentinel a cancellation checkpoint returns. The
// orchestrator recognizes it by identity and stops without writing a terminal
// status: the cancel CAS already moved the job to CANCELED.
var errJobCanceled = &models.IngestionJobError{Reason: "Job was canceled during document processing"}

// IngestionWorker executes claimed jobs: download, extract, chunk, embed,
// index, one document at a time. A per-document failure marks that document
// FAILED and the job moves on; only failures outside the document loop fail
// the job itself.
type IngestionWorker struct {
	jobs     repositories.JobRepository
	docs     repositories.DocumentRepository
	blob     storage.BlobStore
	vectors  vectorstore.VectorStore
	embedder Embedder
	metrics  DocumentMetrics

	chunkSize    int
	chunkOverlap int

	// extract is ExtractAndChunk unless a test swaps it out.
	extract func(content []byte, chunkSize, overlap int) ([]string, error)
}

// Embedder turns text chunks into vectors. Mirrors internal/ai.Embedder so the
// worker does not import the provider package.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// DocumentMetrics counts per-document pipeline outcomes. telemetry.Metrics
// satisfies it; a nil value disables recording.
type DocumentMetrics interface {
	RecordDocumentIngested(status string, vectors int64)
}

func NewIngestionWorker(
	jobs repositories.JobRepository,
	docs repositories.DocumentRepository,
	blob storage.BlobStore,
	vectors vectorstore.VectorStore,
	embedder Embedder,
	metrics DocumentMetrics,
	chunkSize, chunkOverlap int,
) *IngestionWorker {
	return &IngestionWorker{
		jobs:         jobs,
		docs:         docs,
		blob:         blob,
		vectors:      vectors,
		embedder:     embedder,
		metrics:      metrics,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		extract:      ExtractAndChunk,
	}
}

// ProcessJob claims and runs one job to a terminal state. Losing the claim is
// not an error: another worker owns the job, or it was canceled while queued.
func (w *IngestionWorker) ProcessJob(ctx context.Context, jobID string) error {
	claimed, err := w.jobs.Claim(ctx, jobID)
	if err != nil {
		return err
	}
	if !claimed {
		w.logClaimLoss(ctx, jobID)
		return nil
	}

	if err := w.vectors.EnsureCollection(ctx, w.embedder.Dimension()); err != nil {
		return w.failJob(ctx, jobID, err)
	}

	// The claim succeeded, so from here on every fatal error must still land
	// the job in a terminal state; returning early would strand it in RUNNING.
	job, err := w.jobs.Get(ctx, jobID)
	if err != nil {
		return w.failJob(ctx, jobID, err)
	}
	if job == nil {
		return w.failJob(ctx, jobID, &models.IngestionJobNotFoundError{JobID: jobID})
	}

	documents, err := w.docs.FindForIngestion(ctx, job.CourseCode, job.Mode, job.DocumentIDs)
	if err != nil {
		return w.failJob(ctx, jobID, err)
	}

	logger.Info("ingestion job started",
		"job_id", jobID, "course_code", job.CourseCode,
		"mode", job.Mode, "documents", len(documents))

	for i := range documents {
		doc := &documents[i]

		canceled, err := w.jobs.IsCanceled(ctx, jobID)
		if err != nil {
			return w.failJob(ctx, jobID, err)
		}
		if canceled {
			logger.Info("ingestion job canceled mid-run", "job_id", jobID, "docs_done", i)
			return nil
		}

		vectorsMade, err := w.processDocument(ctx, jobID, doc)
		if err == errJobCanceled {
			logger.Info("ingestion job canceled mid-document",
				"job_id", jobID, "document_id", doc.DocumentID)
			return nil
		}
		if err != nil {
			logger.Warn("document ingestion failed",
				"job_id", jobID, "document_id", doc.DocumentID,
				"filename", doc.Filename, "error", err.Error())
			if statusErr := w.docs.SetStatus(ctx, doc.DocumentID, models.DocumentStatusFailed); statusErr != nil {
				logger.Warn("document status update failed",
					"document_id", doc.DocumentID, "error", statusErr.Error())
			}
			w.recordDocument(models.DocumentStatusFailed, 0)
			continue
		}

		if err := w.docs.SetStatus(ctx, doc.DocumentID, models.DocumentStatusIngested); err != nil {
			logger.Warn("document status update failed",
				"document_id", doc.DocumentID, "error", err.Error())
		}
		w.recordDocument(models.DocumentStatusIngested, int64(vectorsMade))
		if err := w.jobs.IncrementProgress(ctx, jobID, 1, vectorsMade); err != nil {
			logger.Warn("job progress update failed", "job_id", jobID, "error", err.Error())
		}
	}

	completed, err := w.jobs.SetTerminalFromRunning(ctx, jobID, models.IngestionStatusCompleted, "")
	if err != nil {
		return err
	}
	if !completed {
		// A concurrent cancel won the terminal write; leave it alone.
		logger.Info("ingestion job finished but no longer RUNNING", "job_id", jobID)
		return nil
	}

	logger.Info("ingestion job completed", "job_id", jobID, "course_code", job.CourseCode)
	return nil
}

// processDocument runs the full pipeline for one document and returns the
// number of vectors indexed. Cancellation checkpoints sit between stages so a
// cancel never interrupts a stage mid-write.
func (w *IngestionWorker) processDocument(ctx context.Context, jobID string, doc *models.Document) (int, error) {
	content, err := w.blob.Download(ctx, doc.S3Key)
	if err != nil {
		return 0, err
	}
	if err := w.checkpoint(ctx, jobID); err != nil {
		return 0, err
	}

	chunks, err := w.extract(content, w.chunkSize, w.chunkOverlap)
	if err != nil {
		return 0, err
	}
	if len(chunks) == 0 {
		// Nothing to index; the document still counts as ingested.
		logger.Info("document produced no text",
			"job_id", jobID, "document_id", doc.DocumentID, "filename", doc.Filename)
		return 0, nil
	}
	if err := w.checkpoint(ctx, jobID); err != nil {
		return 0, err
	}

	vectors, err := w.embedder.EmbedBatch(ctx, chunks)
	if err != nil {
		return 0, err
	}
	if err := w.checkpoint(ctx, jobID); err != nil {
		return 0, err
	}

	// Replace, don't append: stale vectors from a previous ingestion of this
	// document must not survive a re-ingest.
	if err := w.vectors.DeleteByDocument(ctx, doc.DocumentID); err != nil {
		return 0, err
	}

	metadata := map[string]string{
		"filename":    doc.Filename,
		"uploaded_by": doc.UploadedBy,
	}
	stored, err := w.vectors.StoreDocumentChunks(ctx, doc.CourseCode, doc.DocumentID, vectors, chunks, metadata)
	if err != nil {
		// The old vectors are already gone; clear any partial upsert so the
		// document is absent rather than half-indexed.
		if cleanupErr := w.vectors.DeleteByDocument(ctx, doc.DocumentID); cleanupErr != nil {
			logger.Warn("partial vector cleanup failed",
				"document_id", doc.DocumentID, "error", cleanupErr.Error())
		}
		return 0, err
	}

	return stored, nil
}

func (w *IngestionWorker) recordDocument(status models.DocumentStatus, vectors int64) {
	if w.metrics != nil {
		w.metrics.RecordDocumentIngested(string(status), vectors)
	}
}

// checkpoint is the cooperative cancellation read between pipeline stages.
func (w *IngestionWorker) checkpoint(ctx context.Context, jobID string) error {
	canceled, err := w.jobs.IsCanceled(ctx, jobID)
	if err != nil {
		return err
	}
	if canceled {
		return errJobCanceled
	}
	return nil
}

// failJob records a job-fatal error and moves the job to FAILED, unless a
// concurrent cancel got there first.
func (w *IngestionWorker) failJob(ctx context.Context, jobID string, cause error) error {
	failed, err := w.jobs.SetTerminalFromRunning(ctx, jobID, models.IngestionStatusFailed, cause.Error())
	if err != nil {
		return fmt.Errorf("marking job %s failed: %w (original error: %v)", jobID, err, cause)
	}
	if !failed {
		logger.Info("job-fatal error on a job no longer RUNNING",
			"job_id", jobID, "error", cause.Error())
	} else {
		logger.Error("ingestion job failed", "job_id", jobID, "error", cause.Error())
	}
	return nil
}

func (w *IngestionWorker) logClaimLoss(ctx context.Context, jobID string) {
	job, err := w.jobs.Get(ctx, jobID)
	switch {
	case err != nil:
		logger.Warn("claim lost, status lookup failed", "job_id", jobID, "error", err.Error())
	case job == nil:
		logger.Warn("claim lost, job not found", "job_id", jobID)
	default:
		logger.Info("claim lost", "job_id", jobID, "status", job.Status)
	}
}
