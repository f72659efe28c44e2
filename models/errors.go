package models

import "fmt"

// StorageOp identifies which blob store operation failed.
type StorageOp string

const (
	StorageOpUpload   StorageOp = "upload"
	StorageOpDownload StorageOp = "download"
	StorageOpDelete   StorageOp = "delete"
	StorageOpURL      StorageOp = "url"
)

// StorageError wraps a blob store failure. Callers must not treat these as
// transient without an explicit retry policy.
type StorageError struct {
	Op  StorageOp
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed for key %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// PDFExtractionError covers both parse failures and invalid chunk parameters.
type PDFExtractionError struct {
	Reason string
	Err    error
}

func (e *PDFExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("pdf extraction failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("pdf extraction failed: %s", e.Reason)
}

func (e *PDFExtractionError) Unwrap() error { return e.Err }

// EmbeddingError is an embedder failure; the pipeline treats it per-document.
type EmbeddingError struct {
	Reason string
	Err    error
}

func (e *EmbeddingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("embedding failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("embedding failed: %s", e.Reason)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// VectorStoreError is a vector store failure.
type VectorStoreError struct {
	Reason string
	Err    error
}

func (e *VectorStoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("vector store error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("vector store error: %s", e.Reason)
}

func (e *VectorStoreError) Unwrap() error { return e.Err }

// IngestionJobError marks an illegal state transition, missing required
// input, or cancellation observed during processing.
type IngestionJobError struct {
	Reason string
}

func (e *IngestionJobError) Error() string { return e.Reason }

// IngestionJobNotFoundError reports an unknown job id.
type IngestionJobNotFoundError struct {
	JobID string
}

func (e *IngestionJobNotFoundError) Error() string {
	return fmt.Sprintf("ingestion job %s not found", e.JobID)
}

// CourseNotFoundError reports a job or upload against an unknown course.
type CourseNotFoundError struct {
	Code string
}

func (e *CourseNotFoundError) Error() string {
	return fmt.Sprintf("course with code %s not found", e.Code)
}

// DocumentNotFoundError reports an unknown document id.
type DocumentNotFoundError struct {
	DocumentID string
}

func (e *DocumentNotFoundError) Error() string {
	return fmt.Sprintf("document with ID %s not found", e.DocumentID)
}
