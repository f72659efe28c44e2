package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// IngestionMode selects which of a course's documents a job covers.
type IngestionMode string

const (
	IngestionModeNew      IngestionMode = "NEW"
	IngestionModeSelected IngestionMode = "SELECTED"
	IngestionModeAll      IngestionMode = "ALL"
	IngestionModeReingest IngestionMode = "REINGEST"
)

// IngestionStatus is the job state machine state.
//
// QUEUED -> RUNNING -> COMPLETED
// QUEUED|RUNNING -> CANCELED
// RUNNING -> FAILED -> QUEUED (retry, bounded by max_retries)
type IngestionStatus string

const (
	IngestionStatusQueued    IngestionStatus = "QUEUED"
	IngestionStatusRunning   IngestionStatus = "RUNNING"
	IngestionStatusCompleted IngestionStatus = "COMPLETED"
	IngestionStatusFailed    IngestionStatus = "FAILED"
	IngestionStatusCanceled  IngestionStatus = "CANCELED"
)

// IsTerminal reports whether no further transitions are legal except the
// FAILED -> QUEUED retry edge.
func (s IngestionStatus) IsTerminal() bool {
	return s == IngestionStatusCompleted || s == IngestionStatusFailed || s == IngestionStatusCanceled
}

// IngestionJob is the durable record of an ingestion request.
type IngestionJob struct {
	JobID        string          `bson:"job_id" json:"job_id"`
	CourseCode   string          `bson:"course_code" json:"course_code"`
	Status       IngestionStatus `bson:"status" json:"status"`
	Mode         IngestionMode   `bson:"mode" json:"mode"`
	DocumentIDs  []string        `bson:"document_ids,omitempty" json:"document_ids,omitempty"`
	DocsTotal    int             `bson:"docs_total" json:"docs_total"`
	DocsDone     int             `bson:"docs_done" json:"docs_done"`
	VectorsMade  int             `bson:"vectors_created" json:"vectors_created"`
	CreatedAt    time.Time       `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `bson:"updated_at" json:"updated_at"`
	CreatedBy    string          `bson:"created_by" json:"created_by"`
	ErrorMessage string          `bson:"error_message,omitempty" json:"error_message,omitempty"`
	RetryCount   int             `bson:"retry_count" json:"retry_count"`
	MaxRetries   int             `bson:"max_retries" json:"max_retries"`
}

const (
	// MaxSelectedDocuments caps the explicit id list on SELECTED jobs.
	MaxSelectedDocuments = 1000

	// MaxRetriesLimit bounds the per-job retry budget.
	MaxRetriesLimit = 10

	// DefaultMaxRetries applies when a request omits max_retries.
	DefaultMaxRetries = 3
)

var (
	courseCodeRe = regexp.MustCompile(`^[A-Z0-9-]{2,20}$`)
	uuidRe       = regexp.MustCompile(`^[a-f0-9-]{36}$`)
)

// ValidationError marks a request that failed field validation (HTTP 422).
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// NormalizeCourseCode trims and upper-cases a course code, then validates it.
func NormalizeCourseCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "", &ValidationError{Reason: "course code cannot be empty"}
	}
	if !courseCodeRe.MatchString(code) {
		return "", &ValidationError{
			Reason: "course code must be 2-20 characters, containing only letters, numbers, and hyphens",
		}
	}
	return code, nil
}

// ValidateObjectID checks the 36-char UUID form used for document and job ids.
func ValidateObjectID(id string) error {
	if strings.TrimSpace(id) == "" {
		return &ValidationError{Reason: "id cannot be empty"}
	}
	if !uuidRe.MatchString(strings.ToLower(id)) {
		return &ValidationError{Reason: fmt.Sprintf("invalid ID format: %s", id)}
	}
	return nil
}

// StartIngestionRequest is the body of POST /ingestions/start.
type StartIngestionRequest struct {
	CourseCode  string        `json:"course_code"`
	Mode        IngestionMode `json:"mode"`
	DocumentIDs []string      `json:"document_ids,omitempty"`
	MaxRetries  *int          `json:"max_retries,omitempty"`
}

// Normalize validates the request in place and applies defaults.
func (r *StartIngestionRequest) Normalize() error {
	code, err := NormalizeCourseCode(r.CourseCode)
	if err != nil {
		return err
	}
	r.CourseCode = code

	if r.Mode == "" {
		r.Mode = IngestionModeNew
	}
	switch r.Mode {
	case IngestionModeNew, IngestionModeSelected, IngestionModeAll, IngestionModeReingest:
	default:
		return &ValidationError{Reason: fmt.Sprintf("unknown ingestion mode: %s", r.Mode)}
	}

	if len(r.DocumentIDs) > MaxSelectedDocuments {
		return &ValidationError{
			Reason: fmt.Sprintf("cannot process more than %d documents in a single job", MaxSelectedDocuments),
		}
	}
	for _, id := range r.DocumentIDs {
		if err := ValidateObjectID(id); err != nil {
			return &ValidationError{Reason: fmt.Sprintf("invalid document ID format: %s", id)}
		}
	}

	if r.MaxRetries == nil {
		def := DefaultMaxRetries
		r.MaxRetries = &def
	}
	if *r.MaxRetries < 0 {
		return &ValidationError{Reason: "max_retries cannot be negative"}
	}
	if *r.MaxRetries > MaxRetriesLimit {
		return &ValidationError{Reason: fmt.Sprintf("max_retries cannot exceed %d", MaxRetriesLimit)}
	}
	return nil
}

// JobIDRequest is the body of POST /ingestions/cancel and /ingestions/retry.
type JobIDRequest struct {
	JobID string `json:"job_id"`
}

// Normalize validates and canonicalizes the job id.
func (r *JobIDRequest) Normalize() error {
	r.JobID = strings.TrimSpace(r.JobID)
	if err := ValidateObjectID(r.JobID); err != nil {
		return &ValidationError{Reason: "job ID must be a valid UUID"}
	}
	return nil
}
