package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"course-material-service/internal/vectorstore"
	"course-material-service/models"
)

// fakeJobRepo is an in-memory JobRepository with the same atomic-compare
// semantics as the Mongo implementation.
type fakeJobRepo struct {
	mu     sync.Mutex
	jobs   map[string]*models.IngestionJob
	getErr error
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: make(map[string]*models.IngestionJob)}
}

func (r *fakeJobRepo) Create(_ context.Context, job *models.IngestionJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[job.JobID]; ok {
		return fmt.Errorf("duplicate job_id %s", job.JobID)
	}
	copied := *job
	r.jobs[job.JobID] = &copied
	return nil
}

func (r *fakeJobRepo) Get(_ context.Context, jobID string) (*models.IngestionJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	job, ok := r.jobs[jobID]
	if !ok {
		return nil, nil
	}
	copied := *job
	return &copied, nil
}

func (r *fakeJobRepo) ListByCourse(_ context.Context, courseCode string) ([]models.IngestionJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.IngestionJob{}
	for _, job := range r.jobs {
		if job.CourseCode == courseCode {
			out = append(out, *job)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeJobRepo) Claim(_ context.Context, jobID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[jobID]
	if !ok || job.Status != models.IngestionStatusQueued {
		return false, nil
	}
	job.Status = models.IngestionStatusRunning
	job.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (r *fakeJobRepo) IsCanceled(_ context.Context, jobID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[jobID]
	return ok && job.Status == models.IngestionStatusCanceled, nil
}

func (r *fakeJobRepo) IncrementProgress(_ context.Context, jobID string, docsDelta, vectorsDelta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job, ok := r.jobs[jobID]; ok {
		job.DocsDone += docsDelta
		job.VectorsMade += vectorsDelta
		job.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (r *fakeJobRepo) SetTerminalFromRunning(_ context.Context, jobID string, status models.IngestionStatus, errorMessage string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[jobID]
	if !ok || job.Status != models.IngestionStatusRunning {
		return false, nil
	}
	job.Status = status
	if status == models.IngestionStatusFailed {
		job.ErrorMessage = errorMessage
	}
	job.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (r *fakeJobRepo) Cancel(_ context.Context, jobID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[jobID]
	if !ok {
		return false, nil
	}
	if job.Status != models.IngestionStatusQueued && job.Status != models.IngestionStatusRunning {
		return false, nil
	}
	job.Status = models.IngestionStatusCanceled
	job.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (r *fakeJobRepo) Retry(_ context.Context, jobID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[jobID]
	if !ok || job.Status != models.IngestionStatusFailed || job.RetryCount >= job.MaxRetries {
		return false, nil
	}
	job.Status = models.IngestionStatusQueued
	job.ErrorMessage = ""
	job.RetryCount++
	job.UpdatedAt = time.Now().UTC()
	return true, nil
}

// setStatus force-sets a status, bypassing transition rules, for test setup.
func (r *fakeJobRepo) setStatus(jobID string, status models.IngestionStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job, ok := r.jobs[jobID]; ok {
		job.Status = status
	}
}

// fakeMetrics records per-document outcome counts.
type fakeMetrics struct {
	mu       sync.Mutex
	statuses []string
	vectors  int64
}

func (m *fakeMetrics) RecordDocumentIngested(status string, vectors int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses = append(m.statuses, status)
	m.vectors += vectors
}

// fakeDocRepo is an in-memory DocumentRepository.
type fakeDocRepo struct {
	mu   sync.Mutex
	docs map[string]*models.Document
}

func newFakeDocRepo() *fakeDocRepo {
	return &fakeDocRepo{docs: make(map[string]*models.Document)}
}

func (r *fakeDocRepo) Insert(_ context.Context, doc *models.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *doc
	r.docs[doc.DocumentID] = &copied
	return nil
}

func (r *fakeDocRepo) FindByID(_ context.Context, documentID string) (*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[documentID]
	if !ok {
		return nil, nil
	}
	copied := *doc
	return &copied, nil
}

func (r *fakeDocRepo) FindByCourse(_ context.Context, courseCode string) ([]models.Document, error) {
	return r.find(func(d *models.Document) bool { return d.CourseCode == courseCode })
}

func (r *fakeDocRepo) FindForIngestion(_ context.Context, courseCode string, mode models.IngestionMode, documentIDs []string) ([]models.Document, error) {
	switch mode {
	case models.IngestionModeNew:
		return r.find(func(d *models.Document) bool {
			return d.CourseCode == courseCode && d.Status == models.DocumentStatusUploaded
		})
	case models.IngestionModeSelected:
		if len(documentIDs) == 0 {
			return nil, &models.IngestionJobError{Reason: "Document IDs required for SELECTED mode"}
		}
		wanted := make(map[string]bool, len(documentIDs))
		for _, id := range documentIDs {
			wanted[id] = true
		}
		return r.find(func(d *models.Document) bool {
			return d.CourseCode == courseCode && wanted[d.DocumentID]
		})
	case models.IngestionModeAll:
		return r.find(func(d *models.Document) bool { return d.CourseCode == courseCode })
	case models.IngestionModeReingest:
		return r.find(func(d *models.Document) bool {
			return d.CourseCode == courseCode && d.Status == models.DocumentStatusIngested
		})
	default:
		return nil, &models.IngestionJobError{Reason: "Unknown ingestion mode: " + string(mode)}
	}
}

func (r *fakeDocRepo) SetStatus(_ context.Context, documentID string, status models.DocumentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if doc, ok := r.docs[documentID]; ok {
		doc.Status = status
	}
	return nil
}

func (r *fakeDocRepo) Delete(_ context.Context, documentID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[documentID]; !ok {
		return false, nil
	}
	delete(r.docs, documentID)
	return true, nil
}

func (r *fakeDocRepo) find(match func(*models.Document) bool) ([]models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Document{}
	for _, doc := range r.docs {
		if match(doc) {
			out = append(out, *doc)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UploadTimestamp.Equal(out[j].UploadTimestamp) {
			return out[i].UploadTimestamp.Before(out[j].UploadTimestamp)
		}
		return out[i].DocumentID < out[j].DocumentID
	})
	return out, nil
}

// fakeCourseRepo is an in-memory CourseRepository.
type fakeCourseRepo struct {
	mu      sync.Mutex
	courses map[string]*models.Course
}

func newFakeCourseRepo() *fakeCourseRepo {
	return &fakeCourseRepo{courses: make(map[string]*models.Course)}
}

func (r *fakeCourseRepo) Insert(_ context.Context, course *models.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *course
	r.courses[course.Code] = &copied
	return nil
}

func (r *fakeCourseRepo) FindByCode(_ context.Context, code string) (*models.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	course, ok := r.courses[code]
	if !ok {
		return nil, nil
	}
	copied := *course
	return &copied, nil
}

func (r *fakeCourseRepo) List(_ context.Context) ([]models.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Course{}
	for _, c := range r.courses {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// fakeBlobStore stores blobs in a map and records deletes.
type fakeBlobStore struct {
	mu      sync.Mutex
	blobs   map[string][]byte
	deleted []string

	downloadErr error
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{blobs: make(map[string][]byte)}
}

func (s *fakeBlobStore) Upload(_ context.Context, key string, body []byte, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = body
	return nil
}

func (s *fakeBlobStore) Download(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.downloadErr != nil {
		return nil, s.downloadErr
	}
	body, ok := s.blobs[key]
	if !ok {
		return nil, &models.StorageError{Op: models.StorageOpDownload, Key: key, Err: fmt.Errorf("not found")}
	}
	return body, nil
}

func (s *fakeBlobStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *fakeBlobStore) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://blobs.example.com/" + key, nil
}

// fakeVectorStore records per-document vector counts.
type fakeVectorStore struct {
	mu        sync.Mutex
	vectors   map[string]int // documentID -> stored count
	deletes   []string
	ensureErr error
	storeErr  error
	ensured   int
}

func newFakeVectorStore() *fakeVectorStore {
	return &fakeVectorStore{vectors: make(map[string]int)}
}

func (s *fakeVectorStore) EnsureCollection(_ context.Context, _ int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ensureErr != nil {
		return s.ensureErr
	}
	s.ensured++
	return nil
}

func (s *fakeVectorStore) StoreDocumentChunks(_ context.Context, _, documentID string, vectors [][]float32, chunks []string, _ map[string]string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.storeErr != nil {
		return 0, s.storeErr
	}
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("vectors/chunks length mismatch")
	}
	s.vectors[documentID] = len(vectors)
	return len(vectors), nil
}

func (s *fakeVectorStore) DeleteByDocument(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.vectors, documentID)
	s.deletes = append(s.deletes, documentID)
	return nil
}

func (s *fakeVectorStore) Search(_ context.Context, _ []float32, _ string, _ int) ([]vectorstore.SearchResult, error) {
	return nil, nil
}

// fakeEmbedder returns one constant-dimension vector per input.
type fakeEmbedder struct {
	dim     int
	err     error
	calls   int
	batches [][]string
}

func newFakeEmbedder(dim int) *fakeEmbedder {
	return &fakeEmbedder{dim: dim}
}

func (e *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	e.calls++
	e.batches = append(e.batches, texts)
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, e.dim)
	}
	return out, nil
}

func (e *fakeEmbedder) Dimension() int { return e.dim }
