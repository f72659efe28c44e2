package services

import (
	"context"
	"testing"
	"time"

	"course-material-service/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ingestionFixture struct {
	jobs    *fakeJobRepo
	docs    *fakeDocRepo
	courses *fakeCourseRepo
	svc     *IngestionService
}

func newIngestionFixture(t *testing.T) *ingestionFixture {
	t.Helper()
	f := &ingestionFixture{
		jobs:    newFakeJobRepo(),
		docs:    newFakeDocRepo(),
		courses: newFakeCourseRepo(),
	}
	f.svc = NewIngestionService(f.jobs, f.docs, f.courses)

	require.NoError(t, f.courses.Insert(context.Background(), &models.Course{
		Code: "CS-101", Title: "Intro", CreatedAt: time.Now().UTC(),
	}))
	return f
}

func (f *ingestionFixture) addUploadedDoc(t *testing.T, courseCode string) *models.Document {
	t.Helper()
	doc := &models.Document{
		DocumentID:      uuid.NewString(),
		CourseCode:      courseCode,
		Filename:        "notes.pdf",
		Status:          models.DocumentStatusUploaded,
		UploadTimestamp: time.Now().UTC(),
	}
	require.NoError(t, f.docs.Insert(context.Background(), doc))
	return doc
}

func startRequest(courseCode string) *models.StartIngestionRequest {
	req := &models.StartIngestionRequest{CourseCode: courseCode}
	if err := req.Normalize(); err != nil {
		panic(err)
	}
	return req
}

func TestCreateJobCountsDocsAtCreation(t *testing.T) {
	f := newIngestionFixture(t)
	f.addUploadedDoc(t, "CS-101")
	f.addUploadedDoc(t, "CS-101")

	job, err := f.svc.Create(context.Background(), startRequest("CS-101"), "prof@example.edu")
	require.NoError(t, err)

	assert.Equal(t, models.IngestionStatusQueued, job.Status)
	assert.Equal(t, 2, job.DocsTotal)
	assert.Equal(t, 0, job.DocsDone)
	assert.Equal(t, 3, job.MaxRetries)
	assert.Equal(t, "prof@example.edu", job.CreatedBy)
	assert.NotEmpty(t, job.JobID)
}

func TestCreateJobUnknownCourse(t *testing.T) {
	f := newIngestionFixture(t)

	_, err := f.svc.Create(context.Background(), startRequest("NOPE-1"), "prof@example.edu")
	var notFound *models.CourseNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "NOPE-1", notFound.Code)
}

func TestCreateJobSelectedWithoutIDs(t *testing.T) {
	f := newIngestionFixture(t)

	req := &models.StartIngestionRequest{CourseCode: "CS-101", Mode: models.IngestionModeSelected}
	require.NoError(t, req.Normalize())

	_, err := f.svc.Create(context.Background(), req, "prof@example.edu")
	var jobErr *models.IngestionJobError
	require.ErrorAs(t, err, &jobErr)
	assert.Contains(t, jobErr.Reason, "SELECTED")
}

func TestGetUnknownJob(t *testing.T) {
	f := newIngestionFixture(t)

	_, err := f.svc.Get(context.Background(), uuid.NewString())
	var notFound *models.IngestionJobNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestCancelQueuedJob(t *testing.T) {
	f := newIngestionFixture(t)
	job, err := f.svc.Create(context.Background(), startRequest("CS-101"), "prof@example.edu")
	require.NoError(t, err)

	canceled, err := f.svc.Cancel(context.Background(), job.JobID, "prof@example.edu")
	require.NoError(t, err)
	assert.Equal(t, models.IngestionStatusCanceled, canceled.Status)
}

func TestCancelTerminalJobRejected(t *testing.T) {
	f := newIngestionFixture(t)
	job, err := f.svc.Create(context.Background(), startRequest("CS-101"), "prof@example.edu")
	require.NoError(t, err)
	f.jobs.setStatus(job.JobID, models.IngestionStatusCompleted)

	_, err = f.svc.Cancel(context.Background(), job.JobID, "prof@example.edu")
	var jobErr *models.IngestionJobError
	require.ErrorAs(t, err, &jobErr)
	assert.Equal(t, "Cannot cancel job with status COMPLETED", jobErr.Reason)
}

func TestCancelIsIdempotentlyRejectedAfterCancel(t *testing.T) {
	f := newIngestionFixture(t)
	job, err := f.svc.Create(context.Background(), startRequest("CS-101"), "prof@example.edu")
	require.NoError(t, err)

	_, err = f.svc.Cancel(context.Background(), job.JobID, "prof@example.edu")
	require.NoError(t, err)

	_, err = f.svc.Cancel(context.Background(), job.JobID, "prof@example.edu")
	var jobErr *models.IngestionJobError
	require.ErrorAs(t, err, &jobErr)
	assert.Equal(t, "Cannot cancel job with status CANCELED", jobErr.Reason)
}

func TestRetryFailedJob(t *testing.T) {
	f := newIngestionFixture(t)
	job, err := f.svc.Create(context.Background(), startRequest("CS-101"), "prof@example.edu")
	require.NoError(t, err)
	f.jobs.setStatus(job.JobID, models.IngestionStatusFailed)

	retried, err := f.svc.Retry(context.Background(), job.JobID)
	require.NoError(t, err)
	assert.Equal(t, models.IngestionStatusQueued, retried.Status)
	assert.Equal(t, 1, retried.RetryCount)
	assert.Empty(t, retried.ErrorMessage)
}

func TestRetryNonFailedJobRejected(t *testing.T) {
	f := newIngestionFixture(t)
	job, err := f.svc.Create(context.Background(), startRequest("CS-101"), "prof@example.edu")
	require.NoError(t, err)

	_, err = f.svc.Retry(context.Background(), job.JobID)
	var jobErr *models.IngestionJobError
	require.ErrorAs(t, err, &jobErr)
	assert.Equal(t, "Can only retry failed jobs. Current status: QUEUED", jobErr.Reason)
}

func TestRetryBudgetExhausted(t *testing.T) {
	f := newIngestionFixture(t)
	job, err := f.svc.Create(context.Background(), startRequest("CS-101"), "prof@example.edu")
	require.NoError(t, err)

	for i := 0; i < job.MaxRetries; i++ {
		f.jobs.setStatus(job.JobID, models.IngestionStatusFailed)
		_, err = f.svc.Retry(context.Background(), job.JobID)
		require.NoError(t, err)
	}

	f.jobs.setStatus(job.JobID, models.IngestionStatusFailed)
	_, err = f.svc.Retry(context.Background(), job.JobID)
	var jobErr *models.IngestionJobError
	require.ErrorAs(t, err, &jobErr)
	assert.Equal(t, "Job has already been retried 3 times (max: 3)", jobErr.Reason)
}

func TestRetryCanceledJobRejected(t *testing.T) {
	f := newIngestionFixture(t)
	job, err := f.svc.Create(context.Background(), startRequest("CS-101"), "prof@example.edu")
	require.NoError(t, err)

	_, err = f.svc.Cancel(context.Background(), job.JobID, "prof@example.edu")
	require.NoError(t, err)

	_, err = f.svc.Retry(context.Background(), job.JobID)
	var jobErr *models.IngestionJobError
	require.ErrorAs(t, err, &jobErr)
	assert.Equal(t, "Can only retry failed jobs. Current status: CANCELED", jobErr.Reason)
}
