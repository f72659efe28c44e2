package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"course-material-service/models"
	"course-material-service/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubJobRepo serves canned jobs for handler tests; only ListByCourse matters.
type stubJobRepo struct {
	jobs []models.IngestionJob
}

func (s *stubJobRepo) Create(context.Context, *models.IngestionJob) error { return nil }
func (s *stubJobRepo) Get(context.Context, string) (*models.IngestionJob, error) {
	return nil, nil
}
func (s *stubJobRepo) ListByCourse(context.Context, string) ([]models.IngestionJob, error) {
	return s.jobs, nil
}
func (s *stubJobRepo) Claim(context.Context, string) (bool, error)      { return false, nil }
func (s *stubJobRepo) IsCanceled(context.Context, string) (bool, error) { return false, nil }
func (s *stubJobRepo) IncrementProgress(context.Context, string, int, int) error {
	return nil
}
func (s *stubJobRepo) SetTerminalFromRunning(context.Context, string, models.IngestionStatus, string) (bool, error) {
	return false, nil
}
func (s *stubJobRepo) Cancel(context.Context, string) (bool, error) { return false, nil }
func (s *stubJobRepo) Retry(context.Context, string) (bool, error)  { return false, nil }

func TestListIngestionsReturnsBareArray(t *testing.T) {
	gin.SetMode(gin.TestMode)

	repo := &stubJobRepo{jobs: []models.IngestionJob{
		{
			JobID:      "a1b2c3d4-e5f6-7890-abcd-ef1234567890",
			CourseCode: "CS-101",
			Status:     models.IngestionStatusCompleted,
			Mode:       models.IngestionModeNew,
			DocsTotal:  2,
			DocsDone:   2,
			CreatedAt:  time.Now().UTC(),
		},
	}}
	svc := services.NewIngestionService(repo, nil, nil)

	router := gin.New()
	router.GET("/ingestions/list", listIngestions(svc))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ingestions/list?course_code=cs-101", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var jobs []models.IngestionJob
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &jobs))
	require.Len(t, jobs, 1)
	assert.Equal(t, "CS-101", jobs[0].CourseCode)
	assert.Equal(t, models.IngestionStatusCompleted, jobs[0].Status)
}

func TestListIngestionsRejectsBadCourseCode(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := services.NewIngestionService(&stubJobRepo{}, nil, nil)
	router := gin.New()
	router.GET("/ingestions/list", listIngestions(svc))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ingestions/list?course_code=cs%20101", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
