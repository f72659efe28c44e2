package routes

import (
	"net/http"

	"course-material-service/internal/logger"
	"course-material-service/internal/queue"
	"course-material-service/middleware"
	"course-material-service/models"
	"course-material-service/services"
	"course-material-service/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

func SetupIngestionRoutes(
	router *gin.Engine,
	svc *services.IngestionService,
	asynqClient *asynq.Client,
	authMiddleware *middleware.AuthMiddleware,
	roleMiddleware *middleware.RoleMiddleware,
) {
	ingestions := router.Group("/ingestions")
	ingestions.Use(authMiddleware.RequireAuth())

	// POST /ingestions/start - create a job and hand it to the queue
	ingestions.POST("/start", roleMiddleware.ProfessorGuard(), func(c *gin.Context) {
		var req models.StartIngestionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}
		if err := req.Normalize(); err != nil {
			utils.RespondWithDomainError(c, err)
			return
		}

		job, err := svc.Create(c.Request.Context(), &req, middleware.GetEmail(c))
		if err != nil {
			utils.RespondWithDomainError(c, err)
			return
		}

		if err := enqueueIngestion(asynqClient, job.JobID); err != nil {
			logger.Error("ingestion enqueue failed", "job_id", job.JobID, "error", err.Error())
			utils.RespondWithInternalError(c, "Failed to enqueue ingestion job", nil)
			return
		}

		c.JSON(http.StatusAccepted, job)
	})

	// GET /ingestions/status?job_id=...
	ingestions.GET("/status", roleMiddleware.StudentGuard(), func(c *gin.Context) {
		jobID := c.Query("job_id")
		if err := models.ValidateObjectID(jobID); err != nil {
			utils.RespondWithDomainError(c, err)
			return
		}

		job, err := svc.Get(c.Request.Context(), jobID)
		if err != nil {
			utils.RespondWithDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, job)
	})

	// GET /ingestions/list?course_code=...
	ingestions.GET("/list", roleMiddleware.StudentGuard(), listIngestions(svc))

	// POST /ingestions/cancel
	ingestions.POST("/cancel", roleMiddleware.ProfessorGuard(), func(c *gin.Context) {
		var req models.JobIDRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}
		if err := req.Normalize(); err != nil {
			utils.RespondWithDomainError(c, err)
			return
		}

		job, err := svc.Cancel(c.Request.Context(), req.JobID, middleware.GetEmail(c))
		if err != nil {
			utils.RespondWithDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, job)
	})

	// POST /ingestions/retry - re-queue a FAILED job
	ingestions.POST("/retry", roleMiddleware.ProfessorGuard(), func(c *gin.Context) {
		var req models.JobIDRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}
		if err := req.Normalize(); err != nil {
			utils.RespondWithDomainError(c, err)
			return
		}

		job, err := svc.Retry(c.Request.Context(), req.JobID)
		if err != nil {
			utils.RespondWithDomainError(c, err)
			return
		}

		if err := enqueueIngestion(asynqClient, job.JobID); err != nil {
			logger.Error("ingestion enqueue failed", "job_id", job.JobID, "error", err.Error())
			utils.RespondWithInternalError(c, "Failed to enqueue ingestion job", nil)
			return
		}

		c.JSON(http.StatusAccepted, job)
	})
}

// listIngestions returns a course's jobs newest-first as a bare array.
func listIngestions(svc *services.IngestionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		courseCode, err := models.NormalizeCourseCode(c.Query("course_code"))
		if err != nil {
			utils.RespondWithDomainError(c, err)
			return
		}

		jobs, err := svc.List(c.Request.Context(), courseCode)
		if err != nil {
			utils.RespondWithDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, jobs)
	}
}

func enqueueIngestion(client *asynq.Client, jobID string) error {
	task, err := queue.NewIngestionProcessTask(jobID)
	if err != nil {
		return err
	}
	_, err = client.Enqueue(task)
	return err
}
