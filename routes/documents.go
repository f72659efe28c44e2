package routes

import (
	"io"
	"net/http"
	"strings"

	"course-material-service/internal/config"
	"course-material-service/middleware"
	"course-material-service/models"
	"course-material-service/services"
	"course-material-service/utils"

	"github.com/gin-gonic/gin"
)

func SetupDocumentRoutes(
	router *gin.Engine,
	cfg *config.Config,
	svc *services.DocumentService,
	authMiddleware *middleware.AuthMiddleware,
	roleMiddleware *middleware.RoleMiddleware,
) {
	documents := router.Group("/documents")
	documents.Use(authMiddleware.RequireAuth())

	// POST /documents - multipart PDF upload
	documents.POST("", roleMiddleware.ProfessorGuard(), middleware.RequestSizeLimit(cfg.MaxFileSize), func(c *gin.Context) {
		courseCode, err := models.NormalizeCourseCode(c.PostForm("course_code"))
		if err != nil {
			utils.RespondWithDomainError(c, err)
			return
		}

		file, header, err := c.Request.FormFile("file")
		if err != nil {
			utils.RespondWithBadRequest(c, "No PDF file provided", nil)
			return
		}
		defer file.Close()

		if header.Size > cfg.MaxFileSize {
			utils.RespondWithError(c, http.StatusRequestEntityTooLarge,
				"file_too_large", "File exceeds maximum size",
				gin.H{"max_size": cfg.MaxFileSize, "received": header.Size})
			return
		}

		contentType := header.Header.Get("Content-Type")
		if !isAllowedType(contentType, cfg.AllowedTypes) {
			utils.RespondWithBadRequest(c, "Only PDF files are allowed",
				gin.H{"content_type": contentType})
			return
		}

		content, err := io.ReadAll(io.LimitReader(file, cfg.MaxFileSize+1))
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to read uploaded file", nil)
			return
		}
		if int64(len(content)) > cfg.MaxFileSize {
			utils.RespondWithError(c, http.StatusRequestEntityTooLarge,
				"file_too_large", "File exceeds maximum size",
				gin.H{"max_size": cfg.MaxFileSize})
			return
		}

		// Magic byte check, content type headers lie
		if len(content) < 4 || string(content[:4]) != "%PDF" {
			utils.RespondWithBadRequest(c, "File does not appear to be a valid PDF", nil)
			return
		}

		doc, err := svc.Upload(c.Request.Context(), courseCode, header.Filename, content, contentType, middleware.GetEmail(c))
		if err != nil {
			utils.RespondWithDomainError(c, err)
			return
		}

		c.JSON(http.StatusCreated, doc)
	})

	// GET /documents/course?course_code=...
	documents.GET("/course", roleMiddleware.StudentGuard(), func(c *gin.Context) {
		courseCode, err := models.NormalizeCourseCode(c.Query("course_code"))
		if err != nil {
			utils.RespondWithDomainError(c, err)
			return
		}

		docs, err := svc.ListByCourse(c.Request.Context(), courseCode)
		if err != nil {
			utils.RespondWithDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"documents": docs, "count": len(docs)})
	})

	// GET /documents/download?document_id=... - presigned URL, not the bytes
	documents.GET("/download", roleMiddleware.StudentGuard(), func(c *gin.Context) {
		documentID := c.Query("document_id")
		if err := models.ValidateObjectID(documentID); err != nil {
			utils.RespondWithDomainError(c, err)
			return
		}

		doc, err := svc.GetWithDownloadURL(c.Request.Context(), documentID)
		if err != nil {
			utils.RespondWithDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, doc)
	})

	// DELETE /documents
	documents.DELETE("", roleMiddleware.ProfessorGuard(), func(c *gin.Context) {
		var req models.DeleteDocumentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}
		if err := models.ValidateObjectID(req.DocumentID); err != nil {
			utils.RespondWithDomainError(c, err)
			return
		}

		if err := svc.Delete(c.Request.Context(), req.DocumentID); err != nil {
			utils.RespondWithDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Document deleted", "document_id": req.DocumentID})
	})
}

func isAllowedType(contentType string, allowed []string) bool {
	for _, t := range allowed {
		if strings.EqualFold(strings.TrimSpace(t), contentType) {
			return true
		}
	}
	return false
}
