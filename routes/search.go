package routes

import (
	"net/http"
	"strconv"

	"course-material-service/internal/vectorstore"
	"course-material-service/middleware"
	"course-material-service/models"
	"course-material-service/services"
	"course-material-service/utils"

	"github.com/gin-gonic/gin"
)

const (
	defaultSearchLimit = 5
	maxSearchLimit     = 50
)

// SetupSearchRoutes exposes semantic search over the indexed chunks.
func SetupSearchRoutes(
	router *gin.Engine,
	vectors vectorstore.VectorStore,
	embedder services.Embedder,
	authMiddleware *middleware.AuthMiddleware,
	roleMiddleware *middleware.RoleMiddleware,
) {
	search := router.Group("/search")
	search.Use(authMiddleware.RequireAuth())

	// GET /search?course_code=...&query=...&limit=...
	search.GET("", roleMiddleware.StudentGuard(), func(c *gin.Context) {
		query := c.Query("query")
		if query == "" {
			utils.RespondWithBadRequest(c, "Query text is required", nil)
			return
		}

		courseCode := ""
		if raw := c.Query("course_code"); raw != "" {
			code, err := models.NormalizeCourseCode(raw)
			if err != nil {
				utils.RespondWithDomainError(c, err)
				return
			}
			courseCode = code
		}

		limit := defaultSearchLimit
		if raw := c.Query("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 || parsed > maxSearchLimit {
				utils.RespondWithBadRequest(c, "limit must be between 1 and 50", nil)
				return
			}
			limit = parsed
		}

		queryVectors, err := embedder.EmbedBatch(c.Request.Context(), []string{query})
		if err != nil {
			utils.RespondWithDomainError(c, err)
			return
		}
		if len(queryVectors) != 1 {
			utils.RespondWithInternalError(c, "Embedding service returned unexpected result", nil)
			return
		}

		results, err := vectors.Search(c.Request.Context(), queryVectors[0], courseCode, limit)
		if err != nil {
			utils.RespondWithDomainError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"results": results, "count": len(results)})
	})
}
