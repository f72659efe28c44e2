package routes

import (
	"net/http"

	"course-material-service/middleware"
	"course-material-service/models"
	"course-material-service/services"
	"course-material-service/utils"

	"github.com/gin-gonic/gin"
)

func SetupCourseRoutes(
	router *gin.Engine,
	svc *services.CourseService,
	authMiddleware *middleware.AuthMiddleware,
	roleMiddleware *middleware.RoleMiddleware,
) {
	courses := router.Group("/courses")
	courses.Use(authMiddleware.RequireAuth())

	// POST /courses
	courses.POST("", roleMiddleware.ProfessorGuard(), func(c *gin.Context) {
		var req models.CreateCourseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		course, err := svc.Create(c.Request.Context(), &req, middleware.GetEmail(c))
		if err != nil {
			utils.RespondWithDomainError(c, err)
			return
		}
		c.JSON(http.StatusCreated, course)
	})

	// GET /courses
	courses.GET("", roleMiddleware.StudentGuard(), func(c *gin.Context) {
		list, err := svc.List(c.Request.Context())
		if err != nil {
			utils.RespondWithDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"courses": list, "count": len(list)})
	})

	// GET /courses/:code
	courses.GET("/:code", roleMiddleware.StudentGuard(), func(c *gin.Context) {
		code, err := models.NormalizeCourseCode(c.Param("code"))
		if err != nil {
			utils.RespondWithDomainError(c, err)
			return
		}

		course, err := svc.GetByCode(c.Request.Context(), code)
		if err != nil {
			utils.RespondWithDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, course)
	})
}
