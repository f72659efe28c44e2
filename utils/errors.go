package utils

import (
	"errors"
	"net/http"

	"course-material-service/models"

	"github.com/gin-gonic/gin"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	ErrorCode string      `json:"error_code"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}

// RespondWithError sends a standardized error response
func RespondWithError(c *gin.Context, statusCode int, errorCode, message string, details interface{}) {
	c.JSON(statusCode, ErrorResponse{
		ErrorCode: errorCode,
		Message:   message,
		Details:   details,
	})
}

// RespondWithBadRequest sends a 400 Bad Request error
func RespondWithBadRequest(c *gin.Context, message string, details interface{}) {
	RespondWithError(c, http.StatusBadRequest, "bad_request", message, details)
}

// RespondWithUnauthorized sends a 401 Unauthorized error
func RespondWithUnauthorized(c *gin.Context, message string) {
	RespondWithError(c, http.StatusUnauthorized, "unauthorized", message, nil)
}

// RespondWithForbidden sends a 403 Forbidden error
func RespondWithForbidden(c *gin.Context, message string) {
	RespondWithError(c, http.StatusForbidden, "forbidden", message, nil)
}

// RespondWithNotFound sends a 404 Not Found error
func RespondWithNotFound(c *gin.Context, message string) {
	RespondWithError(c, http.StatusNotFound, "not_found", message, nil)
}

// RespondWithValidationError sends a 422 Unprocessable Entity error
func RespondWithValidationError(c *gin.Context, message string) {
	RespondWithError(c, http.StatusUnprocessableEntity, "validation_error", message, nil)
}

// RespondWithInternalError sends a 500 Internal Server Error
func RespondWithInternalError(c *gin.Context, message string, details interface{}) {
	RespondWithError(c, http.StatusInternalServerError, "internal_error", message, details)
}

// RespondWithDomainError maps a service-layer error onto the HTTP surface:
// not-found kinds to 404, illegal job transitions to 400, field validation
// to 422, everything else to 500.
func RespondWithDomainError(c *gin.Context, err error) {
	var (
		jobNotFound *models.IngestionJobNotFoundError
		courseNF    *models.CourseNotFoundError
		docNF       *models.DocumentNotFoundError
		jobErr      *models.IngestionJobError
		valErr      *models.ValidationError
	)

	switch {
	case errors.As(err, &jobNotFound), errors.As(err, &courseNF), errors.As(err, &docNF):
		RespondWithNotFound(c, err.Error())
	case errors.As(err, &jobErr):
		RespondWithBadRequest(c, err.Error(), nil)
	case errors.As(err, &valErr):
		RespondWithValidationError(c, err.Error())
	default:
		RespondWithInternalError(c, "Internal server error", nil)
	}
}
