package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type RoleMiddleware struct{}

func NewRoleMiddleware() *RoleMiddleware {
	return &RoleMiddleware{}
}

func (r *RoleMiddleware) RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		role := GetRole(c)
		if role == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error_code": "unauthorized",
				"message":    "User role not found",
			})
			c.Abort()
			return
		}

		// Check if user has one of the allowed roles
		hasRole := false
		for _, allowedRole := range allowedRoles {
			if role == allowedRole {
				hasRole = true
				break
			}
		}

		if !hasRole {
			c.JSON(http.StatusForbidden, gin.H{
				"error_code": "forbidden",
				"message":    "Insufficient permissions",
				"details": gin.H{
					"required_roles": allowedRoles,
					"user_role":      role,
				},
			})
			c.Abort()
			return
		}

		c.Next()
	})
}

func (r *RoleMiddleware) AdminGuard() gin.HandlerFunc {
	return r.RequireRole("admin")
}

// ProfessorGuard protects the mutating surfaces: uploads, deletes, and
// ingestion job control.
func (r *RoleMiddleware) ProfessorGuard() gin.HandlerFunc {
	return r.RequireRole("professor", "admin")
}

// StudentGuard protects the read surfaces: listings, status, search.
func (r *RoleMiddleware) StudentGuard() gin.HandlerFunc {
	return r.RequireRole("student", "professor", "admin")
}

// Helper function to check if user is admin
func IsAdmin(c *gin.Context) bool {
	return GetRole(c) == "admin"
}

// Helper function to check if user is a professor
func IsProfessor(c *gin.Context) bool {
	return GetRole(c) == "professor"
}
