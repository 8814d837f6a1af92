package middleware

import (
	"net/http"

	"job_board/internal/model"

	"github.com/gin-gonic/gin"
)

// RoleMiddleware creates a middleware to check for specific user roles
func RoleMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleVal, exists := c.Get(AuthRoleKey)
		if !exists {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Role not found in token, ensure auth middleware runs first"})
			return
		}

		userRole, ok := roleVal.(string)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid role type in token"})
			return
		}

		isAllowed := false
		for _, allowedRole := range allowedRoles {
			if userRole == allowedRole {
				isAllowed = true
				break
			}
		}

		if !isAllowed {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You do not have permission to access this resource"})
			return
		}

		c.Next()
	}
}

// EmployerMiddleware restricts a route to employer accounts.
func EmployerMiddleware() gin.HandlerFunc {
	return RoleMiddleware(model.RoleEmployer, model.RoleAdmin)
}

// JobSeekerMiddleware restricts a route to job-seeker accounts.
func JobSeekerMiddleware() gin.HandlerFunc {
	return RoleMiddleware(model.RoleJobSeeker, model.RoleAdmin)
}
