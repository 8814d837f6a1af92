package middleware

import (
	"net/http"

	"job_board/internal/model"

	"github.com/gin-gonic/gin"
)

// PermissionMiddleware gates a super-admin route on a capability from the
// token's permission snapshot. The super_admin role passes every check;
// other roles are granted only what their map explicitly allows, so an
// unknown capability name is always denied.
func PermissionMiddleware(capability string) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleVal, exists := c.Get(AuthRoleKey)
		if !exists {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Role not found in token, ensure auth middleware runs first"})
			return
		}
		if role, ok := roleVal.(string); ok && role == model.SuperAdminRoleSuperAdmin {
			c.Next()
			return
		}

		permsVal, exists := c.Get(AuthPermissionsKey)
		if !exists {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You do not have permission to access this resource"})
			return
		}
		perms, ok := permsVal.(map[string]bool)
		if !ok || !model.PermissionMap(perms).Allows(capability) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You do not have permission to access this resource"})
			return
		}

		c.Next()
	}
}
