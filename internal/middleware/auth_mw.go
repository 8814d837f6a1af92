package middleware

import (
	"net/http"
	"strings"

	"job_board/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	AuthUserKey        = "authUser"
	AuthRoleKey        = "authRole"
	AuthPermissionsKey = "authPermissions"
)

// AuthMiddleware creates a middleware that authenticates bearer tokens of
// a single family. Tokens from any other family fail verification here,
// so a reset token can never open a session-protected route.
func AuthMiddleware(codec *utils.TokenCodec, family utils.TokenFamily) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			return
		}

		claims, err := codec.Verify(family, parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(AuthUserKey, userID)
		c.Set(AuthRoleKey, claims.Role)
		if claims.Permissions != nil {
			c.Set(AuthPermissionsKey, claims.Permissions)
		}

		c.Next()
	}
}

// UserAuth accepts either token family a regular user can hold: session
// tokens from password login or access tokens from OTP/OAuth login.
func UserAuth(codec *utils.TokenCodec) gin.HandlerFunc {
	session := AuthMiddleware(codec, utils.FamilySession)
	access := AuthMiddleware(codec, utils.FamilyAccess)
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 {
			if _, err := codec.Verify(utils.FamilyAccess, parts[1]); err == nil {
				access(c)
				return
			}
		}
		session(c)
	}
}

// SessionAuth accepts session tokens issued by password login.
func SessionAuth(codec *utils.TokenCodec) gin.HandlerFunc {
	return AuthMiddleware(codec, utils.FamilySession)
}

// AccessAuth accepts short-lived access tokens from OTP and OAuth logins.
func AccessAuth(codec *utils.TokenCodec) gin.HandlerFunc {
	return AuthMiddleware(codec, utils.FamilyAccess)
}

// SuperAdminAuth accepts sa_-prefixed super-admin tokens.
func SuperAdminAuth(codec *utils.TokenCodec) gin.HandlerFunc {
	return AuthMiddleware(codec, utils.FamilySuperAdmin)
}
