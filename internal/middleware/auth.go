package middleware

import (
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"health-portal/internal/config"
	"health-portal/internal/models"
	"health-portal/internal/utils"
)

const (
	userIDKey   = "userID"
	userRoleKey = "userRole"
)

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
		return "", false
	}
	return token, true
}

// AuthMiddleware verifies the access token and puts the caller's id and role
// on the context.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		deny := func(message string) {
			utils.Unauthorized(c, message)
			c.Abort()
		}

		header := c.GetHeader("Authorization")
		if header == "" {
			deny("Authorization header required")
			return
		}
		token, ok := bearerToken(header)
		if !ok {
			deny("Invalid authorization header format")
			return
		}
		claims, err := utils.ValidateToken(token, cfg.JWTSecret)
		if err != nil {
			deny("Invalid token: " + err.Error())
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Set(userRoleKey, claims.Role)
		c.Next()
	}
}

// RoleAuthMiddleware admits only the listed roles. It runs after AuthMiddleware.
func RoleAuthMiddleware(allowedRoles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetUserRoleFromContext(c)
		if !ok {
			utils.InternalServerError(c, "User role not found in context. AuthMiddleware might be missing.")
			c.Abort()
			return
		}
		if !slices.Contains(allowedRoles, role) {
			utils.Forbidden(c, "You do not have permission to access this resource.")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetUserIDFromContext returns the authenticated user's id.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID, exists := c.Get(userIDKey)
	if !exists {
		return "", false
	}
	idStr, ok := userID.(string)
	return idStr, ok
}

// GetUserRoleFromContext returns the authenticated user's role.
func GetUserRoleFromContext(c *gin.Context) (models.Role, bool) {
	userRole, exists := c.Get(userRoleKey)
	if !exists {
		return "", false
	}
	role, ok := userRole.(models.Role)
	return role, ok
}
