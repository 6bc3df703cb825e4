// internal/interfaces/http/middleware/auth.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sweetcrumbs/bakery-backend/internal/config"
	"github.com/sweetcrumbs/bakery-backend/internal/pkg/auth"
)

// Context keys set by the auth middleware.
const (
	ctxUserID    = "user_id"
	ctxUserEmail = "user_email"
	ctxIsAdmin   = "is_admin"
)

func setIdentity(c *gin.Context, claims *auth.Claims) {
	c.Set(ctxUserID, claims.UserID)
	c.Set(ctxUserEmail, claims.Email)
	c.Set(ctxIsAdmin, claims.IsAdmin)
}

// AuthMiddleware rejects requests without a valid bearer token and attaches
// the token's identity to the gin context.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	jwtManager := auth.NewJWTManager(cfg)

	return func(c *gin.Context) {
		tokenString := auth.ExtractTokenFromHeader(c.GetHeader("Authorization"))
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization required",
			})
			return
		}

		claims, err := jwtManager.ValidateToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			return
		}

		setIdentity(c, claims)
		c.Next()
	}
}

// AdminMiddleware ensures the authenticated user is an admin. It must run
// after AuthMiddleware.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAdminFromContext(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Admin access required",
			})
			return
		}
		c.Next()
	}
}

// OptionalAuthMiddleware attaches user identity when a valid token is
// present but lets anonymous requests through.
func OptionalAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	jwtManager := auth.NewJWTManager(cfg)

	return func(c *gin.Context) {
		tokenString := auth.ExtractTokenFromHeader(c.GetHeader("Authorization"))
		if tokenString != "" {
			if claims, err := jwtManager.ValidateToken(tokenString); err == nil {
				setIdentity(c, claims)
			}
		}
		c.Next()
	}
}

// GetUserIDFromContext extracts the authenticated user ID, if any.
func GetUserIDFromContext(c *gin.Context) (uint, bool) {
	userID, exists := c.Get(ctxUserID)
	if !exists {
		return 0, false
	}
	return userID.(uint), true
}

// GetUserEmailFromContext extracts the authenticated user's email, if any.
func GetUserEmailFromContext(c *gin.Context) (string, bool) {
	email, exists := c.Get(ctxUserEmail)
	if !exists {
		return "", false
	}
	return email.(string), true
}

// IsAdminFromContext reports whether the request carries admin identity.
func IsAdminFromContext(c *gin.Context) bool {
	isAdmin, exists := c.Get(ctxIsAdmin)
	return exists && isAdmin.(bool)
}
