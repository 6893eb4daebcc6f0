package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"charterhub/models"
	"charterhub/utils"
)

const callerIdentityKey = "callerIdentity"

// OptionalIdentity resolves a caller identity from a Bearer token when one
// is present; anonymous requests pass through. The identity is handed to
// services as an explicit parameter, never read from ambient context there.
func OptionalIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.Next()
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		sub, email, _, err := utils.TokenClaims(tokenString)
		if err != nil {
			// A bad token on an optional route is treated as anonymous.
			c.Next()
			return
		}
		c.Set(callerIdentityKey, &models.CallerIdentity{UserID: sub, Email: email})
		c.Next()
	}
}

// RequireRole rejects requests whose token is missing, invalid, or carries
// a different role claim.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		sub, email, tokenRole, err := utils.TokenClaims(tokenString)
		if err != nil || tokenRole != role {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		c.Set(callerIdentityKey, &models.CallerIdentity{UserID: sub, Email: email})
		c.Next()
	}
}

// CallerIdentity returns the resolved identity for this request, or nil
// for anonymous callers.
func CallerIdentity(c *gin.Context) *models.CallerIdentity {
	if v, exists := c.Get(callerIdentityKey); exists {
		if id, ok := v.(*models.CallerIdentity); ok {
			return id
		}
	}
	return nil
}
