package middleware

import "github.com/gin-gonic/gin"

// userIDKey is the key used to store the acting user's ID in the Gin context.
const userIDKey = contextKey("userID")

// CallerIdentityMiddleware records the caller identity from the
// X-Acting-User header for audit stamping. The engine trusts its callers;
// authenticating them is the platform gateway's job.
func CallerIdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if actingUser := c.GetHeader("X-Acting-User"); actingUser != "" {
			c.Set(string(userIDKey), actingUser)
		}
		c.Next()
	}
}

// GetUserIDFromContext retrieves the acting user ID from the Gin context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userIDVal, exists := c.Get(string(userIDKey))
	if !exists {
		// check in the request context as well
		userIDCtx := c.Request.Context().Value(userIDKey)
		if userIDCtx != nil {
			if userID, ok := userIDCtx.(string); ok {
				return userID, true
			}
		}
		return "", false
	}

	userID, ok := userIDVal.(string)
	if !ok {
		return "", false
	}
	return userID, true
}
