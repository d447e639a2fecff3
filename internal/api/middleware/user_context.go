package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopbook-ledger/internal/domain/shared"
)

const (
	// UserIDHeader carries the authenticated user id. Authentication itself
	// is an upstream concern; by the time a request reaches this service the
	// session has been validated and resolved to a user id.
	UserIDHeader = "X-User-ID"

	// UserContextKey is the key used to store the user context in gin
	UserContextKey = "user_context"
)

// UserContext extracts the authenticated user id and makes it available to
// handlers as an explicit shared.UserContext. Requests without a valid user
// id are rejected before any handler runs.
func UserContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(UserIDHeader)
		userID, err := uuid.Parse(raw)
		if err != nil || userID == uuid.Nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "Missing or invalid " + UserIDHeader + " header",
				},
			})
			return
		}

		c.Set(UserContextKey, shared.NewUserContext(userID))
		c.Next()
	}
}

// GetUserContext retrieves the user context stored by the middleware.
func GetUserContext(c *gin.Context) shared.UserContext {
	if v, exists := c.Get(UserContextKey); exists {
		if user, ok := v.(shared.UserContext); ok {
			return user
		}
	}
	return shared.UserContext{}
}
