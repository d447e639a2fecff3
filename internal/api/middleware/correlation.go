package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// CorrelationIDHeader carries the request id across service boundaries.
	CorrelationIDHeader = "X-Correlation-ID"

	// CorrelationIDKey is the gin context key holding the resolved id.
	CorrelationIDKey = "correlation_id"
)

// CorrelationID tags every request with an id that flows into the response
// header, the access log and the response envelope. An inbound id is honored
// only when it is a well-formed UUID; anything else is replaced with a fresh
// one.
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(CorrelationIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.New().String()
		}

		c.Set(CorrelationIDKey, id)
		c.Header(CorrelationIDHeader, id)

		c.Next()
	}
}

// GetCorrelationID returns the request's correlation id, or an empty string
// when the middleware has not run.
func GetCorrelationID(c *gin.Context) string {
	if v, exists := c.Get(CorrelationIDKey); exists {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
