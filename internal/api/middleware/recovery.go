package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Recovery converts a handler panic into a 500 with the standard error
// envelope. The log line carries the stack plus the correlation id and
// acting user id when they are known.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				correlationID := GetCorrelationID(c)

				attrs := []any{
					"error", rec,
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
					"stack", string(debug.Stack()),
				}
				if correlationID != "" {
					attrs = append(attrs, "correlation_id", correlationID)
				}
				if user := GetUserContext(c); user.UserID != uuid.Nil {
					attrs = append(attrs, "user_id", user.UserID.String())
				}
				logger.Error("Panic recovered", attrs...)

				body := gin.H{
					"error": gin.H{
						"code":    "INTERNAL_SERVER_ERROR",
						"message": "An internal server error occurred",
					},
				}
				if correlationID != "" {
					body["correlation_id"] = correlationID
				}

				c.AbortWithStatusJSON(http.StatusInternalServerError, body)
			}
		}()

		c.Next()
	}
}
