package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Logger emits one structured access line per request after the handler
// chain finishes. The line carries the correlation id and, for routes behind
// UserContext, the acting user id, so a request can be traced from the
// access log into the user-scoped service logs. Severity follows the
// response status: 5xx logs at error, 4xx at warn.
func Logger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
			"bytes", c.Writer.Size(),
		}
		if id := GetCorrelationID(c); id != "" {
			attrs = append(attrs, "correlation_id", id)
		}
		if user := GetUserContext(c); user.UserID != uuid.Nil {
			attrs = append(attrs, "user_id", user.UserID.String())
		}

		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("HTTP request", attrs...)
		case status >= http.StatusBadRequest:
			logger.Warn("HTTP request", attrs...)
		default:
			logger.Info("HTTP request", attrs...)
		}
	}
}
