package middleware

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

const (
	RequestIDKey    = "request_id"
	RequestIDHeader = "X-Request-ID"
)

// RequestLogger tags each request with an id, echoed in the X-Request-ID
// response header, and logs it once the handler chain returns.
func RequestLogger(logger *slog.Logger) drift.HandlerFunc {
	return func(c *drift.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDKey, requestID)
		c.Response.Header().Set(RequestIDHeader, requestID)

		start := time.Now()
		c.Next()

		logger.Info("request",
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

func GetRequestID(c *drift.Context) string {
	if id, ok := c.Get(RequestIDKey); ok {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}
