package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"yieldvest/internal/logger"
)

const requestIDKey = "requestID"

// RequestIDHeader carries the request ID to and from clients.
const RequestIDHeader = "X-Request-ID"

// RequestLogging tags each request with an ID (reusing a well-formed
// incoming X-Request-ID) and logs one line when it completes.
func RequestLogging() gin.HandlerFunc {
	log := logger.Named("http")
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.New().String()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(RequestIDHeader, requestID)

		c.Next()

		fields := []interface{}{
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if userID := c.GetString(UserIDKey); userID != "" {
			fields = append(fields, "user_id", userID)
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			log.Errorw("request", fields...)
		case status >= 400:
			log.Warnw("request", fields...)
		default:
			log.Infow("request", fields...)
		}
	}
}

// RequestID returns the ID RequestLogging assigned to the request.
func RequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
