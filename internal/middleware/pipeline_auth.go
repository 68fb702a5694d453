package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	apperrors "yieldvest/internal/errors"
)

// PipelineKeyHeader carries the shared secret for pipeline endpoints.
const PipelineKeyHeader = "X-API-Key"

// PipelineAuthMiddleware guards catalog management and settlement endpoints
// with a shared API key. With no key configured the endpoints are disabled.
func PipelineAuthMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			c.AbortWithStatusJSON(apperrors.ErrPipelineNotConfigured.StatusCode, errorBody(apperrors.ErrPipelineNotConfigured))
			return
		}
		key := c.GetHeader(PipelineKeyHeader)
		if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
			c.AbortWithStatusJSON(apperrors.ErrInvalidAPIKey.StatusCode, errorBody(apperrors.ErrInvalidAPIKey))
			return
		}
		c.Next()
	}
}
