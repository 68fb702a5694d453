package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "yieldvest/internal/errors"
	"yieldvest/internal/logger"
)

// errorBody is the JSON envelope every error response uses.
func errorBody(appErr *apperrors.AppError) gin.H {
	return gin.H{
		"error": gin.H{
			"code":    appErr.Code,
			"kind":    apperrors.Kind(appErr),
			"message": appErr.Message,
		},
	}
}

// ErrorHandler converts errors attached to the Gin context into the error
// envelope. AppErrors keep their code and message; anything else is logged
// and masked as an internal error.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		log := logger.Named("http").With("path", c.Request.URL.Path, "request_id", c.GetString(requestIDKey))

		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) {
			log.Errorw("unexpected error", "error", err.Error(), "method", c.Request.Method)
			appErr = apperrors.ErrInternalServer
		} else if appErr.Internal != nil {
			log.Errorw("app error", "code", appErr.Code, "internal", appErr.Internal.Error())
		}

		c.JSON(appErr.StatusCode, errorBody(appErr))
	}
}
