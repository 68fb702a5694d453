package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "yieldvest/internal/errors"
	"yieldvest/internal/logger"
	"yieldvest/internal/middleware"
	"yieldvest/internal/uuid"
)

// ErrorDetail represents the inner error object in an error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// getUserID extracts the authenticated user ID from the Gin context.
// Returns ErrUnauthorized if not present.
func getUserID(c *gin.Context) (string, error) {
	userID := c.GetString(middleware.UserIDKey)
	if userID == "" {
		return "", apperrors.ErrUnauthorized
	}
	return userID, nil
}

// parsePathID reads a UUID path parameter in canonical form.
//
//nolint:unparam // every route names its ID "id" today
func parsePathID(c *gin.Context, param string) (string, error) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+param)
	}
	return id, nil
}

// parseFlexibleTime accepts RFC3339 timestamps or plain YYYY-MM-DD dates (UTC midnight).
func parseFlexibleTime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q: use RFC3339 or YYYY-MM-DD", value)
}

// queryTime parses an optional time query parameter; absent returns nil.
func queryTime(c *gin.Context, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := parseFlexibleTime(raw)
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, key+": "+err.Error())
	}
	return &t, nil
}

// dateRange reads optional from/to query parameters. Missing bounds are zero.
func dateRange(c *gin.Context) (from, to time.Time, err error) {
	fromPtr, err := queryTime(c, "from")
	if err != nil {
		return from, to, err
	}
	toPtr, err := queryTime(c, "to")
	if err != nil {
		return from, to, err
	}
	if fromPtr != nil {
		from = *fromPtr
	}
	if toPtr != nil {
		to = *toPtr
	}
	return from, to, nil
}

// queryInt parses an optional integer query parameter; absent returns 0.
func queryInt(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+key)
	}
	return n, nil
}

// respondWithError writes a consistent JSON error response. If the error is an
// *AppError it uses the error's status code, code, and message. Otherwise it
// logs the unexpected error and returns a generic internal server error.
func respondWithError(c *gin.Context, err error) {
	log := logger.Get().With("path", c.Request.URL.Path, "request_id", middleware.RequestID(c))

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		log.Errorw("unexpected error", "error", err.Error(), "method", c.Request.Method)
		appErr = apperrors.ErrInternalServer
	} else if appErr.Internal != nil {
		log.Errorw("app error", "code", appErr.Code, "internal", appErr.Internal.Error())
	}

	c.JSON(appErr.StatusCode, ErrorResponse{Error: ErrorDetail{
		Code:    appErr.Code,
		Kind:    apperrors.Kind(appErr),
		Message: appErr.Message,
	}})
}

func invalidInput(err error) error {
	return apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
}
