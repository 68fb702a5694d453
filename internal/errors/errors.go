// Package errors provides custom error types for the Yieldvest API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import (
	"errors"
	"net/http"
)

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
	ErrAccountLocked      = &AppError{Code: "ACCOUNT_LOCKED", Message: "Account is temporarily locked", StatusCode: http.StatusLocked}

	ErrInvalidAPIKey         = &AppError{Code: "INVALID_API_KEY", Message: "Invalid or missing API key", StatusCode: http.StatusUnauthorized}
	ErrPipelineNotConfigured = &AppError{Code: "PIPELINE_NOT_CONFIGURED", Message: "Pipeline endpoints are not configured", StatusCode: http.StatusServiceUnavailable}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
)

// Product errors.
var (
	ErrProductNotFound = &AppError{Code: "PRODUCT_NOT_FOUND", Message: "Product not found", StatusCode: http.StatusNotFound}
	ErrProductInactive = &AppError{Code: "PRODUCT_INACTIVE", Message: "Product is not open for new investments", StatusCode: http.StatusBadRequest}
)

// Investment errors.
var (
	ErrInvestmentNotFound   = &AppError{Code: "INVESTMENT_NOT_FOUND", Message: "Investment not found", StatusCode: http.StatusNotFound}
	ErrAmountBelowMinimum   = &AppError{Code: "AMOUNT_BELOW_MINIMUM", Message: "Amount is below minimum investment", StatusCode: http.StatusBadRequest}
	ErrAmountAboveMaximum   = &AppError{Code: "AMOUNT_ABOVE_MAXIMUM", Message: "Amount is above maximum investment", StatusCode: http.StatusBadRequest}
	ErrAlreadyMatured       = &AppError{Code: "INVESTMENT_ALREADY_MATURED", Message: "Investment has already matured", StatusCode: http.StatusConflict}
	ErrAlreadyCancelled     = &AppError{Code: "INVESTMENT_ALREADY_CANCELLED", Message: "Investment has already been cancelled", StatusCode: http.StatusConflict}
	ErrInconsistentSnapshot = &AppError{Code: "INCONSISTENT_SNAPSHOT", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Kinds group error codes into the classes callers branch on.
const (
	KindNotFound             = "not_found"
	KindInvalidAmount        = "invalid_amount"
	KindInvalidTransition    = "invalid_transition"
	KindInconsistentSnapshot = "inconsistent_snapshot"
	KindInvalidInput         = "invalid_input"
	KindUnauthorized         = "unauthorized"
	KindInternal             = "internal"
)

var kindByCode = map[string]string{
	ErrNotFound.Code:             KindNotFound,
	ErrUserNotFound.Code:         KindNotFound,
	ErrProductNotFound.Code:      KindNotFound,
	ErrInvestmentNotFound.Code:   KindNotFound,
	ErrAmountBelowMinimum.Code:   KindInvalidAmount,
	ErrAmountAboveMaximum.Code:   KindInvalidAmount,
	ErrAlreadyMatured.Code:       KindInvalidTransition,
	ErrAlreadyCancelled.Code:     KindInvalidTransition,
	ErrInconsistentSnapshot.Code: KindInconsistentSnapshot,
	ErrInvalidInput.Code:         KindInvalidInput,
	ErrProductInactive.Code:      KindInvalidInput,
	ErrDuplicateEmail.Code:       KindInvalidInput,
	ErrUnauthorized.Code:         KindUnauthorized,
	ErrInvalidCredentials.Code:   KindUnauthorized,
	ErrForbidden.Code:            KindUnauthorized,
	ErrAccountLocked.Code:        KindUnauthorized,
	ErrInvalidAPIKey.Code:        KindUnauthorized,
}

// Kind reports the class of err. Errors that are not AppErrors, or carry an
// unknown code, are internal.
func Kind(err error) string {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return KindInternal
	}
	if kind, ok := kindByCode[appErr.Code]; ok {
		return kind
	}
	return KindInternal
}
