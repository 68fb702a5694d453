package testutil

import (
	"errors"
	"testing"

	apperrors "yieldvest/internal/errors"
)

func asAppError(t *testing.T, err error, want string) *apperrors.AppError {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", want)
	}
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected %s error, got %T: %v", want, err, err)
	}
	return appErr
}

// AssertAppError fails unless err unwraps to an AppError carrying code.
func AssertAppError(t *testing.T, err error, code string) {
	t.Helper()
	if appErr := asAppError(t, err, code); appErr.Code != code {
		t.Errorf("error code = %q, want %q (%s)", appErr.Code, code, appErr.Message)
	}
}

// AssertErrorKind fails unless err classifies as kind, e.g. invalid_transition.
func AssertErrorKind(t *testing.T, err error, kind string) {
	t.Helper()
	asAppError(t, err, kind)
	if got := apperrors.Kind(err); got != kind {
		t.Errorf("error kind = %q, want %q", got, kind)
	}
}

func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
