package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "yieldvest/internal/errors"
)

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantKind   string
	}{
		{"app_error", apperrors.ErrAlreadyCancelled, http.StatusConflict, "INVESTMENT_ALREADY_CANCELLED", apperrors.KindInvalidTransition},
		{"wrapped_app_error", apperrors.Wrap(apperrors.ErrInternalServer, errors.New("db down")), http.StatusInternalServerError, "INTERNAL_ERROR", apperrors.KindInternal},
		{"plain_error_masked", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR", apperrors.KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(RequestLogging(), ErrorHandler())
			r.GET("/fail", func(c *gin.Context) { _ = c.Error(tt.err) })

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fail", http.NoBody))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			errObj, _ := parseBody(t, rec)["error"].(map[string]interface{})
			if errObj["code"] != tt.wantCode || errObj["kind"] != tt.wantKind {
				t.Errorf("got code %v kind %v, want %s %s", errObj["code"], errObj["kind"], tt.wantCode, tt.wantKind)
			}
			if rec.Header().Get(RequestIDHeader) == "" {
				t.Error("expected request ID header")
			}
		})
	}
}

func TestRequestLogging_ReusesValidRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogging())
	r.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, RequestID(c)) })

	const id = "0190a0b0-2222-7000-8000-000000000002"
	req := httptest.NewRequest(http.MethodGet, "/ok", http.NoBody)
	req.Header.Set(RequestIDHeader, id)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Body.String() != id || rec.Header().Get(RequestIDHeader) != id {
		t.Errorf("expected request ID %s to be reused, got %q", id, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/ok", http.NoBody)
	req.Header.Set(RequestIDHeader, "not a uuid")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Body.String() == "not a uuid" {
		t.Error("expected malformed request ID to be replaced")
	}
}
