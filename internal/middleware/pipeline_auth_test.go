package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

// pipelineRouter mounts the key check in front of a settle endpoint and
// reports through reached whether the request got past it.
func pipelineRouter(configured string) (*gin.Engine, *bool) {
	reached := false
	r := gin.New()
	settle := r.Group("/pipeline", PipelineAuthMiddleware(configured))
	settle.POST("/investments/settle-due", func(c *gin.Context) {
		reached = true
		c.JSON(http.StatusOK, gin.H{"settled": 0})
	})
	return r, &reached
}

func sendWithHeaders(r *gin.Engine, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/pipeline/investments/settle-due", http.NoBody)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse response body: %v", err)
	}
	return result
}

func TestPipelineAuthMiddleware_AcceptsConfiguredKey(t *testing.T) {
	r, reached := pipelineRouter("settle-secret")

	rec := sendWithHeaders(r, map[string]string{PipelineKeyHeader: "settle-secret"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !*reached {
		t.Error("expected handler to run")
	}
}

func TestPipelineAuthMiddleware_HeaderNameIsCaseInsensitive(t *testing.T) {
	r, reached := pipelineRouter("settle-secret")

	rec := sendWithHeaders(r, map[string]string{"x-api-key": "settle-secret"})

	if rec.Code != http.StatusOK || !*reached {
		t.Fatalf("expected lower-case header to authenticate, got %d", rec.Code)
	}
}

func TestPipelineAuthMiddleware_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		headers    map[string]string
		status     int
		code       string
		kind       string
	}{
		{"no header", "settle-secret", nil, http.StatusUnauthorized, "INVALID_API_KEY", "unauthorized"},
		{"wrong key", "settle-secret", map[string]string{PipelineKeyHeader: "other"}, http.StatusUnauthorized, "INVALID_API_KEY", "unauthorized"},
		{"prefix of key", "settle-secret", map[string]string{PipelineKeyHeader: "settle"}, http.StatusUnauthorized, "INVALID_API_KEY", "unauthorized"},
		{"key with padding", "settle-secret", map[string]string{PipelineKeyHeader: "settle-secret "}, http.StatusUnauthorized, "INVALID_API_KEY", "unauthorized"},
		{"key sent as bearer token", "settle-secret", map[string]string{"Authorization": "Bearer settle-secret"}, http.StatusUnauthorized, "INVALID_API_KEY", "unauthorized"},
		{"not configured", "", map[string]string{PipelineKeyHeader: "settle-secret"}, http.StatusServiceUnavailable, "PIPELINE_NOT_CONFIGURED", "internal"},
		{"not configured and no header", "", nil, http.StatusServiceUnavailable, "PIPELINE_NOT_CONFIGURED", "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, reached := pipelineRouter(tt.configured)

			rec := sendWithHeaders(r, tt.headers)

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}
			if *reached {
				t.Error("handler ran for a rejected request")
			}
			errObj, ok := parseBody(t, rec)["error"].(map[string]interface{})
			if !ok {
				t.Fatalf("expected error envelope, got %s", rec.Body.String())
			}
			if errObj["code"] != tt.code {
				t.Errorf("expected code %s, got %v", tt.code, errObj["code"])
			}
			if errObj["kind"] != tt.kind {
				t.Errorf("expected kind %s, got %v", tt.kind, errObj["kind"])
			}
		})
	}
}
