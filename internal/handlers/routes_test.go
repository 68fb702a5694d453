package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"yieldvest/internal/middleware"
)

func newTestServices() Services {
	return Services{
		Users:           &mockUserService{},
		Products:        &mockProductService{},
		Investments:     &mockInvestmentService{},
		Portfolio:       &mockPortfolioService{},
		Recommendations: &mockRecommendationService{},
		Audit:           &mockAuditService{},
	}
}

func TestRegisterRoutes(t *testing.T) {
	r := gin.New()
	RegisterRoutes(r, newTestServices(), "pipeline-key")

	tests := []struct {
		name   string
		method string
		path   string
		apiKey string
		want   int
	}{
		{"health is public", "GET", "/api/health", "", http.StatusOK},
		{"catalog is public", "GET", "/api/v1/products", "", http.StatusOK},
		{"portfolio needs a token", "GET", "/api/v1/portfolio", "", http.StatusUnauthorized},
		{"investments need a token", "POST", "/api/v1/investments", "", http.StatusUnauthorized},
		{"pipeline needs a key", "POST", "/api/v1/pipeline/investments/settle-due", "", http.StatusUnauthorized},
		{"pipeline rejects a wrong key", "POST", "/api/v1/pipeline/investments/settle-due", "nope", http.StatusUnauthorized},
		{"pipeline accepts the key", "POST", "/api/v1/pipeline/investments/settle-due", "pipeline-key", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(""))
			if tt.apiKey != "" {
				req.Header.Set(middleware.PipelineKeyHeader, tt.apiKey)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRegisterRoutes_PipelineDisabledWithoutKey(t *testing.T) {
	r := gin.New()
	RegisterRoutes(r, newTestServices(), "")

	rec := doRequest(r, "POST", "/api/v1/pipeline/investments/settle-due", "")

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	assertErrorCode(t, parseJSON(t, rec), "PIPELINE_NOT_CONFIGURED")
}
