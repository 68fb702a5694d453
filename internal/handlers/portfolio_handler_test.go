package handlers

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "yieldvest/internal/errors"
	"yieldvest/internal/insights"
	"yieldvest/internal/models"
	"yieldvest/internal/pagination"
	"yieldvest/internal/portfolio"
	"yieldvest/internal/services"
)

func setupPortfolioRouter(handler *PortfolioHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("/portfolio", injectUserID(testUserID))
	auth.GET("", handler.GetSummary)
	auth.GET("/allocation", handler.GetAllocation)
	auth.GET("/performance", handler.GetPerformance)
	auth.GET("/maturities", handler.GetUpcomingMaturities)
	auth.GET("/history", handler.GetHistory)
	auth.GET("/insights", handler.GetInsights)
	return r
}

func TestPortfolioHandler_GetSummary(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  *bool
	}{
		{"policy default", "", nil},
		{"include inactive", "?include_inactive=true", ptrTo(true)},
		{"exclude inactive", "?include_inactive=false", ptrTo(false)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *bool
			svc := &mockPortfolioService{
				getSummaryFn: func(_ string, includeInactive *bool) (*services.PortfolioSummary, error) {
					got = includeInactive
					return &services.PortfolioSummary{
						Snapshot: portfolio.Snapshot{
							TotalInvested:     decimal.NewFromInt(3000),
							TotalCurrentValue: decimal.NewFromInt(3150),
							InvestmentCount:   2,
						},
						DiversificationScore: 32,
					}, nil
				},
			}
			r := setupPortfolioRouter(NewPortfolioHandler(svc))

			rec := doRequest(r, "GET", "/portfolio"+tt.query, "")

			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
			}
			if (got == nil) != (tt.want == nil) || (got != nil && *got != *tt.want) {
				t.Errorf("includeInactive = %v, want %v", got, tt.want)
			}
			result := parseJSON(t, rec)
			if result["total_invested"] != "3000" || result["diversification_score"].(float64) != 32 {
				t.Errorf("unexpected summary %v", result)
			}
		})
	}

	t.Run("returns 400 on bad flag", func(t *testing.T) {
		r := setupPortfolioRouter(NewPortfolioHandler(&mockPortfolioService{}))

		rec := doRequest(r, "GET", "/portfolio?include_inactive=maybe", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("masks inconsistent snapshot", func(t *testing.T) {
		svc := &mockPortfolioService{
			getSummaryFn: func(string, *bool) (*services.PortfolioSummary, error) {
				return nil, apperrors.Wrap(apperrors.ErrInconsistentSnapshot, errors.New("product missing"))
			},
		}
		r := setupPortfolioRouter(NewPortfolioHandler(svc))

		rec := doRequest(r, "GET", "/portfolio", "")

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		assertErrorKind(t, result, apperrors.KindInconsistentSnapshot)
		if msg := result["error"].(map[string]interface{})["message"]; msg != "An internal error occurred" {
			t.Errorf("internal detail leaked: %v", msg)
		}
	})
}

func TestPortfolioHandler_GetPerformance(t *testing.T) {
	t.Run("parses date range", func(t *testing.T) {
		var gotFrom, gotTo time.Time
		svc := &mockPortfolioService{
			getPerformanceFn: func(_ string, from, to time.Time, _ *bool) ([]portfolio.PerformancePoint, error) {
				gotFrom, gotTo = from, to
				return []portfolio.PerformancePoint{{Month: "2024-01", Count: 1}}, nil
			},
		}
		r := setupPortfolioRouter(NewPortfolioHandler(svc))

		rec := doRequest(r, "GET", "/portfolio/performance?from=2024-01-01&to=2024-06-30T12:00:00Z", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if !gotFrom.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("unexpected from %v", gotFrom)
		}
		if !gotTo.Equal(time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)) {
			t.Errorf("unexpected to %v", gotTo)
		}
		series := parseJSON(t, rec)["performance"].([]interface{})
		if len(series) != 1 {
			t.Errorf("expected one point, got %d", len(series))
		}
	})

	t.Run("missing bounds are zero", func(t *testing.T) {
		var gotFrom, gotTo time.Time
		svc := &mockPortfolioService{
			getPerformanceFn: func(_ string, from, to time.Time, _ *bool) ([]portfolio.PerformancePoint, error) {
				gotFrom, gotTo = from, to
				return nil, nil
			},
		}
		r := setupPortfolioRouter(NewPortfolioHandler(svc))

		rec := doRequest(r, "GET", "/portfolio/performance", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !gotFrom.IsZero() || !gotTo.IsZero() {
			t.Errorf("expected zero bounds, got %v %v", gotFrom, gotTo)
		}
	})

	t.Run("passes inclusion override", func(t *testing.T) {
		for query, want := range map[string]*bool{
			"":                       nil,
			"?include_inactive=true": ptrTo(true),
			"?include_inactive=0":    ptrTo(false),
		} {
			var got *bool
			svc := &mockPortfolioService{
				getPerformanceFn: func(_ string, _, _ time.Time, includeInactive *bool) ([]portfolio.PerformancePoint, error) {
					got = includeInactive
					return nil, nil
				},
			}
			r := setupPortfolioRouter(NewPortfolioHandler(svc))

			rec := doRequest(r, "GET", "/portfolio/performance"+query, "")

			if rec.Code != http.StatusOK {
				t.Fatalf("%q: expected 200, got %d", query, rec.Code)
			}
			if (got == nil) != (want == nil) || (got != nil && *got != *want) {
				t.Errorf("%q: includeInactive = %v, want %v", query, got, want)
			}
		}
	})

	t.Run("returns 400 on bad inclusion flag", func(t *testing.T) {
		r := setupPortfolioRouter(NewPortfolioHandler(&mockPortfolioService{}))

		rec := doRequest(r, "GET", "/portfolio/performance?include_inactive=maybe", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on bad date", func(t *testing.T) {
		r := setupPortfolioRouter(NewPortfolioHandler(&mockPortfolioService{}))

		rec := doRequest(r, "GET", "/portfolio/performance?from=yesterday", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestPortfolioHandler_GetUpcomingMaturities(t *testing.T) {
	t.Run("passes horizon", func(t *testing.T) {
		var gotDays int
		svc := &mockPortfolioService{
			getMaturitiesFn: func(_ string, horizonDays int) ([]models.Investment, error) {
				gotDays = horizonDays
				return []models.Investment{{Base: models.Base{ID: testInvestmentID}}}, nil
			},
		}
		r := setupPortfolioRouter(NewPortfolioHandler(svc))

		rec := doRequest(r, "GET", "/portfolio/maturities?days=90", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if gotDays != 90 {
			t.Errorf("expected 90 days, got %d", gotDays)
		}
	})

	t.Run("returns 400 on negative horizon", func(t *testing.T) {
		r := setupPortfolioRouter(NewPortfolioHandler(&mockPortfolioService{}))

		rec := doRequest(r, "GET", "/portfolio/maturities?days=-1", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestPortfolioHandler_GetHistory(t *testing.T) {
	var gotPage pagination.PageRequest
	svc := &mockPortfolioService{
		getSnapshotsFn: func(_ string, _, _ time.Time, page pagination.PageRequest) (*pagination.PageResponse[models.PortfolioSnapshot], error) {
			gotPage = page
			resp := pagination.NewPageResponse([]models.PortfolioSnapshot{}, 1, 10, 0)
			return &resp, nil
		},
	}
	r := setupPortfolioRouter(NewPortfolioHandler(svc))

	rec := doRequest(r, "GET", "/portfolio/history?from=2024-01-01&page_size=10", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotPage.PageSize != 10 {
		t.Errorf("expected page_size 10, got %d", gotPage.PageSize)
	}
}

func TestPortfolioHandler_GetInsights(t *testing.T) {
	svc := &mockPortfolioService{
		getInsightsFn: func(string) (*insights.Insight, error) {
			return &insights.Insight{Text: "You have no investments yet.", Source: insights.SourceFallback}, nil
		},
	}
	r := setupPortfolioRouter(NewPortfolioHandler(svc))

	rec := doRequest(r, "GET", "/portfolio/insights", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	insight := parseJSON(t, rec)["insight"].(map[string]interface{})
	if insight["source"] != insights.SourceFallback {
		t.Errorf("expected fallback source, got %v", insight["source"])
	}
}

func ptrTo[T any](v T) *T { return &v }
