package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"yieldvest/internal/insights"
	"yieldvest/internal/models"
	"yieldvest/internal/services"
)

func setupRecommendationRouter(handler *RecommendationHandler) *gin.Engine {
	r := gin.New()
	r.GET("/recommendations", injectUserID(testUserID), handler.GetRecommendations)
	return r
}

func TestRecommendationHandler_GetRecommendations(t *testing.T) {
	t.Run("uses stored profile by default", func(t *testing.T) {
		var gotProfile *models.RiskLevel
		var gotLimit int
		svc := &mockRecommendationService{
			recommendFn: func(_ string, riskProfile *models.RiskLevel, topN int) (*services.Recommendations, error) {
				gotProfile, gotLimit = riskProfile, topN
				return &services.Recommendations{
					RiskProfile: models.RiskLevelModerate,
					Products:    []models.Product{{Base: models.Base{ID: testProductID}}},
					Insight:     insights.Insight{Text: "One product fits.", Source: insights.SourceFallback},
				}, nil
			},
		}
		r := setupRecommendationRouter(NewRecommendationHandler(svc))

		rec := doRequest(r, "GET", "/recommendations", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotProfile != nil || gotLimit != 0 {
			t.Errorf("expected no overrides, got %v %d", gotProfile, gotLimit)
		}
		result := parseJSON(t, rec)
		if result["risk_profile"] != "moderate" {
			t.Errorf("expected moderate, got %v", result["risk_profile"])
		}
		if products := result["products"].([]interface{}); len(products) != 1 {
			t.Errorf("expected one product, got %d", len(products))
		}
	})

	t.Run("passes overrides", func(t *testing.T) {
		var gotProfile *models.RiskLevel
		var gotLimit int
		svc := &mockRecommendationService{
			recommendFn: func(_ string, riskProfile *models.RiskLevel, topN int) (*services.Recommendations, error) {
				gotProfile, gotLimit = riskProfile, topN
				return &services.Recommendations{RiskProfile: *riskProfile, Products: []models.Product{}}, nil
			},
		}
		r := setupRecommendationRouter(NewRecommendationHandler(svc))

		rec := doRequest(r, "GET", "/recommendations?risk_profile=high&limit=3", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotProfile == nil || *gotProfile != models.RiskLevelHigh {
			t.Errorf("expected high profile, got %v", gotProfile)
		}
		if gotLimit != 3 {
			t.Errorf("expected limit 3, got %d", gotLimit)
		}
	})

	tests := []struct {
		name  string
		query string
	}{
		{"unknown risk profile", "?risk_profile=reckless"},
		{"limit too large", "?limit=500"},
		{"limit not a number", "?limit=many"},
	}
	for _, tt := range tests {
		t.Run("returns 400 on "+tt.name, func(t *testing.T) {
			r := setupRecommendationRouter(NewRecommendationHandler(&mockRecommendationService{}))

			rec := doRequest(r, "GET", "/recommendations"+tt.query, "")

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
		})
	}
}
