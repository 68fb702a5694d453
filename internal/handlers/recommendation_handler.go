package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"yieldvest/internal/models"
	"yieldvest/internal/services"
)

// RecommendationHandler serves ranked product recommendations.
type RecommendationHandler struct {
	recommendationService services.RecommendationServicer
}

// NewRecommendationHandler creates a new RecommendationHandler.
func NewRecommendationHandler(recommendationService services.RecommendationServicer) *RecommendationHandler {
	return &RecommendationHandler{recommendationService: recommendationService}
}

// RecommendationsQuery overrides the stored risk profile and list size.
type RecommendationsQuery struct {
	RiskProfile string `form:"risk_profile" binding:"omitempty,risk_level"`
	Limit       int    `form:"limit" binding:"omitempty,min=1,max=50"`
}

// GetRecommendations handles product recommendations.
// @Summary     Product recommendations
// @Description Active products matching a risk profile, highest annual yield first
// @Tags        recommendations
// @Produce     json
// @Security    BearerAuth
// @Param       risk_profile query string false "Risk profile (low, moderate, high); defaults to the user's profile"
// @Param       limit        query int    false "Number of products (default from server setting, max 50)"
// @Success     200 {object} services.Recommendations "Ranked products"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recommendations [get]
func (h *RecommendationHandler) GetRecommendations(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q RecommendationsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	var profile *models.RiskLevel
	if q.RiskProfile != "" {
		r := models.RiskLevel(q.RiskProfile)
		profile = &r
	}

	recs, err := h.recommendationService.Recommend(c.Request.Context(), userID, profile, q.Limit)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, recs)
}
