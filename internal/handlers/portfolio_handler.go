package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "yieldvest/internal/errors"
	"yieldvest/internal/pagination"
	"yieldvest/internal/services"
)

// PortfolioHandler serves the user's portfolio views.
type PortfolioHandler struct {
	portfolioService services.PortfolioServicer
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(portfolioService services.PortfolioServicer) *PortfolioHandler {
	return &PortfolioHandler{portfolioService: portfolioService}
}

// GetSummary handles the portfolio summary.
// @Summary     Portfolio summary
// @Description Totals, gain/loss and breakdowns of the user's investments, valued now
// @Tags        portfolio
// @Produce     json
// @Security    BearerAuth
// @Param       include_inactive query bool false "Count matured and cancelled investments (defaults to server policy)"
// @Success     200 {object} services.PortfolioSummary "Portfolio summary"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /portfolio [get]
func (h *PortfolioHandler) GetSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	includeInactive, err := includeInactiveParam(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.portfolioService.GetSummary(c.Request.Context(), userID, includeInactive)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// includeInactiveParam reads ?include_inactive=; nil means the server policy.
func includeInactiveParam(c *gin.Context) (*bool, error) {
	raw := c.Query("include_inactive")
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid include_inactive")
	}
	return &v, nil
}

// GetAllocation handles the allocation breakdown.
// @Summary     Portfolio allocation
// @Description Share of active holdings by product type, risk level and tenure, with a diversification score
// @Tags        portfolio
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} portfolio.Allocation "Allocation"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /portfolio/allocation [get]
func (h *PortfolioHandler) GetAllocation(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	allocation, err := h.portfolioService.GetAllocation(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, allocation)
}

// GetPerformance handles the monthly performance series.
// @Summary     Portfolio performance
// @Description Monthly invested amounts and current values with running totals
// @Tags        portfolio
// @Produce     json
// @Security    BearerAuth
// @Param       from query string false "Start (RFC3339 or YYYY-MM-DD); default is the beginning"
// @Param       to   query string false "End (RFC3339 or YYYY-MM-DD); default is now"
// @Param       include_inactive query bool false "Count matured and cancelled investments (defaults to server policy)"
// @Success     200 {array}  portfolio.PerformancePoint "Performance series"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /portfolio/performance [get]
func (h *PortfolioHandler) GetPerformance(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	from, to, err := dateRange(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	includeInactive, err := includeInactiveParam(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	series, err := h.portfolioService.GetPerformance(c.Request.Context(), userID, from, to, includeInactive)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"performance": series})
}

// GetUpcomingMaturities handles the maturity calendar.
// @Summary     Upcoming maturities
// @Description Active investments maturing within the horizon, soonest first
// @Tags        portfolio
// @Produce     json
// @Security    BearerAuth
// @Param       days query int false "Horizon in days (defaults to server setting)"
// @Success     200 {array}  models.Investment "Maturing investments"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /portfolio/maturities [get]
func (h *PortfolioHandler) GetUpcomingMaturities(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	days, err := queryInt(c, "days")
	if err != nil {
		respondWithError(c, err)
		return
	}
	if days < 0 {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "days must not be negative"))
		return
	}

	upcoming, err := h.portfolioService.GetUpcomingMaturities(c.Request.Context(), userID, days)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"investments": upcoming})
}

// GetHistory handles the recorded snapshot time series.
// @Summary     Portfolio history
// @Description Paginated portfolio snapshots recorded by the pipeline, newest first
// @Tags        portfolio
// @Produce     json
// @Security    BearerAuth
// @Param       from      query string false "Start (RFC3339 or YYYY-MM-DD)"
// @Param       to        query string false "End (RFC3339 or YYYY-MM-DD); default is now"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.PortfolioSnapshot] "Paginated snapshots"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /portfolio/history [get]
func (h *PortfolioHandler) GetHistory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	from, to, err := dateRange(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	result, err := h.portfolioService.GetSnapshots(c.Request.Context(), userID, from, to, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetInsights handles the written portfolio summary.
// @Summary     Portfolio insights
// @Description A short written summary of the portfolio. Source is "generated" or "fallback".
// @Tags        portfolio
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} insights.Insight "Insight"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /portfolio/insights [get]
func (h *PortfolioHandler) GetInsights(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	insight, err := h.portfolioService.GetInsights(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"insight": insight})
}
