package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"yieldvest/internal/models"
	"yieldvest/internal/pagination"
	"yieldvest/internal/services"
)

// InvestmentHandler handles the authenticated user's investments.
type InvestmentHandler struct {
	investmentService services.InvestmentServicer
	auditService      services.AuditServicer
}

// NewInvestmentHandler creates a new InvestmentHandler.
func NewInvestmentHandler(investmentService services.InvestmentServicer, auditService services.AuditServicer) *InvestmentHandler {
	return &InvestmentHandler{investmentService: investmentService, auditService: auditService}
}

// CreateInvestmentRequest represents the request payload for a new investment.
// Amount accepts a JSON number or a decimal string.
type CreateInvestmentRequest struct {
	ProductID string          `json:"product_id" binding:"required,uuid"`
	Amount    decimal.Decimal `json:"amount" swaggertype:"string" example:"5000.00"`
	Notes     string          `json:"notes" binding:"max=1000"`
}

// UpdateNotesRequest replaces an investment's notes.
type UpdateNotesRequest struct {
	Notes string `json:"notes" binding:"max=1000"`
}

// ListInvestmentsQuery holds the status filter and paging.
type ListInvestmentsQuery struct {
	pagination.PageRequest
	Status string `form:"status" binding:"omitempty,investment_status"`
}

// CreateInvestment handles placing money into a product.
// @Summary     Create investment
// @Description Invest an amount into an active product. Expected return and maturity date are fixed from the product terms at this moment.
// @Tags        investments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateInvestmentRequest true "Investment details"
// @Success     201 {object} models.Investment "Investment created"
// @Failure     400 {object} ErrorResponse "Invalid input, amount out of bounds, or product inactive"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Product not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /investments [post]
func (h *InvestmentHandler) CreateInvestment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateInvestmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	investment, err := h.investmentService.CreateInvestment(c.Request.Context(), userID, req.ProductID, req.Amount, req.Notes)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditCreateInvestment, services.ResourceInvestment, investment.ID, c.ClientIP(),
		map[string]interface{}{"product_id": req.ProductID, "amount": req.Amount.StringFixed(2)})

	c.JSON(http.StatusCreated, gin.H{"investment": investment})
}

// ListInvestments handles listing the user's investments.
// @Summary     List investments
// @Description Paginated list of the user's investments, newest first, with current value attached
// @Tags        investments
// @Produce     json
// @Security    BearerAuth
// @Param       status    query string false "Filter by status (active, matured, cancelled)"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Investment] "Paginated investments"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /investments [get]
func (h *InvestmentHandler) ListInvestments(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q ListInvestmentsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	var status *models.InvestmentStatus
	if q.Status != "" {
		s := models.InvestmentStatus(q.Status)
		status = &s
	}

	result, err := h.investmentService.ListInvestments(c.Request.Context(), userID, status, q.PageRequest)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetInvestment handles retrieving a specific investment.
// @Summary     Get investment by ID
// @Description Get one of the user's investments with current value, gain/loss and days to maturity
// @Tags        investments
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Investment ID"
// @Success     200 {object} models.Investment "Investment details"
// @Failure     400 {object} ErrorResponse "Invalid investment ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Investment not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /investments/{id} [get]
func (h *InvestmentHandler) GetInvestment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	investmentID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	investment, err := h.investmentService.GetInvestment(c.Request.Context(), userID, investmentID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"investment": investment})
}

// CancelInvestment handles cancelling an active investment.
// @Summary     Cancel investment
// @Description Cancel an active investment. Matured or already cancelled investments are rejected.
// @Tags        investments
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Investment ID"
// @Success     200 {object} models.Investment "Cancelled investment"
// @Failure     400 {object} ErrorResponse "Invalid investment ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Investment not found"
// @Failure     409 {object} ErrorResponse "Already matured or cancelled"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /investments/{id}/cancel [post]
func (h *InvestmentHandler) CancelInvestment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	investmentID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	investment, err := h.investmentService.CancelInvestment(c.Request.Context(), userID, investmentID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditCancelInvestment, services.ResourceInvestment, investment.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"investment": investment})
}

// UpdateNotes handles replacing an investment's notes.
// @Summary     Update investment notes
// @Description Replace the free-text notes on an investment. Allowed in any status.
// @Tags        investments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string             true "Investment ID"
// @Param       request body UpdateNotesRequest true "New notes"
// @Success     200 {object} models.Investment "Updated investment"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Investment not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /investments/{id}/notes [put]
func (h *InvestmentHandler) UpdateNotes(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	investmentID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	investment, err := h.investmentService.UpdateNotes(c.Request.Context(), userID, investmentID, req.Notes)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditUpdateNotes, services.ResourceInvestment, investment.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"investment": investment})
}
