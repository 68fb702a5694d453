package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "yieldvest/internal/errors"
	"yieldvest/internal/models"
	"yieldvest/internal/services"
)

// PipelineHandler serves the API-key protected endpoints used by operators
// and scheduled jobs: catalog management, settlement and snapshot recording.
// Audit entries from here carry no user.
type PipelineHandler struct {
	productService    services.ProductServicer
	investmentService services.InvestmentServicer
	portfolioService  services.PortfolioServicer
	auditService      services.AuditServicer
}

// NewPipelineHandler creates a new PipelineHandler.
func NewPipelineHandler(
	productService services.ProductServicer,
	investmentService services.InvestmentServicer,
	portfolioService services.PortfolioServicer,
	auditService services.AuditServicer,
) *PipelineHandler {
	return &PipelineHandler{
		productService:    productService,
		investmentService: investmentService,
		portfolioService:  portfolioService,
		auditService:      auditService,
	}
}

// CreateProductRequest holds the terms of a new product. A missing
// max_investment means no upper bound.
type CreateProductRequest struct {
	Name          string           `json:"name" binding:"required,max=200"`
	Description   string           `json:"description" binding:"max=2000"`
	Type          string           `json:"type" binding:"required,product_type"`
	TenureMonths  int              `json:"tenure_months" binding:"required,min=1,max=600"`
	AnnualYield   decimal.Decimal  `json:"annual_yield" swaggertype:"string" example:"7.25"`
	RiskLevel     string           `json:"risk_level" binding:"required,risk_level"`
	MinInvestment decimal.Decimal  `json:"min_investment" swaggertype:"string" example:"1000.00"`
	MaxInvestment *decimal.Decimal `json:"max_investment" swaggertype:"string" example:"100000.00"`
}

// UpdateProductRequest holds product changes. Omitted fields are unchanged;
// clear_max_investment removes the upper bound.
type UpdateProductRequest struct {
	Name               *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Description        *string          `json:"description" binding:"omitempty,max=2000"`
	Type               *string          `json:"type" binding:"omitempty,product_type"`
	TenureMonths       *int             `json:"tenure_months" binding:"omitempty,min=1,max=600"`
	AnnualYield        *decimal.Decimal `json:"annual_yield" swaggertype:"string"`
	RiskLevel          *string          `json:"risk_level" binding:"omitempty,risk_level"`
	MinInvestment      *decimal.Decimal `json:"min_investment" swaggertype:"string"`
	MaxInvestment      *decimal.Decimal `json:"max_investment" swaggertype:"string"`
	ClearMaxInvestment bool             `json:"clear_max_investment"`
}

func (r UpdateProductRequest) toUpdate() (services.ProductUpdate, error) {
	update := services.ProductUpdate{
		Name:          r.Name,
		Description:   r.Description,
		TenureMonths:  r.TenureMonths,
		AnnualYield:   r.AnnualYield,
		MinInvestment: r.MinInvestment,
	}
	if r.Type != nil {
		t := models.ProductType(*r.Type)
		update.Type = &t
	}
	if r.RiskLevel != nil {
		risk := models.RiskLevel(*r.RiskLevel)
		update.RiskLevel = &risk
	}
	switch {
	case r.ClearMaxInvestment && r.MaxInvestment != nil:
		return update, apperrors.WithMessage(apperrors.ErrInvalidInput, "max_investment and clear_max_investment are mutually exclusive")
	case r.ClearMaxInvestment:
		update.MaxInvestment = &decimal.NullDecimal{}
	case r.MaxInvestment != nil:
		bound := decimal.NewNullDecimal(*r.MaxInvestment)
		update.MaxInvestment = &bound
	}
	return update, nil
}

// SettleRequest optionally overrides the settled return.
type SettleRequest struct {
	ActualReturn *decimal.Decimal `json:"actual_return" swaggertype:"string" example:"1126.83"`
}

// RecordSnapshotsRequest sets the instant snapshots are recorded at.
type RecordSnapshotsRequest struct {
	RecordedAt time.Time `json:"recorded_at" binding:"required"`
}

// CreateProduct handles adding a product to the catalog.
// @Summary     Create product
// @Description Add a product to the catalog (pipeline endpoint)
// @Tags        pipeline
// @Accept      json
// @Produce     json
// @Param       X-API-Key header string               true "Pipeline API key"
// @Param       request   body   CreateProductRequest true "Product terms"
// @Success     201 {object} models.Product "Product created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     503 {object} ErrorResponse "Pipeline not configured"
// @Router      /pipeline/products [post]
func (h *PipelineHandler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	input := services.ProductInput{
		Name:          req.Name,
		Description:   req.Description,
		Type:          models.ProductType(req.Type),
		TenureMonths:  req.TenureMonths,
		AnnualYield:   req.AnnualYield,
		RiskLevel:     models.RiskLevel(req.RiskLevel),
		MinInvestment: req.MinInvestment,
	}
	if req.MaxInvestment != nil {
		input.MaxInvestment = decimal.NewNullDecimal(*req.MaxInvestment)
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("", services.AuditCreateProduct, services.ResourceProduct, product.ID, c.ClientIP(),
		map[string]interface{}{"name": product.Name, "type": string(product.Type)})

	c.JSON(http.StatusCreated, gin.H{"product": product})
}

// UpdateProduct handles editing a product. Term changes on a product that has
// investments produce a new version with a new ID.
// @Summary     Update product
// @Description Edit a product. Returns the new version when terms of an invested product change. (pipeline endpoint)
// @Tags        pipeline
// @Accept      json
// @Produce     json
// @Param       X-API-Key header string               true "Pipeline API key"
// @Param       id        path   string               true "Product ID"
// @Param       request   body   UpdateProductRequest true "Product changes"
// @Success     200 {object} models.Product "Current product version"
// @Failure     400 {object} ErrorResponse "Invalid input or product inactive"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     404 {object} ErrorResponse "Product not found"
// @Failure     503 {object} ErrorResponse "Pipeline not configured"
// @Router      /pipeline/products/{id} [put]
func (h *PipelineHandler) UpdateProduct(c *gin.Context) {
	productID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}
	update, err := req.toUpdate()
	if err != nil {
		respondWithError(c, err)
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), productID, update)
	if err != nil {
		respondWithError(c, err)
		return
	}

	changes := map[string]interface{}{"version": product.Version}
	if product.ID != productID {
		changes["previous_version_id"] = productID
	}
	h.auditService.Log("", services.AuditUpdateProduct, services.ResourceProduct, product.ID, c.ClientIP(), changes)

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// DeactivateProduct handles retiring a product.
// @Summary     Deactivate product
// @Description Close a product to new investments. Existing investments keep resolving it. (pipeline endpoint)
// @Tags        pipeline
// @Produce     json
// @Param       X-API-Key header string true "Pipeline API key"
// @Param       id        path   string true "Product ID"
// @Success     200 {object} map[string]string "Product deactivated"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     404 {object} ErrorResponse "Product not found"
// @Failure     503 {object} ErrorResponse "Pipeline not configured"
// @Router      /pipeline/products/{id} [delete]
func (h *PipelineHandler) DeactivateProduct(c *gin.Context) {
	productID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.productService.DeactivateProduct(c.Request.Context(), productID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("", services.AuditDeactivate, services.ResourceProduct, productID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Product deactivated"})
}

// SettleInvestment handles maturing one investment.
// @Summary     Settle investment
// @Description Mark an active investment matured. actual_return defaults to the expected return. (pipeline endpoint)
// @Tags        pipeline
// @Accept      json
// @Produce     json
// @Param       X-API-Key header string        true  "Pipeline API key"
// @Param       id        path   string        true  "Investment ID"
// @Param       request   body   SettleRequest false "Settlement override"
// @Success     200 {object} models.Investment "Settled investment"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     404 {object} ErrorResponse "Investment not found"
// @Failure     409 {object} ErrorResponse "Already matured or cancelled"
// @Failure     503 {object} ErrorResponse "Pipeline not configured"
// @Router      /pipeline/investments/{id}/settle [post]
func (h *PipelineHandler) SettleInvestment(c *gin.Context) {
	investmentID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SettleRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, invalidInput(err))
			return
		}
	}

	investment, err := h.investmentService.SettleInvestment(c.Request.Context(), investmentID, req.ActualReturn)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("", services.AuditSettleInvestment, services.ResourceInvestment, investment.ID, c.ClientIP(),
		map[string]interface{}{"actual_return": investment.ActualReturn.Decimal.StringFixed(2)})

	c.JSON(http.StatusOK, gin.H{"investment": investment})
}

// SettleDue handles the batch settlement job.
// @Summary     Settle due investments
// @Description Mature every active investment past its maturity date at its expected return (pipeline endpoint)
// @Tags        pipeline
// @Produce     json
// @Param       X-API-Key header string true "Pipeline API key"
// @Success     200 {object} map[string]int "Number of investments settled"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     503 {object} ErrorResponse "Pipeline not configured"
// @Router      /pipeline/investments/settle-due [post]
func (h *PipelineHandler) SettleDue(c *gin.Context) {
	settled, err := h.investmentService.SettleDue(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"settled": settled})
}

// RecordSnapshots handles recording portfolio snapshots for every user.
// @Summary     Record portfolio snapshots
// @Description Compute and store a portfolio snapshot per user at recorded_at (pipeline endpoint)
// @Tags        pipeline
// @Accept      json
// @Produce     json
// @Param       X-API-Key header string                 true "Pipeline API key"
// @Param       request   body   RecordSnapshotsRequest true "Snapshot instant"
// @Success     200 {object} map[string]int "Snapshots recorded count"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     503 {object} ErrorResponse "Pipeline not configured"
// @Router      /pipeline/portfolio-snapshots [post]
func (h *PipelineHandler) RecordSnapshots(c *gin.Context) {
	var req RecordSnapshotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	count, err := h.portfolioService.ComputeAndRecordSnapshots(c.Request.Context(), req.RecordedAt.UTC())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"snapshots_recorded": count})
}
