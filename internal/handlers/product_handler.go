package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"yieldvest/internal/models"
	"yieldvest/internal/pagination"
	"yieldvest/internal/repository"
	"yieldvest/internal/services"
)

// ProductHandler serves the public product catalog.
type ProductHandler struct {
	productService services.ProductServicer
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(productService services.ProductServicer) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// ListProductsQuery holds catalog filters and paging.
type ListProductsQuery struct {
	pagination.PageRequest
	Type      string `form:"type" binding:"omitempty,product_type"`
	RiskLevel string `form:"risk_level" binding:"omitempty,risk_level"`
}

func (q ListProductsQuery) filter() repository.ProductFilter {
	var f repository.ProductFilter
	if q.Type != "" {
		t := models.ProductType(q.Type)
		f.Type = &t
	}
	if q.RiskLevel != "" {
		r := models.RiskLevel(q.RiskLevel)
		f.RiskLevel = &r
	}
	return f
}

// ListProducts lists active products.
// @Summary     List products
// @Description List active products, optionally filtered by type and risk level
// @Tags        products
// @Produce     json
// @Param       type       query string false "Product type (bond, fd, mf, etf, other)"
// @Param       risk_level query string false "Risk level (low, moderate, high)"
// @Param       page       query int    false "Page number (default 1)"
// @Param       page_size  query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Product] "Paginated products"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /products [get]
func (h *ProductHandler) ListProducts(c *gin.Context) {
	var q ListProductsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	result, err := h.productService.ListProducts(c.Request.Context(), q.filter(), q.PageRequest)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetProduct returns one product. Retired products and superseded versions
// remain readable so investments can show the terms they were made under.
// @Summary     Get product by ID
// @Description Get a product, including retired ones
// @Tags        products
// @Produce     json
// @Param       id path string true "Product ID"
// @Success     200 {object} models.Product "Product details"
// @Failure     400 {object} ErrorResponse "Invalid product ID"
// @Failure     404 {object} ErrorResponse "Product not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /products/{id} [get]
func (h *ProductHandler) GetProduct(c *gin.Context) {
	productID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	product, err := h.productService.GetProduct(c.Request.Context(), productID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}
