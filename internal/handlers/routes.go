package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"yieldvest/internal/middleware"
	"yieldvest/internal/services"
)

// Services bundles what the HTTP layer depends on.
type Services struct {
	Users           services.UserServicer
	Products        services.ProductServicer
	Investments     services.InvestmentServicer
	Portfolio       services.PortfolioServicer
	Recommendations services.RecommendationServicer
	Audit           services.AuditServicer
}

// RegisterRoutes mounts the health check and the /api/v1 routes on router.
// Pipeline routes are guarded by pipelineAPIKey.
func RegisterRoutes(router *gin.Engine, svc Services, pipelineAPIKey string) {
	authHandler := NewAuthHandler(svc.Users, svc.Audit)
	productHandler := NewProductHandler(svc.Products)
	investmentHandler := NewInvestmentHandler(svc.Investments, svc.Audit)
	portfolioHandler := NewPortfolioHandler(svc.Portfolio)
	recommendationHandler := NewRecommendationHandler(svc.Recommendations)
	pipelineHandler := NewPipelineHandler(svc.Products, svc.Investments, svc.Portfolio, svc.Audit)

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	products := v1.Group("/products")
	products.GET("", productHandler.ListProducts)
	products.GET("/:id", productHandler.GetProduct)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)
	protected.PUT("/profile", authHandler.UpdateProfile)

	investments := protected.Group("/investments")
	investments.POST("", investmentHandler.CreateInvestment)
	investments.GET("", investmentHandler.ListInvestments)
	investments.GET("/:id", investmentHandler.GetInvestment)
	investments.POST("/:id/cancel", investmentHandler.CancelInvestment)
	investments.PUT("/:id/notes", investmentHandler.UpdateNotes)

	portfolio := protected.Group("/portfolio")
	portfolio.GET("", portfolioHandler.GetSummary)
	portfolio.GET("/allocation", portfolioHandler.GetAllocation)
	portfolio.GET("/performance", portfolioHandler.GetPerformance)
	portfolio.GET("/maturities", portfolioHandler.GetUpcomingMaturities)
	portfolio.GET("/history", portfolioHandler.GetHistory)
	portfolio.GET("/insights", portfolioHandler.GetInsights)

	protected.GET("/recommendations", recommendationHandler.GetRecommendations)

	// Pipeline routes (API key auth)
	pipeline := v1.Group("/pipeline")
	pipeline.Use(middleware.PipelineAuthMiddleware(pipelineAPIKey))
	pipeline.POST("/products", pipelineHandler.CreateProduct)
	pipeline.PUT("/products/:id", pipelineHandler.UpdateProduct)
	pipeline.DELETE("/products/:id", pipelineHandler.DeactivateProduct)
	pipeline.POST("/investments/settle-due", pipelineHandler.SettleDue)
	pipeline.POST("/investments/:id/settle", pipelineHandler.SettleInvestment)
	pipeline.POST("/portfolio-snapshots", pipelineHandler.RecordSnapshots)
}
