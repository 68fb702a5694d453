package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"yieldvest/internal/clock"
	"yieldvest/internal/config"
	"yieldvest/internal/database"
	"yieldvest/internal/handlers"
	"yieldvest/internal/insights"
	"yieldvest/internal/logger"
	"yieldvest/internal/middleware"
	"yieldvest/internal/repository"
	"yieldvest/internal/services"
	"yieldvest/internal/validator"

	_ "yieldvest/internal/docs" // Import swagger docs
)

// @title           Yieldvest API
// @version         1.0
// @description     Yieldvest tracks fixed-tenure investments (bonds, deposits, funds) from purchase to maturity and values portfolios against product terms.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @securityDefinitions.apikey PipelineKey
// @in header
// @name X-API-Key

func main() {
	logger.Init(os.Getenv("ENV"),
		logger.WithLevel(os.Getenv("LOG_LEVEL")),
		logger.WithService("yieldvest-api"),
	)
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("database close error: %v", err)
		}
	}()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Text generation is optional; without a key insights use the fallback summary.
	var generator insights.Generator
	if appConfig.GeminiAPIKey != "" {
		gen, err := insights.NewGeminiGenerator(context.Background(), appConfig.GeminiAPIKey,
			insights.WithModel(appConfig.GeminiModel),
			insights.WithRateLimit(appConfig.GeminiRPS),
		)
		if err != nil {
			return fmt.Errorf("failed to create text generator: %w", err)
		}
		generator = gen
		log.Infof("Insights enabled with model %s", appConfig.GeminiModel)
	}
	writer := insights.NewWriter(generator, logger.Named("insights"))

	// Initialize services
	db := dbManager.DB()
	store := repository.NewGormStore(db)
	clk := clock.System()

	userService := services.NewUserService(db, clk)
	svc := handlers.Services{
		Users:       userService,
		Products:    services.NewProductService(store),
		Investments: services.NewInvestmentService(store, clk),
		Portfolio: services.NewPortfolioService(store, clk, writer, services.PortfolioSettings{
			IncludeInactive:     appConfig.PortfolioIncludeInactive,
			MaturityHorizonDays: appConfig.MaturityHorizonDays,
		}),
		Recommendations: services.NewRecommendationService(store, userService, writer, appConfig.RecommendationLimit),
		Audit:           services.NewAuditService(db),
	}

	validator.Register()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+middleware.PipelineKeyHeader)

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	if appConfig.PipelineAPIKey == "" {
		log.Warn("PIPELINE_API_KEY is not set; pipeline endpoints will return 503")
	}
	handlers.RegisterRoutes(router, svc, appConfig.PipelineAPIKey)

	log.Infof("Starting Yieldvest server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
