package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"yieldvest/internal/clock"
	"yieldvest/internal/handlers"
	"yieldvest/internal/insights"
	"yieldvest/internal/logger"
	"yieldvest/internal/middleware"
	"yieldvest/internal/repository"
	"yieldvest/internal/services"
	"yieldvest/internal/testutil"
	"yieldvest/internal/validator"
)

const testPipelineKey = "integration-pipeline-key"

// start is the instant the fixed clock begins at in every test.
var start = time.Date(2024, time.January, 1, 10, 0, 0, 0, time.UTC)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Clock  *clock.Fixed
	Router *gin.Engine
}

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupApp creates a full application stack backed by an isolated in-memory
// SQLite database and a clock that only moves when the test says so.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	clk := clock.NewFixed(start)
	store := repository.NewGormStore(db)
	writer := insights.NewWriter(nil, logger.Named("insights"))

	userService := services.NewUserService(db, clk)
	svc := handlers.Services{
		Users:       userService,
		Products:    services.NewProductService(store),
		Investments: services.NewInvestmentService(store, clk),
		Portfolio: services.NewPortfolioService(store, clk, writer, services.PortfolioSettings{
			MaturityHorizonDays: 30,
		}),
		Recommendations: services.NewRecommendationService(store, userService, writer, 5),
		Audit:           services.NewAuditService(db),
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	handlers.RegisterRoutes(router, svc, testPipelineKey)

	return &testApp{DB: db, Clock: clk, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// pipeline makes a request to a pipeline route with the configured API key.
func (app *testApp) pipeline(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/api/v1/pipeline"+path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.PipelineKeyHeader, testPipelineKey)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// errorCode returns error.code from an error response.
func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	errObj, ok := parseJSON(t, rec)["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object, got %s", rec.Body.String())
	}
	code, _ := errObj["code"].(string)
	return code
}

// registerUser registers a new user and returns the access token, refresh token, and user ID.
func (app *testApp) registerUser(t *testing.T, email, password string) (accessToken, refreshToken, userID string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q,"first_name":"Test","last_name":"User"}`, email, password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return result["access_token"].(string), result["refresh_token"].(string), user["id"].(string)
}

// loginUser logs in and returns the access and refresh tokens.
func (app *testApp) loginUser(t *testing.T, email, password string) (accessToken, refreshToken string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	rec := app.request("POST", "/api/v1/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["access_token"].(string), result["refresh_token"].(string)
}

// createProduct adds a product through the pipeline and returns its ID.
// maxInvestment may be empty for an unbounded product.
func (app *testApp) createProduct(t *testing.T, name, typ, risk string, tenureMonths int, annualYield, minInvestment, maxInvestment string) string {
	t.Helper()
	maxField := ""
	if maxInvestment != "" {
		maxField = fmt.Sprintf(`,"max_investment":%q`, maxInvestment)
	}
	body := fmt.Sprintf(`{"name":%q,"type":%q,"risk_level":%q,"tenure_months":%d,"annual_yield":%q,"min_investment":%q%s}`,
		name, typ, risk, tenureMonths, annualYield, minInvestment, maxField)
	rec := app.pipeline("POST", "/products", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create product failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["product"].(map[string]interface{})["id"].(string)
}

// invest places amount into productID and returns the investment object.
func (app *testApp) invest(t *testing.T, token, productID, amount string) map[string]interface{} {
	t.Helper()
	rec := app.request("POST", "/api/v1/investments",
		fmt.Sprintf(`{"product_id":%q,"amount":%q}`, productID, amount), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create investment failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["investment"].(map[string]interface{})
}
