package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"yieldvest/internal/insights"
	"yieldvest/internal/logger"
	"yieldvest/internal/middleware"
	"yieldvest/internal/models"
	"yieldvest/internal/pagination"
	"yieldvest/internal/portfolio"
	"yieldvest/internal/repository"
	"yieldvest/internal/services"
	"yieldvest/internal/validator"
)

const (
	testUserID       = "0190a0b0-0000-7000-8000-000000000001"
	testProductID    = "0190a0b0-0000-7000-8000-0000000000a1"
	testInvestmentID = "0190a0b0-0000-7000-8000-0000000000b1"
)

// --- mock services ---

type mockUserService struct {
	createUserFn            func(email, password, firstName, lastName string) (*models.User, error)
	getUserByEmailFn        func(email string) (*models.User, error)
	getUserByIDFn           func(id string) (*models.User, error)
	attemptLoginFn          func(email, password string) (*models.User, error)
	storeRefreshTokenHashFn func(userID, tokenHash string) error
	getRefreshTokenHashFn   func(userID string) (string, error)
	updateProfileFn         func(userID string, update services.ProfileUpdate) (*models.User, error)
}

func (m *mockUserService) CreateUser(_ context.Context, email, password, firstName, lastName string) (*models.User, error) {
	if m.createUserFn != nil {
		return m.createUserFn(email, password, firstName, lastName)
	}
	return &models.User{}, nil
}

func (m *mockUserService) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	if m.getUserByEmailFn != nil {
		return m.getUserByEmailFn(email)
	}
	return &models.User{}, nil
}

func (m *mockUserService) GetUserByID(_ context.Context, id string) (*models.User, error) {
	if m.getUserByIDFn != nil {
		return m.getUserByIDFn(id)
	}
	return &models.User{Base: models.Base{ID: id}}, nil
}

func (m *mockUserService) VerifyPassword(_ *models.User, _ string) bool { return true }

func (m *mockUserService) AttemptLogin(_ context.Context, email, password string) (*models.User, error) {
	if m.attemptLoginFn != nil {
		return m.attemptLoginFn(email, password)
	}
	return &models.User{}, nil
}

func (m *mockUserService) StoreRefreshTokenHash(_ context.Context, userID, tokenHash string) error {
	if m.storeRefreshTokenHashFn != nil {
		return m.storeRefreshTokenHashFn(userID, tokenHash)
	}
	return nil
}

func (m *mockUserService) GetRefreshTokenHash(_ context.Context, userID string) (string, error) {
	if m.getRefreshTokenHashFn != nil {
		return m.getRefreshTokenHashFn(userID)
	}
	return "", nil
}

func (m *mockUserService) UpdateProfile(_ context.Context, userID string, update services.ProfileUpdate) (*models.User, error) {
	if m.updateProfileFn != nil {
		return m.updateProfileFn(userID, update)
	}
	return &models.User{Base: models.Base{ID: userID}}, nil
}

var _ services.UserServicer = (*mockUserService)(nil)

type mockProductService struct {
	createProductFn     func(input services.ProductInput) (*models.Product, error)
	updateProductFn     func(id string, update services.ProductUpdate) (*models.Product, error)
	deactivateProductFn func(id string) error
	getProductFn        func(id string) (*models.Product, error)
	listProductsFn      func(filter repository.ProductFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Product], error)
}

func (m *mockProductService) CreateProduct(_ context.Context, input services.ProductInput) (*models.Product, error) {
	if m.createProductFn != nil {
		return m.createProductFn(input)
	}
	return &models.Product{}, nil
}

func (m *mockProductService) UpdateProduct(_ context.Context, id string, update services.ProductUpdate) (*models.Product, error) {
	if m.updateProductFn != nil {
		return m.updateProductFn(id, update)
	}
	return &models.Product{Base: models.Base{ID: id}}, nil
}

func (m *mockProductService) DeactivateProduct(_ context.Context, id string) error {
	if m.deactivateProductFn != nil {
		return m.deactivateProductFn(id)
	}
	return nil
}

func (m *mockProductService) GetProduct(_ context.Context, id string) (*models.Product, error) {
	if m.getProductFn != nil {
		return m.getProductFn(id)
	}
	return &models.Product{Base: models.Base{ID: id}}, nil
}

func (m *mockProductService) ListProducts(_ context.Context, filter repository.ProductFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Product], error) {
	if m.listProductsFn != nil {
		return m.listProductsFn(filter, page)
	}
	resp := pagination.NewPageResponse([]models.Product{}, 1, 20, 0)
	return &resp, nil
}

var _ services.ProductServicer = (*mockProductService)(nil)

type mockInvestmentService struct {
	createInvestmentFn func(userID, productID string, amount decimal.Decimal, notes string) (*models.Investment, error)
	cancelInvestmentFn func(userID, id string) (*models.Investment, error)
	updateNotesFn      func(userID, id, notes string) (*models.Investment, error)
	getInvestmentFn    func(userID, id string) (*models.Investment, error)
	listInvestmentsFn  func(userID string, status *models.InvestmentStatus, page pagination.PageRequest) (*pagination.PageResponse[models.Investment], error)
	settleFn           func(id string, actualReturn *decimal.Decimal) (*models.Investment, error)
	settleDueFn        func() (int, error)
}

func (m *mockInvestmentService) CreateInvestment(_ context.Context, userID, productID string, amount decimal.Decimal, notes string) (*models.Investment, error) {
	if m.createInvestmentFn != nil {
		return m.createInvestmentFn(userID, productID, amount, notes)
	}
	return &models.Investment{}, nil
}

func (m *mockInvestmentService) CancelInvestment(_ context.Context, userID, id string) (*models.Investment, error) {
	if m.cancelInvestmentFn != nil {
		return m.cancelInvestmentFn(userID, id)
	}
	return &models.Investment{Base: models.Base{ID: id}, Status: models.InvestmentStatusCancelled}, nil
}

func (m *mockInvestmentService) UpdateNotes(_ context.Context, userID, id, notes string) (*models.Investment, error) {
	if m.updateNotesFn != nil {
		return m.updateNotesFn(userID, id, notes)
	}
	return &models.Investment{Base: models.Base{ID: id}, Notes: notes}, nil
}

func (m *mockInvestmentService) GetInvestment(_ context.Context, userID, id string) (*models.Investment, error) {
	if m.getInvestmentFn != nil {
		return m.getInvestmentFn(userID, id)
	}
	return &models.Investment{Base: models.Base{ID: id}}, nil
}

func (m *mockInvestmentService) ListInvestments(_ context.Context, userID string, status *models.InvestmentStatus, page pagination.PageRequest) (*pagination.PageResponse[models.Investment], error) {
	if m.listInvestmentsFn != nil {
		return m.listInvestmentsFn(userID, status, page)
	}
	resp := pagination.NewPageResponse([]models.Investment{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockInvestmentService) SettleInvestment(_ context.Context, id string, actualReturn *decimal.Decimal) (*models.Investment, error) {
	if m.settleFn != nil {
		return m.settleFn(id, actualReturn)
	}
	return &models.Investment{Base: models.Base{ID: id}, Status: models.InvestmentStatusMatured}, nil
}

func (m *mockInvestmentService) SettleDue(_ context.Context) (int, error) {
	if m.settleDueFn != nil {
		return m.settleDueFn()
	}
	return 0, nil
}

var _ services.InvestmentServicer = (*mockInvestmentService)(nil)

type mockPortfolioService struct {
	getSummaryFn      func(userID string, includeInactive *bool) (*services.PortfolioSummary, error)
	getAllocationFn   func(userID string) (*portfolio.Allocation, error)
	getPerformanceFn  func(userID string, from, to time.Time, includeInactive *bool) ([]portfolio.PerformancePoint, error)
	getMaturitiesFn   func(userID string, horizonDays int) ([]models.Investment, error)
	getInsightsFn     func(userID string) (*insights.Insight, error)
	recordSnapshotsFn func(recordedAt time.Time) (int, error)
	getSnapshotsFn    func(userID string, from, to time.Time, page pagination.PageRequest) (*pagination.PageResponse[models.PortfolioSnapshot], error)
}

func (m *mockPortfolioService) GetSummary(_ context.Context, userID string, includeInactive *bool) (*services.PortfolioSummary, error) {
	if m.getSummaryFn != nil {
		return m.getSummaryFn(userID, includeInactive)
	}
	return &services.PortfolioSummary{}, nil
}

func (m *mockPortfolioService) GetAllocation(_ context.Context, userID string) (*portfolio.Allocation, error) {
	if m.getAllocationFn != nil {
		return m.getAllocationFn(userID)
	}
	return &portfolio.Allocation{}, nil
}

func (m *mockPortfolioService) GetPerformance(_ context.Context, userID string, from, to time.Time, includeInactive *bool) ([]portfolio.PerformancePoint, error) {
	if m.getPerformanceFn != nil {
		return m.getPerformanceFn(userID, from, to, includeInactive)
	}
	return []portfolio.PerformancePoint{}, nil
}

func (m *mockPortfolioService) GetUpcomingMaturities(_ context.Context, userID string, horizonDays int) ([]models.Investment, error) {
	if m.getMaturitiesFn != nil {
		return m.getMaturitiesFn(userID, horizonDays)
	}
	return []models.Investment{}, nil
}

func (m *mockPortfolioService) GetInsights(_ context.Context, userID string) (*insights.Insight, error) {
	if m.getInsightsFn != nil {
		return m.getInsightsFn(userID)
	}
	return &insights.Insight{Source: insights.SourceFallback}, nil
}

func (m *mockPortfolioService) ComputeAndRecordSnapshots(_ context.Context, recordedAt time.Time) (int, error) {
	if m.recordSnapshotsFn != nil {
		return m.recordSnapshotsFn(recordedAt)
	}
	return 0, nil
}

func (m *mockPortfolioService) GetSnapshots(_ context.Context, userID string, from, to time.Time, page pagination.PageRequest) (*pagination.PageResponse[models.PortfolioSnapshot], error) {
	if m.getSnapshotsFn != nil {
		return m.getSnapshotsFn(userID, from, to, page)
	}
	resp := pagination.NewPageResponse([]models.PortfolioSnapshot{}, 1, 20, 0)
	return &resp, nil
}

var _ services.PortfolioServicer = (*mockPortfolioService)(nil)

type mockRecommendationService struct {
	recommendFn func(userID string, riskProfile *models.RiskLevel, topN int) (*services.Recommendations, error)
}

func (m *mockRecommendationService) Recommend(_ context.Context, userID string, riskProfile *models.RiskLevel, topN int) (*services.Recommendations, error) {
	if m.recommendFn != nil {
		return m.recommendFn(userID, riskProfile, topN)
	}
	return &services.Recommendations{RiskProfile: models.RiskLevelModerate, Products: []models.Product{}}, nil
}

var _ services.RecommendationServicer = (*mockRecommendationService)(nil)

// auditEntry is one recorded mockAuditService.Log call.
type auditEntry struct {
	UserID, Action, ResourceType, ResourceID string
}

type mockAuditService struct {
	mu      sync.Mutex
	entries []auditEntry
}

func (m *mockAuditService) Log(userID, action, resourceType, resourceID, _ string, _ map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, auditEntry{userID, action, resourceType, resourceID})
}

func (m *mockAuditService) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Action
	}
	return out
}

var _ services.AuditServicer = (*mockAuditService)(nil)

// --- test helpers ---

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

func injectUserID(uid string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, uid)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}

func assertErrorKind(t *testing.T, result map[string]interface{}, kind string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["kind"] != kind {
		t.Errorf("expected error kind %q, got %q", kind, errObj["kind"])
	}
}
