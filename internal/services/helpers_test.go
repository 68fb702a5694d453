package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"yieldvest/internal/clock"
	"yieldvest/internal/repository"
	"yieldvest/internal/testutil"
)

// newLedger returns an investment service on a fresh database with the clock
// frozen at testutil.Epoch.
func newLedger(t *testing.T) (*gorm.DB, *clock.Fixed, InvestmentServicer) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })
	clk := clock.NewFixed(testutil.Epoch)
	return db, clk, NewInvestmentService(repository.NewGormStore(db), clk)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }

func days(n int) time.Duration { return time.Duration(n) * 24 * time.Hour }

func repositoryFor(db *gorm.DB) *repository.GormStore { return repository.NewGormStore(db) }
