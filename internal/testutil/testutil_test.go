package testutil_test

import (
	"testing"

	"yieldvest/internal/errors"
	"yieldvest/internal/models"
	"yieldvest/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	// Verify all tables exist by doing a simple count query on each model.
	var count int64
	for _, table := range []string{"users", "products", "investments", "portfolio_snapshots", "audit_logs"} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestSetupTestDBIsolated(t *testing.T) {
	first := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, first)
	second := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, second)

	testutil.CreateTestUser(t, first)

	var count int64
	if err := second.Model(&models.User{}).Count(&count).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}
	if count != 0 {
		t.Errorf("expected second database to be empty, got %d users", count)
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := testutil.CreateTestUser(t, db)
	if user.ID == "" {
		t.Fatal("user should have an ID")
	}

	product := testutil.CreateTestProduct(t, db)
	if !product.IsActive {
		t.Error("expected product to be active")
	}

	closed := testutil.CreateTestProduct(t, db, testutil.Inactive())
	var stored models.Product
	if err := db.First(&stored, "id = ?", closed.ID).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	if stored.IsActive {
		t.Error("expected inactive product to be persisted as inactive")
	}

	inv := testutil.CreateTestInvestment(t, db, user.ID, product, "1000", testutil.Epoch)
	if inv.ExpectedReturn.String() != "1126.83" {
		t.Errorf("expected return 1126.83, got %s", inv.ExpectedReturn)
	}
	if !inv.MaturityDate.Equal(testutil.Epoch.AddDate(0, 12, 0)) {
		t.Errorf("unexpected maturity date %s", inv.MaturityDate)
	}
}

func TestAssertAppError(t *testing.T) {
	testutil.AssertAppError(t, errors.ErrInvestmentNotFound, "INVESTMENT_NOT_FOUND")
	testutil.AssertAppError(t, errors.Wrap(errors.ErrInternalServer, nil), "INTERNAL_ERROR")
}

func TestAssertErrorKind(t *testing.T) {
	testutil.AssertErrorKind(t, errors.ErrAmountBelowMinimum, errors.KindInvalidAmount)
	testutil.AssertErrorKind(t, errors.Wrap(errors.ErrAlreadyMatured, nil), errors.KindInvalidTransition)
	testutil.AssertErrorKind(t, errors.ErrInternalServer, errors.KindInternal)
}

func TestAssertNoError(t *testing.T) {
	testutil.AssertNoError(t, nil)
}
