package services

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"yieldvest/internal/clock"
	"yieldvest/internal/models"
	"yieldvest/internal/testutil"
)

func newUserService(t *testing.T) (*gorm.DB, *clock.Fixed, UserServicer) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })
	clk := clock.NewFixed(testutil.Epoch)
	return db, clk, NewUserService(db, clk)
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		_, _, svc := newUserService(t)

		user, err := svc.CreateUser(ctx, "alice@example.com", "password123", "Alice", "Smith")
		testutil.AssertNoError(t, err)

		if user.ID == "" {
			t.Fatal("expected user ID")
		}
		if user.Email != "alice@example.com" {
			t.Errorf("expected email alice@example.com, got %s", user.Email)
		}
		if !user.IsActive {
			t.Error("expected user to be active")
		}
		if user.RiskProfile != models.RiskLevelModerate {
			t.Errorf("expected moderate risk profile, got %s", user.RiskProfile)
		}
	})

	t.Run("duplicate_email", func(t *testing.T) {
		_, _, svc := newUserService(t)

		_, err := svc.CreateUser(ctx, "dup@example.com", "password123", "", "")
		testutil.AssertNoError(t, err)

		_, err = svc.CreateUser(ctx, "DUP@example.com", "password456", "", "")
		testutil.AssertAppError(t, err, "DUPLICATE_EMAIL")
	})

	t.Run("empty_email", func(t *testing.T) {
		_, _, svc := newUserService(t)

		_, err := svc.CreateUser(ctx, "", "password123", "", "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("password_is_hashed", func(t *testing.T) {
		_, _, svc := newUserService(t)

		user, err := svc.CreateUser(ctx, "hash@example.com", "mypassword", "", "")
		testutil.AssertNoError(t, err)

		if user.Password == "mypassword" {
			t.Error("password should be hashed, not stored as plaintext")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("mypassword")); err != nil {
			t.Error("password hash should be valid bcrypt")
		}
	})
}

func TestGetUserByEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		db, _, svc := newUserService(t)

		created := testutil.CreateTestUserWithEmail(t, db, "found@example.com")
		user, err := svc.GetUserByEmail(ctx, "Found@Example.com")
		testutil.AssertNoError(t, err)

		if user.ID != created.ID {
			t.Errorf("expected user ID %s, got %s", created.ID, user.ID)
		}
	})

	t.Run("inactive_user", func(t *testing.T) {
		db, _, svc := newUserService(t)

		user := testutil.CreateTestUserWithEmail(t, db, "inactive@example.com")
		db.Model(user).Update("is_active", false)

		_, err := svc.GetUserByEmail(ctx, "inactive@example.com")
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})
}

func TestAttemptLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("success_resets_attempts", func(t *testing.T) {
		db, clk, svc := newUserService(t)
		user := testutil.CreateTestUserWithEmail(t, db, "login@example.com")
		db.Model(user).Update("failed_login_attempts", 3)

		got, err := svc.AttemptLogin(ctx, "login@example.com", "password123")
		testutil.AssertNoError(t, err)

		if got.FailedLoginAttempts != 0 {
			t.Errorf("expected 0 failed attempts after success, got %d", got.FailedLoginAttempts)
		}
		if got.LastLoginAt == nil || !got.LastLoginAt.Equal(clk.Now()) {
			t.Errorf("expected LastLoginAt %s, got %v", clk.Now(), got.LastLoginAt)
		}
	})

	t.Run("lockout_after_5_failures", func(t *testing.T) {
		db, clk, svc := newUserService(t)
		testutil.CreateTestUserWithEmail(t, db, "lockout@example.com")

		for i := 0; i < maxFailedLoginAttempts; i++ {
			_, err := svc.AttemptLogin(ctx, "lockout@example.com", "wrong")
			testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
		}

		_, err := svc.AttemptLogin(ctx, "lockout@example.com", "password123")
		testutil.AssertAppError(t, err, "ACCOUNT_LOCKED")

		clk.Advance(lockoutDuration + time.Second)
		_, err = svc.AttemptLogin(ctx, "lockout@example.com", "password123")
		testutil.AssertNoError(t, err)
	})

	t.Run("nonexistent_user", func(t *testing.T) {
		_, _, svc := newUserService(t)

		_, err := svc.AttemptLogin(ctx, "nobody@example.com", "password123")
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
	})
}

func TestStoreAndGetRefreshTokenHash(t *testing.T) {
	ctx := context.Background()
	db, _, svc := newUserService(t)
	user := testutil.CreateTestUser(t, db)

	hash := "abcdef1234567890abcdef1234567890abcdef1234567890abcdef1234567890"
	testutil.AssertNoError(t, svc.StoreRefreshTokenHash(ctx, user.ID, hash))

	got, err := svc.GetRefreshTokenHash(ctx, user.ID)
	testutil.AssertNoError(t, err)
	if got != hash {
		t.Errorf("expected hash %s, got %s", hash, got)
	}

	err = svc.StoreRefreshTokenHash(ctx, "0190a0b0-0000-7000-8000-000000000000", hash)
	testutil.AssertAppError(t, err, "USER_NOT_FOUND")
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	db, _, svc := newUserService(t)
	user := testutil.CreateTestUser(t, db)

	high := models.RiskLevelHigh
	got, err := svc.UpdateProfile(ctx, user.ID, ProfileUpdate{FirstName: ptr("Ada"), RiskProfile: &high})
	testutil.AssertNoError(t, err)
	if got.FirstName != "Ada" || got.RiskProfile != models.RiskLevelHigh {
		t.Errorf("unexpected profile %+v", got)
	}

	reloaded, err := svc.GetUserByID(ctx, user.ID)
	testutil.AssertNoError(t, err)
	if reloaded.RiskProfile != models.RiskLevelHigh {
		t.Errorf("expected persisted risk profile high, got %s", reloaded.RiskProfile)
	}

	bad := models.RiskLevel("yolo")
	_, err = svc.UpdateProfile(ctx, user.ID, ProfileUpdate{RiskProfile: &bad})
	testutil.AssertAppError(t, err, "INVALID_INPUT")
}
