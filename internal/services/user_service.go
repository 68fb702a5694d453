package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"yieldvest/internal/clock"
	apperrors "yieldvest/internal/errors"
	"yieldvest/internal/models"
)

const (
	maxFailedLoginAttempts = 5
	lockoutDuration        = 15 * time.Minute
)

// userService handles user-related business logic.
type userService struct {
	db    *gorm.DB
	clock clock.Clock
}

// NewUserService creates a new UserServicer.
func NewUserService(db *gorm.DB, clk clock.Clock) UserServicer {
	return &userService{db: db, clock: clk}
}

// CreateUser registers a new user
func (s *userService) CreateUser(ctx context.Context, email, password, firstName, lastName string) (*models.User, error) {
	if email == "" || password == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "email and password are required")
	}
	email = strings.ToLower(email)

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateEmail
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	user := &models.User{
		Email:       email,
		Password:    string(hashedPassword),
		FirstName:   firstName,
		LastName:    lastName,
		IsActive:    true,
		RiskProfile: models.RiskLevelModerate,
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return user, nil
}

// GetUserByEmail retrieves an active user by email
func (s *userService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ? AND is_active = ?", strings.ToLower(email), true).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// VerifyPassword checks if the provided password matches the stored hash
func (s *userService) VerifyPassword(user *models.User, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password))
	return err == nil
}

// AttemptLogin checks credentials and tracks failures. After
// maxFailedLoginAttempts consecutive failures the account is locked for
// lockoutDuration. Unknown emails and wrong passwords are indistinguishable.
func (s *userService) AttemptLogin(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	now := s.clock.Now()
	if user.LockedUntil != nil && user.LockedUntil.After(now) {
		return nil, apperrors.ErrAccountLocked
	}

	if !s.VerifyPassword(user, password) {
		updates := map[string]interface{}{"failed_login_attempts": user.FailedLoginAttempts + 1}
		if user.FailedLoginAttempts+1 >= maxFailedLoginAttempts {
			updates["locked_until"] = now.Add(lockoutDuration)
		}
		if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := s.db.WithContext(ctx).Model(user).Updates(map[string]interface{}{
		"failed_login_attempts": 0,
		"locked_until":          nil,
		"last_login_at":         now,
	}).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	user.FailedLoginAttempts = 0
	user.LockedUntil = nil
	user.LastLoginAt = &now

	return user, nil
}

// StoreRefreshTokenHash saves the hash of the user's current refresh token.
func (s *userService) StoreRefreshTokenHash(ctx context.Context, userID, tokenHash string) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("refresh_token_hash", tokenHash)
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// GetRefreshTokenHash returns the hash of the user's current refresh token.
func (s *userService) GetRefreshTokenHash(ctx context.Context, userID string) (string, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.RefreshTokenHash, nil
}

// UpdateProfile applies the non-nil fields of update.
func (s *userService) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*models.User, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if update.FirstName != nil {
		updates["first_name"] = *update.FirstName
		user.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		updates["last_name"] = *update.LastName
		user.LastName = *update.LastName
	}
	if update.RiskProfile != nil {
		if !update.RiskProfile.Valid() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "risk_profile must be one of low, moderate, high")
		}
		updates["risk_profile"] = *update.RiskProfile
		user.RiskProfile = *update.RiskProfile
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return user, nil
}
