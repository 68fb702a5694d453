package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "yieldvest/internal/errors"
	"yieldvest/internal/middleware"
	"yieldvest/internal/models"
	"yieldvest/internal/services"
)

// AuthHandler handles authentication and profile requests.
type AuthHandler struct {
	userService  services.UserServicer
	auditService services.AuditServicer
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(userService services.UserServicer, auditService services.AuditServicer) *AuthHandler {
	return &AuthHandler{userService: userService, auditService: auditService}
}

// RegisterRequest represents the registration request payload
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email,max=255"`
	Password  string `json:"password" binding:"required,min=8,max=128"`
	FirstName string `json:"first_name" binding:"max=100"`
	LastName  string `json:"last_name" binding:"max=100"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest carries a refresh token to exchange for a new token pair.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UpdateProfileRequest holds editable profile fields. Omitted fields are unchanged.
type UpdateProfileRequest struct {
	FirstName   *string `json:"first_name" binding:"omitempty,max=100"`
	LastName    *string `json:"last_name" binding:"omitempty,max=100"`
	RiskProfile *string `json:"risk_profile" binding:"omitempty,risk_level"`
}

// UserResponse represents the user data in the response
type UserResponse struct {
	ID          string           `json:"id"`
	Email       string           `json:"email"`
	FirstName   string           `json:"first_name"`
	LastName    string           `json:"last_name"`
	RiskProfile models.RiskLevel `json:"risk_profile"`
}

// AuthResponse is returned by register, login and refresh.
type AuthResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         UserResponse `json:"user"`
}

func toUserResponse(user *models.User) UserResponse {
	return UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		RiskProfile: user.RiskProfile,
	}
}

// issueTokens signs a token pair and records the refresh token hash, which
// invalidates any refresh token issued before.
func (h *AuthHandler) issueTokens(c *gin.Context, user *models.User) (*AuthResponse, error) {
	access, err := middleware.GenerateAccessToken(user)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	refresh, err := middleware.GenerateRefreshToken(user)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := h.userService.StoreRefreshTokenHash(c.Request.Context(), user.ID, middleware.HashToken(refresh)); err != nil {
		return nil, err
	}
	return &AuthResponse{AccessToken: access, RefreshToken: refresh, User: toUserResponse(user)}, nil
}

// Register handles user registration
// @Summary     Register a new user
// @Description Register a new user with email and password
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body RegisterRequest true "User registration data"
// @Success     201 {object} AuthResponse "User registered and tokens generated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Email already registered"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	user, err := h.userService.CreateUser(c.Request.Context(), req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		respondWithError(c, err)
		return
	}

	resp, err := h.issueTokens(c, user)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Login handles user login
// @Summary     Login user
// @Description Authenticate a user and get a token pair
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body LoginRequest true "User login credentials"
// @Success     200 {object} AuthResponse "User authenticated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid credentials"
// @Failure     423 {object} ErrorResponse "Account locked"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	user, err := h.userService.AttemptLogin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	resp, err := h.issueTokens(c, user)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Refresh exchanges a refresh token for a new token pair. Each refresh token
// can be used once.
// @Summary     Refresh tokens
// @Description Exchange a refresh token for a new access and refresh token
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body RefreshRequest true "Refresh token"
// @Success     200 {object} AuthResponse "New token pair"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid refresh token"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	claims, err := middleware.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Invalid or expired refresh token"))
		return
	}

	ctx := c.Request.Context()
	stored, err := h.userService.GetRefreshTokenHash(ctx, claims.UserID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if stored == "" || stored != middleware.HashToken(req.RefreshToken) {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Refresh token has been revoked"))
		return
	}

	user, err := h.userService.GetUserByID(ctx, claims.UserID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	resp, err := h.issueTokens(c, user)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetProfile returns the user's profile
// @Summary     Get user profile
// @Description Get the authenticated user's profile information
// @Tags        user
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} UserResponse "User profile"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "User not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /profile [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": toUserResponse(user)})
}

// UpdateProfile edits the user's name and risk profile.
// @Summary     Update user profile
// @Description Update name fields and the risk profile used for recommendations
// @Tags        user
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpdateProfileRequest true "Profile changes"
// @Success     200 {object} UserResponse "Updated profile"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /profile [put]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, invalidInput(err))
		return
	}

	update := services.ProfileUpdate{FirstName: req.FirstName, LastName: req.LastName}
	changes := map[string]interface{}{}
	if req.RiskProfile != nil {
		risk := models.RiskLevel(*req.RiskProfile)
		update.RiskProfile = &risk
		changes["risk_profile"] = *req.RiskProfile
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, update)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditUpdateProfile, services.ResourceUser, userID, c.ClientIP(), changes)

	c.JSON(http.StatusOK, gin.H{"user": toUserResponse(user)})
}
