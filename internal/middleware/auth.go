package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"yieldvest/internal/config"
	apperrors "yieldvest/internal/errors"
	"yieldvest/internal/models"
	"yieldvest/internal/uuid"
)

const (
	tokenIssuer        = "yieldvest-api"
	refreshTokenExpiry = 7 * 24 * time.Hour

	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// Context keys set by AuthMiddleware.
const (
	UserIDKey = "userID"
	EmailKey  = "email"
)

var errInvalidToken = errors.New("invalid or expired token")

func getJWTKey() []byte {
	return []byte(config.Get().JWTSecret)
}

// JWTClaims represents the claims in the JWT
type JWTClaims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

func signToken(user *models.User, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &JWTClaims{
		UserID:    user.ID,
		Email:     user.Email,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   user.ID,
			ID:        uuid.New(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(getJWTKey())
}

// GenerateAccessToken generates a JWT access token valid for JWT_EXPIRES_IN.
func GenerateAccessToken(user *models.User) (string, error) {
	return signToken(user, tokenTypeAccess, config.Get().JWTExpirationDur)
}

// GenerateRefreshToken generates a long-lived JWT refresh token for a user.
func GenerateRefreshToken(user *models.User) (string, error) {
	return signToken(user, tokenTypeRefresh, refreshTokenExpiry)
}

func parseToken(tokenString, wantType string) (*JWTClaims, error) {
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return getJWTKey(), nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil || !token.Valid {
		return nil, errInvalidToken
	}
	if claims.TokenType != wantType || claims.UserID == "" {
		return nil, errInvalidToken
	}
	return claims, nil
}

// ValidateAccessToken parses and validates an access token.
func ValidateAccessToken(tokenString string) (*JWTClaims, error) {
	return parseToken(tokenString, tokenTypeAccess)
}

// ValidateRefreshToken parses and validates a refresh token. Access tokens
// are rejected.
func ValidateRefreshToken(tokenString string) (*JWTClaims, error) {
	return parseToken(tokenString, tokenTypeRefresh)
}

// HashToken returns the SHA-256 hex digest of a token string.
func HashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

func abortUnauthorized(c *gin.Context, message string) {
	appErr := apperrors.WithMessage(apperrors.ErrUnauthorized, message)
	c.AbortWithStatusJSON(appErr.StatusCode, errorBody(appErr))
}

// AuthMiddleware verifies the bearer access token and sets the user ID and
// email in the context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "Authorization header is required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortUnauthorized(c, "Invalid authorization header format")
			return
		}

		claims, err := ValidateAccessToken(parts[1])
		if err != nil {
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(EmailKey, claims.Email)
		c.Next()
	}
}
