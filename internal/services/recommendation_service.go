package services

import (
	"context"

	apperrors "yieldvest/internal/errors"
	"yieldvest/internal/insights"
	"yieldvest/internal/models"
	"yieldvest/internal/recommend"
	"yieldvest/internal/repository"
)

// DefaultRecommendationLimit is used when no limit is configured.
const DefaultRecommendationLimit = 5

// recommendationService ranks catalog products for a user.
type recommendationService struct {
	products repository.ProductStore
	users    UserServicer
	writer   *insights.Writer
	limit    int
}

// NewRecommendationService creates a new RecommendationServicer.
func NewRecommendationService(products repository.ProductStore, users UserServicer, writer *insights.Writer, limit int) RecommendationServicer {
	if limit <= 0 {
		limit = DefaultRecommendationLimit
	}
	if writer == nil {
		writer = insights.NewWriter(nil, nil)
	}
	return &recommendationService{products: products, users: users, writer: writer, limit: limit}
}

// profileFor resolves the risk profile to rank for.
func (s *recommendationService) profileFor(ctx context.Context, userID string, requested *models.RiskLevel) (models.RiskLevel, error) {
	if requested != nil {
		if !requested.Valid() {
			return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "risk_profile must be one of low, moderate, high")
		}
		return *requested, nil
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.RiskProfile.Valid() {
		return user.RiskProfile, nil
	}
	return models.RiskLevelModerate, nil
}

// Recommend ranks active products for a risk profile by annual yield.
func (s *recommendationService) Recommend(ctx context.Context, userID string, riskProfile *models.RiskLevel, topN int) (*Recommendations, error) {
	profile, err := s.profileFor(ctx, userID, riskProfile)
	if err != nil {
		return nil, err
	}
	if topN <= 0 {
		topN = s.limit
	}

	candidates, _, err := s.products.GetActiveProducts(ctx, repository.ProductFilter{RiskLevel: &profile}, nil)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	ranked := recommend.Rank(profile, candidates, topN)
	return &Recommendations{
		RiskProfile: profile,
		Products:    ranked,
		Insight:     s.writer.Recommendations(ctx, profile, ranked),
	}, nil
}
