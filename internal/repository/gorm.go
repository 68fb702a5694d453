package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"yieldvest/internal/models"
	"yieldvest/internal/pagination"
)

// GormStore implements Store on top of GORM.
type GormStore struct {
	db *gorm.DB
}

var _ Store = (*GormStore)(nil)

// NewGormStore creates a GormStore.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// withProduct preloads the investment's product, soft-deleted or not.
func withProduct(db *gorm.DB) *gorm.DB {
	return db.Preload("Product", func(tx *gorm.DB) *gorm.DB { return tx.Unscoped() })
}

func applyInvestmentFilter(db *gorm.DB, filter InvestmentFilter) *gorm.DB {
	if len(filter.Statuses) > 0 {
		db = db.Where("status IN ?", filter.Statuses)
	}
	return db
}

// GetProduct implements ProductStore.
func (s *GormStore) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).Unscoped().Where("id = ?", id).First(&product).Error; err != nil {
		return nil, notFound(err)
	}
	return &product, nil
}

// GetActiveProducts implements ProductStore.
func (s *GormStore) GetActiveProducts(ctx context.Context, filter ProductFilter, page *pagination.PageRequest) ([]models.Product, int64, error) {
	base := s.db.WithContext(ctx).Model(&models.Product{}).Where("is_active = ?", true)
	if filter.Type != nil {
		base = base.Where("type = ?", *filter.Type)
	}
	if filter.RiskLevel != nil {
		base = base.Where("risk_level = ?", *filter.RiskLevel)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := base.Session(&gorm.Session{}).Order("created_at ASC, id ASC")
	if page != nil {
		query = query.Scopes(pagination.Paginate(*page))
	}

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// CreateProduct implements ProductStore.
func (s *GormStore) CreateProduct(ctx context.Context, product *models.Product) error {
	return s.db.WithContext(ctx).Create(product).Error
}

// SaveProduct implements ProductStore.
func (s *GormStore) SaveProduct(ctx context.Context, product *models.Product) error {
	return s.db.WithContext(ctx).Save(product).Error
}

// ReplaceProduct implements ProductStore.
func (s *GormStore) ReplaceProduct(ctx context.Context, current, next *models.Product) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Product{}).Where("id = ?", current.ID).Update("is_active", false)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		current.IsActive = false
		return tx.Create(next).Error
	})
}

// DeactivateProduct implements ProductStore.
func (s *GormStore) DeactivateProduct(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Product{}).Where("id = ?", id).Update("is_active", false)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Where("id = ?", id).Delete(&models.Product{}).Error
	})
}

// SaveProductIfUnreferenced implements ProductStore.
func (s *GormStore) SaveProductIfUnreferenced(ctx context.Context, product *models.Product) error {
	db := s.db.WithContext(ctx)
	referenced := db.Model(&models.Investment{}).Select("1").Where("investments.product_id = ?", product.ID)

	res := db.Model(&models.Product{}).
		Where("id = ? AND NOT EXISTS (?)", product.ID, referenced).
		Updates(map[string]interface{}{
			"name":           product.Name,
			"description":    product.Description,
			"type":           product.Type,
			"tenure_months":  product.TenureMonths,
			"annual_yield":   product.AnnualYield,
			"risk_level":     product.RiskLevel,
			"min_investment": product.MinInvestment,
			"max_investment": product.MaxInvestment,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

// GetInvestment implements InvestmentStore.
func (s *GormStore) GetInvestment(ctx context.Context, id string) (*models.Investment, error) {
	var investment models.Investment
	if err := withProduct(s.db.WithContext(ctx)).Where("id = ?", id).First(&investment).Error; err != nil {
		return nil, notFound(err)
	}
	return &investment, nil
}

// GetInvestmentsByUser implements InvestmentStore.
func (s *GormStore) GetInvestmentsByUser(ctx context.Context, userID string, filter InvestmentFilter) ([]models.Investment, error) {
	query := applyInvestmentFilter(s.db.WithContext(ctx).Where("user_id = ?", userID), filter)

	var investments []models.Investment
	if err := withProduct(query).Order("invested_at ASC, id ASC").Find(&investments).Error; err != nil {
		return nil, err
	}
	return investments, nil
}

// ListInvestmentsByUser implements InvestmentStore.
func (s *GormStore) ListInvestmentsByUser(ctx context.Context, userID string, filter InvestmentFilter, page pagination.PageRequest) ([]models.Investment, int64, error) {
	base := applyInvestmentFilter(s.db.WithContext(ctx).Model(&models.Investment{}).Where("user_id = ?", userID), filter)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var investments []models.Investment
	if err := withProduct(base.Session(&gorm.Session{})).
		Order("invested_at DESC, id DESC").
		Scopes(pagination.Paginate(page)).
		Find(&investments).Error; err != nil {
		return nil, 0, err
	}
	return investments, total, nil
}

// CreateInvestment implements InvestmentStore.
func (s *GormStore) CreateInvestment(ctx context.Context, investment *models.Investment) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Create(investment).Error
}

// UpdateInvestmentStatus implements InvestmentStore.
func (s *GormStore) UpdateInvestmentStatus(ctx context.Context, id string, expected, next models.InvestmentStatus, fields map[string]interface{}) error {
	updates := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		updates[k] = v
	}
	updates["status"] = next

	res := s.db.WithContext(ctx).Model(&models.Investment{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

// UpdateInvestmentNotes implements InvestmentStore.
func (s *GormStore) UpdateInvestmentNotes(ctx context.Context, id, notes string) error {
	res := s.db.WithContext(ctx).Model(&models.Investment{}).Where("id = ?", id).Update("notes", notes)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetDueInvestments implements InvestmentStore.
func (s *GormStore) GetDueInvestments(ctx context.Context, asOf time.Time) ([]models.Investment, error) {
	var investments []models.Investment
	err := withProduct(s.db.WithContext(ctx)).
		Where("status = ? AND maturity_date <= ?", models.InvestmentStatusActive, asOf).
		Order("maturity_date ASC").
		Find(&investments).Error
	return investments, err
}

// UserIDsWithInvestments implements InvestmentStore.
func (s *GormStore) UserIDsWithInvestments(ctx context.Context) ([]string, error) {
	var userIDs []string
	err := s.db.WithContext(ctx).Model(&models.Investment{}).Distinct("user_id").Pluck("user_id", &userIDs).Error
	return userIDs, err
}

// UpsertPortfolioSnapshot implements SnapshotStore.
func (s *GormStore) UpsertPortfolioSnapshot(ctx context.Context, snapshot *models.PortfolioSnapshot) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "recorded_at"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_invested", "current_value", "total_gain", "investment_count", "diversification_score",
		}),
	}).Create(snapshot).Error
}

// ListPortfolioSnapshots implements SnapshotStore.
func (s *GormStore) ListPortfolioSnapshots(ctx context.Context, userID string, from, to time.Time, page pagination.PageRequest) ([]models.PortfolioSnapshot, int64, error) {
	base := s.db.WithContext(ctx).Model(&models.PortfolioSnapshot{}).
		Where("user_id = ? AND recorded_at >= ? AND recorded_at <= ?", userID, from, to)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var snapshots []models.PortfolioSnapshot
	if err := base.Session(&gorm.Session{}).Order("recorded_at DESC").Scopes(pagination.Paginate(page)).Find(&snapshots).Error; err != nil {
		return nil, 0, err
	}
	return snapshots, total, nil
}
