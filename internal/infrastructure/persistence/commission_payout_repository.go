package persistence

import (
	"context"
	"errors"

	"github.com/distrib/backoffice/internal/domain/commission"
	"github.com/distrib/backoffice/internal/domain/shared"
	"github.com/distrib/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCommissionPayoutRepository implements PayoutRepository using GORM
type GormCommissionPayoutRepository struct {
	db *gorm.DB
}

// NewGormCommissionPayoutRepository creates a new GormCommissionPayoutRepository
func NewGormCommissionPayoutRepository(db *gorm.DB) *GormCommissionPayoutRepository {
	return &GormCommissionPayoutRepository{db: db}
}

// FindByIDForTenant finds a payout by ID for a specific tenant
func (r *GormCommissionPayoutRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*commission.CommissionPayout, error) {
	var model models.CommissionPayoutModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySeller finds all payouts for a seller, newest first
func (r *GormCommissionPayoutRepository) FindBySeller(ctx context.Context, tenantID, sellerID uuid.UUID) ([]commission.CommissionPayout, error) {
	var payoutModels []models.CommissionPayoutModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND seller_id = ?", tenantID, sellerID).
		Order("paid_at DESC").
		Find(&payoutModels).Error; err != nil {
		return nil, err
	}
	payouts := make([]commission.CommissionPayout, len(payoutModels))
	for i, model := range payoutModels {
		payouts[i] = *model.ToDomain()
	}
	return payouts, nil
}

// Create persists a new payout
func (r *GormCommissionPayoutRepository) Create(ctx context.Context, payout *commission.CommissionPayout) error {
	model := models.CommissionPayoutModelFromDomain(payout)
	return r.db.WithContext(ctx).Create(model).Error
}

// Ensure GormCommissionPayoutRepository implements PayoutRepository
var _ commission.PayoutRepository = (*GormCommissionPayoutRepository)(nil)
