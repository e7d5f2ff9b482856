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

// GormCommissionRecordRepository implements RecordRepository using GORM
type GormCommissionRecordRepository struct {
	db *gorm.DB
}

// NewGormCommissionRecordRepository creates a new GormCommissionRecordRepository
func NewGormCommissionRecordRepository(db *gorm.DB) *GormCommissionRecordRepository {
	return &GormCommissionRecordRepository{db: db}
}

// FindByIDForTenant finds a commission record by ID for a specific tenant
func (r *GormCommissionRecordRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*commission.CommissionRecord, error) {
	var model models.CommissionRecordModel
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

// FindByOrder finds the commission record for an order. Each order carries at
// most one record.
func (r *GormCommissionRecordRepository) FindByOrder(ctx context.Context, tenantID, orderID uuid.UUID) (*commission.CommissionRecord, error) {
	var model models.CommissionRecordModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND order_id = ?", tenantID, orderID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDsForTenant loads a batch of records by ID for payout revalidation
func (r *GormCommissionRecordRepository) FindByIDsForTenant(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*commission.CommissionRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var recordModels []models.CommissionRecordModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Find(&recordModels).Error; err != nil {
		return nil, err
	}
	records := make([]*commission.CommissionRecord, len(recordModels))
	for i, model := range recordModels {
		records[i] = model.ToDomain()
	}
	return records, nil
}

// FindAllForTenant finds commission records with filtering and a total count
func (r *GormCommissionRecordRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter commission.RecordFilter) ([]commission.CommissionRecord, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.CommissionRecordModel{}).
		Where("tenant_id = ?", tenantID)
	if filter.SellerID != nil {
		query = query.Where("seller_id = ?", *filter.SellerID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var recordModels []models.CommissionRecordModel
	if err := query.Order("due_date ASC, created_at ASC").Find(&recordModels).Error; err != nil {
		return nil, 0, err
	}
	records := make([]commission.CommissionRecord, len(recordModels))
	for i, model := range recordModels {
		records[i] = *model.ToDomain()
	}
	return records, count, nil
}

// Create persists a new commission record
func (r *GormCommissionRecordRepository) Create(ctx context.Context, record *commission.CommissionRecord) error {
	model := models.CommissionRecordModelFromDomain(record)
	return r.db.WithContext(ctx).Create(model).Error
}

// SaveWithLock saves with optimistic locking
func (r *GormCommissionRecordRepository) SaveWithLock(ctx context.Context, record *commission.CommissionRecord) error {
	model := models.CommissionRecordModelFromDomain(record)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", record.ID, record.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The record has been modified by another transaction")
	}
	return nil
}

// Ensure GormCommissionRecordRepository implements RecordRepository
var _ commission.RecordRepository = (*GormCommissionRecordRepository)(nil)
