package persistence

import (
	"context"
	"errors"

	"github.com/distrib/backoffice/internal/domain/banking"
	"github.com/distrib/backoffice/internal/domain/shared"
	"github.com/distrib/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormBankStatementRepository implements StatementRepository using GORM
type GormBankStatementRepository struct {
	db *gorm.DB
}

// NewGormBankStatementRepository creates a new GormBankStatementRepository
func NewGormBankStatementRepository(db *gorm.DB) *GormBankStatementRepository {
	return &GormBankStatementRepository{db: db}
}

// FindByIDForTenant finds a statement by ID for a specific tenant
func (r *GormBankStatementRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*banking.BankStatement, error) {
	var model models.BankStatementModel
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

// FindByAccountAndFile finds the latest prior import of the same file for an
// account. Forced re-imports can leave several rows per file, so the newest
// one is the conflict reference. Returns nil, nil when the file was never
// imported.
func (r *GormBankStatementRepository) FindByAccountAndFile(ctx context.Context, tenantID, bankAccountID uuid.UUID, fileName string) (*banking.BankStatement, error) {
	var model models.BankStatementModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND bank_account_id = ? AND file_name = ?", tenantID, bankAccountID, fileName).
		Order("imported_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForAccount finds all statements imported for an account, newest first
func (r *GormBankStatementRepository) FindAllForAccount(ctx context.Context, tenantID, bankAccountID uuid.UUID) ([]banking.BankStatement, error) {
	var statementModels []models.BankStatementModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND bank_account_id = ?", tenantID, bankAccountID).
		Order("imported_at DESC").
		Find(&statementModels).Error; err != nil {
		return nil, err
	}
	statements := make([]banking.BankStatement, len(statementModels))
	for i, model := range statementModels {
		statements[i] = *model.ToDomain()
	}
	return statements, nil
}

// Create persists a new statement
func (r *GormBankStatementRepository) Create(ctx context.Context, statement *banking.BankStatement) error {
	model := models.BankStatementModelFromDomain(statement)
	return r.db.WithContext(ctx).Create(model).Error
}

// Save updates an existing statement
func (r *GormBankStatementRepository) Save(ctx context.Context, statement *banking.BankStatement) error {
	model := models.BankStatementModelFromDomain(statement)
	return r.db.WithContext(ctx).Save(model).Error
}

// Ensure GormBankStatementRepository implements StatementRepository
var _ banking.StatementRepository = (*GormBankStatementRepository)(nil)
