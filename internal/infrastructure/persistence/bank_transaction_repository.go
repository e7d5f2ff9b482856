package persistence

import (
	"context"
	"errors"

	"github.com/distrib/backoffice/internal/domain/banking"
	"github.com/distrib/backoffice/internal/domain/shared"
	"github.com/distrib/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBankTransactionRepository implements TransactionRepository using GORM
type GormBankTransactionRepository struct {
	db *gorm.DB
}

// NewGormBankTransactionRepository creates a new GormBankTransactionRepository
func NewGormBankTransactionRepository(db *gorm.DB) *GormBankTransactionRepository {
	return &GormBankTransactionRepository{db: db}
}

// FindByIDForTenant finds a bank transaction by ID for a specific tenant
func (r *GormBankTransactionRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*banking.BankTransaction, error) {
	var model models.BankTransactionModel
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

// FindByStatement finds all transactions of one imported statement
func (r *GormBankTransactionRepository) FindByStatement(ctx context.Context, tenantID, statementID uuid.UUID) ([]banking.BankTransaction, error) {
	var transactionModels []models.BankTransactionModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND statement_id = ?", tenantID, statementID).
		Order("posted_at ASC").
		Find(&transactionModels).Error; err != nil {
		return nil, err
	}
	return bankTransactionModelsToDomain(transactionModels), nil
}

// FindPendingByAccount finds unreconciled transactions for an account
func (r *GormBankTransactionRepository) FindPendingByAccount(ctx context.Context, tenantID, bankAccountID uuid.UUID) ([]banking.BankTransaction, error) {
	var transactionModels []models.BankTransactionModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND bank_account_id = ? AND status = ?",
			tenantID, bankAccountID, banking.TransactionStatusPending).
		Order("posted_at ASC").
		Find(&transactionModels).Error; err != nil {
		return nil, err
	}
	return bankTransactionModelsToDomain(transactionModels), nil
}

// CreateIgnoreDuplicates inserts transactions, skipping rows whose
// (tenant, bank account, fit id) already exists. The unique index absorbs the
// conflict so re-imports of overlapping statements stay idempotent. Returns
// the number of rows actually inserted.
func (r *GormBankTransactionRepository) CreateIgnoreDuplicates(ctx context.Context, transactions []*banking.BankTransaction) (int64, error) {
	if len(transactions) == 0 {
		return 0, nil
	}

	transactionModels := make([]models.BankTransactionModel, len(transactions))
	for i, tx := range transactions {
		transactionModels[i].FromDomain(tx)
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&transactionModels)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// SaveWithLock saves with optimistic locking
func (r *GormBankTransactionRepository) SaveWithLock(ctx context.Context, transaction *banking.BankTransaction) error {
	model := models.BankTransactionModelFromDomain(transaction)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", transaction.ID, transaction.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The record has been modified by another transaction")
	}
	return nil
}

// bankTransactionModelsToDomain converts persistence models to domain transactions
func bankTransactionModelsToDomain(transactionModels []models.BankTransactionModel) []banking.BankTransaction {
	transactions := make([]banking.BankTransaction, len(transactionModels))
	for i, model := range transactionModels {
		transactions[i] = *model.ToDomain()
	}
	return transactions
}

// Ensure GormBankTransactionRepository implements TransactionRepository
var _ banking.TransactionRepository = (*GormBankTransactionRepository)(nil)
