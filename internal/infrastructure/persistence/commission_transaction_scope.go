package persistence

import (
	"context"

	appcommission "github.com/distrib/backoffice/internal/application/commission"
	"github.com/distrib/backoffice/internal/domain/commission"
	"gorm.io/gorm"
)

// GormCommissionTransactionScope implements the commission TransactionScope
// using GORM transactions. Payout creation updates the payout row and every
// settled record atomically.
type GormCommissionTransactionScope struct {
	db *gorm.DB
}

// NewGormCommissionTransactionScope creates a new GormCommissionTransactionScope.
func NewGormCommissionTransactionScope(db *gorm.DB) *GormCommissionTransactionScope {
	return &GormCommissionTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormCommissionTransactionScope) Execute(ctx context.Context, fn func(repos appcommission.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormCommissionRepositories{tx: tx}
		return fn(repos)
	})
}

// gormCommissionRepositories provides access to the commission repositories within a transaction.
type gormCommissionRepositories struct {
	tx *gorm.DB
}

// Rules returns the rule repository scoped to the current transaction.
func (r *gormCommissionRepositories) Rules() commission.RuleRepository {
	return NewGormCommissionRuleRepository(r.tx)
}

// Records returns the record repository scoped to the current transaction.
func (r *gormCommissionRepositories) Records() commission.RecordRepository {
	return NewGormCommissionRecordRepository(r.tx)
}

// Payouts returns the payout repository scoped to the current transaction.
func (r *gormCommissionRepositories) Payouts() commission.PayoutRepository {
	return NewGormCommissionPayoutRepository(r.tx)
}

// Ensure GormCommissionTransactionScope implements TransactionScope
var _ appcommission.TransactionScope = (*GormCommissionTransactionScope)(nil)

// Ensure gormCommissionRepositories implements TransactionalRepositories
var _ appcommission.TransactionalRepositories = (*gormCommissionRepositories)(nil)
