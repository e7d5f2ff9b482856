package persistence

import (
	"context"

	appbanking "github.com/distrib/backoffice/internal/application/banking"
	"github.com/distrib/backoffice/internal/domain/banking"
	"gorm.io/gorm"
)

// GormBankingTransactionScope implements the banking TransactionScope using
// GORM transactions. It exposes the ledger repositories alongside the
// banking ones so confirming a reconciliation match allocates the payment
// and flips the bank transaction in a single database transaction.
type GormBankingTransactionScope struct {
	db *gorm.DB
}

// NewGormBankingTransactionScope creates a new GormBankingTransactionScope.
func NewGormBankingTransactionScope(db *gorm.DB) *GormBankingTransactionScope {
	return &GormBankingTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormBankingTransactionScope) Execute(ctx context.Context, fn func(repos appbanking.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormBankingRepositories{
			gormLedgerRepositories: gormLedgerRepositories{tx: tx},
		}
		return fn(repos)
	})
}

// gormBankingRepositories provides access to the banking and ledger
// repositories within one transaction.
type gormBankingRepositories struct {
	gormLedgerRepositories
}

// Statements returns the statement repository scoped to the current transaction.
func (r *gormBankingRepositories) Statements() banking.StatementRepository {
	return NewGormBankStatementRepository(r.tx)
}

// Transactions returns the bank transaction repository scoped to the current transaction.
func (r *gormBankingRepositories) Transactions() banking.TransactionRepository {
	return NewGormBankTransactionRepository(r.tx)
}

// Ensure GormBankingTransactionScope implements TransactionScope
var _ appbanking.TransactionScope = (*GormBankingTransactionScope)(nil)

// Ensure gormBankingRepositories implements TransactionalRepositories
var _ appbanking.TransactionalRepositories = (*gormBankingRepositories)(nil)
