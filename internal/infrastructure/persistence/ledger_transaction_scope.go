package persistence

import (
	"context"

	appledger "github.com/distrib/backoffice/internal/application/ledger"
	"github.com/distrib/backoffice/internal/domain/ledger"
	"gorm.io/gorm"
)

// GormLedgerTransactionScope implements the ledger TransactionScope using
// GORM transactions. A payment cascade runs entirely inside one Execute call
// so all title updates, movements and any minted credit title commit or roll
// back together.
type GormLedgerTransactionScope struct {
	db *gorm.DB
}

// NewGormLedgerTransactionScope creates a new GormLedgerTransactionScope.
func NewGormLedgerTransactionScope(db *gorm.DB) *GormLedgerTransactionScope {
	return &GormLedgerTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormLedgerTransactionScope) Execute(ctx context.Context, fn func(repos appledger.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormLedgerRepositories{tx: tx}
		return fn(repos)
	})
}

// gormLedgerRepositories provides access to the ledger repositories within a transaction.
type gormLedgerRepositories struct {
	tx *gorm.DB
}

// Titles returns the title repository scoped to the current transaction.
func (r *gormLedgerRepositories) Titles() ledger.TitleRepository {
	return NewGormTitleRepository(r.tx)
}

// Movements returns the movement repository scoped to the current transaction.
func (r *gormLedgerRepositories) Movements() ledger.MovementRepository {
	return NewGormMovementRepository(r.tx)
}

// Ensure GormLedgerTransactionScope implements TransactionScope
var _ appledger.TransactionScope = (*GormLedgerTransactionScope)(nil)

// Ensure gormLedgerRepositories implements TransactionalRepositories
var _ appledger.TransactionalRepositories = (*gormLedgerRepositories)(nil)
