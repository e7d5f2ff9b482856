package ledger

import (
	"context"

	"github.com/distrib/backoffice/internal/domain/ledger"
)

// TransactionScope provides transactional access to ledger repositories.
// When a function is executed within a transaction scope, all repository
// operations are part of the same database transaction and commit or roll
// back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the ledger repositories
// within a transaction. All repositories returned share the same
// underlying database transaction.
type TransactionalRepositories interface {
	// Titles returns the title repository scoped to the current transaction
	Titles() ledger.TitleRepository
	// Movements returns the movement repository scoped to the current transaction
	Movements() ledger.MovementRepository
}

// NoOpTransactionScope runs the function without a real transaction.
// Useful for tests with mock repositories.
type NoOpTransactionScope struct {
	titleRepo    ledger.TitleRepository
	movementRepo ledger.MovementRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(titleRepo ledger.TitleRepository, movementRepo ledger.MovementRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{titleRepo: titleRepo, movementRepo: movementRepo}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Titles returns the title repository.
func (s *NoOpTransactionScope) Titles() ledger.TitleRepository { return s.titleRepo }

// Movements returns the movement repository.
func (s *NoOpTransactionScope) Movements() ledger.MovementRepository { return s.movementRepo }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
