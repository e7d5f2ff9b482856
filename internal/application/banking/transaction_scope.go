package banking

import (
	"context"

	appledger "github.com/distrib/backoffice/internal/application/ledger"
	"github.com/distrib/backoffice/internal/domain/banking"
)

// TransactionScope provides transactional access to the banking repositories.
// Banking transactions embed the ledger repositories so a reconciliation can
// allocate a payment and flip the bank transaction in one database
// transaction.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the banking and ledger
// repositories within one transaction
type TransactionalRepositories interface {
	appledger.TransactionalRepositories
	// Statements returns the statement repository scoped to the current transaction
	Statements() banking.StatementRepository
	// Transactions returns the bank transaction repository scoped to the current transaction
	Transactions() banking.TransactionRepository
}

// NoOpTransactionScope runs the function without a real transaction.
// Useful for tests with mock repositories.
type NoOpTransactionScope struct {
	appledger.TransactionalRepositories
	statementRepo   banking.StatementRepository
	transactionRepo banking.TransactionRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	ledgerRepos appledger.TransactionalRepositories,
	statementRepo banking.StatementRepository,
	transactionRepo banking.TransactionRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		TransactionalRepositories: ledgerRepos,
		statementRepo:             statementRepo,
		transactionRepo:           transactionRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Statements returns the statement repository.
func (s *NoOpTransactionScope) Statements() banking.StatementRepository { return s.statementRepo }

// Transactions returns the bank transaction repository.
func (s *NoOpTransactionScope) Transactions() banking.TransactionRepository { return s.transactionRepo }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
