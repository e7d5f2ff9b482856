package commission

import (
	"context"

	"github.com/distrib/backoffice/internal/domain/commission"
)

// TransactionScope provides transactional access to commission repositories
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the commission repositories
// within a transaction
type TransactionalRepositories interface {
	// Rules returns the rule repository scoped to the current transaction
	Rules() commission.RuleRepository
	// Records returns the record repository scoped to the current transaction
	Records() commission.RecordRepository
	// Payouts returns the payout repository scoped to the current transaction
	Payouts() commission.PayoutRepository
}

// NoOpTransactionScope runs the function without a real transaction.
// Useful for tests with mock repositories.
type NoOpTransactionScope struct {
	ruleRepo   commission.RuleRepository
	recordRepo commission.RecordRepository
	payoutRepo commission.PayoutRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	ruleRepo commission.RuleRepository,
	recordRepo commission.RecordRepository,
	payoutRepo commission.PayoutRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{ruleRepo: ruleRepo, recordRepo: recordRepo, payoutRepo: payoutRepo}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Rules returns the rule repository.
func (s *NoOpTransactionScope) Rules() commission.RuleRepository { return s.ruleRepo }

// Records returns the record repository.
func (s *NoOpTransactionScope) Records() commission.RecordRepository { return s.recordRepo }

// Payouts returns the payout repository.
func (s *NoOpTransactionScope) Payouts() commission.PayoutRepository { return s.payoutRepo }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
