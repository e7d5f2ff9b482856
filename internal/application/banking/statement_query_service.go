package banking

import (
	"context"

	"github.com/distrib/backoffice/internal/domain/banking"
	"github.com/distrib/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// StatementQueryService serves the read side of statement imports:
// statement history per account and the transactions inside a statement.
type StatementQueryService struct {
	statementRepo   banking.StatementRepository
	transactionRepo banking.TransactionRepository
}

// NewStatementQueryService creates a new StatementQueryService
func NewStatementQueryService(
	statementRepo banking.StatementRepository,
	transactionRepo banking.TransactionRepository,
) *StatementQueryService {
	return &StatementQueryService{
		statementRepo:   statementRepo,
		transactionRepo: transactionRepo,
	}
}

// GetStatement loads one imported statement
func (s *StatementQueryService) GetStatement(ctx context.Context, tenantID, statementID uuid.UUID) (*banking.BankStatement, error) {
	statement, err := s.statementRepo.FindByIDForTenant(ctx, tenantID, statementID)
	if err != nil {
		return nil, err
	}
	if statement == nil {
		return nil, shared.ErrNotFound
	}
	return statement, nil
}

// ListStatements returns the import history of one bank account, newest first
func (s *StatementQueryService) ListStatements(ctx context.Context, tenantID, bankAccountID uuid.UUID) ([]banking.BankStatement, error) {
	return s.statementRepo.FindAllForAccount(ctx, tenantID, bankAccountID)
}

// ListStatementTransactions returns the transactions of one statement
func (s *StatementQueryService) ListStatementTransactions(ctx context.Context, tenantID, statementID uuid.UUID) ([]banking.BankTransaction, error) {
	if _, err := s.GetStatement(ctx, tenantID, statementID); err != nil {
		return nil, err
	}
	return s.transactionRepo.FindByStatement(ctx, tenantID, statementID)
}

// ListPendingTransactions returns unreconciled transactions of one account
func (s *StatementQueryService) ListPendingTransactions(ctx context.Context, tenantID, bankAccountID uuid.UUID) ([]banking.BankTransaction, error) {
	return s.transactionRepo.FindPendingByAccount(ctx, tenantID, bankAccountID)
}
