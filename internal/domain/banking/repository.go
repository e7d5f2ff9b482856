package banking

import (
	"context"

	"github.com/google/uuid"
)

// StatementRepository persists imported bank statements
type StatementRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*BankStatement, error)
	// FindByAccountAndFile detects a duplicate import of the same file.
	// Returns nil, nil when no prior import exists.
	FindByAccountAndFile(ctx context.Context, tenantID, bankAccountID uuid.UUID, fileName string) (*BankStatement, error)
	FindAllForAccount(ctx context.Context, tenantID, bankAccountID uuid.UUID) ([]BankStatement, error)
	Create(ctx context.Context, statement *BankStatement) error
	Save(ctx context.Context, statement *BankStatement) error
}

// TransactionRepository persists bank statement transactions
type TransactionRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*BankTransaction, error)
	FindByStatement(ctx context.Context, tenantID, statementID uuid.UUID) ([]BankTransaction, error)
	FindPendingByAccount(ctx context.Context, tenantID, bankAccountID uuid.UUID) ([]BankTransaction, error)
	// CreateIgnoreDuplicates inserts transactions, silently skipping any
	// whose (bank account, FIT ID) pair already exists. Returns how many
	// rows were actually inserted.
	CreateIgnoreDuplicates(ctx context.Context, transactions []*BankTransaction) (int64, error)
	SaveWithLock(ctx context.Context, transaction *BankTransaction) error
}
