package banking

import (
	"strings"
	"time"

	"github.com/distrib/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionDirection is the direction of a bank statement line
type TransactionDirection string

const (
	DirectionCredit TransactionDirection = "CREDIT"
	DirectionDebit  TransactionDirection = "DEBIT"
)

// IsValid checks if the direction is valid
func (d TransactionDirection) IsValid() bool {
	return d == DirectionCredit || d == DirectionDebit
}

// TransactionStatus tracks whether a bank transaction was reconciled
type TransactionStatus string

const (
	TransactionStatusPending    TransactionStatus = "PENDING"
	TransactionStatusReconciled TransactionStatus = "RECONCILED"
	TransactionStatusIgnored    TransactionStatus = "IGNORED"
)

// BankTransaction is one line of an imported statement. The FIT ID is
// the bank's stable identifier and deduplicates re-imports per account.
type BankTransaction struct {
	shared.TenantAggregateRoot
	StatementID   uuid.UUID            `json:"statement_id"`
	BankAccountID uuid.UUID            `json:"bank_account_id"`
	FitID         string               `json:"fit_id"`
	Direction     TransactionDirection `json:"direction"`
	Amount        decimal.Decimal      `json:"amount"`
	PostedAt      time.Time            `json:"posted_at"`
	Memo          string               `json:"memo"`
	Status        TransactionStatus    `json:"status"`
	MovementID    *uuid.UUID           `json:"movement_id,omitempty"`
}

// NewBankTransaction creates a PENDING transaction from a parsed statement
// line. Amounts are stored positive; the sign lives in Direction.
func NewBankTransaction(
	tenantID, statementID, bankAccountID uuid.UUID,
	fitID string,
	direction TransactionDirection,
	amount decimal.Decimal,
	postedAt time.Time,
	memo string,
) (*BankTransaction, error) {
	fitID = strings.TrimSpace(fitID)
	if fitID == "" {
		return nil, shared.NewDomainError("INVALID_FIT_ID", "Bank transaction FIT ID is required")
	}
	if !direction.IsValid() {
		return nil, shared.NewDomainError("INVALID_DIRECTION", "Transaction direction must be CREDIT or DEBIT")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Transaction amount must be positive")
	}

	return &BankTransaction{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		StatementID:         statementID,
		BankAccountID:       bankAccountID,
		FitID:               fitID,
		Direction:           direction,
		Amount:              amount,
		PostedAt:            postedAt,
		Memo:                memo,
		Status:              TransactionStatusPending,
	}, nil
}

// Reconcile links the transaction to the ledger movement that settled it
func (t *BankTransaction) Reconcile(movementID uuid.UUID) error {
	if t.Status == TransactionStatusReconciled {
		return shared.NewDomainError("ALREADY_RECONCILED", "Bank transaction is already reconciled")
	}
	t.Status = TransactionStatusReconciled
	t.MovementID = &movementID
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
	return nil
}

// Ignore marks a transaction as not relevant for reconciliation
func (t *BankTransaction) Ignore() error {
	if t.Status == TransactionStatusReconciled {
		return shared.NewDomainError("ALREADY_RECONCILED", "Reconciled transactions cannot be ignored")
	}
	t.Status = TransactionStatusIgnored
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
	return nil
}
