package banking

import (
	"strings"
	"time"

	"github.com/distrib/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BankStatement is one imported statement file for a bank account.
// Transactions hang off the statement and are deduplicated by FIT ID
// across every statement of the same account.
type BankStatement struct {
	shared.TenantAggregateRoot
	BankAccountID    uuid.UUID `json:"bank_account_id"`
	FileName         string    `json:"file_name"`
	ImportedAt       time.Time `json:"imported_at"`
	PeriodStart      time.Time `json:"period_start"`
	PeriodEnd        time.Time `json:"period_end"`
	TransactionCount int       `json:"transaction_count"`
	SkippedCount     int       `json:"skipped_count"`
}

// NewBankStatement registers an imported statement file
func NewBankStatement(tenantID, bankAccountID uuid.UUID, fileName string, periodStart, periodEnd time.Time) (*BankStatement, error) {
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return nil, shared.NewDomainError("INVALID_FILE_NAME", "Statement file name is required")
	}
	if bankAccountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BANK_ACCOUNT", "Bank account is required")
	}

	return &BankStatement{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		BankAccountID:       bankAccountID,
		FileName:            fileName,
		ImportedAt:          time.Now(),
		PeriodStart:         periodStart,
		PeriodEnd:           periodEnd,
	}, nil
}

// RecordImportResult fixes the counts after transaction deduplication
func (s *BankStatement) RecordImportResult(imported, skipped int) {
	s.TransactionCount = imported
	s.SkippedCount = skipped
	s.UpdatedAt = time.Now()
}

// ParsedLine is one transaction as read from a statement file, before any
// persistence or dedup
type ParsedLine struct {
	FitID     string
	Direction TransactionDirection
	Amount    decimal.Decimal
	PostedAt  time.Time
	Memo      string
}

// ParsedStatement is the format-independent result of parsing a statement
// file. Parsers for concrete formats (OFX) produce this.
type ParsedStatement struct {
	PeriodStart time.Time
	PeriodEnd   time.Time
	Lines       []ParsedLine
}
