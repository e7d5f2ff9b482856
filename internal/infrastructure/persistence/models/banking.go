package models

import (
	"time"

	"github.com/distrib/backoffice/internal/domain/banking"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BankStatementModel is the persistence model for the BankStatement aggregate root.
type BankStatementModel struct {
	TenantAggregateModel
	BankAccountID    uuid.UUID `gorm:"type:uuid;not null;index:idx_statement_tenant_account_file,priority:2"`
	FileName         string    `gorm:"type:varchar(255);not null;index:idx_statement_tenant_account_file,priority:3"`
	ImportedAt       time.Time `gorm:"not null"`
	PeriodStart      time.Time
	PeriodEnd        time.Time
	TransactionCount int `gorm:"not null;default:0"`
	SkippedCount     int `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (BankStatementModel) TableName() string {
	return "bank_statements"
}

// ToDomain converts the persistence model to a domain BankStatement entity.
func (m *BankStatementModel) ToDomain() *banking.BankStatement {
	s := &banking.BankStatement{
		BankAccountID:    m.BankAccountID,
		FileName:         m.FileName,
		ImportedAt:       m.ImportedAt,
		PeriodStart:      m.PeriodStart,
		PeriodEnd:        m.PeriodEnd,
		TransactionCount: m.TransactionCount,
		SkippedCount:     m.SkippedCount,
	}
	m.PopulateTenantAggregateRoot(&s.TenantAggregateRoot)
	return s
}

// FromDomain populates the persistence model from a domain BankStatement entity.
func (m *BankStatementModel) FromDomain(s *banking.BankStatement) {
	m.FromDomainTenantAggregateRoot(s.TenantAggregateRoot)
	m.BankAccountID = s.BankAccountID
	m.FileName = s.FileName
	m.ImportedAt = s.ImportedAt
	m.PeriodStart = s.PeriodStart
	m.PeriodEnd = s.PeriodEnd
	m.TransactionCount = s.TransactionCount
	m.SkippedCount = s.SkippedCount
}

// BankStatementModelFromDomain creates a new persistence model from a domain BankStatement.
func BankStatementModelFromDomain(s *banking.BankStatement) *BankStatementModel {
	m := &BankStatementModel{}
	m.FromDomain(s)
	return m
}

// BankTransactionModel is the persistence model for the BankTransaction aggregate root.
// The unique index on (tenant, account, fit id) backs import deduplication.
type BankTransactionModel struct {
	TenantAggregateModel
	StatementID   uuid.UUID                    `gorm:"type:uuid;not null;index"`
	BankAccountID uuid.UUID                    `gorm:"type:uuid;not null;uniqueIndex:idx_bank_tx_tenant_account_fit,priority:2"`
	FitID         string                       `gorm:"type:varchar(100);not null;uniqueIndex:idx_bank_tx_tenant_account_fit,priority:3"`
	Direction     banking.TransactionDirection `gorm:"type:varchar(10);not null"`
	Amount        decimal.Decimal              `gorm:"type:decimal(18,4);not null"`
	PostedAt      time.Time                    `gorm:"not null;index"`
	Memo          string                       `gorm:"type:text"`
	Status        banking.TransactionStatus    `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	MovementID    *uuid.UUID                   `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (BankTransactionModel) TableName() string {
	return "bank_transactions"
}

// ToDomain converts the persistence model to a domain BankTransaction entity.
func (m *BankTransactionModel) ToDomain() *banking.BankTransaction {
	t := &banking.BankTransaction{
		StatementID:   m.StatementID,
		BankAccountID: m.BankAccountID,
		FitID:         m.FitID,
		Direction:     m.Direction,
		Amount:        m.Amount,
		PostedAt:      m.PostedAt,
		Memo:          m.Memo,
		Status:        m.Status,
		MovementID:    m.MovementID,
	}
	m.PopulateTenantAggregateRoot(&t.TenantAggregateRoot)
	return t
}

// FromDomain populates the persistence model from a domain BankTransaction entity.
func (m *BankTransactionModel) FromDomain(t *banking.BankTransaction) {
	m.FromDomainTenantAggregateRoot(t.TenantAggregateRoot)
	m.StatementID = t.StatementID
	m.BankAccountID = t.BankAccountID
	m.FitID = t.FitID
	m.Direction = t.Direction
	m.Amount = t.Amount
	m.PostedAt = t.PostedAt
	m.Memo = t.Memo
	m.Status = t.Status
	m.MovementID = t.MovementID
}

// BankTransactionModelFromDomain creates a new persistence model from a domain BankTransaction.
func BankTransactionModelFromDomain(t *banking.BankTransaction) *BankTransactionModel {
	m := &BankTransactionModel{}
	m.FromDomain(t)
	return m
}
