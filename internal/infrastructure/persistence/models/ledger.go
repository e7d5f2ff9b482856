package models

import (
	"time"

	"github.com/distrib/backoffice/internal/domain/ledger"
	"github.com/distrib/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TitleModel is the persistence model for the Title aggregate root.
type TitleModel struct {
	TenantAggregateModel
	TitleNumber      string             `gorm:"type:varchar(50);not null;uniqueIndex:idx_title_tenant_number,priority:2"`
	Type             ledger.TitleType   `gorm:"type:varchar(20);not null;index"`
	Status           ledger.TitleStatus `gorm:"type:varchar(20);not null;default:'OPEN';index"`
	OriginalAmount   decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	Balance          decimal.Decimal    `gorm:"type:decimal(18,4);not null;index"`
	DueDate          time.Time          `gorm:"not null;index"`
	CounterpartyID   *uuid.UUID         `gorm:"type:uuid;index"`
	OrderID          *uuid.UUID         `gorm:"type:uuid;index"`
	GatewayPaymentID string             `gorm:"type:varchar(100);index"`
	IsCredit         bool               `gorm:"not null;default:false"`
	Observation      string             `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (TitleModel) TableName() string {
	return "titles"
}

// ToDomain converts the persistence model to a domain Title entity.
func (m *TitleModel) ToDomain() *ledger.Title {
	t := &ledger.Title{
		TitleNumber:      m.TitleNumber,
		Type:             m.Type,
		Status:           m.Status,
		OriginalAmount:   m.OriginalAmount,
		Balance:          m.Balance,
		DueDate:          m.DueDate,
		CounterpartyID:   m.CounterpartyID,
		OrderID:          m.OrderID,
		GatewayPaymentID: m.GatewayPaymentID,
		IsCredit:         m.IsCredit,
		Observation:      m.Observation,
	}
	m.PopulateTenantAggregateRoot(&t.TenantAggregateRoot)
	return t
}

// FromDomain populates the persistence model from a domain Title entity.
func (m *TitleModel) FromDomain(t *ledger.Title) {
	m.FromDomainTenantAggregateRoot(t.TenantAggregateRoot)
	m.TitleNumber = t.TitleNumber
	m.Type = t.Type
	m.Status = t.Status
	m.OriginalAmount = t.OriginalAmount
	m.Balance = t.Balance
	m.DueDate = t.DueDate
	m.CounterpartyID = t.CounterpartyID
	m.OrderID = t.OrderID
	m.GatewayPaymentID = t.GatewayPaymentID
	m.IsCredit = t.IsCredit
	m.Observation = t.Observation
}

// TitleModelFromDomain creates a new persistence model from a domain Title.
func TitleModelFromDomain(t *ledger.Title) *TitleModel {
	m := &TitleModel{}
	m.FromDomain(t)
	return m
}

// MovementModel is the persistence model for the append-only movement log.
// Movements are never updated or deleted after insert.
type MovementModel struct {
	BaseModel
	TenantID      uuid.UUID           `gorm:"type:uuid;not null;index"`
	TitleID       uuid.UUID           `gorm:"type:uuid;not null;index"`
	Type          ledger.MovementType `gorm:"type:varchar(20);not null"`
	Amount        decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	PaymentDate   time.Time           `gorm:"not null;index"`
	UserID        uuid.UUID           `gorm:"type:uuid;not null"`
	BankAccountID *uuid.UUID          `gorm:"type:uuid;index"`
	Observation   string              `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (MovementModel) TableName() string {
	return "movements"
}

// ToDomain converts the persistence model to a domain Movement entity.
func (m *MovementModel) ToDomain() *ledger.Movement {
	return &ledger.Movement{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		TenantID:      m.TenantID,
		TitleID:       m.TitleID,
		Type:          m.Type,
		Amount:        m.Amount,
		PaymentDate:   m.PaymentDate,
		UserID:        m.UserID,
		BankAccountID: m.BankAccountID,
		Observation:   m.Observation,
	}
}

// FromDomain populates the persistence model from a domain Movement entity.
func (m *MovementModel) FromDomain(mv *ledger.Movement) {
	m.FromDomainBaseEntity(mv.BaseEntity)
	m.TenantID = mv.TenantID
	m.TitleID = mv.TitleID
	m.Type = mv.Type
	m.Amount = mv.Amount
	m.PaymentDate = mv.PaymentDate
	m.UserID = mv.UserID
	m.BankAccountID = mv.BankAccountID
	m.Observation = mv.Observation
}

// MovementModelFromDomain creates a new persistence model from a domain Movement.
func MovementModelFromDomain(mv *ledger.Movement) *MovementModel {
	m := &MovementModel{}
	m.FromDomain(mv)
	return m
}
