package ledger

import (
	"time"

	"github.com/distrib/backoffice/internal/domain/shared"
	"github.com/distrib/backoffice/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementType represents the kind of ledger movement
type MovementType string

const (
	MovementTypePayment MovementType = "PAYMENT"
)

// IsValid checks if the movement type is valid
func (m MovementType) IsValid() bool {
	return m == MovementTypePayment
}

// Movement is an immutable, append-only ledger entry that reduces a title's
// balance. The invariant balance == originalAmount - sum(movement amounts)
// holds for every title at all times.
type Movement struct {
	shared.BaseEntity
	TenantID      uuid.UUID       `json:"tenant_id"`
	TitleID       uuid.UUID       `json:"title_id"`
	Type          MovementType    `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentDate   time.Time       `json:"payment_date"`
	UserID        uuid.UUID       `json:"user_id"`
	BankAccountID *uuid.UUID      `json:"bank_account_id,omitempty"`
	Observation   string          `json:"observation,omitempty"`
}

// NewPaymentMovement creates a payment movement against a title
func NewPaymentMovement(
	tenantID, titleID uuid.UUID,
	amount valueobject.Money,
	paymentDate time.Time,
	userID uuid.UUID,
	bankAccountID *uuid.UUID,
	observation string,
) *Movement {
	return &Movement{
		BaseEntity:    shared.NewBaseEntity(),
		TenantID:      tenantID,
		TitleID:       titleID,
		Type:          MovementTypePayment,
		Amount:        amount.Amount(),
		PaymentDate:   paymentDate,
		UserID:        userID,
		BankAccountID: bankAccountID,
		Observation:   observation,
	}
}

// AmountMoney returns the movement amount as Money
func (m *Movement) AmountMoney() valueobject.Money {
	return valueobject.NewMoneyBRL(m.Amount)
}

// SumAmounts totals the amounts of a set of movements
func SumAmounts(movements []Movement) decimal.Decimal {
	total := decimal.Zero
	for _, m := range movements {
		total = total.Add(m.Amount)
	}
	return total
}
