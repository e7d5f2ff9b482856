package ledger

import (
	"fmt"
	"time"

	"github.com/distrib/backoffice/internal/domain/shared"
	"github.com/distrib/backoffice/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TitleType distinguishes money owed to us from money we owe
type TitleType string

const (
	TitleTypeReceivable TitleType = "RECEIVABLE"
	TitleTypePayable    TitleType = "PAYABLE"
)

// IsValid checks if the title type is valid
func (t TitleType) IsValid() bool {
	return t == TitleTypeReceivable || t == TitleTypePayable
}

// String returns the string representation of TitleType
func (t TitleType) String() string {
	return string(t)
}

// TitleStatus represents the settlement state of a title
type TitleStatus string

const (
	TitleStatusOpen    TitleStatus = "OPEN"    // No payment applied yet
	TitleStatusPartial TitleStatus = "PARTIAL" // 0 < paid < original
	TitleStatusPaid    TitleStatus = "PAID"    // Balance within rounding epsilon of zero
	TitleStatusOverdue TitleStatus = "OVERDUE" // Past due date and still unpaid
)

// IsValid checks if the status is a valid TitleStatus
func (s TitleStatus) IsValid() bool {
	switch s {
	case TitleStatusOpen, TitleStatusPartial, TitleStatusPaid, TitleStatusOverdue:
		return true
	}
	return false
}

// IsOpen returns true if the title can still absorb payments.
// OVERDUE titles are unpaid obligations, so they stay in the cascade.
func (s TitleStatus) IsOpen() bool {
	return s == TitleStatusOpen || s == TitleStatusPartial || s == TitleStatusOverdue
}

// OpenStatuses lists the statuses that count as open for allocation queries
func OpenStatuses() []TitleStatus {
	return []TitleStatus{TitleStatusOpen, TitleStatusPartial, TitleStatusOverdue}
}

// Title is a receivable or payable obligation with a decaying balance.
// It is mutated only through movement application and is never deleted once
// it has movements: financial history is immutable.
type Title struct {
	shared.TenantAggregateRoot
	TitleNumber      string          `json:"title_number"`
	Type             TitleType       `json:"type"`
	Status           TitleStatus     `json:"status"`
	OriginalAmount   decimal.Decimal `json:"original_amount"`
	Balance          decimal.Decimal `json:"balance"`
	DueDate          time.Time       `json:"due_date"`
	CounterpartyID   *uuid.UUID      `json:"counterparty_id"` // Customer or supplier
	OrderID          *uuid.UUID      `json:"order_id"`
	GatewayPaymentID string          `json:"gateway_payment_id,omitempty"`
	IsCredit         bool            `json:"is_credit"` // Overpayment surplus held for the counterparty
	Observation      string          `json:"observation,omitempty"`
}

// NewTitle creates a new open title
func NewTitle(
	tenantID uuid.UUID,
	titleNumber string,
	titleType TitleType,
	amount valueobject.Money,
	dueDate time.Time,
	counterpartyID *uuid.UUID,
) (*Title, error) {
	if titleNumber == "" {
		return nil, shared.NewDomainError("INVALID_TITLE_NUMBER", "Title number cannot be empty")
	}
	if !titleType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TITLE_TYPE", "Title type must be RECEIVABLE or PAYABLE")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Title amount must be positive")
	}
	if dueDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DUE_DATE", "Title due date is required")
	}

	t := &Title{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		TitleNumber:         titleNumber,
		Type:                titleType,
		Status:              TitleStatusOpen,
		OriginalAmount:      amount.Amount(),
		Balance:             amount.Amount(),
		DueDate:             dueDate,
		CounterpartyID:      counterpartyID,
	}

	t.AddDomainEvent(NewTitleCreatedEvent(t))

	return t, nil
}

// NewCreditTitle creates an open title representing an overpayment surplus.
// The surplus keeps the direction of the originating title so future
// allocations for the same counterparty can consume it.
func NewCreditTitle(
	tenantID uuid.UUID,
	titleNumber string,
	titleType TitleType,
	amount valueobject.Money,
	counterpartyID *uuid.UUID,
) (*Title, error) {
	t, err := NewTitle(tenantID, titleNumber, titleType, amount, time.Now(), counterpartyID)
	if err != nil {
		return nil, err
	}
	t.IsCredit = true
	t.Observation = "Credit generated from overpayment"
	return t, nil
}

// BalanceMoney returns the current balance as Money
func (t *Title) BalanceMoney() valueobject.Money {
	return valueobject.NewMoneyBRL(t.Balance)
}

// CanReceivePayment returns true if payments can still be applied
func (t *Title) CanReceivePayment() bool {
	return t.Status.IsOpen() && t.Balance.GreaterThan(decimal.Zero)
}

// ApplyPayment reduces the balance by the given amount and records one
// movement. A cascading payment creates one movement per title touched; a
// movement never spans two titles.
func (t *Title) ApplyPayment(
	amount valueobject.Money,
	paymentDate time.Time,
	userID uuid.UUID,
	bankAccountID *uuid.UUID,
	observation string,
) (*Movement, error) {
	if !t.CanReceivePayment() {
		return nil, shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot apply payment to title in %s status", t.Status))
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if amount.Amount().Sub(t.Balance).GreaterThan(valueobject.RoundingEpsilon) {
		return nil, shared.NewDomainError("EXCEEDS_BALANCE",
			fmt.Sprintf("Payment amount %s exceeds title balance %s",
				amount.Amount().StringFixed(2), t.Balance.StringFixed(2)))
	}

	movement := NewPaymentMovement(t.TenantID, t.ID, amount, paymentDate, userID, bankAccountID, observation)

	t.Balance = t.Balance.Sub(amount.Amount())
	if t.BalanceMoney().IsSettled() {
		t.Status = TitleStatusPaid
		t.AddDomainEvent(NewTitleSettledEvent(t, movement))
	} else {
		t.Status = TitleStatusPartial
	}

	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	return movement, nil
}

// MarkOverdue flips an unpaid title past its due date to OVERDUE.
// Overdue titles remain open for allocation.
func (t *Title) MarkOverdue(now time.Time) bool {
	if t.Status != TitleStatusOpen && t.Status != TitleStatusPartial {
		return false
	}
	if !t.DueDate.Before(now) {
		return false
	}
	t.Status = TitleStatusOverdue
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
	return true
}

// AttachGatewayPayment records the external payment-gateway reference
func (t *Title) AttachGatewayPayment(gatewayPaymentID string) error {
	if gatewayPaymentID == "" {
		return shared.NewDomainError("INVALID_GATEWAY_REFERENCE", "Gateway payment id cannot be empty")
	}
	t.GatewayPaymentID = gatewayPaymentID
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
	return nil
}

// IsPaid returns true if the title is fully settled
func (t *Title) IsPaid() bool {
	return t.Status == TitleStatusPaid
}
