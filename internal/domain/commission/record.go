package commission

import (
	"time"

	"github.com/distrib/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CommissionStatus is the lifecycle state of a commission record
type CommissionStatus string

const (
	CommissionStatusPending  CommissionStatus = "PENDING"
	CommissionStatusApproved CommissionStatus = "APPROVED"
	CommissionStatusPaid     CommissionStatus = "PAID"
	CommissionStatusCanceled CommissionStatus = "CANCELED"
)

// IsValid checks if the status is a valid CommissionStatus
func (s CommissionStatus) IsValid() bool {
	switch s {
	case CommissionStatusPending, CommissionStatusApproved, CommissionStatusPaid, CommissionStatusCanceled:
		return true
	}
	return false
}

// payoutGraceDays is how long after the order reference date a
// commission becomes due for payout.
const payoutGraceDays = 30

// CommissionRecord is the commission owed to a seller for one order.
// There is at most one record per (tenant, order).
type CommissionRecord struct {
	shared.TenantAggregateRoot
	OrderID           uuid.UUID        `json:"order_id"`
	SellerID          uuid.UUID        `json:"seller_id"`
	CalculationBase   decimal.Decimal  `json:"calculation_base"`
	AppliedPercentage decimal.Decimal  `json:"applied_percentage"`
	CommissionAmount  decimal.Decimal  `json:"commission_amount"`
	Status            CommissionStatus `json:"status"`
	PayoutID          *uuid.UUID       `json:"payout_id,omitempty"`
	DueDate           time.Time        `json:"due_date"`
}

// NewCommissionRecord creates a PENDING commission record for an order.
// The due date is the order reference date plus the payout grace period.
func NewCommissionRecord(
	tenantID, orderID, sellerID uuid.UUID,
	calculationBase, appliedPercentage, commissionAmount decimal.Decimal,
	referenceDate time.Time,
) (*CommissionRecord, error) {
	if commissionAmount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COMMISSION_AMOUNT", "Commission amount cannot be negative")
	}

	record := &CommissionRecord{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		OrderID:             orderID,
		SellerID:            sellerID,
		CalculationBase:     calculationBase,
		AppliedPercentage:   appliedPercentage,
		CommissionAmount:    commissionAmount,
		Status:              CommissionStatusPending,
		DueDate:             referenceDate.AddDate(0, 0, payoutGraceDays),
	}
	record.AddDomainEvent(NewCommissionCalculatedEvent(record))
	return record, nil
}

// Recalculate replaces the record's figures after the source order changed.
// Only PENDING records can be recalculated; approved and paid figures are
// frozen.
func (r *CommissionRecord) Recalculate(calculationBase, appliedPercentage, commissionAmount decimal.Decimal, referenceDate time.Time) error {
	if r.Status != CommissionStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending commission records can be recalculated")
	}
	if commissionAmount.IsNegative() {
		return shared.NewDomainError("INVALID_COMMISSION_AMOUNT", "Commission amount cannot be negative")
	}
	r.CalculationBase = calculationBase
	r.AppliedPercentage = appliedPercentage
	r.CommissionAmount = commissionAmount
	r.DueDate = referenceDate.AddDate(0, 0, payoutGraceDays)
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
	return nil
}

// Approve releases a pending record for payout
func (r *CommissionRecord) Approve() error {
	if r.Status != CommissionStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending commission records can be approved")
	}
	r.Status = CommissionStatusApproved
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
	return nil
}

// Cancel voids a record that has not been paid yet
func (r *CommissionRecord) Cancel() error {
	if r.Status != CommissionStatusPending && r.Status != CommissionStatusApproved {
		return shared.NewDomainError("INVALID_STATE", "Only pending or approved commission records can be canceled")
	}
	r.Status = CommissionStatusCanceled
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
	return nil
}

// MarkPaid settles an approved record inside a payout batch
func (r *CommissionRecord) MarkPaid(payoutID uuid.UUID) error {
	if r.Status != CommissionStatusApproved {
		return shared.NewDomainError("INVALID_STATE", "Only approved commission records can be paid")
	}
	r.Status = CommissionStatusPaid
	r.PayoutID = &payoutID
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
	return nil
}

// IsPaid reports whether the record has been settled
func (r *CommissionRecord) IsPaid() bool {
	return r.Status == CommissionStatusPaid
}
