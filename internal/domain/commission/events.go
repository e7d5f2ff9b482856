package commission

import (
	"github.com/distrib/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	EventTypeCommissionCalculated    = "commission.record.calculated"
	EventTypeCommissionPayoutCreated = "commission.payout.created"
)

// CommissionCalculatedEvent is emitted when a record is first computed
type CommissionCalculatedEvent struct {
	shared.BaseDomainEvent
	OrderID          string          `json:"order_id"`
	SellerID         string          `json:"seller_id"`
	CommissionAmount decimal.Decimal `json:"commission_amount"`
}

// NewCommissionCalculatedEvent creates a commission calculated event
func NewCommissionCalculatedEvent(record *CommissionRecord) *CommissionCalculatedEvent {
	return &CommissionCalculatedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeCommissionCalculated, record.ID, record.TenantID),
		OrderID:          record.OrderID.String(),
		SellerID:         record.SellerID.String(),
		CommissionAmount: record.CommissionAmount,
	}
}

// CommissionPayoutCreatedEvent is emitted when a payout batch settles records
type CommissionPayoutCreatedEvent struct {
	shared.BaseDomainEvent
	SellerID    string          `json:"seller_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	RecordCount int             `json:"record_count"`
}

// NewCommissionPayoutCreatedEvent creates a payout created event
func NewCommissionPayoutCreatedEvent(payout *CommissionPayout) *CommissionPayoutCreatedEvent {
	return &CommissionPayoutCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCommissionPayoutCreated, payout.ID, payout.TenantID),
		SellerID:        payout.SellerID.String(),
		TotalAmount:     payout.TotalAmount,
		RecordCount:     payout.RecordCount,
	}
}
