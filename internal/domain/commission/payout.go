package commission

import (
	"time"

	"github.com/distrib/backoffice/internal/domain/shared"
	"github.com/distrib/backoffice/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CommissionPayout is one batch payment of approved commission records
// to a single seller. The total is always the exact sum of the records
// it settles, recomputed server side at creation time.
type CommissionPayout struct {
	shared.TenantAggregateRoot
	SellerID    uuid.UUID       `json:"seller_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	RecordCount int             `json:"record_count"`
	PaidAt      time.Time       `json:"paid_at"`
	Observation string          `json:"observation"`
}

// NewCommissionPayout settles a batch of commission records for one seller.
// Records that are not APPROVED or belong to another tenant or seller are
// dropped from the batch, so a selection that went stale between listing and
// submission still settles the records that remain eligible. The payout total
// is the exact sum of the surviving records, and those records are flipped to
// PAID as a side effect; callers must persist payout and records in one
// transaction. The eligible records are returned so callers know exactly
// which ones to save.
func NewCommissionPayout(
	tenantID, sellerID uuid.UUID,
	records []*CommissionRecord,
	paidAt time.Time,
	observation string,
) (*CommissionPayout, []*CommissionRecord, error) {
	eligible := make([]*CommissionRecord, 0, len(records))
	for _, record := range records {
		if record.TenantID != tenantID || record.SellerID != sellerID {
			continue
		}
		if record.Status != CommissionStatusApproved {
			continue
		}
		eligible = append(eligible, record)
	}
	if len(eligible) == 0 {
		return nil, nil, shared.NewDomainError("EMPTY_PAYOUT", "No approved commission records remain after validation")
	}

	payout := &CommissionPayout{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		SellerID:            sellerID,
		RecordCount:         len(eligible),
		PaidAt:              paidAt,
		Observation:         observation,
	}

	total := decimal.Zero
	for _, record := range eligible {
		if err := record.MarkPaid(payout.ID); err != nil {
			return nil, nil, err
		}
		total = total.Add(record.CommissionAmount)
	}

	payout.TotalAmount = total
	payout.AddDomainEvent(NewCommissionPayoutCreatedEvent(payout))
	return payout, eligible, nil
}

// TotalMoney returns the payout total as a BRL money value
func (p *CommissionPayout) TotalMoney() valueobject.Money {
	return valueobject.NewMoneyBRL(p.TotalAmount)
}
