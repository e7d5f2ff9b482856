package commission

import (
	"context"

	"github.com/google/uuid"
)

// RuleRepository persists commission rules
type RuleRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*CommissionRule, error)
	// FindCandidates loads, in one query, every active rule that could apply
	// to an order: GLOBAL rules, SELLER rules for sellerID and PRODUCT rules
	// for any of productIDs. Resolution happens in memory via ResolveRule.
	FindCandidates(ctx context.Context, tenantID, sellerID uuid.UUID, productIDs []uuid.UUID) ([]CommissionRule, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, activeOnly bool) ([]CommissionRule, error)
	Create(ctx context.Context, rule *CommissionRule) error
	SaveWithLock(ctx context.Context, rule *CommissionRule) error
}

// RecordFilter narrows commission record listings
type RecordFilter struct {
	SellerID *uuid.UUID
	Status   *CommissionStatus
	Limit    int
	Offset   int
}

// RecordRepository persists commission records
type RecordRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*CommissionRecord, error)
	FindByOrder(ctx context.Context, tenantID, orderID uuid.UUID) (*CommissionRecord, error)
	// FindByIDsForTenant loads a batch of records for payout revalidation
	FindByIDsForTenant(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*CommissionRecord, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter RecordFilter) ([]CommissionRecord, int64, error)
	Create(ctx context.Context, record *CommissionRecord) error
	SaveWithLock(ctx context.Context, record *CommissionRecord) error
}

// PayoutRepository persists commission payout batches
type PayoutRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*CommissionPayout, error)
	FindBySeller(ctx context.Context, tenantID, sellerID uuid.UUID) ([]CommissionPayout, error)
	Create(ctx context.Context, payout *CommissionPayout) error
}
