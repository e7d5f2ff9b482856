package commission

import (
	"context"
	"time"

	"github.com/distrib/backoffice/internal/domain/commission"
	"github.com/distrib/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreatePayoutCommand describes a payout batch request. Record ids come
// from the client; everything about them is revalidated server side.
type CreatePayoutCommand struct {
	TenantID    uuid.UUID
	SellerID    uuid.UUID
	RecordIDs   []uuid.UUID
	PaidAt      time.Time
	Observation string
}

// PayoutService settles approved commission records in batches
type PayoutService struct {
	payoutRepo commission.PayoutRepository
	txScope    TransactionScope
	logger     *zap.Logger
}

// NewPayoutService creates a new PayoutService
func NewPayoutService(payoutRepo commission.PayoutRepository, txScope TransactionScope, logger *zap.Logger) *PayoutService {
	return &PayoutService{payoutRepo: payoutRepo, txScope: txScope, logger: logger}
}

// CreatePayout loads the requested records, revalidates ownership, seller
// and status server side, recomputes the total from stored amounts and flips
// the surviving records to PAID in one transaction. Ids that no longer
// resolve to an eligible record (unknown, already paid, canceled, or owned
// by someone else) are dropped from the batch rather than failing it; the
// request only errors when nothing eligible remains. Client-sent totals are
// never trusted.
func (s *PayoutService) CreatePayout(ctx context.Context, cmd CreatePayoutCommand) (*commission.CommissionPayout, error) {
	if len(cmd.RecordIDs) == 0 {
		return nil, shared.NewDomainError("EMPTY_PAYOUT", "A payout requires at least one commission record id")
	}
	if cmd.PaidAt.IsZero() {
		cmd.PaidAt = time.Now()
	}

	var payout *commission.CommissionPayout
	var paid []*commission.CommissionRecord
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		records, err := repos.Records().FindByIDsForTenant(ctx, cmd.TenantID, cmd.RecordIDs)
		if err != nil {
			return err
		}

		payout, paid, err = commission.NewCommissionPayout(cmd.TenantID, cmd.SellerID, records, cmd.PaidAt, cmd.Observation)
		if err != nil {
			return err
		}

		if err := repos.Payouts().Create(ctx, payout); err != nil {
			return err
		}
		for _, record := range paid {
			if err := repos.Records().SaveWithLock(ctx, record); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("commission payout created",
		zap.String("tenant_id", cmd.TenantID.String()),
		zap.String("seller_id", cmd.SellerID.String()),
		zap.Int("records", payout.RecordCount),
		zap.Int("records_skipped", len(cmd.RecordIDs)-payout.RecordCount),
		zap.String("total", payout.TotalAmount.StringFixed(2)),
	)
	s.drainEvents(payout)
	return payout, nil
}

// drainEvents forwards the aggregate's domain events to the log. Nothing in
// the deployment consumes events yet, so the log is the subscriber of record.
func (s *PayoutService) drainEvents(payout *commission.CommissionPayout) {
	for _, event := range payout.GetDomainEvents() {
		s.logger.Info("domain event",
			zap.String("event_type", event.EventType()),
			zap.String("aggregate_id", event.AggregateID().String()),
			zap.String("tenant_id", event.TenantID().String()),
		)
	}
	payout.ClearDomainEvents()
}

// GetPayout loads one payout batch
func (s *PayoutService) GetPayout(ctx context.Context, tenantID, id uuid.UUID) (*commission.CommissionPayout, error) {
	payout, err := s.payoutRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if payout == nil {
		return nil, shared.ErrNotFound
	}
	return payout, nil
}

// ListPayouts returns a seller's payout history
func (s *PayoutService) ListPayouts(ctx context.Context, tenantID, sellerID uuid.UUID) ([]commission.CommissionPayout, error) {
	return s.payoutRepo.FindBySeller(ctx, tenantID, sellerID)
}
