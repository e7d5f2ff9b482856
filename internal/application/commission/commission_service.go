package commission

import (
	"context"

	"github.com/distrib/backoffice/internal/domain/commission"
	"github.com/distrib/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateRuleCommand describes a new commission rule
type CreateRuleCommand struct {
	TenantID          uuid.UUID
	Scope             commission.RuleScope
	Type              commission.RuleType
	Percentage        decimal.Decimal
	FixedValue        decimal.Decimal
	SpecificUserID    *uuid.UUID
	SpecificProductID *uuid.UUID
}

// CommissionService computes and manages commission records
type CommissionService struct {
	ruleRepo   commission.RuleRepository
	recordRepo commission.RecordRepository
	txScope    TransactionScope
	logger     *zap.Logger
}

// NewCommissionService creates a new CommissionService
func NewCommissionService(
	ruleRepo commission.RuleRepository,
	recordRepo commission.RecordRepository,
	txScope TransactionScope,
	logger *zap.Logger,
) *CommissionService {
	return &CommissionService{
		ruleRepo:   ruleRepo,
		recordRepo: recordRepo,
		txScope:    txScope,
		logger:     logger,
	}
}

// CreateRule registers a new active commission rule
func (s *CommissionService) CreateRule(ctx context.Context, cmd CreateRuleCommand) (*commission.CommissionRule, error) {
	rule, err := commission.NewCommissionRule(
		cmd.TenantID, cmd.Scope, cmd.Type,
		cmd.Percentage, cmd.FixedValue,
		cmd.SpecificUserID, cmd.SpecificProductID,
	)
	if err != nil {
		return nil, err
	}
	if err := s.ruleRepo.Create(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

// DeactivateRule retires a rule from resolution
func (s *CommissionService) DeactivateRule(ctx context.Context, tenantID, ruleID uuid.UUID) error {
	rule, err := s.ruleRepo.FindByIDForTenant(ctx, tenantID, ruleID)
	if err != nil {
		return err
	}
	if rule == nil {
		return shared.ErrNotFound
	}
	rule.Deactivate()
	return s.ruleRepo.SaveWithLock(ctx, rule)
}

// ListRules returns the tenant's commission rules
func (s *CommissionService) ListRules(ctx context.Context, tenantID uuid.UUID, activeOnly bool) ([]commission.CommissionRule, error) {
	return s.ruleRepo.FindAllForTenant(ctx, tenantID, activeOnly)
}

// CalculateForOrder computes the commission an order would yield without
// persisting anything. Orders without a seller yield nothing.
func (s *CommissionService) CalculateForOrder(ctx context.Context, tenantID uuid.UUID, order commission.OrderSnapshot) (*commission.Calculation, error) {
	if order.SellerID == nil {
		s.logger.Debug("order has no seller, skipping commission",
			zap.String("tenant_id", tenantID.String()),
			zap.String("order_id", order.OrderID.String()),
		)
		return nil, nil
	}
	candidates, err := s.ruleRepo.FindCandidates(ctx, tenantID, *order.SellerID, order.ProductIDs())
	if err != nil {
		return nil, err
	}
	calc := commission.Calculate(order, candidates)
	return &calc, nil
}

// RegisterForOrder computes the commission for an order and upserts the
// order's commission record. A second run for the same order replaces the
// pending record's figures; approved and paid records refuse recalculation.
// Orders without a seller or without any matching rule produce no record.
func (s *CommissionService) RegisterForOrder(ctx context.Context, tenantID uuid.UUID, order commission.OrderSnapshot) (*commission.CommissionRecord, error) {
	calc, err := s.CalculateForOrder(ctx, tenantID, order)
	if err != nil || calc == nil {
		return nil, err
	}
	if calc.LinesWithRule == 0 {
		s.logger.Debug("no commission rule matched order",
			zap.String("tenant_id", tenantID.String()),
			zap.String("order_id", order.OrderID.String()),
		)
		return nil, nil
	}

	var record *commission.CommissionRecord
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		existing, err := repos.Records().FindByOrder(ctx, tenantID, order.OrderID)
		if err != nil {
			return err
		}
		if existing != nil {
			if err := existing.Recalculate(calc.FinalBase, calc.EffectiveRate, calc.CommissionAmount, order.ReferenceDate); err != nil {
				return err
			}
			if err := repos.Records().SaveWithLock(ctx, existing); err != nil {
				return err
			}
			record = existing
			return nil
		}

		created, err := commission.NewCommissionRecord(
			tenantID, order.OrderID, *order.SellerID,
			calc.FinalBase, calc.EffectiveRate, calc.CommissionAmount,
			order.ReferenceDate,
		)
		if err != nil {
			return err
		}
		if err := repos.Records().Create(ctx, created); err != nil {
			return err
		}
		record = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("commission registered",
		zap.String("tenant_id", tenantID.String()),
		zap.String("order_id", order.OrderID.String()),
		zap.String("amount", record.CommissionAmount.StringFixed(2)),
	)
	s.drainEvents(record)
	return record, nil
}

// drainEvents forwards the record's domain events to the log. Nothing in
// the deployment consumes events yet, so the log is the subscriber of record.
func (s *CommissionService) drainEvents(record *commission.CommissionRecord) {
	for _, event := range record.GetDomainEvents() {
		s.logger.Info("domain event",
			zap.String("event_type", event.EventType()),
			zap.String("aggregate_id", event.AggregateID().String()),
			zap.String("tenant_id", event.TenantID().String()),
		)
	}
	record.ClearDomainEvents()
}

// ApproveRecord releases a pending record for payout
func (s *CommissionService) ApproveRecord(ctx context.Context, tenantID, recordID uuid.UUID) error {
	return s.transitionRecord(ctx, tenantID, recordID, (*commission.CommissionRecord).Approve)
}

// CancelRecord voids an unpaid record
func (s *CommissionService) CancelRecord(ctx context.Context, tenantID, recordID uuid.UUID) error {
	return s.transitionRecord(ctx, tenantID, recordID, (*commission.CommissionRecord).Cancel)
}

func (s *CommissionService) transitionRecord(ctx context.Context, tenantID, recordID uuid.UUID, transition func(*commission.CommissionRecord) error) error {
	record, err := s.recordRepo.FindByIDForTenant(ctx, tenantID, recordID)
	if err != nil {
		return err
	}
	if record == nil {
		return shared.ErrNotFound
	}
	if err := transition(record); err != nil {
		return err
	}
	return s.recordRepo.SaveWithLock(ctx, record)
}

// ListRecords returns records matching the filter plus the total count
func (s *CommissionService) ListRecords(ctx context.Context, tenantID uuid.UUID, filter commission.RecordFilter) ([]commission.CommissionRecord, int64, error) {
	return s.recordRepo.FindAllForTenant(ctx, tenantID, filter)
}
