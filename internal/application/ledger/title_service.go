package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/distrib/backoffice/internal/domain/ledger"
	"github.com/distrib/backoffice/internal/domain/shared"
	"github.com/distrib/backoffice/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// titleNumberPrefixes per title type
var titleNumberPrefixes = map[ledger.TitleType]string{
	ledger.TitleTypeReceivable: "REC",
	ledger.TitleTypePayable:    "PAY",
}

// IdempotencyStore guards externally triggered operations against replays.
// Reserve returns false when the key was already consumed within the TTL.
// Release frees a reservation whose operation failed, so the caller's retry
// is processed instead of being mistaken for a replay.
type IdempotencyStore interface {
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// gatewayIdempotencyTTL bounds how long a processed webhook delivery id
// blocks replays.
const gatewayIdempotencyTTL = 72 * time.Hour

// titleNumberAttempts bounds the number draws when concurrent creators
// collide on the same title number.
const titleNumberAttempts = 3

// CreateTitleCommand describes a new receivable or payable
type CreateTitleCommand struct {
	TenantID       uuid.UUID
	Type           ledger.TitleType
	Amount         decimal.Decimal
	DueDate        time.Time
	CounterpartyID *uuid.UUID
	OrderID        *uuid.UUID
	Observation    string
}

// RegisterGatewayPaymentCommand carries a payment-gateway webhook payload
type RegisterGatewayPaymentCommand struct {
	TenantID         uuid.UUID
	DeliveryID       string
	GatewayPaymentID string
	TitleID          uuid.UUID
	Amount           decimal.Decimal
	PaidAt           time.Time
	UserID           uuid.UUID
}

// TitleService provides application-level title operations
type TitleService struct {
	titleRepo    ledger.TitleRepository
	movementRepo ledger.MovementRepository
	txScope      TransactionScope
	allocator    *AllocatorService
	idempotency  IdempotencyStore
	logger       *zap.Logger
}

// NewTitleService creates a new TitleService
func NewTitleService(
	titleRepo ledger.TitleRepository,
	movementRepo ledger.MovementRepository,
	txScope TransactionScope,
	allocator *AllocatorService,
	idempotency IdempotencyStore,
	logger *zap.Logger,
) *TitleService {
	return &TitleService{
		titleRepo:    titleRepo,
		movementRepo: movementRepo,
		txScope:      txScope,
		allocator:    allocator,
		idempotency:  idempotency,
		logger:       logger,
	}
}

// CreateTitle registers a new open title with a generated sequential number
func (s *TitleService) CreateTitle(ctx context.Context, cmd CreateTitleCommand) (*ledger.Title, error) {
	var created *ledger.Title
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		// NextTitleNumber reads the current maximum, so two concurrent
		// creators can draw the same number. The unique index rejects the
		// loser and a fresh draw resolves it.
		for attempt := 0; attempt < titleNumberAttempts; attempt++ {
			number, err := repos.Titles().NextTitleNumber(ctx, cmd.TenantID, titleNumberPrefixes[cmd.Type])
			if err != nil {
				return err
			}
			title, err := ledger.NewTitle(cmd.TenantID, number, cmd.Type, valueobject.NewMoneyBRL(cmd.Amount), cmd.DueDate, cmd.CounterpartyID)
			if err != nil {
				return err
			}
			title.OrderID = cmd.OrderID
			title.Observation = cmd.Observation
			if err := repos.Titles().Create(ctx, title); err != nil {
				if errors.Is(err, shared.ErrAlreadyExists) {
					continue
				}
				return err
			}
			created = title
			return nil
		}
		return shared.NewDomainError("TITLE_NUMBER_EXHAUSTED", "Could not assign a unique title number")
	})
	if err != nil {
		return nil, err
	}
	s.drainTitleEvents(created)
	return created, nil
}

// drainTitleEvents forwards a title's domain events to the log. Nothing in
// the deployment consumes events yet, so the log is the subscriber of record.
func (s *TitleService) drainTitleEvents(title *ledger.Title) {
	for _, event := range title.GetDomainEvents() {
		s.logger.Info("domain event",
			zap.String("event_type", event.EventType()),
			zap.String("aggregate_id", event.AggregateID().String()),
			zap.String("tenant_id", event.TenantID().String()),
		)
	}
	title.ClearDomainEvents()
}

// GetTitle loads one title with its movements
func (s *TitleService) GetTitle(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Title, error) {
	title, err := s.titleRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if title == nil {
		return nil, shared.ErrNotFound
	}
	return title, nil
}

// ListMovements returns the movement history of one title, oldest first
func (s *TitleService) ListMovements(ctx context.Context, tenantID, titleID uuid.UUID) ([]ledger.Movement, error) {
	title, err := s.titleRepo.FindByIDForTenant(ctx, tenantID, titleID)
	if err != nil {
		return nil, err
	}
	if title == nil {
		return nil, shared.ErrNotFound
	}
	return s.movementRepo.FindByTitle(ctx, tenantID, titleID)
}

// ListTitles returns titles matching the filter plus the unfiltered count
func (s *TitleService) ListTitles(ctx context.Context, tenantID uuid.UUID, filter ledger.TitleFilter) ([]ledger.Title, int64, error) {
	titles, err := s.titleRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.titleRepo.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	return titles, total, nil
}

// SweepOverdue flips OPEN and PARTIAL titles past their due date to OVERDUE.
// Returns how many titles changed.
func (s *TitleService) SweepOverdue(ctx context.Context, tenantID uuid.UUID, now time.Time) (int, error) {
	swept := 0
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		due, err := repos.Titles().FindDueBefore(ctx, tenantID, now)
		if err != nil {
			return err
		}
		for i := range due {
			title := &due[i]
			if !title.MarkOverdue(now) {
				continue
			}
			if err := repos.Titles().SaveWithLock(ctx, title); err != nil {
				return err
			}
			swept++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if swept > 0 {
		s.logger.Info("overdue sweep finished",
			zap.String("tenant_id", tenantID.String()),
			zap.Int("titles_marked", swept),
		)
	}
	return swept, nil
}

// SweepAllOverdue runs the overdue sweep for every tenant that holds unpaid
// titles past the cutoff. Tenants are swept independently so one failing
// tenant does not block the rest.
func (s *TitleService) SweepAllOverdue(ctx context.Context, now time.Time) (int, error) {
	tenantIDs, err := s.titleRepo.TenantIDsWithDueTitles(ctx, now)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, tenantID := range tenantIDs {
		swept, err := s.SweepOverdue(ctx, tenantID, now)
		if err != nil {
			s.logger.Error("overdue sweep failed for tenant",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err),
			)
			continue
		}
		total += swept
	}
	return total, nil
}

// RegisterGatewayPayment consumes a payment-gateway webhook. The delivery id
// is reserved in the idempotency store first so replays become no-ops, then
// the payment cascades through the allocator and the gateway payment id is
// pinned on the target title.
func (s *TitleService) RegisterGatewayPayment(ctx context.Context, cmd RegisterGatewayPaymentCommand) (*AllocationResult, error) {
	if cmd.DeliveryID == "" || cmd.GatewayPaymentID == "" {
		return nil, shared.NewDomainError("INVALID_WEBHOOK", "Gateway delivery id and payment id are required")
	}

	key := fmt.Sprintf("gateway:%s:%s", cmd.TenantID, cmd.DeliveryID)
	fresh, err := s.idempotency.Reserve(ctx, key, gatewayIdempotencyTTL)
	if err != nil {
		return nil, err
	}
	if !fresh {
		s.logger.Info("gateway webhook replay ignored",
			zap.String("tenant_id", cmd.TenantID.String()),
			zap.String("delivery_id", cmd.DeliveryID),
		)
		return &AllocationResult{TotalAllocated: decimal.Zero, CreditAmount: decimal.Zero}, nil
	}

	var result *AllocationResult
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		target, err := repos.Titles().FindByIDForTenant(ctx, cmd.TenantID, cmd.TitleID)
		if err != nil {
			return err
		}
		if target == nil {
			return shared.ErrNotFound
		}
		if err := target.AttachGatewayPayment(cmd.GatewayPaymentID); err != nil {
			return err
		}
		if err := repos.Titles().SaveWithLock(ctx, target); err != nil {
			return err
		}

		result, err = s.allocator.AllocateInScope(ctx, repos, AllocatePaymentCommand{
			TenantID:      cmd.TenantID,
			TargetTitleID: cmd.TitleID,
			Amount:        cmd.Amount,
			PaymentDate:   cmd.PaidAt,
			UserID:        cmd.UserID,
			Observation:   fmt.Sprintf("Gateway payment %s", cmd.GatewayPaymentID),
		})
		return err
	})
	if err != nil {
		// The delivery was not processed; free the reservation so the
		// gateway's retry is treated as a fresh delivery, not a replay.
		if releaseErr := s.idempotency.Release(ctx, key); releaseErr != nil {
			s.logger.Error("failed to release webhook idempotency key, retry of this delivery will be dropped",
				zap.String("tenant_id", cmd.TenantID.String()),
				zap.String("delivery_id", cmd.DeliveryID),
				zap.Error(releaseErr),
			)
		}
		return nil, err
	}
	return result, nil
}
