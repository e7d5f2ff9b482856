package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/distrib/backoffice/internal/domain/ledger"
	"github.com/distrib/backoffice/internal/domain/shared"
	"github.com/distrib/backoffice/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// creditTitlePrefix numbers the surplus titles minted on overpayment
const creditTitlePrefix = "CR"

// AllocatePaymentCommand describes one incoming payment to spread over a
// counterparty's open titles. TargetTitleID anchors the cascade: that title
// absorbs first, then the counterparty's remaining open titles of the same
// type by due date ascending.
type AllocatePaymentCommand struct {
	TenantID      uuid.UUID
	TargetTitleID uuid.UUID
	Amount        decimal.Decimal
	PaymentDate   time.Time
	UserID        uuid.UUID
	BankAccountID *uuid.UUID
	Observation   string
}

// AllocationEntry reports one movement produced by the cascade
type AllocationEntry struct {
	TitleID     uuid.UUID          `json:"title_id"`
	TitleNumber string             `json:"title_number"`
	MovementID  uuid.UUID          `json:"movement_id"`
	Amount      decimal.Decimal    `json:"amount"`
	NewStatus   ledger.TitleStatus `json:"new_status"`
}

// AllocationResult is the outcome of one payment allocation
type AllocationResult struct {
	Entries        []AllocationEntry `json:"entries"`
	TotalAllocated decimal.Decimal   `json:"total_allocated"`
	CreditTitleID  *uuid.UUID        `json:"credit_title_id,omitempty"`
	CreditAmount   decimal.Decimal   `json:"credit_amount"`
}

// AllocatorService cascades payments across a counterparty's open titles
type AllocatorService struct {
	txScope TransactionScope
	logger  *zap.Logger
}

// NewAllocatorService creates a new AllocatorService
func NewAllocatorService(txScope TransactionScope, logger *zap.Logger) *AllocatorService {
	return &AllocatorService{txScope: txScope, logger: logger}
}

// Allocate spreads a payment over the target title and the counterparty's
// other open titles of the same type, oldest due date first. Each touched
// title gets exactly one movement; any surplus becomes a credit title for
// the counterparty. All writes happen in one transaction.
func (s *AllocatorService) Allocate(ctx context.Context, cmd AllocatePaymentCommand) (*AllocationResult, error) {
	var result *AllocationResult
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var txErr error
		result, txErr = s.AllocateInScope(ctx, repos, cmd)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AllocateInScope runs the cascade inside an existing transaction scope so
// callers from other contexts (bank reconciliation, gateway webhooks) can
// compose it with their own writes atomically.
func (s *AllocatorService) AllocateInScope(ctx context.Context, repos TransactionalRepositories, cmd AllocatePaymentCommand) (*AllocationResult, error) {
	if !cmd.Amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}

	target, err := repos.Titles().FindByIDForTenant(ctx, cmd.TenantID, cmd.TargetTitleID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, shared.ErrNotFound
	}
	if !target.CanReceivePayment() {
		return nil, shared.NewDomainError("INVALID_STATE", "Target title cannot receive payments")
	}

	queue := []ledger.Title{*target}
	if target.CounterpartyID != nil {
		siblings, err := repos.Titles().FindOpenByCounterparty(ctx, cmd.TenantID, *target.CounterpartyID, target.Type, target.ID)
		if err != nil {
			return nil, err
		}
		queue = append(queue, siblings...)
	}

	result := &AllocationResult{TotalAllocated: decimal.Zero, CreditAmount: decimal.Zero}
	remaining := cmd.Amount

	for i := range queue {
		if !remaining.IsPositive() {
			break
		}
		title := &queue[i]
		if !title.CanReceivePayment() {
			continue
		}

		applied := decimal.Min(remaining, title.Balance)
		if !applied.IsPositive() {
			continue
		}

		movement, err := title.ApplyPayment(
			valueobject.NewMoneyBRL(applied),
			cmd.PaymentDate, cmd.UserID, cmd.BankAccountID, cmd.Observation,
		)
		if err != nil {
			return nil, err
		}
		if err := repos.Titles().SaveWithLock(ctx, title); err != nil {
			return nil, err
		}
		if err := repos.Movements().Create(ctx, movement); err != nil {
			return nil, err
		}
		s.drainEvents(title)

		result.Entries = append(result.Entries, AllocationEntry{
			TitleID:     title.ID,
			TitleNumber: title.TitleNumber,
			MovementID:  movement.ID,
			Amount:      applied,
			NewStatus:   title.Status,
		})
		result.TotalAllocated = result.TotalAllocated.Add(applied)
		remaining = remaining.Sub(applied)
	}

	// A residue at or below RoundingEpsilon is cascade rounding noise, the
	// same threshold Money.IsSettled uses to consider a balance settled.
	// It is absorbed here rather than minted as a sub-cent credit title.
	if remaining.GreaterThan(valueobject.RoundingEpsilon) {
		creditID, err := s.mintCreditTitle(ctx, repos, cmd, target, remaining)
		if err != nil {
			return nil, err
		}
		result.CreditTitleID = &creditID
		result.CreditAmount = remaining
	}

	s.logger.Info("payment allocated",
		zap.String("tenant_id", cmd.TenantID.String()),
		zap.String("target_title_id", cmd.TargetTitleID.String()),
		zap.String("amount", cmd.Amount.StringFixed(2)),
		zap.Int("titles_touched", len(result.Entries)),
		zap.String("credit_amount", result.CreditAmount.StringFixed(2)),
	)
	return result, nil
}

func (s *AllocatorService) mintCreditTitle(
	ctx context.Context,
	repos TransactionalRepositories,
	cmd AllocatePaymentCommand,
	target *ledger.Title,
	surplus decimal.Decimal,
) (uuid.UUID, error) {
	// Same number-draw race as TitleService.CreateTitle: retry with a
	// fresh number when the unique index rejects a concurrent duplicate.
	for attempt := 0; attempt < titleNumberAttempts; attempt++ {
		number, err := repos.Titles().NextTitleNumber(ctx, cmd.TenantID, creditTitlePrefix)
		if err != nil {
			return uuid.Nil, err
		}
		credit, err := ledger.NewCreditTitle(
			cmd.TenantID, number, target.Type,
			valueobject.NewMoneyBRL(surplus),
			target.CounterpartyID,
		)
		if err != nil {
			return uuid.Nil, err
		}
		if err := repos.Titles().Create(ctx, credit); err != nil {
			if errors.Is(err, shared.ErrAlreadyExists) {
				continue
			}
			return uuid.Nil, err
		}
		s.drainEvents(credit)
		return credit.ID, nil
	}
	return uuid.Nil, shared.NewDomainError("TITLE_NUMBER_EXHAUSTED", "Could not assign a unique title number")
}

// drainEvents forwards a title's domain events to the log. Nothing in the
// deployment consumes events yet, so the log is the subscriber of record.
func (s *AllocatorService) drainEvents(title *ledger.Title) {
	for _, event := range title.GetDomainEvents() {
		s.logger.Info("domain event",
			zap.String("event_type", event.EventType()),
			zap.String("aggregate_id", event.AggregateID().String()),
			zap.String("tenant_id", event.TenantID().String()),
		)
	}
	title.ClearDomainEvents()
}
