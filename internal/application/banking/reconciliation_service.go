package banking

import (
	"context"
	"fmt"

	appledger "github.com/distrib/backoffice/internal/application/ledger"
	"github.com/distrib/backoffice/internal/domain/banking"
	"github.com/distrib/backoffice/internal/domain/ledger"
	"github.com/distrib/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ConfirmMatchCommand confirms one suggestion: the bank transaction pays
// the chosen title
type ConfirmMatchCommand struct {
	TenantID      uuid.UUID
	TransactionID uuid.UUID
	TitleID       uuid.UUID
	UserID        uuid.UUID
}

// ReconciliationService suggests and confirms matches between bank
// transactions and open titles
type ReconciliationService struct {
	transactionRepo banking.TransactionRepository
	titleRepo       ledger.TitleRepository
	allocator       *appledger.AllocatorService
	txScope         TransactionScope
	logger          *zap.Logger
}

// NewReconciliationService creates a new ReconciliationService
func NewReconciliationService(
	transactionRepo banking.TransactionRepository,
	titleRepo ledger.TitleRepository,
	allocator *appledger.AllocatorService,
	txScope TransactionScope,
	logger *zap.Logger,
) *ReconciliationService {
	return &ReconciliationService{
		transactionRepo: transactionRepo,
		titleRepo:       titleRepo,
		allocator:       allocator,
		txScope:         txScope,
		logger:          logger,
	}
}

// SuggestForAccount matches the account's pending transactions against the
// tenant's open titles. Read only; nothing is persisted.
func (s *ReconciliationService) SuggestForAccount(ctx context.Context, tenantID, bankAccountID uuid.UUID) ([]banking.MatchSuggestion, error) {
	transactions, err := s.transactionRepo.FindPendingByAccount(ctx, tenantID, bankAccountID)
	if err != nil {
		return nil, err
	}
	if len(transactions) == 0 {
		return nil, nil
	}

	openTitles, err := s.openTitles(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return banking.FindSuggestions(transactions, openTitles), nil
}

// SuggestForStatement matches one statement's pending transactions against
// the tenant's open titles
func (s *ReconciliationService) SuggestForStatement(ctx context.Context, tenantID, statementID uuid.UUID) ([]banking.MatchSuggestion, error) {
	transactions, err := s.transactionRepo.FindByStatement(ctx, tenantID, statementID)
	if err != nil {
		return nil, err
	}
	if len(transactions) == 0 {
		return nil, nil
	}

	openTitles, err := s.openTitles(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return banking.FindSuggestions(transactions, openTitles), nil
}

func (s *ReconciliationService) openTitles(ctx context.Context, tenantID uuid.UUID) ([]ledger.Title, error) {
	receivables, err := s.titleRepo.FindOpenByType(ctx, tenantID, ledger.TitleTypeReceivable)
	if err != nil {
		return nil, err
	}
	payables, err := s.titleRepo.FindOpenByType(ctx, tenantID, ledger.TitleTypePayable)
	if err != nil {
		return nil, err
	}
	return append(receivables, payables...), nil
}

// Confirm settles a suggestion. The transaction amount cascades through the
// title (and the counterparty's other open titles) via the allocator, and
// the bank transaction is linked to the first movement and flipped to
// RECONCILED. All of it commits or rolls back as one unit.
func (s *ReconciliationService) Confirm(ctx context.Context, cmd ConfirmMatchCommand) (*appledger.AllocationResult, error) {
	var result *appledger.AllocationResult
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		tx, err := repos.Transactions().FindByIDForTenant(ctx, cmd.TenantID, cmd.TransactionID)
		if err != nil {
			return err
		}
		if tx == nil {
			return shared.ErrNotFound
		}
		if tx.Status != banking.TransactionStatusPending {
			return shared.NewDomainError("INVALID_STATE", "Bank transaction is not pending reconciliation")
		}

		result, err = s.allocator.AllocateInScope(ctx, repos, appledger.AllocatePaymentCommand{
			TenantID:      cmd.TenantID,
			TargetTitleID: cmd.TitleID,
			Amount:        tx.Amount,
			PaymentDate:   tx.PostedAt,
			UserID:        cmd.UserID,
			BankAccountID: &tx.BankAccountID,
			Observation:   fmt.Sprintf("Reconciled with bank transaction %s", tx.FitID),
		})
		if err != nil {
			return err
		}
		if len(result.Entries) == 0 {
			return shared.NewDomainError("NOTHING_ALLOCATED", "The transaction amount could not be applied to any title")
		}

		if err := tx.Reconcile(result.Entries[0].MovementID); err != nil {
			return err
		}
		return repos.Transactions().SaveWithLock(ctx, tx)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("bank transaction reconciled",
		zap.String("tenant_id", cmd.TenantID.String()),
		zap.String("transaction_id", cmd.TransactionID.String()),
		zap.String("title_id", cmd.TitleID.String()),
		zap.Int("titles_touched", len(result.Entries)),
	)
	return result, nil
}

// IgnoreTransaction marks a pending transaction as irrelevant
func (s *ReconciliationService) IgnoreTransaction(ctx context.Context, tenantID, transactionID uuid.UUID) error {
	tx, err := s.transactionRepo.FindByIDForTenant(ctx, tenantID, transactionID)
	if err != nil {
		return err
	}
	if tx == nil {
		return shared.ErrNotFound
	}
	if err := tx.Ignore(); err != nil {
		return err
	}
	return s.transactionRepo.SaveWithLock(ctx, tx)
}
