package banking

import (
	"context"

	"github.com/distrib/backoffice/internal/domain/banking"
	"github.com/distrib/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StatementParser turns a raw statement file into parsed transactions
type StatementParser interface {
	Parse(data []byte) (*banking.ParsedStatement, error)
}

// ImportStatementCommand describes one statement file upload
type ImportStatementCommand struct {
	TenantID      uuid.UUID
	BankAccountID uuid.UUID
	FileName      string
	Data          []byte
	// Force allows re-importing a file name that was imported before.
	// Transaction dedup by FIT ID still applies.
	Force bool
}

// ImportResult summarizes one statement import
type ImportResult struct {
	StatementID uuid.UUID `json:"statement_id"`
	Imported    int       `json:"imported"`
	Skipped     int       `json:"skipped"`
	TotalInFile int       `json:"total_in_file"`
}

// StatementImportService imports bank statement files
type StatementImportService struct {
	parser  StatementParser
	txScope TransactionScope
	logger  *zap.Logger
}

// NewStatementImportService creates a new StatementImportService
func NewStatementImportService(parser StatementParser, txScope TransactionScope, logger *zap.Logger) *StatementImportService {
	return &StatementImportService{parser: parser, txScope: txScope, logger: logger}
}

// Import parses and persists a statement file. Re-uploading the same file
// name for the same account is a conflict unless forced; individual
// transactions are deduplicated by (bank account, FIT ID) regardless, so a
// forced re-import or an overlapping statement never duplicates lines.
func (s *StatementImportService) Import(ctx context.Context, cmd ImportStatementCommand) (*ImportResult, error) {
	parsed, err := s.parser.Parse(cmd.Data)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_STATEMENT_FILE", err.Error())
	}
	if len(parsed.Lines) == 0 {
		return nil, shared.NewDomainError("EMPTY_STATEMENT", "Statement file contains no valid transactions")
	}

	var result *ImportResult
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		existing, err := repos.Statements().FindByAccountAndFile(ctx, cmd.TenantID, cmd.BankAccountID, cmd.FileName)
		if err != nil {
			return err
		}
		if existing != nil && !cmd.Force {
			return shared.NewConflictError("STATEMENT_ALREADY_IMPORTED",
				"This file was already imported for this bank account", existing.ID.String())
		}

		statement, err := banking.NewBankStatement(cmd.TenantID, cmd.BankAccountID, cmd.FileName, parsed.PeriodStart, parsed.PeriodEnd)
		if err != nil {
			return err
		}
		if err := repos.Statements().Create(ctx, statement); err != nil {
			return err
		}

		transactions := make([]*banking.BankTransaction, 0, len(parsed.Lines))
		for _, line := range parsed.Lines {
			tx, err := banking.NewBankTransaction(
				cmd.TenantID, statement.ID, cmd.BankAccountID,
				line.FitID, line.Direction, line.Amount, line.PostedAt, line.Memo,
			)
			if err != nil {
				return err
			}
			transactions = append(transactions, tx)
		}

		inserted, err := repos.Transactions().CreateIgnoreDuplicates(ctx, transactions)
		if err != nil {
			return err
		}

		skipped := len(transactions) - int(inserted)
		statement.RecordImportResult(int(inserted), skipped)
		if err := repos.Statements().Save(ctx, statement); err != nil {
			return err
		}

		result = &ImportResult{
			StatementID: statement.ID,
			Imported:    int(inserted),
			Skipped:     skipped,
			TotalInFile: len(transactions),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("bank statement imported",
		zap.String("tenant_id", cmd.TenantID.String()),
		zap.String("bank_account_id", cmd.BankAccountID.String()),
		zap.String("file_name", cmd.FileName),
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}
