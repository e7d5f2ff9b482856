package handler

import (
	"io"
	"net/http"
	"time"

	bankingapp "github.com/distrib/backoffice/internal/application/banking"
	"github.com/distrib/backoffice/internal/domain/banking"
	"github.com/distrib/backoffice/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// maxStatementFileSize caps uploaded statement files at 10MB
const maxStatementFileSize = 10 << 20

// BankingHandler handles statement import and reconciliation endpoints
type BankingHandler struct {
	BaseHandler
	importService         *bankingapp.StatementImportService
	queryService          *bankingapp.StatementQueryService
	reconciliationService *bankingapp.ReconciliationService
}

// NewBankingHandler creates a new BankingHandler
func NewBankingHandler(
	importService *bankingapp.StatementImportService,
	queryService *bankingapp.StatementQueryService,
	reconciliationService *bankingapp.ReconciliationService,
) *BankingHandler {
	return &BankingHandler{
		importService:         importService,
		queryService:          queryService,
		reconciliationService: reconciliationService,
	}
}

// ===================== Response DTOs =====================

// StatementResponse represents an imported bank statement file
type StatementResponse struct {
	ID               string    `json:"id"`
	BankAccountID    string    `json:"bank_account_id"`
	FileName         string    `json:"file_name"`
	ImportedAt       time.Time `json:"imported_at"`
	PeriodStart      time.Time `json:"period_start"`
	PeriodEnd        time.Time `json:"period_end"`
	TransactionCount int       `json:"transaction_count"`
	SkippedCount     int       `json:"skipped_count"`
}

// TransactionResponse represents a bank statement transaction. The amount is
// a decimal and serializes as a string, keeping binary floats out of the API.
type TransactionResponse struct {
	ID            string          `json:"id"`
	StatementID   string          `json:"statement_id"`
	BankAccountID string          `json:"bank_account_id"`
	FitID         string          `json:"fit_id"`
	Direction     string          `json:"direction"`
	Amount        decimal.Decimal `json:"amount"`
	PostedAt      time.Time       `json:"posted_at"`
	Memo          string          `json:"memo,omitempty"`
	Status        string          `json:"status"`
	MovementID    *string         `json:"movement_id,omitempty"`
}

// SuggestionResponse represents a reconciliation match suggestion
type SuggestionResponse struct {
	TransactionID string `json:"transaction_id"`
	TitleID       string `json:"title_id"`
	TitleNumber   string `json:"title_number"`
	Confidence    string `json:"confidence"`
	DayDelta      int    `json:"day_delta"`
	Reason        string `json:"reason"`
}

// PendingTransactionResponse is one newly-imported transaction annotated
// with its reconciliation suggestions
type PendingTransactionResponse struct {
	TransactionResponse
	Suggestions []SuggestionResponse `json:"suggestions"`
}

// ImportResultResponse reports the import summary plus the statement's
// pending transactions, so the operator can reconcile without further calls
type ImportResultResponse struct {
	StatementID         string                       `json:"statement_id"`
	Imported            int                          `json:"imported"`
	Skipped             int                          `json:"skipped"`
	TotalInFile         int                          `json:"total_in_file"`
	PendingTransactions []PendingTransactionResponse `json:"pending_transactions"`
}

// ConfirmMatchRequest represents a request to confirm a suggested match
type ConfirmMatchRequest struct {
	TitleID string `json:"title_id" binding:"required,uuid"`
}

// ===================== Statement handlers =====================

// ImportStatement imports an OFX statement file for a bank account.
// A file name already imported for the account is rejected with 409
// unless force=true; transactions seen before are skipped either way.
func (h *BankingHandler) ImportStatement(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	bankAccountID, err := uuid.Parse(c.Param("accountId"))
	if err != nil {
		h.BadRequest(c, "Invalid bank account ID format")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.BadRequest(c, "file is required")
		return
	}
	defer file.Close()

	if header.Size > maxStatementFileSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeValidation, "file exceeds maximum size of 10MB")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		h.BadRequest(c, "unable to read uploaded file")
		return
	}

	result, err := h.importService.Import(c.Request.Context(), bankingapp.ImportStatementCommand{
		TenantID:      tenantID,
		BankAccountID: bankAccountID,
		FileName:      header.Filename,
		Data:          data,
		Force:         c.Query("force") == "true",
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	response, err := h.buildImportResponse(c, tenantID, result)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, response)
}

// buildImportResponse annotates the import summary with the statement's
// pending transactions and their match suggestions, so the response is a
// ready-to-use reconciliation worklist.
func (h *BankingHandler) buildImportResponse(c *gin.Context, tenantID uuid.UUID, result *bankingapp.ImportResult) (ImportResultResponse, error) {
	ctx := c.Request.Context()

	transactions, err := h.queryService.ListStatementTransactions(ctx, tenantID, result.StatementID)
	if err != nil {
		return ImportResultResponse{}, err
	}
	suggestions, err := h.reconciliationService.SuggestForStatement(ctx, tenantID, result.StatementID)
	if err != nil {
		return ImportResultResponse{}, err
	}

	byTransaction := make(map[string][]SuggestionResponse)
	for _, s := range toSuggestionResponses(suggestions) {
		byTransaction[s.TransactionID] = append(byTransaction[s.TransactionID], s)
	}

	pending := make([]PendingTransactionResponse, 0, len(transactions))
	for i := range transactions {
		if transactions[i].Status != banking.TransactionStatusPending {
			continue
		}
		tx := toTransactionResponse(&transactions[i])
		pending = append(pending, PendingTransactionResponse{
			TransactionResponse: tx,
			Suggestions:         byTransaction[tx.ID],
		})
	}

	return ImportResultResponse{
		StatementID:         result.StatementID.String(),
		Imported:            result.Imported,
		Skipped:             result.Skipped,
		TotalInFile:         result.TotalInFile,
		PendingTransactions: pending,
	}, nil
}

// ListStatements retrieves imported statements for a bank account
func (h *BankingHandler) ListStatements(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	bankAccountID, err := uuid.Parse(c.Param("accountId"))
	if err != nil {
		h.BadRequest(c, "Invalid bank account ID format")
		return
	}

	statements, err := h.queryService.ListStatements(c.Request.Context(), tenantID, bankAccountID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	responses := make([]StatementResponse, len(statements))
	for i := range statements {
		responses[i] = toStatementResponse(&statements[i])
	}
	h.Success(c, responses)
}

// GetStatement retrieves a statement by its ID
func (h *BankingHandler) GetStatement(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	statementID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid statement ID format")
		return
	}

	statement, err := h.queryService.GetStatement(c.Request.Context(), tenantID, statementID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toStatementResponse(statement))
}

// ListStatementTransactions retrieves the transactions of one statement
func (h *BankingHandler) ListStatementTransactions(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	statementID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid statement ID format")
		return
	}

	transactions, err := h.queryService.ListStatementTransactions(c.Request.Context(), tenantID, statementID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toTransactionResponses(transactions))
}

// ListPendingTransactions retrieves unreconciled transactions for an account
func (h *BankingHandler) ListPendingTransactions(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	bankAccountID, err := uuid.Parse(c.Param("accountId"))
	if err != nil {
		h.BadRequest(c, "Invalid bank account ID format")
		return
	}

	transactions, err := h.queryService.ListPendingTransactions(c.Request.Context(), tenantID, bankAccountID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toTransactionResponses(transactions))
}

// ===================== Reconciliation handlers =====================

// SuggestForAccount proposes matches between an account's pending
// transactions and open titles. Suggestions are advisory; nothing is
// written until a match is confirmed.
func (h *BankingHandler) SuggestForAccount(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	bankAccountID, err := uuid.Parse(c.Param("accountId"))
	if err != nil {
		h.BadRequest(c, "Invalid bank account ID format")
		return
	}

	suggestions, err := h.reconciliationService.SuggestForAccount(c.Request.Context(), tenantID, bankAccountID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toSuggestionResponses(suggestions))
}

// SuggestForStatement proposes matches for one statement's transactions
func (h *BankingHandler) SuggestForStatement(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	statementID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid statement ID format")
		return
	}

	suggestions, err := h.reconciliationService.SuggestForStatement(c.Request.Context(), tenantID, statementID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toSuggestionResponses(suggestions))
}

// ConfirmMatch reconciles a transaction against a title, allocating the
// transaction amount as a payment
func (h *BankingHandler) ConfirmMatch(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing user ID")
		return
	}

	transactionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid transaction ID format")
		return
	}

	var req ConfirmMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	titleID, err := uuid.Parse(req.TitleID)
	if err != nil {
		h.BadRequest(c, "Invalid title ID format")
		return
	}

	result, err := h.reconciliationService.Confirm(c.Request.Context(), bankingapp.ConfirmMatchCommand{
		TenantID:      tenantID,
		TransactionID: transactionID,
		TitleID:       titleID,
		UserID:        userID,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toAllocationResultResponse(result))
}

// IgnoreTransaction marks a pending transaction as not reconcilable
func (h *BankingHandler) IgnoreTransaction(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	transactionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid transaction ID format")
		return
	}

	if err := h.reconciliationService.IgnoreTransaction(c.Request.Context(), tenantID, transactionID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// ===================== Converters =====================

func toStatementResponse(statement *banking.BankStatement) StatementResponse {
	return StatementResponse{
		ID:               statement.ID.String(),
		BankAccountID:    statement.BankAccountID.String(),
		FileName:         statement.FileName,
		ImportedAt:       statement.ImportedAt,
		PeriodStart:      statement.PeriodStart,
		PeriodEnd:        statement.PeriodEnd,
		TransactionCount: statement.TransactionCount,
		SkippedCount:     statement.SkippedCount,
	}
}

func toTransactionResponse(t *banking.BankTransaction) TransactionResponse {
	return TransactionResponse{
		ID:            t.ID.String(),
		StatementID:   t.StatementID.String(),
		BankAccountID: t.BankAccountID.String(),
		FitID:         t.FitID,
		Direction:     string(t.Direction),
		Amount:        t.Amount,
		PostedAt:      t.PostedAt,
		Memo:          t.Memo,
		Status:        string(t.Status),
		MovementID:    uuidPtrToString(t.MovementID),
	}
}

func toTransactionResponses(transactions []banking.BankTransaction) []TransactionResponse {
	responses := make([]TransactionResponse, len(transactions))
	for i := range transactions {
		responses[i] = toTransactionResponse(&transactions[i])
	}
	return responses
}

func toSuggestionResponses(suggestions []banking.MatchSuggestion) []SuggestionResponse {
	responses := make([]SuggestionResponse, len(suggestions))
	for i, s := range suggestions {
		responses[i] = SuggestionResponse{
			TransactionID: s.TransactionID.String(),
			TitleID:       s.TitleID.String(),
			TitleNumber:   s.TitleNumber,
			Confidence:    string(s.Confidence),
			DayDelta:      s.DayDelta,
			Reason:        s.Reason,
		}
	}
	return responses
}
