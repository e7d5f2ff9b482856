package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	bankingapp "github.com/distrib/backoffice/internal/application/banking"
	ledgerapp "github.com/distrib/backoffice/internal/application/ledger"
	"github.com/distrib/backoffice/internal/domain/banking"
	"github.com/distrib/backoffice/internal/domain/ledger"
	"github.com/distrib/backoffice/internal/domain/shared/valueobject"
	"github.com/distrib/backoffice/internal/infrastructure/statement"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockStatementRepository implements banking.StatementRepository for testing
type MockStatementRepository struct {
	mock.Mock
}

func (m *MockStatementRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*banking.BankStatement, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*banking.BankStatement), args.Error(1)
}

func (m *MockStatementRepository) FindByAccountAndFile(ctx context.Context, tenantID, bankAccountID uuid.UUID, fileName string) (*banking.BankStatement, error) {
	args := m.Called(ctx, tenantID, bankAccountID, fileName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*banking.BankStatement), args.Error(1)
}

func (m *MockStatementRepository) FindAllForAccount(ctx context.Context, tenantID, bankAccountID uuid.UUID) ([]banking.BankStatement, error) {
	args := m.Called(ctx, tenantID, bankAccountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]banking.BankStatement), args.Error(1)
}

func (m *MockStatementRepository) Create(ctx context.Context, stmt *banking.BankStatement) error {
	args := m.Called(ctx, stmt)
	return args.Error(0)
}

func (m *MockStatementRepository) Save(ctx context.Context, stmt *banking.BankStatement) error {
	args := m.Called(ctx, stmt)
	return args.Error(0)
}

// MockTransactionRepository implements banking.TransactionRepository for testing
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*banking.BankTransaction, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*banking.BankTransaction), args.Error(1)
}

func (m *MockTransactionRepository) FindByStatement(ctx context.Context, tenantID, statementID uuid.UUID) ([]banking.BankTransaction, error) {
	args := m.Called(ctx, tenantID, statementID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]banking.BankTransaction), args.Error(1)
}

func (m *MockTransactionRepository) FindPendingByAccount(ctx context.Context, tenantID, bankAccountID uuid.UUID) ([]banking.BankTransaction, error) {
	args := m.Called(ctx, tenantID, bankAccountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]banking.BankTransaction), args.Error(1)
}

func (m *MockTransactionRepository) CreateIgnoreDuplicates(ctx context.Context, transactions []*banking.BankTransaction) (int64, error) {
	args := m.Called(ctx, transactions)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransactionRepository) SaveWithLock(ctx context.Context, tx *banking.BankTransaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

const validOFX = `OFXHEADER:100
DATA:OFXSGML
ENCODING:USASCII

<OFX>
<BANKMSGSRSV1>
<STMTTRNRS>
<STMTRS>
<BANKTRANLIST>
<DTSTART>20260801
<DTEND>20260831
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20260815
<TRNAMT>150.00
<FITID>FIT-2026-001
<MEMO>PIX RECEBIDO CLIENTE
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20260816
<TRNAMT>-75.50
<FITID>FIT-2026-002
<MEMO>BOLETO FORNECEDOR
</STMTTRN>
</BANKTRANLIST>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>
`

func setupBankingHandler(
	titleRepo *MockTitleRepository,
	movementRepo *MockMovementRepository,
	stmtRepo *MockStatementRepository,
	txRepo *MockTransactionRepository,
) *BankingHandler {
	ledgerScope := ledgerapp.NewNoOpTransactionScope(titleRepo, movementRepo)
	bankingScope := bankingapp.NewNoOpTransactionScope(ledgerScope, stmtRepo, txRepo)
	allocator := ledgerapp.NewAllocatorService(ledgerScope, zap.NewNop())
	importService := bankingapp.NewStatementImportService(statement.NewOFXParser(), bankingScope, zap.NewNop())
	queryService := bankingapp.NewStatementQueryService(stmtRepo, txRepo)
	reconciliationService := bankingapp.NewReconciliationService(txRepo, titleRepo, allocator, bankingScope, zap.NewNop())
	return NewBankingHandler(importService, queryService, reconciliationService)
}

func statementUploadRequest(t *testing.T, url, fileName, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", fileName)
	assert.NoError(t, err)
	_, err = part.Write([]byte(content))
	assert.NoError(t, err)
	assert.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, url, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func createPendingBankTransaction(bankAccountID uuid.UUID, amount string, postedAt time.Time) *banking.BankTransaction {
	value, _ := decimal.NewFromString(amount)
	tx, _ := banking.NewBankTransaction(
		testTenantID, uuid.New(), bankAccountID,
		"FIT-2026-001", banking.DirectionCredit, value, postedAt, "PIX RECEBIDO",
	)
	return tx
}

func TestBankingHandler_ImportStatement_Success(t *testing.T) {
	titleRepo := new(MockTitleRepository)
	movementRepo := new(MockMovementRepository)
	stmtRepo := new(MockStatementRepository)
	txRepo := new(MockTransactionRepository)
	h := setupBankingHandler(titleRepo, movementRepo, stmtRepo, txRepo)

	accountID := uuid.New()
	postedAt := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	pendingTx := createPendingBankTransaction(accountID, "150.00", postedAt)
	matchingTitle, _ := ledger.NewTitle(testTenantID, "REC-000011", ledger.TitleTypeReceivable,
		valueobject.NewMoneyBRL(decimal.NewFromInt(150)), postedAt, nil)

	stmtRepo.On("FindByAccountAndFile", mock.Anything, testTenantID, accountID, "extrato-agosto.ofx").Return(nil, nil)
	stmtRepo.On("Create", mock.Anything, mock.AnythingOfType("*banking.BankStatement")).Return(nil)
	txRepo.On("CreateIgnoreDuplicates", mock.Anything, mock.AnythingOfType("[]*banking.BankTransaction")).Return(int64(2), nil)
	stmtRepo.On("Save", mock.Anything, mock.AnythingOfType("*banking.BankStatement")).Return(nil)

	saved, _ := banking.NewBankStatement(testTenantID, accountID, "extrato-agosto.ofx", postedAt, postedAt)
	stmtRepo.On("FindByIDForTenant", mock.Anything, testTenantID, mock.AnythingOfType("uuid.UUID")).Return(saved, nil)
	txRepo.On("FindByStatement", mock.Anything, testTenantID, mock.AnythingOfType("uuid.UUID")).Return([]banking.BankTransaction{*pendingTx}, nil)
	titleRepo.On("FindOpenByType", mock.Anything, testTenantID, ledger.TitleTypeReceivable).Return([]ledger.Title{*matchingTitle}, nil)
	titleRepo.On("FindOpenByType", mock.Anything, testTenantID, ledger.TitleTypePayable).Return([]ledger.Title{}, nil)

	router := setupTenantRouter()
	router.POST("/accounts/:accountId/statements", h.ImportStatement)

	req := statementUploadRequest(t, "/accounts/"+accountID.String()+"/statements", "extrato-agosto.ofx", validOFX)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Data ImportResultResponse `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Data.Imported)
	assert.Equal(t, 0, resp.Data.Skipped)
	assert.Equal(t, 2, resp.Data.TotalInFile)

	// The response doubles as a reconciliation worklist: every pending
	// transaction comes annotated with its match suggestions.
	assert.Len(t, resp.Data.PendingTransactions, 1)
	worklist := resp.Data.PendingTransactions[0]
	assert.Equal(t, pendingTx.ID.String(), worklist.ID)
	assert.True(t, worklist.Amount.Equal(decimal.NewFromInt(150)))
	assert.Len(t, worklist.Suggestions, 1)
	assert.Equal(t, matchingTitle.ID.String(), worklist.Suggestions[0].TitleID)
	stmtRepo.AssertExpectations(t)
	txRepo.AssertExpectations(t)
}

func TestBankingHandler_ImportStatement_DuplicateFile(t *testing.T) {
	titleRepo := new(MockTitleRepository)
	movementRepo := new(MockMovementRepository)
	stmtRepo := new(MockStatementRepository)
	txRepo := new(MockTransactionRepository)
	h := setupBankingHandler(titleRepo, movementRepo, stmtRepo, txRepo)

	accountID := uuid.New()
	existing, _ := banking.NewBankStatement(testTenantID, accountID, "extrato-agosto.ofx", time.Now(), time.Now())
	stmtRepo.On("FindByAccountAndFile", mock.Anything, testTenantID, accountID, "extrato-agosto.ofx").Return(existing, nil)

	router := setupTenantRouter()
	router.POST("/accounts/:accountId/statements", h.ImportStatement)

	req := statementUploadRequest(t, "/accounts/"+accountID.String()+"/statements", "extrato-agosto.ofx", validOFX)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), existing.ID.String())
	txRepo.AssertNotCalled(t, "CreateIgnoreDuplicates")
}

func TestBankingHandler_ImportStatement_ForceBypassesConflict(t *testing.T) {
	titleRepo := new(MockTitleRepository)
	movementRepo := new(MockMovementRepository)
	stmtRepo := new(MockStatementRepository)
	txRepo := new(MockTransactionRepository)
	h := setupBankingHandler(titleRepo, movementRepo, stmtRepo, txRepo)

	accountID := uuid.New()
	existing, _ := banking.NewBankStatement(testTenantID, accountID, "extrato-agosto.ofx", time.Now(), time.Now())
	stmtRepo.On("FindByAccountAndFile", mock.Anything, testTenantID, accountID, "extrato-agosto.ofx").Return(existing, nil)
	stmtRepo.On("Create", mock.Anything, mock.AnythingOfType("*banking.BankStatement")).Return(nil)
	txRepo.On("CreateIgnoreDuplicates", mock.Anything, mock.AnythingOfType("[]*banking.BankTransaction")).Return(int64(0), nil)
	stmtRepo.On("Save", mock.Anything, mock.AnythingOfType("*banking.BankStatement")).Return(nil)
	stmtRepo.On("FindByIDForTenant", mock.Anything, testTenantID, mock.AnythingOfType("uuid.UUID")).Return(existing, nil)
	txRepo.On("FindByStatement", mock.Anything, testTenantID, mock.AnythingOfType("uuid.UUID")).Return([]banking.BankTransaction{}, nil)

	router := setupTenantRouter()
	router.POST("/accounts/:accountId/statements", h.ImportStatement)

	req := statementUploadRequest(t, "/accounts/"+accountID.String()+"/statements?force=true", "extrato-agosto.ofx", validOFX)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Data ImportResultResponse `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Data.Imported)
	assert.Equal(t, 2, resp.Data.Skipped)
	assert.Empty(t, resp.Data.PendingTransactions)
	stmtRepo.AssertExpectations(t)
}

func TestBankingHandler_ImportStatement_NoValidTransactions(t *testing.T) {
	titleRepo := new(MockTitleRepository)
	movementRepo := new(MockMovementRepository)
	stmtRepo := new(MockStatementRepository)
	txRepo := new(MockTransactionRepository)
	h := setupBankingHandler(titleRepo, movementRepo, stmtRepo, txRepo)

	brokenOFX := "<OFX><BANKTRANLIST><STMTTRN><TRNAMT>10.00\n</STMTTRN></BANKTRANLIST></OFX>"

	router := setupTenantRouter()
	router.POST("/accounts/:accountId/statements", h.ImportStatement)

	req := statementUploadRequest(t, "/accounts/"+uuid.NewString()+"/statements", "vazio.ofx", brokenOFX)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	stmtRepo.AssertNotCalled(t, "Create")
}

func TestBankingHandler_SuggestForAccount_HighConfidence(t *testing.T) {
	titleRepo := new(MockTitleRepository)
	movementRepo := new(MockMovementRepository)
	stmtRepo := new(MockStatementRepository)
	txRepo := new(MockTransactionRepository)
	h := setupBankingHandler(titleRepo, movementRepo, stmtRepo, txRepo)

	accountID := uuid.New()
	postedAt := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	tx := createPendingBankTransaction(accountID, "150.00", postedAt)

	title, _ := ledger.NewTitle(testTenantID, "REC-000007", ledger.TitleTypeReceivable,
		valueobject.NewMoneyBRL(decimal.NewFromInt(150)), postedAt, nil)

	txRepo.On("FindPendingByAccount", mock.Anything, testTenantID, accountID).Return([]banking.BankTransaction{*tx}, nil)
	titleRepo.On("FindOpenByType", mock.Anything, testTenantID, ledger.TitleTypeReceivable).Return([]ledger.Title{*title}, nil)
	titleRepo.On("FindOpenByType", mock.Anything, testTenantID, ledger.TitleTypePayable).Return([]ledger.Title{}, nil)

	router := setupTenantRouter()
	router.GET("/accounts/:accountId/suggestions", h.SuggestForAccount)

	req := httptest.NewRequest(http.MethodGet, "/accounts/"+accountID.String()+"/suggestions", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []SuggestionResponse `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 1)
	assert.Equal(t, string(banking.ConfidenceHigh), resp.Data[0].Confidence)
	assert.Equal(t, title.ID.String(), resp.Data[0].TitleID)
	txRepo.AssertExpectations(t)
	titleRepo.AssertExpectations(t)
}

func TestBankingHandler_ConfirmMatch_Success(t *testing.T) {
	titleRepo := new(MockTitleRepository)
	movementRepo := new(MockMovementRepository)
	stmtRepo := new(MockStatementRepository)
	txRepo := new(MockTransactionRepository)
	h := setupBankingHandler(titleRepo, movementRepo, stmtRepo, txRepo)

	accountID := uuid.New()
	postedAt := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	tx := createPendingBankTransaction(accountID, "100.00", postedAt)
	title := createOpenTitle("100.00", postedAt)

	txRepo.On("FindByIDForTenant", mock.Anything, testTenantID, tx.ID).Return(tx, nil)
	titleRepo.On("FindByIDForTenant", mock.Anything, testTenantID, title.ID).Return(title, nil)
	titleRepo.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*ledger.Title")).Return(nil)
	movementRepo.On("Create", mock.Anything, mock.AnythingOfType("*ledger.Movement")).Return(nil)
	txRepo.On("SaveWithLock", mock.Anything, tx).Return(nil)

	router := setupTenantRouter()
	router.POST("/transactions/:id/confirm", h.ConfirmMatch)

	body, _ := json.Marshal(ConfirmMatchRequest{TitleID: title.ID.String()})
	req := httptest.NewRequest(http.MethodPost, "/transactions/"+tx.ID.String()+"/confirm", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", uuid.NewString())
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, banking.TransactionStatusReconciled, tx.Status)
	assert.NotNil(t, tx.MovementID)
	txRepo.AssertExpectations(t)
	titleRepo.AssertExpectations(t)
	movementRepo.AssertExpectations(t)
}

func TestBankingHandler_ConfirmMatch_AlreadyReconciled(t *testing.T) {
	titleRepo := new(MockTitleRepository)
	movementRepo := new(MockMovementRepository)
	stmtRepo := new(MockStatementRepository)
	txRepo := new(MockTransactionRepository)
	h := setupBankingHandler(titleRepo, movementRepo, stmtRepo, txRepo)

	accountID := uuid.New()
	tx := createPendingBankTransaction(accountID, "100.00", time.Now())
	assert.NoError(t, tx.Reconcile(uuid.New()))

	txRepo.On("FindByIDForTenant", mock.Anything, testTenantID, tx.ID).Return(tx, nil)

	router := setupTenantRouter()
	router.POST("/transactions/:id/confirm", h.ConfirmMatch)

	body, _ := json.Marshal(ConfirmMatchRequest{TitleID: uuid.NewString()})
	req := httptest.NewRequest(http.MethodPost, "/transactions/"+tx.ID.String()+"/confirm", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", uuid.NewString())
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	titleRepo.AssertNotCalled(t, "FindByIDForTenant")
}

func TestBankingHandler_IgnoreTransaction_Success(t *testing.T) {
	titleRepo := new(MockTitleRepository)
	movementRepo := new(MockMovementRepository)
	stmtRepo := new(MockStatementRepository)
	txRepo := new(MockTransactionRepository)
	h := setupBankingHandler(titleRepo, movementRepo, stmtRepo, txRepo)

	tx := createPendingBankTransaction(uuid.New(), "42.00", time.Now())
	txRepo.On("FindByIDForTenant", mock.Anything, testTenantID, tx.ID).Return(tx, nil)
	txRepo.On("SaveWithLock", mock.Anything, tx).Return(nil)

	router := setupTenantRouter()
	router.POST("/transactions/:id/ignore", h.IgnoreTransaction)

	req := httptest.NewRequest(http.MethodPost, "/transactions/"+tx.ID.String()+"/ignore", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, banking.TransactionStatusIgnored, tx.Status)
	txRepo.AssertExpectations(t)
}
