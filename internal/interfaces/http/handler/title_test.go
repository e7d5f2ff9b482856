package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	ledgerapp "github.com/distrib/backoffice/internal/application/ledger"
	"github.com/distrib/backoffice/internal/domain/ledger"
	"github.com/distrib/backoffice/internal/domain/shared/valueobject"
	"github.com/distrib/backoffice/internal/infrastructure/cache"
	"github.com/distrib/backoffice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

var testTenantID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// MockTitleRepository implements ledger.TitleRepository for testing
type MockTitleRepository struct {
	mock.Mock
}

func (m *MockTitleRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Title, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Title), args.Error(1)
}

func (m *MockTitleRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, titleNumber string) (*ledger.Title, error) {
	args := m.Called(ctx, tenantID, titleNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Title), args.Error(1)
}

func (m *MockTitleRepository) FindByGatewayPayment(ctx context.Context, tenantID uuid.UUID, gatewayPaymentID string) (*ledger.Title, error) {
	args := m.Called(ctx, tenantID, gatewayPaymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Title), args.Error(1)
}

func (m *MockTitleRepository) FindOpenByCounterparty(ctx context.Context, tenantID, counterpartyID uuid.UUID, titleType ledger.TitleType, excludeID uuid.UUID) ([]ledger.Title, error) {
	args := m.Called(ctx, tenantID, counterpartyID, titleType, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Title), args.Error(1)
}

func (m *MockTitleRepository) FindOpenByType(ctx context.Context, tenantID uuid.UUID, titleType ledger.TitleType) ([]ledger.Title, error) {
	args := m.Called(ctx, tenantID, titleType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Title), args.Error(1)
}

func (m *MockTitleRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter ledger.TitleFilter) ([]ledger.Title, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Title), args.Error(1)
}

func (m *MockTitleRepository) FindDueBefore(ctx context.Context, tenantID uuid.UUID, cutoff time.Time) ([]ledger.Title, error) {
	args := m.Called(ctx, tenantID, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Title), args.Error(1)
}

func (m *MockTitleRepository) TenantIDsWithDueTitles(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockTitleRepository) Create(ctx context.Context, title *ledger.Title) error {
	args := m.Called(ctx, title)
	return args.Error(0)
}

func (m *MockTitleRepository) SaveWithLock(ctx context.Context, title *ledger.Title) error {
	args := m.Called(ctx, title)
	return args.Error(0)
}

func (m *MockTitleRepository) NextTitleNumber(ctx context.Context, tenantID uuid.UUID, prefix string) (string, error) {
	args := m.Called(ctx, tenantID, prefix)
	return args.String(0), args.Error(1)
}

func (m *MockTitleRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter ledger.TitleFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockMovementRepository implements ledger.MovementRepository for testing
type MockMovementRepository struct {
	mock.Mock
}

func (m *MockMovementRepository) Create(ctx context.Context, movement *ledger.Movement) error {
	args := m.Called(ctx, movement)
	return args.Error(0)
}

func (m *MockMovementRepository) FindByTitle(ctx context.Context, tenantID, titleID uuid.UUID) ([]ledger.Movement, error) {
	args := m.Called(ctx, tenantID, titleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Movement), args.Error(1)
}

func (m *MockMovementRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Movement, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Movement), args.Error(1)
}

// Test helpers

func setupTenantRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.TenantIDKey, testTenantID.String())
		c.Next()
	})
	return router
}

func setupTitleHandler(titleRepo *MockTitleRepository, movementRepo *MockMovementRepository) *TitleHandler {
	scope := ledgerapp.NewNoOpTransactionScope(titleRepo, movementRepo)
	allocator := ledgerapp.NewAllocatorService(scope, zap.NewNop())
	titleService := ledgerapp.NewTitleService(titleRepo, movementRepo, scope, allocator, cache.NewInMemoryIdempotencyStore(), zap.NewNop())
	return NewTitleHandler(titleService, allocator)
}

func createOpenTitle(balance string, dueDate time.Time) *ledger.Title {
	amount, _ := decimal.NewFromString(balance)
	title, _ := ledger.NewTitle(testTenantID, "REC-000001", ledger.TitleTypeReceivable, valueobject.NewMoneyBRL(amount), dueDate, nil)
	return title
}

// Tests

func TestTitleHandler_Create_Success(t *testing.T) {
	titleRepo := new(MockTitleRepository)
	movementRepo := new(MockMovementRepository)
	h := setupTitleHandler(titleRepo, movementRepo)

	titleRepo.On("NextTitleNumber", mock.Anything, testTenantID, "REC").Return("REC-000042", nil)
	titleRepo.On("Create", mock.Anything, mock.AnythingOfType("*ledger.Title")).Return(nil)

	router := setupTenantRouter()
	router.POST("/titles", h.Create)

	body, _ := json.Marshal(CreateTitleRequest{
		Type:    "RECEIVABLE",
		Amount:  "150.50",
		DueDate: "2026-09-30",
	})
	req := httptest.NewRequest(http.MethodPost, "/titles", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "REC-000042")
	titleRepo.AssertExpectations(t)
}

func TestTitleHandler_Create_InvalidType(t *testing.T) {
	titleRepo := new(MockTitleRepository)
	movementRepo := new(MockMovementRepository)
	h := setupTitleHandler(titleRepo, movementRepo)

	router := setupTenantRouter()
	router.POST("/titles", h.Create)

	body, _ := json.Marshal(map[string]any{
		"type":     "VOUCHER",
		"amount":   "100.00",
		"due_date": "2026-09-30",
	})
	req := httptest.NewRequest(http.MethodPost, "/titles", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTitleHandler_Create_RejectsNonDecimalAmount(t *testing.T) {
	titleRepo := new(MockTitleRepository)
	movementRepo := new(MockMovementRepository)
	h := setupTitleHandler(titleRepo, movementRepo)

	router := setupTenantRouter()
	router.POST("/titles", h.Create)

	for _, amount := range []string{"not-a-number", "-10.00", "0"} {
		body, _ := json.Marshal(map[string]any{
			"type":     "RECEIVABLE",
			"amount":   amount,
			"due_date": "2026-09-30",
		})
		req := httptest.NewRequest(http.MethodPost, "/titles", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, "amount %q should be rejected", amount)
	}
	titleRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTitleHandler_GetByID_Success(t *testing.T) {
	titleRepo := new(MockTitleRepository)
	movementRepo := new(MockMovementRepository)
	h := setupTitleHandler(titleRepo, movementRepo)

	title := createOpenTitle("100.00", time.Now().AddDate(0, 1, 0))
	titleRepo.On("FindByIDForTenant", mock.Anything, testTenantID, title.ID).Return(title, nil)

	router := setupTenantRouter()
	router.GET("/titles/:id", h.GetByID)

	req := httptest.NewRequest(http.MethodGet, "/titles/"+title.ID.String(), nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	titleRepo.AssertExpectations(t)
}

func TestTitleHandler_GetByID_NotFound(t *testing.T) {
	titleRepo := new(MockTitleRepository)
	movementRepo := new(MockMovementRepository)
	h := setupTitleHandler(titleRepo, movementRepo)

	titleID := uuid.New()
	titleRepo.On("FindByIDForTenant", mock.Anything, testTenantID, titleID).Return(nil, nil)

	router := setupTenantRouter()
	router.GET("/titles/:id", h.GetByID)

	req := httptest.NewRequest(http.MethodGet, "/titles/"+titleID.String(), nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTitleHandler_GetByID_InvalidID(t *testing.T) {
	titleRepo := new(MockTitleRepository)
	movementRepo := new(MockMovementRepository)
	h := setupTitleHandler(titleRepo, movementRepo)

	router := setupTenantRouter()
	router.GET("/titles/:id", h.GetByID)

	req := httptest.NewRequest(http.MethodGet, "/titles/not-a-uuid", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTitleHandler_List_Success(t *testing.T) {
	titleRepo := new(MockTitleRepository)
	movementRepo := new(MockMovementRepository)
	h := setupTitleHandler(titleRepo, movementRepo)

	titles := []ledger.Title{*createOpenTitle("100.00", time.Now())}
	titleRepo.On("FindAllForTenant", mock.Anything, testTenantID, mock.AnythingOfType("ledger.TitleFilter")).Return(titles, nil)
	titleRepo.On("CountForTenant", mock.Anything, testTenantID, mock.AnythingOfType("ledger.TitleFilter")).Return(int64(1), nil)

	router := setupTenantRouter()
	router.GET("/titles", h.List)

	req := httptest.NewRequest(http.MethodGet, "/titles?status=OPEN&page=1&page_size=10", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Meta    struct {
			Total int64 `json:"total"`
		} `json:"meta"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, int64(1), resp.Meta.Total)
	titleRepo.AssertExpectations(t)
}

func TestTitleHandler_ListMovements_Success(t *testing.T) {
	titleRepo := new(MockTitleRepository)
	movementRepo := new(MockMovementRepository)
	h := setupTitleHandler(titleRepo, movementRepo)

	title := createOpenTitle("100.00", time.Now().AddDate(0, 1, 0))
	movement := ledger.NewPaymentMovement(testTenantID, title.ID, valueobject.NewMoneyBRL(decimal.NewFromInt(40)), time.Now(), uuid.New(), nil, "")

	titleRepo.On("FindByIDForTenant", mock.Anything, testTenantID, title.ID).Return(title, nil)
	movementRepo.On("FindByTitle", mock.Anything, testTenantID, title.ID).Return([]ledger.Movement{*movement}, nil)

	router := setupTenantRouter()
	router.GET("/titles/:id/movements", h.ListMovements)

	req := httptest.NewRequest(http.MethodGet, "/titles/"+title.ID.String()+"/movements", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	movementRepo.AssertExpectations(t)
}

func TestTitleHandler_AllocatePayment_Success(t *testing.T) {
	titleRepo := new(MockTitleRepository)
	movementRepo := new(MockMovementRepository)
	h := setupTitleHandler(titleRepo, movementRepo)

	title := createOpenTitle("100.00", time.Now().AddDate(0, 1, 0))
	titleRepo.On("FindByIDForTenant", mock.Anything, testTenantID, title.ID).Return(title, nil)
	titleRepo.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*ledger.Title")).Return(nil)
	movementRepo.On("Create", mock.Anything, mock.AnythingOfType("*ledger.Movement")).Return(nil)

	router := setupTenantRouter()
	router.POST("/titles/:id/payments", h.AllocatePayment)

	body, _ := json.Marshal(AllocatePaymentRequest{
		Amount:      "100.00",
		PaymentDate: "2026-08-28",
	})
	req := httptest.NewRequest(http.MethodPost, "/titles/"+title.ID.String()+"/payments", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", uuid.NewString())
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool                     `json:"success"`
		Data    AllocationResultResponse `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Len(t, resp.Data.Entries, 1)
	assert.True(t, resp.Data.TotalAllocated.Equal(decimal.NewFromInt(100)), "expected 100, got %s", resp.Data.TotalAllocated)
	assert.Contains(t, w.Body.String(), `"total_allocated":"100"`)
	assert.Equal(t, string(ledger.TitleStatusPaid), resp.Data.Entries[0].NewStatus)
	titleRepo.AssertExpectations(t)
	movementRepo.AssertExpectations(t)
}

func TestTitleHandler_AllocatePayment_MissingUser(t *testing.T) {
	titleRepo := new(MockTitleRepository)
	movementRepo := new(MockMovementRepository)
	h := setupTitleHandler(titleRepo, movementRepo)

	router := setupTenantRouter()
	router.POST("/titles/:id/payments", h.AllocatePayment)

	body, _ := json.Marshal(AllocatePaymentRequest{
		Amount:      "50.00",
		PaymentDate: "2026-08-28",
	})
	req := httptest.NewRequest(http.MethodPost, "/titles/"+uuid.NewString()+"/payments", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTitleHandler_SweepOverdue_Success(t *testing.T) {
	titleRepo := new(MockTitleRepository)
	movementRepo := new(MockMovementRepository)
	h := setupTitleHandler(titleRepo, movementRepo)

	past := createOpenTitle("80.00", time.Now().AddDate(0, 0, -10))
	titleRepo.On("FindDueBefore", mock.Anything, testTenantID, mock.AnythingOfType("time.Time")).Return([]ledger.Title{*past}, nil)
	titleRepo.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*ledger.Title")).Return(nil)

	router := setupTenantRouter()
	router.POST("/sweep-overdue", h.SweepOverdue)

	req := httptest.NewRequest(http.MethodPost, "/sweep-overdue", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "titles_marked")
	titleRepo.AssertExpectations(t)
}
