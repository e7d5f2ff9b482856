package ledger

import (
	"context"
	"time"

	"github.com/distrib/backoffice/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockTitleRepository is a mock implementation of ledger.TitleRepository
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

// MockMovementRepository is a mock implementation of ledger.MovementRepository
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

// MockIdempotencyStore is a mock implementation of IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
