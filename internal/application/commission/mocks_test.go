package commission

import (
	"context"

	"github.com/distrib/backoffice/internal/domain/commission"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockRuleRepository is a mock implementation of commission.RuleRepository
type MockRuleRepository struct {
	mock.Mock
}

func (m *MockRuleRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*commission.CommissionRule, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commission.CommissionRule), args.Error(1)
}

func (m *MockRuleRepository) FindCandidates(ctx context.Context, tenantID, sellerID uuid.UUID, productIDs []uuid.UUID) ([]commission.CommissionRule, error) {
	args := m.Called(ctx, tenantID, sellerID, productIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]commission.CommissionRule), args.Error(1)
}

func (m *MockRuleRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, activeOnly bool) ([]commission.CommissionRule, error) {
	args := m.Called(ctx, tenantID, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]commission.CommissionRule), args.Error(1)
}

func (m *MockRuleRepository) Create(ctx context.Context, rule *commission.CommissionRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockRuleRepository) SaveWithLock(ctx context.Context, rule *commission.CommissionRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

// MockRecordRepository is a mock implementation of commission.RecordRepository
type MockRecordRepository struct {
	mock.Mock
}

func (m *MockRecordRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*commission.CommissionRecord, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commission.CommissionRecord), args.Error(1)
}

func (m *MockRecordRepository) FindByOrder(ctx context.Context, tenantID, orderID uuid.UUID) (*commission.CommissionRecord, error) {
	args := m.Called(ctx, tenantID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commission.CommissionRecord), args.Error(1)
}

func (m *MockRecordRepository) FindByIDsForTenant(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*commission.CommissionRecord, error) {
	args := m.Called(ctx, tenantID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*commission.CommissionRecord), args.Error(1)
}

func (m *MockRecordRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter commission.RecordFilter) ([]commission.CommissionRecord, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]commission.CommissionRecord), args.Get(1).(int64), args.Error(2)
}

func (m *MockRecordRepository) Create(ctx context.Context, record *commission.CommissionRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockRecordRepository) SaveWithLock(ctx context.Context, record *commission.CommissionRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// MockPayoutRepository is a mock implementation of commission.PayoutRepository
type MockPayoutRepository struct {
	mock.Mock
}

func (m *MockPayoutRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*commission.CommissionPayout, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commission.CommissionPayout), args.Error(1)
}

func (m *MockPayoutRepository) FindBySeller(ctx context.Context, tenantID, sellerID uuid.UUID) ([]commission.CommissionPayout, error) {
	args := m.Called(ctx, tenantID, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]commission.CommissionPayout), args.Error(1)
}

func (m *MockPayoutRepository) Create(ctx context.Context, payout *commission.CommissionPayout) error {
	args := m.Called(ctx, payout)
	return args.Error(0)
}
