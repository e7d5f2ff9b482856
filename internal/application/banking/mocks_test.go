package banking

import (
	"context"
	"time"

	"github.com/distrib/backoffice/internal/domain/banking"
	"github.com/distrib/backoffice/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockStatementRepository is a mock implementation of banking.StatementRepository
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

func (m *MockStatementRepository) Create(ctx context.Context, statement *banking.BankStatement) error {
	args := m.Called(ctx, statement)
	return args.Error(0)
}

func (m *MockStatementRepository) Save(ctx context.Context, statement *banking.BankStatement) error {
	args := m.Called(ctx, statement)
	return args.Error(0)
}

// MockTransactionRepository is a mock implementation of banking.TransactionRepository
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

func (m *MockTransactionRepository) SaveWithLock(ctx context.Context, transaction *banking.BankTransaction) error {
	args := m.Called(ctx, transaction)
	return args.Error(0)
}

// MockStatementParser is a mock implementation of StatementParser
type MockStatementParser struct {
	mock.Mock
}

func (m *MockStatementParser) Parse(data []byte) (*banking.ParsedStatement, error) {
	args := m.Called(data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*banking.ParsedStatement), args.Error(1)
}

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
