package lending

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/library/backend/internal/domain/identity"
	"github.com/library/backend/internal/domain/lending"
	"github.com/library/backend/internal/domain/shared"
)

// =============================================================================
// Mock Loan Repository
// =============================================================================

type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) FindByID(ctx context.Context, id uuid.UUID) (*lending.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lending.Loan), args.Error(1)
}

func (m *MockLoanRepository) FindOverdue(ctx context.Context, asOf time.Time) ([]*lending.Loan, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*lending.Loan), args.Error(1)
}

func (m *MockLoanRepository) FindByMember(ctx context.Context, memberID uuid.UUID) ([]*lending.Loan, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*lending.Loan), args.Error(1)
}

func (m *MockLoanRepository) FindPendingByMember(ctx context.Context, memberID uuid.UUID) ([]*lending.Loan, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*lending.Loan), args.Error(1)
}

func (m *MockLoanRepository) Save(ctx context.Context, loan *lending.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockLoanRepository) SaveWithLock(ctx context.Context, loan *lending.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

// =============================================================================
// Mock Member Repository
// =============================================================================

type MockMemberRepository struct {
	mock.Mock
}

func (m *MockMemberRepository) FindByID(ctx context.Context, id uuid.UUID) (*lending.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lending.Member), args.Error(1)
}

func (m *MockMemberRepository) FindBanned(ctx context.Context) ([]*lending.Member, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*lending.Member), args.Error(1)
}

func (m *MockMemberRepository) Save(ctx context.Context, member *lending.Member) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *MockMemberRepository) SaveWithLock(ctx context.Context, member *lending.Member) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

// =============================================================================
// Mock Fine Transaction Repository
// =============================================================================

type MockFineTransactionRepository struct {
	mock.Mock
}

func (m *MockFineTransactionRepository) Create(ctx context.Context, txn *lending.FineTransaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockFineTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*lending.FineTransaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lending.FineTransaction), args.Error(1)
}

func (m *MockFineTransactionRepository) FindByReceiptNumber(ctx context.Context, receiptNumber string) (*lending.FineTransaction, error) {
	args := m.Called(ctx, receiptNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lending.FineTransaction), args.Error(1)
}

func (m *MockFineTransactionRepository) Find(ctx context.Context, filter lending.TransactionFilter) ([]*lending.FineTransaction, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*lending.FineTransaction), args.Error(1)
}

func (m *MockFineTransactionRepository) NextReceiptNumber(ctx context.Context, date time.Time) (string, error) {
	args := m.Called(ctx, date)
	return args.String(0), args.Error(1)
}

// =============================================================================
// Mock Operator Repository
// =============================================================================

type MockOperatorRepository struct {
	mock.Mock
}

func (m *MockOperatorRepository) Create(ctx context.Context, operator *identity.Operator) error {
	args := m.Called(ctx, operator)
	return args.Error(0)
}

func (m *MockOperatorRepository) Update(ctx context.Context, operator *identity.Operator) error {
	args := m.Called(ctx, operator)
	return args.Error(0)
}

func (m *MockOperatorRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Operator, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Operator), args.Error(1)
}

func (m *MockOperatorRepository) FindByUsername(ctx context.Context, username string) (*identity.Operator, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Operator), args.Error(1)
}

// =============================================================================
// Mock Ledger Store
// =============================================================================

type MockLedgerStore struct {
	mock.Mock
}

func (m *MockLedgerStore) SaveAtomically(ctx context.Context, loan *lending.Loan, member *lending.Member, txn *lending.FineTransaction) error {
	args := m.Called(ctx, loan, member, txn)
	return args.Error(0)
}

// =============================================================================
// Mock Settings Provider
// =============================================================================

type MockSettingsProvider struct {
	mock.Mock
}

func (m *MockSettingsProvider) Get(ctx context.Context) (lending.FineSettings, error) {
	args := m.Called(ctx)
	return args.Get(0).(lending.FineSettings), args.Error(1)
}

// =============================================================================
// Mock Event Publisher
// =============================================================================

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}
