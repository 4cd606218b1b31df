package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/library/backend/internal/domain/lending"
	"github.com/library/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// =============================================================================
// Mocks
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
	return m.Called(ctx, member).Error(0)
}

func (m *MockMemberRepository) SaveWithLock(ctx context.Context, member *lending.Member) error {
	return m.Called(ctx, member).Error(0)
}

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
	return m.Called(ctx, loan).Error(0)
}

func (m *MockLoanRepository) SaveWithLock(ctx context.Context, loan *lending.Loan) error {
	return m.Called(ctx, loan).Error(0)
}

type MockFineTransactionRepository struct {
	mock.Mock
}

func (m *MockFineTransactionRepository) Create(ctx context.Context, txn *lending.FineTransaction) error {
	return m.Called(ctx, txn).Error(0)
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

type recordingNotifier struct {
	warns     int
	bans      int
	restores  int
	receipts  int
	lastLoan  *lending.Loan
	failSends error
}

func (n *recordingNotifier) Warn(ctx context.Context, member *lending.Member, loan *lending.Loan) error {
	n.warns++
	n.lastLoan = loan
	return n.failSends
}

func (n *recordingNotifier) Banned(ctx context.Context, member *lending.Member, loan *lending.Loan) error {
	n.bans++
	n.lastLoan = loan
	return n.failSends
}

func (n *recordingNotifier) Restored(ctx context.Context, member *lending.Member) error {
	n.restores++
	return n.failSends
}

func (n *recordingNotifier) Receipt(ctx context.Context, member *lending.Member, txn *lending.FineTransaction) error {
	n.receipts++
	return n.failSends
}

// =============================================================================
// Fixtures
// =============================================================================

func mustMoney(t *testing.T, s string) valueobject.Money {
	t.Helper()
	m, err := valueobject.NewMoneyUSDFromString(s)
	require.NoError(t, err)
	return m
}

func testMember(t *testing.T) *lending.Member {
	t.Helper()
	member, err := lending.NewMember("M-1001", "Grace Hopper", "grace@example.com")
	require.NoError(t, err)
	return member
}

func testLoan(t *testing.T, memberID uuid.UUID) *lending.Loan {
	t.Helper()
	due := time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)
	loan, err := lending.NewLoan(memberID, uuid.New(), "Structure and Interpretation of Computer Programs",
		due.AddDate(0, 0, -14), due, mustMoney(t, "2.00"))
	require.NoError(t, err)
	return loan
}

type handlerFixture struct {
	handler    *Handler
	notifier   *recordingNotifier
	memberRepo *MockMemberRepository
	loanRepo   *MockLoanRepository
	txnRepo    *MockFineTransactionRepository
}

func newHandlerFixture() *handlerFixture {
	f := &handlerFixture{
		notifier:   &recordingNotifier{},
		memberRepo: new(MockMemberRepository),
		loanRepo:   new(MockLoanRepository),
		txnRepo:    new(MockFineTransactionRepository),
	}
	f.handler = NewHandler(f.notifier, f.memberRepo, f.loanRepo, f.txnRepo, zap.NewNop())
	return f
}

// =============================================================================
// Tests
// =============================================================================

func TestHandler_EventTypes(t *testing.T) {
	f := newHandlerFixture()

	types := f.handler.EventTypes()
	assert.ElementsMatch(t, []string{
		"lending.member.credit_limit_exceeded",
		"lending.member.banned",
		"lending.member.ban_lifted",
		"lending.transaction.receipt_issued",
	}, types)
}

func TestHandler_CreditLimitExceeded(t *testing.T) {
	f := newHandlerFixture()
	ctx := context.Background()

	member := testMember(t)
	loan := testLoan(t, member.ID)
	evt := lending.NewMemberCreditLimitExceededEvent(member, mustMoney(t, "50.00"))

	f.memberRepo.On("FindByID", ctx, member.ID).Return(member, nil)
	f.loanRepo.On("FindPendingByMember", ctx, member.ID).Return([]*lending.Loan{loan}, nil)

	require.NoError(t, f.handler.Handle(ctx, evt))
	assert.Equal(t, 1, f.notifier.warns)
	assert.Equal(t, loan, f.notifier.lastLoan)
}

func TestHandler_Banned(t *testing.T) {
	f := newHandlerFixture()
	ctx := context.Background()

	member := testMember(t)
	start := time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 30)
	require.NoError(t, member.Ban("Loan overdue 31 days", start, &end))
	evt := lending.NewMemberBannedEvent(member)

	f.memberRepo.On("FindByID", ctx, member.ID).Return(member, nil)
	f.loanRepo.On("FindPendingByMember", ctx, member.ID).Return([]*lending.Loan{}, nil)

	require.NoError(t, f.handler.Handle(ctx, evt))
	assert.Equal(t, 1, f.notifier.bans)
	assert.Nil(t, f.notifier.lastLoan)
}

func TestHandler_BanLifted(t *testing.T) {
	f := newHandlerFixture()
	ctx := context.Background()

	member := testMember(t)
	evt := lending.NewMemberBanLiftedEvent(member)

	f.memberRepo.On("FindByID", ctx, member.ID).Return(member, nil)

	require.NoError(t, f.handler.Handle(ctx, evt))
	assert.Equal(t, 1, f.notifier.restores)
}

func TestHandler_ReceiptIssued(t *testing.T) {
	f := newHandlerFixture()
	ctx := context.Background()

	member := testMember(t)
	loanID := uuid.New()
	txn, err := lending.NewPaymentTransaction("FINE-20250420-000001", member.ID, &loanID,
		mustMoney(t, "20.00"), lending.PaymentMethodCash, "", "", uuid.New(),
		time.Date(2025, 4, 20, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	evt := lending.NewFineReceiptIssuedEvent(txn)

	f.memberRepo.On("FindByID", ctx, member.ID).Return(member, nil)
	f.txnRepo.On("FindByReceiptNumber", ctx, "FINE-20250420-000001").Return(txn, nil)

	require.NoError(t, f.handler.Handle(ctx, evt))
	assert.Equal(t, 1, f.notifier.receipts)
}

func TestHandler_MemberLookupFails(t *testing.T) {
	f := newHandlerFixture()
	ctx := context.Background()

	member := testMember(t)
	evt := lending.NewMemberBanLiftedEvent(member)

	f.memberRepo.On("FindByID", ctx, member.ID).Return(nil, errors.New("db down"))

	err := f.handler.Handle(ctx, evt)
	require.Error(t, err)
	assert.Zero(t, f.notifier.restores)
}

func TestHandler_NotifierErrorIsReturned(t *testing.T) {
	f := newHandlerFixture()
	ctx := context.Background()

	member := testMember(t)
	f.notifier.failSends = errors.New("smtp down")
	evt := lending.NewMemberBanLiftedEvent(member)

	f.memberRepo.On("FindByID", ctx, member.ID).Return(member, nil)

	err := f.handler.Handle(ctx, evt)
	assert.Error(t, err)
}

func TestHandler_UnexpectedEventIgnored(t *testing.T) {
	f := newHandlerFixture()

	member := testMember(t)
	evt := lending.NewLoanReturnedEvent(testLoan(t, member.ID))

	assert.NoError(t, f.handler.Handle(context.Background(), evt))
}

func TestLogNotifier(t *testing.T) {
	notifier := NewLogNotifier(zap.NewNop())
	ctx := context.Background()

	member := testMember(t)
	loan := testLoan(t, member.ID)
	loanID := loan.ID
	txn, err := lending.NewPaymentTransaction("FINE-20250420-000002", member.ID, &loanID,
		mustMoney(t, "20.00"), lending.PaymentMethodCard, "", "", uuid.New(),
		time.Date(2025, 4, 20, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.NoError(t, notifier.Warn(ctx, member, loan))
	assert.NoError(t, notifier.Warn(ctx, member, nil))
	assert.NoError(t, notifier.Banned(ctx, member, nil))
	assert.NoError(t, notifier.Restored(ctx, member))
	assert.NoError(t, notifier.Receipt(ctx, member, txn))
}
