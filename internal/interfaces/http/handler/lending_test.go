package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	applending "github.com/library/backend/internal/application/lending"
	"github.com/library/backend/internal/domain/lending"
	"github.com/library/backend/internal/domain/shared"
	"github.com/library/backend/internal/domain/shared/valueobject"
	"github.com/library/backend/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockPaymentAPI struct {
	mock.Mock
}

func (m *mockPaymentAPI) Pay(ctx context.Context, req applending.PayFineRequest) (*lending.FineTransaction, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lending.FineTransaction), args.Error(1)
}

func (m *mockPaymentAPI) Waive(ctx context.Context, req applending.WaiveFineRequest) (*lending.FineTransaction, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lending.FineTransaction), args.Error(1)
}

type mockQueryAPI struct {
	mock.Mock
}

func (m *mockQueryAPI) GetLoan(ctx context.Context, id uuid.UUID) (*lending.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lending.Loan), args.Error(1)
}

func (m *mockQueryAPI) GetMember(ctx context.Context, id uuid.UUID) (*lending.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lending.Member), args.Error(1)
}

func (m *mockQueryAPI) GetMemberFines(ctx context.Context, memberID uuid.UUID) ([]*lending.Loan, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*lending.Loan), args.Error(1)
}

func (m *mockQueryAPI) GetMemberTransactions(ctx context.Context, memberID uuid.UUID, filter lending.TransactionFilter) ([]*lending.FineTransaction, error) {
	args := m.Called(ctx, memberID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*lending.FineTransaction), args.Error(1)
}

func (m *mockQueryAPI) GetTransaction(ctx context.Context, id uuid.UUID) (*lending.FineTransaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lending.FineTransaction), args.Error(1)
}

type lendingFixture struct {
	payments *mockPaymentAPI
	queries  *mockQueryAPI
	router   *gin.Engine
}

func newLendingFixture(t *testing.T) *lendingFixture {
	t.Helper()

	f := &lendingFixture{
		payments: new(mockPaymentAPI),
		queries:  new(mockQueryAPI),
	}

	h := NewLendingHandler(f.payments, f.queries, zap.NewNop())

	r := gin.New()
	r.Use(middleware.Operator())
	r.POST("/fines/:loanId/pay", h.PayFine)
	r.POST("/fines/:loanId/waive", h.WaiveFine)
	r.GET("/loans/:id", h.GetLoan)
	r.GET("/members/:id", h.GetMember)
	r.GET("/members/:id/fines", h.GetMemberFines)
	r.GET("/members/:id/transactions", h.GetMemberTransactions)
	r.GET("/transactions/:id", h.GetTransaction)
	f.router = r

	return f
}

func (f *lendingFixture) do(method, path, body, operatorID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if operatorID != "" {
		req.Header.Set(middleware.OperatorHeader, operatorID)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func testTransaction(t *testing.T) *lending.FineTransaction {
	t.Helper()
	loanID := uuid.New()
	txn, err := lending.NewPaymentTransaction(
		"FINE-20250420-000001",
		uuid.New(),
		&loanID,
		valueobject.NewMoneyUSDFromFloat(5),
		lending.PaymentMethodCash,
		"",
		"",
		uuid.New(),
		time.Date(2025, 4, 20, 10, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return txn
}

func TestPayFine_Success(t *testing.T) {
	f := newLendingFixture(t)
	loanID := uuid.New()
	operatorID := uuid.New()
	txn := testTransaction(t)

	f.payments.On("Pay", mock.Anything, mock.MatchedBy(func(req applending.PayFineRequest) bool {
		return req.LoanID == loanID &&
			req.OperatorID == operatorID &&
			req.Amount.Equal(txn.Amount) &&
			req.Method == lending.PaymentMethodCash
	})).Return(txn, nil)

	w := f.do(http.MethodPost, "/fines/"+loanID.String()+"/pay",
		`{"amount":"5","method":"CASH"}`, operatorID.String())

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "FINE-20250420-000001")
	f.payments.AssertExpectations(t)
}

func TestPayFine_MissingOperator(t *testing.T) {
	f := newLendingFixture(t)

	w := f.do(http.MethodPost, "/fines/"+uuid.NewString()+"/pay",
		`{"amount":"5","method":"CASH"}`, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	f.payments.AssertNotCalled(t, "Pay")
}

func TestPayFine_InvalidAmount(t *testing.T) {
	f := newLendingFixture(t)

	w := f.do(http.MethodPost, "/fines/"+uuid.NewString()+"/pay",
		`{"amount":"five dollars","method":"CASH"}`, uuid.NewString())

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid amount")
}

func TestPayFine_InvalidLoanID(t *testing.T) {
	f := newLendingFixture(t)

	w := f.do(http.MethodPost, "/fines/not-a-uuid/pay",
		`{"amount":"5","method":"CASH"}`, uuid.NewString())

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPayFine_AlreadySettledMapsTo422(t *testing.T) {
	f := newLendingFixture(t)
	f.payments.On("Pay", mock.Anything, mock.Anything).
		Return(nil, shared.ErrAlreadySettled)

	w := f.do(http.MethodPost, "/fines/"+uuid.NewString()+"/pay",
		`{"amount":"5","method":"CASH"}`, uuid.NewString())

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_ALREADY_SETTLED")
}

func TestPayFine_InsufficientAmountMapsTo422(t *testing.T) {
	f := newLendingFixture(t)
	f.payments.On("Pay", mock.Anything, mock.Anything).
		Return(nil, shared.ErrInsufficientAmount)

	w := f.do(http.MethodPost, "/fines/"+uuid.NewString()+"/pay",
		`{"amount":"1","method":"CASH"}`, uuid.NewString())

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_INSUFFICIENT_AMOUNT")
}

func TestPayFine_ConcurrencyConflictMapsTo409(t *testing.T) {
	f := newLendingFixture(t)
	f.payments.On("Pay", mock.Anything, mock.Anything).
		Return(nil, shared.ErrConcurrencyConflict)

	w := f.do(http.MethodPost, "/fines/"+uuid.NewString()+"/pay",
		`{"amount":"5","method":"CASH"}`, uuid.NewString())

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestWaiveFine_Success(t *testing.T) {
	f := newLendingFixture(t)
	loanID := uuid.New()
	operatorID := uuid.New()
	txn := testTransaction(t)

	f.payments.On("Waive", mock.Anything, applending.WaiveFineRequest{
		LoanID:     loanID,
		Reason:     "Book drop was out of service",
		OperatorID: operatorID,
	}).Return(txn, nil)

	w := f.do(http.MethodPost, "/fines/"+loanID.String()+"/waive",
		`{"reason":"Book drop was out of service"}`, operatorID.String())

	assert.Equal(t, http.StatusCreated, w.Code)
	f.payments.AssertExpectations(t)
}

func TestWaiveFine_MissingReason(t *testing.T) {
	f := newLendingFixture(t)

	w := f.do(http.MethodPost, "/fines/"+uuid.NewString()+"/waive",
		`{}`, uuid.NewString())

	assert.Equal(t, http.StatusBadRequest, w.Code)
	f.payments.AssertNotCalled(t, "Waive")
}

func TestGetLoan_NotFound(t *testing.T) {
	f := newLendingFixture(t)
	id := uuid.New()
	f.queries.On("GetLoan", mock.Anything, id).Return(nil, shared.ErrNotFound)

	w := f.do(http.MethodGet, "/loans/"+id.String(), "", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_NOT_FOUND")
}

func TestGetMember_Success(t *testing.T) {
	f := newLendingFixture(t)
	member, err := lending.NewMember("M-1001", "Grace Hopper", "grace@example.com")
	require.NoError(t, err)
	f.queries.On("GetMember", mock.Anything, member.ID).Return(member, nil)

	w := f.do(http.MethodGet, "/members/"+member.ID.String(), "", "")

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			MemberNumber string `json:"member_number"`
			IsBanned     bool   `json:"is_banned"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "M-1001", resp.Data.MemberNumber)
	assert.False(t, resp.Data.IsBanned)
}

func TestGetMemberFines_EmptyList(t *testing.T) {
	f := newLendingFixture(t)
	id := uuid.New()
	f.queries.On("GetMemberFines", mock.Anything, id).Return([]*lending.Loan{}, nil)

	w := f.do(http.MethodGet, "/members/"+id.String()+"/fines", "", "")

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetMemberTransactions_FilterParsing(t *testing.T) {
	f := newLendingFixture(t)
	id := uuid.New()

	f.queries.On("GetMemberTransactions", mock.Anything, id, mock.MatchedBy(func(filter lending.TransactionFilter) bool {
		return filter.Method != nil && *filter.Method == lending.PaymentMethodCash &&
			filter.DateFrom != nil && filter.DateFrom.Format("2006-01-02") == "2025-04-01" &&
			filter.DateTo != nil &&
			filter.Limit == 10 && filter.Offset == 20
	})).Return([]*lending.FineTransaction{}, nil)

	w := f.do(http.MethodGet,
		"/members/"+id.String()+"/transactions?method=CASH&from=2025-04-01&to=2025-04-30&limit=10&offset=20",
		"", "")

	assert.Equal(t, http.StatusOK, w.Code)
	f.queries.AssertExpectations(t)
}

func TestGetMemberTransactions_BadFilterRejected(t *testing.T) {
	f := newLendingFixture(t)
	id := uuid.New()

	tests := []struct {
		name  string
		query string
	}{
		{"Bad method", "?method=BARTER"},
		{"Bad date", "?from=April+1st"},
		{"Negative limit", "?limit=-5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(http.MethodGet, "/members/"+id.String()+"/transactions"+tt.query, "", "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
	f.queries.AssertNotCalled(t, "GetMemberTransactions")
}

func TestGetTransaction_Success(t *testing.T) {
	f := newLendingFixture(t)
	txn := testTransaction(t)
	f.queries.On("GetTransaction", mock.Anything, txn.ID).Return(txn, nil)

	w := f.do(http.MethodGet, "/transactions/"+txn.ID.String(), "", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), txn.ReceiptNumber)
}
