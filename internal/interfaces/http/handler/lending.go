package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	applending "github.com/library/backend/internal/application/lending"
	"github.com/library/backend/internal/domain/lending"
	"github.com/library/backend/internal/interfaces/http/middleware"
)

// PaymentAPI is the slice of the payment service the handler needs.
type PaymentAPI interface {
	Pay(ctx context.Context, req applending.PayFineRequest) (*lending.FineTransaction, error)
	Waive(ctx context.Context, req applending.WaiveFineRequest) (*lending.FineTransaction, error)
}

// QueryAPI is the slice of the query service the handler needs.
type QueryAPI interface {
	GetLoan(ctx context.Context, id uuid.UUID) (*lending.Loan, error)
	GetMember(ctx context.Context, id uuid.UUID) (*lending.Member, error)
	GetMemberFines(ctx context.Context, memberID uuid.UUID) ([]*lending.Loan, error)
	GetMemberTransactions(ctx context.Context, memberID uuid.UUID, filter lending.TransactionFilter) ([]*lending.FineTransaction, error)
	GetTransaction(ctx context.Context, id uuid.UUID) (*lending.FineTransaction, error)
}

// LendingHandler serves fine settlement and lookup endpoints.
type LendingHandler struct {
	BaseHandler
	payments PaymentAPI
	queries  QueryAPI
}

// NewLendingHandler creates a LendingHandler.
func NewLendingHandler(payments PaymentAPI, queries QueryAPI, logger *zap.Logger) *LendingHandler {
	return &LendingHandler{
		BaseHandler: NewBaseHandler(logger),
		payments:    payments,
		queries:     queries,
	}
}

// PayFineRequest is the payload for POST /fines/:loanId/pay.
type PayFineRequest struct {
	Amount    string `json:"amount" binding:"required"`
	Method    string `json:"method" binding:"required"`
	Reference string `json:"reference"`
	Notes     string `json:"notes"`
}

// WaiveFineRequest is the payload for POST /fines/:loanId/waive.
type WaiveFineRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// PayFine settles the pending fine on a loan and returns the receipt
// transaction.
func (h *LendingHandler) PayFine(c *gin.Context) {
	loanID, ok := h.parseUUIDParam(c, "loanId")
	if !ok {
		return
	}
	operatorID, ok := middleware.GetOperatorID(c)
	if !ok {
		h.BadRequest(c, "X-Operator-ID header is required")
		return
	}

	var req PayFineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		h.BadRequest(c, "Invalid amount: "+req.Amount)
		return
	}

	txn, err := h.payments.Pay(c.Request.Context(), applending.PayFineRequest{
		LoanID:     loanID,
		Amount:     amount,
		Method:     lending.PaymentMethod(req.Method),
		Reference:  req.Reference,
		Notes:      req.Notes,
		OperatorID: operatorID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, txn)
}

// WaiveFine forgives the pending fine on a loan and returns the waiver
// transaction.
func (h *LendingHandler) WaiveFine(c *gin.Context) {
	loanID, ok := h.parseUUIDParam(c, "loanId")
	if !ok {
		return
	}
	operatorID, ok := middleware.GetOperatorID(c)
	if !ok {
		h.BadRequest(c, "X-Operator-ID header is required")
		return
	}

	var req WaiveFineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	txn, err := h.payments.Waive(c.Request.Context(), applending.WaiveFineRequest{
		LoanID:     loanID,
		Reason:     req.Reason,
		OperatorID: operatorID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, txn)
}

// GetLoan returns a loan with its cached fine state.
func (h *LendingHandler) GetLoan(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	loan, err := h.queries.GetLoan(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, loan)
}

// GetMember returns a member with fine totals and ban state.
func (h *LendingHandler) GetMember(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	member, err := h.queries.GetMember(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, member)
}

// GetMemberFines returns the member's loans with pending fines, oldest due
// date first.
func (h *LendingHandler) GetMemberFines(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	loans, err := h.queries.GetMemberFines(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, loans)
}

// GetMemberTransactions returns the member's fine ledger entries, newest
// first, with optional method/status/date filters.
func (h *LendingHandler) GetMemberTransactions(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	filter, ok := h.parseTransactionFilter(c)
	if !ok {
		return
	}

	txns, err := h.queries.GetMemberTransactions(c.Request.Context(), id, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, txns)
}

// GetTransaction returns a single ledger entry by ID.
func (h *LendingHandler) GetTransaction(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	txn, err := h.queries.GetTransaction(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, txn)
}

func (h *LendingHandler) parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.BadRequest(c, "Invalid "+name+" parameter")
		return uuid.Nil, false
	}
	return id, true
}

func (h *LendingHandler) parseTransactionFilter(c *gin.Context) (lending.TransactionFilter, bool) {
	var filter lending.TransactionFilter

	if raw := c.Query("method"); raw != "" {
		method := lending.PaymentMethod(raw)
		if !method.IsValid() {
			h.BadRequest(c, "Invalid method filter: "+raw)
			return filter, false
		}
		filter.Method = &method
	}
	if raw := c.Query("status"); raw != "" {
		status := lending.TransactionStatus(raw)
		if !status.IsValid() {
			h.BadRequest(c, "Invalid status filter: "+raw)
			return filter, false
		}
		filter.Status = &status
	}
	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse("2006-01-02", raw)
		if err != nil {
			h.BadRequest(c, "Invalid from date, expected YYYY-MM-DD")
			return filter, false
		}
		filter.DateFrom = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse("2006-01-02", raw)
		if err != nil {
			h.BadRequest(c, "Invalid to date, expected YYYY-MM-DD")
			return filter, false
		}
		// Inclusive end of day
		end := to.Add(24*time.Hour - time.Nanosecond)
		filter.DateTo = &end
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			h.BadRequest(c, "Invalid limit parameter")
			return filter, false
		}
		filter.Limit = limit
	}
	if raw := c.Query("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			h.BadRequest(c, "Invalid offset parameter")
			return filter, false
		}
		filter.Offset = offset
	}

	return filter, true
}
