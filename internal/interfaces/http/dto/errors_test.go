package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		code string
		want int
	}{
		{"Not found", ErrCodeNotFound, http.StatusNotFound},
		{"Validation", ErrCodeValidation, http.StatusBadRequest},
		{"Already settled", ErrCodeAlreadySettled, http.StatusUnprocessableEntity},
		{"Insufficient amount", ErrCodeInsufficientAmount, http.StatusUnprocessableEntity},
		{"Loan returned", ErrCodeLoanReturned, http.StatusUnprocessableEntity},
		{"Concurrency conflict", ErrCodeConcurrencyConflict, http.StatusConflict},
		{"Rate limited", ErrCodeRateLimited, http.StatusTooManyRequests},
		{"Unknown code defaults to 500", "ERR_SOMETHING_ELSE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{"API code passes through", ErrCodeNotFound, ErrCodeNotFound},
		{"Domain not found", "NOT_FOUND", ErrCodeNotFound},
		{"Domain already settled", "ALREADY_SETTLED", ErrCodeAlreadySettled},
		{"Domain insufficient amount", "INSUFFICIENT_AMOUNT", ErrCodeInsufficientAmount},
		{"Domain loan returned", "LOAN_RETURNED", ErrCodeLoanReturned},
		{"Domain concurrency conflict", "CONCURRENCY_CONFLICT", ErrCodeConcurrencyConflict},
		{"Domain invalid input", "INVALID_INPUT", ErrCodeValidation},
		{"Invalid amount normalizes to validation", "INVALID_AMOUNT", ErrCodeValidation},
		{"Invalid member normalizes to validation", "INVALID_MEMBER", ErrCodeValidation},
		{"Invalid state is unprocessable", "INVALID_STATE", ErrCodeInvalidState},
		{"Unknown domain code is internal", "SOMETHING_BROKE", ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeErrorCode(tt.code))
		})
	}
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 20, 45)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 20, p.PageSize)
	assert.Equal(t, int64(45), p.Total)
	assert.Equal(t, 3, p.TotalPages)

	empty := NewPagination(1, 0, 10)
	assert.Equal(t, 0, empty.TotalPages)
}

func TestResponseEnvelopes(t *testing.T) {
	ok := NewSuccessResponse(map[string]string{"id": "abc"})
	assert.True(t, ok.Success)
	assert.Nil(t, ok.Error)

	fail := NewErrorResponseWithRequestID(ErrCodeNotFound, "Loan not found", "req-123")
	assert.False(t, fail.Success)
	assert.Equal(t, ErrCodeNotFound, fail.Error.Code)
	assert.Equal(t, "req-123", fail.Meta.RequestID)
}
