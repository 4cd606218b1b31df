package dto

import "net/http"

// API error codes returned in the error envelope. The codes are stable and
// form part of the API contract; domain error codes are normalized onto them
// before a response is written.
const (
	// Generic errors
	ErrCodeInternal     = "ERR_INTERNAL"
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeNotFound     = "ERR_NOT_FOUND"
	ErrCodeConflict     = "ERR_CONFLICT"
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeValidation   = "ERR_VALIDATION"

	// Fine lifecycle errors
	ErrCodeAlreadySettled     = "ERR_ALREADY_SETTLED"
	ErrCodeInsufficientAmount = "ERR_INSUFFICIENT_AMOUNT"
	ErrCodeLoanReturned       = "ERR_LOAN_RETURNED"
	ErrCodeInvalidState       = "ERR_INVALID_STATE"

	// Infrastructure errors
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	ErrCodeRateLimited         = "ERR_RATE_LIMITED"
	ErrCodeTimeout             = "ERR_TIMEOUT"
)

// ErrorCodeHTTPStatus maps API error codes to HTTP status codes.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeNotFound:     http.StatusNotFound,
	ErrCodeConflict:     http.StatusConflict,
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeValidation:   http.StatusBadRequest,

	ErrCodeAlreadySettled:     http.StatusUnprocessableEntity,
	ErrCodeInsufficientAmount: http.StatusUnprocessableEntity,
	ErrCodeLoanReturned:       http.StatusUnprocessableEntity,
	ErrCodeInvalidState:       http.StatusUnprocessableEntity,

	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeRateLimited:         http.StatusTooManyRequests,
	ErrCodeTimeout:             http.StatusGatewayTimeout,
}

// GetHTTPStatus returns the HTTP status for an API error code, defaulting to
// 500 for unknown codes.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping translates domain-layer error codes to API error
// codes. Domain codes not listed here fall through NormalizeErrorCode's
// INVALID_ prefix rule, then to ERR_INTERNAL.
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeConflict,
	"ALREADY_SETTLED":      ErrCodeAlreadySettled,
	"INSUFFICIENT_AMOUNT":  ErrCodeInsufficientAmount,
	"LOAN_RETURNED":        ErrCodeLoanReturned,
	"INVALID_STATE":        ErrCodeInvalidState,
	"INVALID_INPUT":        ErrCodeValidation,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"UNAUTHORIZED":         ErrCodeUnauthorized,
}

// NormalizeErrorCode converts a domain error code into an API error code.
// Codes already in ERR_* form pass through unchanged.
func NormalizeErrorCode(code string) string {
	if _, ok := ErrorCodeHTTPStatus[code]; ok {
		return code
	}
	if mapped, ok := DomainErrorCodeMapping[code]; ok {
		return mapped
	}
	// Validation failures in the domain layer all use INVALID_* codes
	// (INVALID_AMOUNT, INVALID_MEMBER, INVALID_DUE_DATE, ...).
	if len(code) > 8 && code[:8] == "INVALID_" {
		return ErrCodeValidation
	}
	return ErrCodeInternal
}
