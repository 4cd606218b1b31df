package lending

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/library/backend/internal/domain/shared"
	"github.com/library/backend/internal/domain/shared/valueobject"
)

// PaymentMethod represents how a fine was settled
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodCard         PaymentMethod = "CARD"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodOnline       PaymentMethod = "ONLINE"
	PaymentMethodWaived       PaymentMethod = "WAIVED" // Administrative forgiveness, no money moved
	PaymentMethodOther        PaymentMethod = "OTHER"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodBankTransfer,
		PaymentMethodOnline, PaymentMethodWaived, PaymentMethodOther:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// TransactionStatus represents the status of a fine transaction
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
	TransactionStatusRefunded  TransactionStatus = "REFUNDED"
	TransactionStatusCancelled TransactionStatus = "CANCELLED"
)

// IsValid checks if the status is a valid TransactionStatus
func (s TransactionStatus) IsValid() bool {
	switch s {
	case TransactionStatusPending, TransactionStatusCompleted, TransactionStatusFailed,
		TransactionStatusRefunded, TransactionStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of TransactionStatus
func (s TransactionStatus) String() string {
	return string(s)
}

// FineTransaction is an immutable ledger entry recording a fine payment,
// waiver, or refund. Once created COMPLETED it is never updated or deleted;
// corrections require a new compensating REFUNDED transaction.
type FineTransaction struct {
	shared.BaseAggregateRoot
	ReceiptNumber    string            `json:"receipt_number"` // Unique, format FINE-<YYYYMMDD>-<6-digit-sequence>
	MemberID         uuid.UUID         `json:"member_id"`
	LoanID           *uuid.UUID        `json:"loan_id"` // Nullable for bulk administrative actions
	Amount           decimal.Decimal   `json:"amount"`
	Method           PaymentMethod     `json:"method"`
	Status           TransactionStatus `json:"status"`
	TransactionDate  time.Time         `json:"transaction_date"`
	PaymentReference string            `json:"payment_reference"`
	Notes            string            `json:"notes"`
	ProcessedBy      uuid.UUID         `json:"processed_by"` // Operator who recorded the transaction
}

// NewPaymentTransaction creates a COMPLETED ledger entry for a fine payment
func NewPaymentTransaction(
	receiptNumber string,
	memberID uuid.UUID,
	loanID *uuid.UUID,
	amount valueobject.Money,
	method PaymentMethod,
	reference string,
	notes string,
	processedBy uuid.UUID,
	transactionDate time.Time,
) (*FineTransaction, error) {
	if receiptNumber == "" {
		return nil, shared.NewDomainError("INVALID_RECEIPT", "Receipt number cannot be empty")
	}
	if memberID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_MEMBER", "Member ID cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !method.IsValid() || method == PaymentMethodWaived {
		return nil, shared.NewDomainError("INVALID_METHOD", "Payment method is not valid for a payment")
	}
	if processedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OPERATOR", "Operator ID cannot be empty")
	}

	txn := &FineTransaction{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ReceiptNumber:     receiptNumber,
		MemberID:          memberID,
		LoanID:            loanID,
		Amount:            amount.Amount(),
		Method:            method,
		Status:            TransactionStatusCompleted,
		TransactionDate:   transactionDate,
		PaymentReference:  reference,
		Notes:             notes,
		ProcessedBy:       processedBy,
	}

	txn.AddDomainEvent(NewFineReceiptIssuedEvent(txn))

	return txn, nil
}

// NewWaiverTransaction creates a COMPLETED ledger entry recording a forgiven fine.
// The amount is the fine being waived, not money received.
func NewWaiverTransaction(
	receiptNumber string,
	memberID uuid.UUID,
	loanID *uuid.UUID,
	amount valueobject.Money,
	reason string,
	processedBy uuid.UUID,
	transactionDate time.Time,
) (*FineTransaction, error) {
	if receiptNumber == "" {
		return nil, shared.NewDomainError("INVALID_RECEIPT", "Receipt number cannot be empty")
	}
	if memberID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_MEMBER", "Member ID cannot be empty")
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Waived amount cannot be negative")
	}
	if reason == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Waive reason cannot be empty")
	}
	if processedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OPERATOR", "Operator ID cannot be empty")
	}

	txn := &FineTransaction{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ReceiptNumber:     receiptNumber,
		MemberID:          memberID,
		LoanID:            loanID,
		Amount:            amount.Amount(),
		Method:            PaymentMethodWaived,
		Status:            TransactionStatusCompleted,
		TransactionDate:   transactionDate,
		Notes:             reason,
		ProcessedBy:       processedBy,
	}

	txn.AddDomainEvent(NewFineReceiptIssuedEvent(txn))

	return txn, nil
}

// NewRefundTransaction creates a compensating REFUNDED entry for a completed
// transaction. History is never mutated; the original entry stays untouched.
func NewRefundTransaction(
	receiptNumber string,
	original *FineTransaction,
	reason string,
	processedBy uuid.UUID,
	transactionDate time.Time,
) (*FineTransaction, error) {
	if receiptNumber == "" {
		return nil, shared.NewDomainError("INVALID_RECEIPT", "Receipt number cannot be empty")
	}
	if original == nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Original transaction is required")
	}
	if original.Status != TransactionStatusCompleted {
		return nil, shared.NewDomainError("INVALID_STATE", "Only completed transactions can be refunded")
	}
	if reason == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Refund reason cannot be empty")
	}
	if processedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OPERATOR", "Operator ID cannot be empty")
	}

	return &FineTransaction{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ReceiptNumber:     receiptNumber,
		MemberID:          original.MemberID,
		LoanID:            original.LoanID,
		Amount:            original.Amount,
		Method:            original.Method,
		Status:            TransactionStatusRefunded,
		TransactionDate:   transactionDate,
		PaymentReference:  original.ReceiptNumber,
		Notes:             reason,
		ProcessedBy:       processedBy,
	}, nil
}

// IsWaiver returns true if the transaction records a waived fine
func (t *FineTransaction) IsWaiver() bool {
	return t.Method == PaymentMethodWaived
}

// GetAmountMoney returns the transaction amount as Money
func (t *FineTransaction) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(t.Amount)
}
