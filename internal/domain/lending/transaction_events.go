package lending

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/library/backend/internal/domain/shared"
)

// Transaction event types
const (
	EventTypeFineReceiptIssued = "lending.transaction.receipt_issued"
)

const aggregateTypeFineTransaction = "FineTransaction"

// FineReceiptIssuedEvent is emitted when a completed payment or waiver
// transaction is recorded in the ledger
type FineReceiptIssuedEvent struct {
	shared.BaseDomainEvent
	ReceiptNumber string          `json:"receipt_number"`
	MemberID      uuid.UUID       `json:"member_id"`
	LoanID        *uuid.UUID      `json:"loan_id"`
	Amount        decimal.Decimal `json:"amount"`
	Method        PaymentMethod   `json:"method"`
	ProcessedBy   uuid.UUID       `json:"processed_by"`
}

// NewFineReceiptIssuedEvent creates a new FineReceiptIssuedEvent
func NewFineReceiptIssuedEvent(txn *FineTransaction) *FineReceiptIssuedEvent {
	return &FineReceiptIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeFineReceiptIssued, aggregateTypeFineTransaction, txn.ID),
		ReceiptNumber:   txn.ReceiptNumber,
		MemberID:        txn.MemberID,
		LoanID:          txn.LoanID,
		Amount:          txn.Amount,
		Method:          txn.Method,
		ProcessedBy:     txn.ProcessedBy,
	}
}
