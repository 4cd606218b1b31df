package lending

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/library/backend/internal/domain/shared"
	"github.com/library/backend/internal/domain/shared/valueobject"
)

// Loan event types
const (
	EventTypeLoanFineAccrued   = "lending.loan.fine_accrued"
	EventTypeLoanFinePaid      = "lending.loan.fine_paid"
	EventTypeLoanFineWaived    = "lending.loan.fine_waived"
	EventTypeLoanFineCancelled = "lending.loan.fine_cancelled"
	EventTypeLoanReturned      = "lending.loan.returned"
)

const aggregateTypeLoan = "Loan"

// LoanFineAccruedEvent is emitted when the daily accrual updates a loan's fine
type LoanFineAccruedEvent struct {
	shared.BaseDomainEvent
	MemberID            uuid.UUID       `json:"member_id"`
	BookTitle           string          `json:"book_title"`
	PreviousDaysOverdue int             `json:"previous_days_overdue"`
	DaysOverdue         int             `json:"days_overdue"`
	FineAmount          decimal.Decimal `json:"fine_amount"`
	Delta               decimal.Decimal `json:"delta"`
}

// NewLoanFineAccruedEvent creates a new LoanFineAccruedEvent
func NewLoanFineAccruedEvent(loan *Loan, previousDaysOverdue int, delta valueobject.Money) *LoanFineAccruedEvent {
	return &LoanFineAccruedEvent{
		BaseDomainEvent:     shared.NewBaseDomainEvent(EventTypeLoanFineAccrued, aggregateTypeLoan, loan.ID),
		MemberID:            loan.MemberID,
		BookTitle:           loan.BookTitle,
		PreviousDaysOverdue: previousDaysOverdue,
		DaysOverdue:         loan.DaysOverdue,
		FineAmount:          loan.FineAmount,
		Delta:               delta.Amount(),
	}
}

// LoanFinePaidEvent is emitted when a fine is settled by payment
type LoanFinePaidEvent struct {
	shared.BaseDomainEvent
	MemberID   uuid.UUID       `json:"member_id"`
	BookTitle  string          `json:"book_title"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
}

// NewLoanFinePaidEvent creates a new LoanFinePaidEvent
func NewLoanFinePaidEvent(loan *Loan, amount valueobject.Money) *LoanFinePaidEvent {
	return &LoanFinePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLoanFinePaid, aggregateTypeLoan, loan.ID),
		MemberID:        loan.MemberID,
		BookTitle:       loan.BookTitle,
		AmountPaid:      amount.Amount(),
	}
}

// LoanFineWaivedEvent is emitted when a fine is forgiven
type LoanFineWaivedEvent struct {
	shared.BaseDomainEvent
	MemberID     uuid.UUID       `json:"member_id"`
	BookTitle    string          `json:"book_title"`
	AmountWaived decimal.Decimal `json:"amount_waived"`
	Reason       string          `json:"reason"`
}

// NewLoanFineWaivedEvent creates a new LoanFineWaivedEvent
func NewLoanFineWaivedEvent(loan *Loan, amount valueobject.Money, reason string) *LoanFineWaivedEvent {
	return &LoanFineWaivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLoanFineWaived, aggregateTypeLoan, loan.ID),
		MemberID:        loan.MemberID,
		BookTitle:       loan.BookTitle,
		AmountWaived:    amount.Amount(),
		Reason:          reason,
	}
}

// LoanFineCancelledEvent is emitted when a fine is voided
type LoanFineCancelledEvent struct {
	shared.BaseDomainEvent
	MemberID        uuid.UUID       `json:"member_id"`
	AmountCancelled decimal.Decimal `json:"amount_cancelled"`
	Reason          string          `json:"reason"`
}

// NewLoanFineCancelledEvent creates a new LoanFineCancelledEvent
func NewLoanFineCancelledEvent(loan *Loan, amount valueobject.Money, reason string) *LoanFineCancelledEvent {
	return &LoanFineCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLoanFineCancelled, aggregateTypeLoan, loan.ID),
		MemberID:        loan.MemberID,
		AmountCancelled: amount.Amount(),
		Reason:          reason,
	}
}

// LoanReturnedEvent is emitted when the borrowed copy comes back
type LoanReturnedEvent struct {
	shared.BaseDomainEvent
	MemberID  uuid.UUID  `json:"member_id"`
	BookID    uuid.UUID  `json:"book_id"`
	BookTitle string     `json:"book_title"`
	FineState FineStatus `json:"fine_state"`
}

// NewLoanReturnedEvent creates a new LoanReturnedEvent
func NewLoanReturnedEvent(loan *Loan) *LoanReturnedEvent {
	return &LoanReturnedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLoanReturned, aggregateTypeLoan, loan.ID),
		MemberID:        loan.MemberID,
		BookID:          loan.BookID,
		BookTitle:       loan.BookTitle,
		FineState:       loan.FineStatus,
	}
}
