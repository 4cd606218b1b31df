package lending

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/library/backend/internal/domain/shared"
	"github.com/library/backend/internal/domain/shared/valueobject"
)

// FineStatus represents the fine lifecycle state of a loan
type FineStatus string

const (
	FineStatusNone      FineStatus = "NONE"      // No fine has accrued yet
	FineStatusPending   FineStatus = "PENDING"   // Fine is accruing or awaiting settlement
	FineStatusPaid      FineStatus = "PAID"      // Fine settled by payment
	FineStatusWaived    FineStatus = "WAIVED"    // Fine forgiven by an operator
	FineStatusCancelled FineStatus = "CANCELLED" // Fine voided (e.g., lost-book write-off)
)

// IsValid checks if the status is a valid FineStatus
func (s FineStatus) IsValid() bool {
	switch s {
	case FineStatusNone, FineStatusPending, FineStatusPaid, FineStatusWaived, FineStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of FineStatus
func (s FineStatus) String() string {
	return string(s)
}

// IsTerminal returns true if no further transitions are allowed from this status
func (s FineStatus) IsTerminal() bool {
	return s == FineStatusPaid || s == FineStatusWaived || s == FineStatusCancelled
}

// IsSettled returns true if the fine was already paid or waived
func (s FineStatus) IsSettled() bool {
	return s == FineStatusPaid || s == FineStatusWaived
}

// Loan represents a borrow record aggregate root.
// It links one book copy to one member and carries the cached fine state
// maintained by the daily accrual run.
type Loan struct {
	shared.BaseAggregateRoot
	MemberID                uuid.UUID       `json:"member_id"`
	BookID                  uuid.UUID       `json:"book_id"`
	BookTitle               string          `json:"book_title"` // Denormalized for ban reasons and notifications
	LoanDate                time.Time       `json:"loan_date"`
	DueDate                 time.Time       `json:"due_date"`
	ReturnDate              *time.Time      `json:"return_date"`
	Returned                bool            `json:"returned"`
	FinePerDay              decimal.Decimal `json:"fine_per_day"` // Loan-local rate, seeded from settings at creation
	DaysOverdue             int             `json:"days_overdue"` // Cached, recomputed by accrual
	FineAmount              decimal.Decimal `json:"fine_amount"`  // Cached, recomputed by accrual
	FineStatus              FineStatus      `json:"fine_status"`
	FineExempt              bool            `json:"fine_exempt"`
	ExemptReason            string          `json:"exempt_reason"`
	LastFineCalculationDate *time.Time      `json:"last_fine_calculation_date"`
	FineUpdatedDate         *time.Time      `json:"fine_updated_date"`
}

// NewLoan creates a new loan record with no fine accrued
func NewLoan(
	memberID uuid.UUID,
	bookID uuid.UUID,
	bookTitle string,
	loanDate time.Time,
	dueDate time.Time,
	finePerDay valueobject.Money,
) (*Loan, error) {
	if memberID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_MEMBER", "Member ID cannot be empty")
	}
	if bookID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BOOK", "Book ID cannot be empty")
	}
	if bookTitle == "" {
		return nil, shared.NewDomainError("INVALID_BOOK_TITLE", "Book title cannot be empty")
	}
	if dueDate.Before(loanDate) {
		return nil, shared.NewDomainError("INVALID_DUE_DATE", "Due date cannot be before the loan date")
	}
	if finePerDay.IsNegative() {
		return nil, shared.NewDomainError("INVALID_FINE_RATE", "Fine per day cannot be negative")
	}

	loan := &Loan{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		MemberID:          memberID,
		BookID:            bookID,
		BookTitle:         bookTitle,
		LoanDate:          Midnight(loanDate),
		DueDate:           Midnight(dueDate),
		FinePerDay:        finePerDay.Amount(),
		DaysOverdue:       0,
		FineAmount:        decimal.Zero,
		FineStatus:        FineStatusNone,
	}

	return loan, nil
}

// ApplyAccrual records a recomputed fine on the loan and returns the delta
// against the previously cached amount. Transitions NONE to PENDING on the
// first accrual. The caller applies the delta to the owning member and
// persists both as one atomic unit.
func (l *Loan) ApplyAccrual(daysOverdue int, fineAmount valueobject.Money, today time.Time) (valueobject.Money, error) {
	if l.Returned {
		return valueobject.ZeroUSD(), shared.NewDomainError("LOAN_RETURNED", "Cannot accrue a fine on a returned loan")
	}
	if l.FineStatus.IsTerminal() {
		return valueobject.ZeroUSD(), shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot accrue a fine on a loan with %s fine status", l.FineStatus))
	}
	if daysOverdue < 0 {
		return valueobject.ZeroUSD(), shared.NewDomainError("INVALID_INPUT", "Days overdue cannot be negative")
	}

	delta := valueobject.NewMoneyUSD(fineAmount.Amount().Sub(l.FineAmount))
	previousDays := l.DaysOverdue
	day := Midnight(today)

	l.DaysOverdue = daysOverdue
	l.FineAmount = fineAmount.Amount()
	l.LastFineCalculationDate = &day
	l.FineUpdatedDate = &day
	if l.FineStatus == FineStatusNone && fineAmount.IsPositive() {
		l.FineStatus = FineStatusPending
	}

	l.UpdatedAt = time.Now()
	l.IncrementVersion()

	l.AddDomainEvent(NewLoanFineAccruedEvent(l, previousDays, delta))

	return delta, nil
}

// SettleByPayment marks the fine as paid and clears the cached amount.
// Returns the amount that was outstanding before settlement.
func (l *Loan) SettleByPayment() (valueobject.Money, error) {
	if l.FineStatus.IsSettled() {
		return valueobject.ZeroUSD(), shared.ErrAlreadySettled
	}
	if l.FineStatus == FineStatusCancelled {
		return valueobject.ZeroUSD(), shared.NewDomainError("INVALID_STATE", "Cannot pay a cancelled fine")
	}

	outstanding := valueobject.NewMoneyUSD(l.FineAmount)
	l.FineStatus = FineStatusPaid
	l.FineAmount = decimal.Zero
	l.UpdatedAt = time.Now()
	l.IncrementVersion()

	l.AddDomainEvent(NewLoanFinePaidEvent(l, outstanding))

	return outstanding, nil
}

// SettleByWaiver forgives the fine without payment and returns the amount waived
func (l *Loan) SettleByWaiver(reason string) (valueobject.Money, error) {
	if l.FineStatus.IsSettled() {
		return valueobject.ZeroUSD(), shared.ErrAlreadySettled
	}
	if l.FineStatus == FineStatusCancelled {
		return valueobject.ZeroUSD(), shared.NewDomainError("INVALID_STATE", "Cannot waive a cancelled fine")
	}
	if reason == "" {
		return valueobject.ZeroUSD(), shared.NewDomainError("INVALID_INPUT", "Waive reason cannot be empty")
	}

	waived := valueobject.NewMoneyUSD(l.FineAmount)
	l.FineStatus = FineStatusWaived
	l.FineAmount = decimal.Zero
	l.UpdatedAt = time.Now()
	l.IncrementVersion()

	l.AddDomainEvent(NewLoanFineWaivedEvent(l, waived, reason))

	return waived, nil
}

// CancelFine voids an unsettled fine, e.g. when the book is written off.
// Returns the amount that was pending before cancellation.
func (l *Loan) CancelFine(reason string) (valueobject.Money, error) {
	if l.FineStatus.IsTerminal() {
		return valueobject.ZeroUSD(), shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel a fine in %s status", l.FineStatus))
	}
	if reason == "" {
		return valueobject.ZeroUSD(), shared.NewDomainError("INVALID_INPUT", "Cancel reason cannot be empty")
	}

	cancelled := valueobject.NewMoneyUSD(l.FineAmount)
	l.FineStatus = FineStatusCancelled
	l.FineAmount = decimal.Zero
	l.UpdatedAt = time.Now()
	l.IncrementVersion()

	l.AddDomainEvent(NewLoanFineCancelledEvent(l, cancelled, reason))

	return cancelled, nil
}

// MarkReturned records the book coming back. Accrual stops immediately;
// an already-pending fine stays pending until paid or waived.
func (l *Loan) MarkReturned(returnDate time.Time) error {
	if l.Returned {
		return shared.NewDomainError("INVALID_STATE", "Loan has already been returned")
	}

	day := Midnight(returnDate)
	l.Returned = true
	l.ReturnDate = &day
	l.DaysOverdue = 0
	l.UpdatedAt = time.Now()
	l.IncrementVersion()

	l.AddDomainEvent(NewLoanReturnedEvent(l))

	return nil
}

// SetFineExempt exempts the loan from fine accrual
func (l *Loan) SetFineExempt(reason string) error {
	if reason == "" {
		return shared.NewDomainError("INVALID_INPUT", "Exempt reason cannot be empty")
	}
	l.FineExempt = true
	l.ExemptReason = reason
	l.UpdatedAt = time.Now()
	l.IncrementVersion()
	return nil
}

// IsOverdue returns true if the loan is unreturned and past due as of the given date
func (l *Loan) IsOverdue(today time.Time) bool {
	if l.Returned {
		return false
	}
	return Midnight(today).After(Midnight(l.DueDate))
}

// GetFineAmountMoney returns the cached fine amount as Money
func (l *Loan) GetFineAmountMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(l.FineAmount)
}

// GetFinePerDayMoney returns the loan-local daily rate as Money
func (l *Loan) GetFinePerDayMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(l.FinePerDay)
}
