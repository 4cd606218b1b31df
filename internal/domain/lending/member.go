package lending

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/library/backend/internal/domain/shared"
	"github.com/library/backend/internal/domain/shared/valueobject"
)

// Member represents a library member aggregate root.
// CurrentFinesDue and OverdueBooksCount are derived fields kept in sync
// incrementally by the accrual and payment paths; they are never recomputed
// from scratch in the hot path.
type Member struct {
	shared.BaseAggregateRoot
	MemberNumber      string          `json:"member_number"`
	Name              string          `json:"name"`
	Email             string          `json:"email"`
	CurrentFinesDue   decimal.Decimal `json:"current_fines_due"`   // Sum of PENDING fine amounts across this member's loans
	TotalFinesPaid    decimal.Decimal `json:"total_fines_paid"`    // Monotonically non-decreasing
	OverdueBooksCount int             `json:"overdue_books_count"` // Unreturned loans with days overdue > 0
	IsBanned          bool            `json:"is_banned"`
	BanReason         string          `json:"ban_reason"`
	BanStartDate      *time.Time      `json:"ban_start_date"`
	BanEndDate        *time.Time      `json:"ban_end_date"` // nil while banned means a permanent/manual ban
	TotalBanCount     int             `json:"total_ban_count"`
	CreditLimit       decimal.Decimal `json:"credit_limit"`      // Per-member override, zero means use the configured default
	MaxOverdueDays    int             `json:"max_overdue_days"`  // Per-member override, zero means use the configured default
}

// NewMember creates a new member in good standing
func NewMember(memberNumber, name, email string) (*Member, error) {
	if memberNumber == "" {
		return nil, shared.NewDomainError("INVALID_MEMBER_NUMBER", "Member number cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Member name cannot be empty")
	}

	return &Member{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		MemberNumber:      memberNumber,
		Name:              name,
		Email:             email,
		CurrentFinesDue:   decimal.Zero,
		TotalFinesPaid:    decimal.Zero,
	}, nil
}

// ApplyFineDelta adjusts the member's outstanding fines by the accrual delta.
// firstDayOverdue increments the overdue-books counter when a loan crosses
// from on-time to overdue. Emits a credit-limit event when the outstanding
// total crosses the effective limit.
func (m *Member) ApplyFineDelta(delta valueobject.Money, firstDayOverdue bool, creditLimit valueobject.Money) {
	wasOverLimit := m.CurrentFinesDue.GreaterThan(creditLimit.Amount())

	m.CurrentFinesDue = m.CurrentFinesDue.Add(delta.Amount())
	if m.CurrentFinesDue.IsNegative() {
		// A negative delta (loan turned exempt mid-accrual) must not drive
		// the outstanding total below zero.
		m.CurrentFinesDue = decimal.Zero
	}
	if firstDayOverdue {
		m.OverdueBooksCount++
	}

	if !wasOverLimit && m.CurrentFinesDue.GreaterThan(creditLimit.Amount()) {
		m.AddDomainEvent(NewMemberCreditLimitExceededEvent(m, creditLimit))
	}

	m.UpdatedAt = time.Now()
	m.IncrementVersion()
}

// RecordPayment applies a completed fine payment to the member's totals.
// wasOverdue decrements the overdue-books counter for the settled loan.
func (m *Member) RecordPayment(amount valueobject.Money, wasOverdue bool) error {
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}

	m.CurrentFinesDue = m.CurrentFinesDue.Sub(amount.Amount())
	if m.CurrentFinesDue.IsNegative() {
		// Overpayment is accepted at face value; it never drives the
		// outstanding total negative.
		m.CurrentFinesDue = decimal.Zero
	}
	m.TotalFinesPaid = m.TotalFinesPaid.Add(amount.Amount())
	if wasOverdue && m.OverdueBooksCount > 0 {
		m.OverdueBooksCount--
	}

	m.UpdatedAt = time.Now()
	m.IncrementVersion()

	return nil
}

// RecordWaiver removes a forgiven fine from the member's outstanding total.
// The waived amount equals the loan's recorded fine, which cannot exceed
// CurrentFinesDue, so no floor is applied.
func (m *Member) RecordWaiver(amount valueobject.Money, wasOverdue bool) {
	m.CurrentFinesDue = m.CurrentFinesDue.Sub(amount.Amount())
	if wasOverdue && m.OverdueBooksCount > 0 {
		m.OverdueBooksCount--
	}

	m.UpdatedAt = time.Now()
	m.IncrementVersion()
}

// Ban suspends the member's borrowing privileges. A nil end date makes the
// ban permanent until lifted manually. Idempotent: an already-banned member
// is left untouched.
func (m *Member) Ban(reason string, start time.Time, end *time.Time) error {
	if m.IsBanned {
		return nil
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_INPUT", "Ban reason cannot be empty")
	}
	if end != nil && end.Before(start) {
		return shared.NewDomainError("INVALID_INPUT", "Ban end date cannot be before the start date")
	}

	startDay := Midnight(start)
	m.IsBanned = true
	m.BanReason = reason
	m.BanStartDate = &startDay
	if end != nil {
		endDay := Midnight(*end)
		m.BanEndDate = &endDay
	} else {
		m.BanEndDate = nil
	}
	m.TotalBanCount++

	m.UpdatedAt = time.Now()
	m.IncrementVersion()

	m.AddDomainEvent(NewMemberBannedEvent(m))

	return nil
}

// LiftBan restores a banned member to good standing, preserving TotalBanCount
func (m *Member) LiftBan() {
	if !m.IsBanned {
		return
	}

	m.IsBanned = false
	m.BanReason = ""
	m.BanStartDate = nil
	m.BanEndDate = nil

	m.UpdatedAt = time.Now()
	m.IncrementVersion()

	m.AddDomainEvent(NewMemberBanLiftedEvent(m))
}

// BanExpired returns true if the member's ban has a set end date that has
// passed. Permanent bans (nil end date) never expire.
func (m *Member) BanExpired(today time.Time) bool {
	if !m.IsBanned || m.BanEndDate == nil {
		return false
	}
	return Midnight(today).After(*m.BanEndDate)
}

// EffectiveCreditLimit returns the per-member credit limit when set,
// otherwise the configured default
func (m *Member) EffectiveCreditLimit(configured valueobject.Money) valueobject.Money {
	if m.CreditLimit.IsPositive() {
		return valueobject.NewMoneyUSD(m.CreditLimit)
	}
	return configured
}

// EffectiveMaxOverdueDays returns the per-member threshold when set,
// otherwise the configured default
func (m *Member) EffectiveMaxOverdueDays(configured int) int {
	if m.MaxOverdueDays > 0 {
		return m.MaxOverdueDays
	}
	return configured
}

// ExceedsCreditLimit returns true if outstanding fines are above the effective limit
func (m *Member) ExceedsCreditLimit(configured valueobject.Money) bool {
	return m.CurrentFinesDue.GreaterThan(m.EffectiveCreditLimit(configured).Amount())
}

// GetCurrentFinesDueMoney returns the outstanding fines as Money
func (m *Member) GetCurrentFinesDueMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(m.CurrentFinesDue)
}

// GetTotalFinesPaidMoney returns the lifetime paid total as Money
func (m *Member) GetTotalFinesPaidMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(m.TotalFinesPaid)
}
