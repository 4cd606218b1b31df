package lending

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/library/backend/internal/domain/shared"
	"github.com/library/backend/internal/domain/shared/valueobject"
)

// Member event types
const (
	EventTypeMemberBanned              = "lending.member.banned"
	EventTypeMemberBanLifted           = "lending.member.ban_lifted"
	EventTypeMemberCreditLimitExceeded = "lending.member.credit_limit_exceeded"
)

const aggregateTypeMember = "Member"

// MemberBannedEvent is emitted when a member's borrowing privileges are suspended
type MemberBannedEvent struct {
	shared.BaseDomainEvent
	MemberNumber string     `json:"member_number"`
	MemberName   string     `json:"member_name"`
	Reason       string     `json:"reason"`
	BanStartDate *time.Time `json:"ban_start_date"`
	BanEndDate   *time.Time `json:"ban_end_date"` // nil for permanent bans
	TotalBans    int        `json:"total_bans"`
}

// NewMemberBannedEvent creates a new MemberBannedEvent
func NewMemberBannedEvent(member *Member) *MemberBannedEvent {
	return &MemberBannedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMemberBanned, aggregateTypeMember, member.ID),
		MemberNumber:    member.MemberNumber,
		MemberName:      member.Name,
		Reason:          member.BanReason,
		BanStartDate:    member.BanStartDate,
		BanEndDate:      member.BanEndDate,
		TotalBans:       member.TotalBanCount,
	}
}

// MemberBanLiftedEvent is emitted when a ban expires or is lifted manually
type MemberBanLiftedEvent struct {
	shared.BaseDomainEvent
	MemberNumber string `json:"member_number"`
	MemberName   string `json:"member_name"`
}

// NewMemberBanLiftedEvent creates a new MemberBanLiftedEvent
func NewMemberBanLiftedEvent(member *Member) *MemberBanLiftedEvent {
	return &MemberBanLiftedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMemberBanLifted, aggregateTypeMember, member.ID),
		MemberNumber:    member.MemberNumber,
		MemberName:      member.Name,
	}
}

// MemberCreditLimitExceededEvent is emitted when outstanding fines cross the credit limit
type MemberCreditLimitExceededEvent struct {
	shared.BaseDomainEvent
	MemberNumber    string          `json:"member_number"`
	MemberName      string          `json:"member_name"`
	CurrentFinesDue decimal.Decimal `json:"current_fines_due"`
	CreditLimit     decimal.Decimal `json:"credit_limit"`
}

// NewMemberCreditLimitExceededEvent creates a new MemberCreditLimitExceededEvent
func NewMemberCreditLimitExceededEvent(member *Member, limit valueobject.Money) *MemberCreditLimitExceededEvent {
	return &MemberCreditLimitExceededEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMemberCreditLimitExceeded, aggregateTypeMember, member.ID),
		MemberNumber:    member.MemberNumber,
		MemberName:      member.Name,
		CurrentFinesDue: member.CurrentFinesDue,
		CreditLimit:     limit.Amount(),
	}
}
