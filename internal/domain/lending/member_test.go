package lending

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/library/backend/internal/domain/shared/valueobject"
)

func newTestMember(t *testing.T) *Member {
	t.Helper()
	member, err := NewMember("M-0042", "Ada Lovelace", "ada@example.org")
	require.NoError(t, err)
	return member
}

func TestNewMember(t *testing.T) {
	t.Run("starts in good standing", func(t *testing.T) {
		member := newTestMember(t)
		assert.True(t, member.CurrentFinesDue.IsZero())
		assert.True(t, member.TotalFinesPaid.IsZero())
		assert.Equal(t, 0, member.OverdueBooksCount)
		assert.False(t, member.IsBanned)
		assert.Equal(t, 0, member.TotalBanCount)
	})

	t.Run("requires member number and name", func(t *testing.T) {
		_, err := NewMember("", "Ada", "")
		assert.Error(t, err)
		_, err = NewMember("M-1", "", "")
		assert.Error(t, err)
	})
}

func TestMember_ApplyFineDelta(t *testing.T) {
	limit := mustMoney(t, "50.00")

	t.Run("accumulates deltas and counts first overdue day", func(t *testing.T) {
		member := newTestMember(t)
		member.ApplyFineDelta(mustMoney(t, "20.00"), true, limit)
		assert.Equal(t, "20.00", member.GetCurrentFinesDueMoney().StringFixed(2))
		assert.Equal(t, 1, member.OverdueBooksCount)

		member.ApplyFineDelta(mustMoney(t, "2.00"), false, limit)
		assert.Equal(t, "22.00", member.GetCurrentFinesDueMoney().StringFixed(2))
		assert.Equal(t, 1, member.OverdueBooksCount)
	})

	t.Run("negative delta floors at zero", func(t *testing.T) {
		member := newTestMember(t)
		member.ApplyFineDelta(mustMoney(t, "10.00"), true, limit)
		member.ApplyFineDelta(mustMoney(t, "-15.00"), false, limit)
		assert.True(t, member.CurrentFinesDue.IsZero())
	})

	t.Run("emits credit limit event on crossing", func(t *testing.T) {
		member := newTestMember(t)
		member.ApplyFineDelta(mustMoney(t, "40.00"), true, limit)
		assert.Empty(t, member.GetDomainEvents())

		member.ApplyFineDelta(mustMoney(t, "15.00"), false, limit)
		events := member.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeMemberCreditLimitExceeded, events[0].EventType())

		// Already over the limit: no repeated event
		member.ClearDomainEvents()
		member.ApplyFineDelta(mustMoney(t, "2.00"), false, limit)
		assert.Empty(t, member.GetDomainEvents())
	})
}

func TestMember_RecordPayment(t *testing.T) {
	t.Run("reduces dues and grows lifetime total", func(t *testing.T) {
		member := newTestMember(t)
		member.ApplyFineDelta(mustMoney(t, "20.00"), true, mustMoney(t, "50.00"))

		require.NoError(t, member.RecordPayment(mustMoney(t, "20.00"), true))
		assert.True(t, member.CurrentFinesDue.IsZero())
		assert.Equal(t, "20.00", member.GetTotalFinesPaidMoney().StringFixed(2))
		assert.Equal(t, 0, member.OverdueBooksCount)
	})

	t.Run("overpayment floors dues at zero", func(t *testing.T) {
		member := newTestMember(t)
		member.ApplyFineDelta(mustMoney(t, "10.00"), true, mustMoney(t, "50.00"))

		require.NoError(t, member.RecordPayment(mustMoney(t, "25.00"), true))
		assert.True(t, member.CurrentFinesDue.IsZero())
		assert.Equal(t, "25.00", member.GetTotalFinesPaidMoney().StringFixed(2))
	})

	t.Run("overdue counter never goes below zero", func(t *testing.T) {
		member := newTestMember(t)
		member.ApplyFineDelta(mustMoney(t, "5.00"), false, mustMoney(t, "50.00"))
		require.NoError(t, member.RecordPayment(mustMoney(t, "5.00"), true))
		assert.Equal(t, 0, member.OverdueBooksCount)
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		member := newTestMember(t)
		assert.Error(t, member.RecordPayment(valueobject.ZeroUSD(), false))
	})
}

func TestMember_RecordWaiver(t *testing.T) {
	member := newTestMember(t)
	member.ApplyFineDelta(mustMoney(t, "15.00"), true, mustMoney(t, "50.00"))

	member.RecordWaiver(mustMoney(t, "15.00"), true)
	assert.True(t, member.CurrentFinesDue.IsZero())
	assert.True(t, member.TotalFinesPaid.IsZero(), "waiver is not a payment")
	assert.Equal(t, 0, member.OverdueBooksCount)
}

func TestMember_Ban(t *testing.T) {
	today := time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)
	end := today.AddDate(0, 0, 30)

	t.Run("sets ban window and counts it", func(t *testing.T) {
		member := newTestMember(t)
		require.NoError(t, member.Ban("overdue 31 days on Dune", today, &end))
		assert.True(t, member.IsBanned)
		require.NotNil(t, member.BanStartDate)
		require.NotNil(t, member.BanEndDate)
		assert.Equal(t, Midnight(today), *member.BanStartDate)
		assert.Equal(t, Midnight(end), *member.BanEndDate)
		assert.Equal(t, 1, member.TotalBanCount)

		events := member.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeMemberBanned, events[0].EventType())
	})

	t.Run("idempotent for an already banned member", func(t *testing.T) {
		member := newTestMember(t)
		require.NoError(t, member.Ban("first", today, &end))
		member.ClearDomainEvents()

		require.NoError(t, member.Ban("second", today, &end))
		assert.Equal(t, 1, member.TotalBanCount)
		assert.Equal(t, "first", member.BanReason)
		assert.Empty(t, member.GetDomainEvents())
	})

	t.Run("permanent ban has nil end date", func(t *testing.T) {
		member := newTestMember(t)
		require.NoError(t, member.Ban("manual", today, nil))
		assert.True(t, member.IsBanned)
		assert.Nil(t, member.BanEndDate)
	})

	t.Run("rejects end before start", func(t *testing.T) {
		member := newTestMember(t)
		bad := today.AddDate(0, 0, -1)
		assert.Error(t, member.Ban("reason", today, &bad))
	})
}

func TestMember_LiftBan(t *testing.T) {
	today := time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)
	end := today.AddDate(0, 0, 30)

	member := newTestMember(t)
	require.NoError(t, member.Ban("overdue", today, &end))
	member.ClearDomainEvents()

	member.LiftBan()
	assert.False(t, member.IsBanned)
	assert.Empty(t, member.BanReason)
	assert.Nil(t, member.BanStartDate)
	assert.Nil(t, member.BanEndDate)
	assert.Equal(t, 1, member.TotalBanCount, "lifting preserves the ban count")

	events := member.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventTypeMemberBanLifted, events[0].EventType())

	// No-op on an active member
	member.ClearDomainEvents()
	member.LiftBan()
	assert.Empty(t, member.GetDomainEvents())
}

func TestMember_BanExpired(t *testing.T) {
	start := time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 30)

	member := newTestMember(t)
	require.NoError(t, member.Ban("overdue", start, &end))

	assert.False(t, member.BanExpired(end), "not expired on the end date itself")
	assert.True(t, member.BanExpired(end.AddDate(0, 0, 1)))

	permanent := newTestMember(t)
	require.NoError(t, permanent.Ban("manual", start, nil))
	assert.False(t, permanent.BanExpired(end.AddDate(10, 0, 0)), "permanent bans never expire")
}

func TestMember_EffectiveOverrides(t *testing.T) {
	member := newTestMember(t)
	defaults := DefaultFineSettings()

	assert.True(t, member.EffectiveCreditLimit(defaults.CreditLimit).Equals(defaults.CreditLimit))
	assert.Equal(t, defaults.MaxOverdueDays, member.EffectiveMaxOverdueDays(defaults.MaxOverdueDays))

	member.CreditLimit = mustMoney(t, "100.00").Amount()
	member.MaxOverdueDays = 60
	assert.Equal(t, "100.00", member.EffectiveCreditLimit(defaults.CreditLimit).StringFixed(2))
	assert.Equal(t, 60, member.EffectiveMaxOverdueDays(defaults.MaxOverdueDays))
}
