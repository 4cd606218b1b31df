package lending

import (
	"time"

	"github.com/library/backend/internal/domain/shared/valueobject"
)

// DaysOverdue computes the whole calendar days a loan is past due as of the
// given date. Returns 0 for returned or exempt loans and loans not yet due.
// The calculation uses midnight-normalized dates so clock shifts inside a
// day never change the count.
func DaysOverdue(loan *Loan, today time.Time) int {
	if loan.Returned || loan.FineExempt {
		return 0
	}

	due := utcDay(loan.DueDate)
	asOf := utcDay(today)
	if !asOf.After(due) {
		return 0
	}

	days := int(asOf.Sub(due) / (24 * time.Hour))
	if days < 0 {
		return 0
	}
	return days
}

// FineAmount computes the fine owed on a loan as of the given date:
// days overdue times the loan-local daily rate, rounded half-up to the
// currency's minor unit. Returns zero under the same exemptions as
// DaysOverdue and for settled or cancelled fine statuses.
func FineAmount(loan *Loan, today time.Time) valueobject.Money {
	if loan.FineStatus.IsTerminal() {
		return valueobject.ZeroUSD()
	}

	days := DaysOverdue(loan, today)
	if days == 0 {
		return valueobject.ZeroUSD()
	}

	return loan.GetFinePerDayMoney().MultiplyByInt(int64(days)).RoundToMinorUnit()
}

// utcDay maps a time to its calendar day anchored at UTC midnight, so the
// day difference is an exact multiple of 24h regardless of zone or DST.
func utcDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
