package lending

import "time"

// Clock supplies the current time to the lending domain.
// Injected so accrual and ban logic stay deterministic in tests.
type Clock interface {
	// Now returns the current instant
	Now() time.Time
	// Today returns the current date truncated to midnight
	Today() time.Time
}

type systemClock struct{}

// NewSystemClock returns a Clock backed by the system time
func NewSystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) Today() time.Time {
	return Midnight(time.Now())
}

// Midnight truncates a time to the start of its calendar day
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// FixedClock is a Clock pinned to a single instant, for tests and replays
type FixedClock struct {
	Instant time.Time
}

// NewFixedClock creates a Clock that always reports the given instant
func NewFixedClock(instant time.Time) FixedClock {
	return FixedClock{Instant: instant}
}

func (c FixedClock) Now() time.Time {
	return c.Instant
}

func (c FixedClock) Today() time.Time {
	return Midnight(c.Instant)
}
