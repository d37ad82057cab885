package services

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// Clock supplies the current time to services so overdue and fine
// calculations are testable with a fixed time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// SystemClock returns a Clock backed by the wall clock in UTC.
func SystemClock() Clock {
	return systemClock{}
}

// FixedClock is a Clock pinned to a single instant, for tests.
type FixedClock struct {
	Time time.Time
}

func (c FixedClock) Now() time.Time {
	return c.Time
}

// timestampNow wraps the clock's current time as a valid pgtype.Timestamp.
func timestampNow(c Clock) pgtype.Timestamp {
	return pgtype.Timestamp{Time: c.Now(), Valid: true}
}
