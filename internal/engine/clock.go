package engine

import "time"

// Clock supplies the wall-clock time used to stamp delivered_at.
//
// Implemented by SystemClock (production) and testutil.FixedClock (tests).
type Clock interface {
	Now() time.Time
}

// SystemClock reads the local wall clock.
//
// Thread-safety: SystemClock is stateless and safe for concurrent use.
type SystemClock struct{}

// Now returns time.Now() in the local time zone.
func (SystemClock) Now() time.Time {
	return time.Now()
}
