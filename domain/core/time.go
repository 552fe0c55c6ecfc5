package core

import (
	"time"
)

// Clock supplies the current time. Tests swap in a fixed or stepping clock.
type Clock func() time.Time

// SystemClock returns wall-clock time
func SystemClock() Clock {
	return time.Now
}

// Now returns the clock's current time, falling back to wall-clock time when unset
func (c Clock) Now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

// DurationMillis returns the non-negative whole milliseconds between start and end
func DurationMillis(start, end time.Time) int64 {
	d := end.Sub(start).Milliseconds()
	if d < 0 {
		return 0
	}
	return d
}
