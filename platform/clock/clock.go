// Package clock provides the time source used by all date-sensitive logic.
// Injecting a Clock instead of calling time.Now directly lets milestone
// classification and workflow deadline tests pin "now" to a fixed instant.
package clock

import "time"

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// System is a Clock backed by the wall clock.
type System struct{}

// Now returns the current UTC time.
func (System) Now() time.Time {
	return time.Now().UTC()
}

// Fixed is a Clock that always returns the same instant. Intended for tests.
type Fixed struct {
	Instant time.Time
}

// Now returns the fixed instant.
func (f Fixed) Now() time.Time {
	return f.Instant
}
