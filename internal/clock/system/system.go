// Package system provides clock sources for output mode.
package system

import "time"

// Clock reads the wall clock in the local time zone, which is what a reader of the printed
// quote expects to match.
type Clock struct {
	loc *time.Location
}

// New creates a Clock for time.Local.
func New() *Clock {
	return &Clock{loc: time.Local}
}

// NewIn creates a Clock for loc.
func NewIn(loc *time.Location) *Clock {
	if loc == nil {
		loc = time.Local
	}
	return &Clock{loc: loc}
}

// Now returns the current time.
func (c *Clock) Now() time.Time {
	return time.Now().In(c.loc)
}

// Fixed always returns the same instant.
type Fixed time.Time

// Now returns the fixed instant.
func (f Fixed) Now() time.Time { return time.Time(f) }
