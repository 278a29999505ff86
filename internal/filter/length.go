// Package filter holds stateless pipeline transforms that drop records.
package filter

import (
	"context"
	"fmt"
	"iter"

	"github.com/JakeFAU/literary-clock/internal/paragraph"
)

// Length passes records whose text byte length lies in [Min, Max).
type Length struct {
	Min      int
	Max      int
	Capacity int
}

// NewLength validates the bounds.
func NewLength(minLen, maxLen, capacity int) (*Length, error) {
	if minLen < 0 || maxLen <= minLen {
		return nil, fmt.Errorf("invalid length range [%d, %d)", minLen, maxLen)
	}
	return &Length{Min: minLen, Max: maxLen, Capacity: capacity}, nil
}

// Name labels the stage.
func (l *Length) Name() string { return "length-filter" }

// InputCapacity declares the stage's input queue size.
func (l *Length) InputCapacity() int { return l.Capacity }

// Keep reports whether the record is inside the range.
func (l *Length) Keep(r paragraph.Record) bool {
	n := len(r.Text)
	return n >= l.Min && n < l.Max
}

// Transform forwards r unchanged or drops it.
func (l *Length) Transform(_ context.Context, r paragraph.Record) iter.Seq[paragraph.Record] {
	return func(yield func(paragraph.Record) bool) {
		if l.Keep(r) {
			yield(r)
		}
	}
}
