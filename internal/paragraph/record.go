// Package paragraph defines the record that flows through the collection pipeline.
package paragraph

import (
	"errors"
	"fmt"
)

// Hour and minute bounds accepted by ClockTime. Hour 24 is a valid literal value because
// both "24 o'clock" and "12:xx pm" produce it without normalization.
const (
	MaxHour   = 24
	MaxMinute = 59
)

var (
	// ErrAlreadyHighlighted is returned when a record that already carries a match is highlighted again.
	ErrAlreadyHighlighted = errors.New("record already highlighted")
	// ErrClockRange is returned for hours outside 0..24 or minutes outside 0..59.
	ErrClockRange = errors.New("clock time out of range")
	// ErrSpanRange is returned when a span does not fit inside the record text.
	ErrSpanRange = errors.New("span out of range")
)

// Span is a half-open byte range [Start, End) into a record's text.
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int { return s.End - s.Start }

// ClockTime is an un-normalized hour/minute pair.
type ClockTime struct {
	Hour   int
	Minute int
}

// NewClockTime validates the pair.
func NewClockTime(hour, minute int) (ClockTime, error) {
	if hour < 0 || hour > MaxHour || minute < 0 || minute > MaxMinute {
		return ClockTime{}, fmt.Errorf("%w: %d:%02d", ErrClockRange, hour, minute)
	}
	return ClockTime{Hour: hour, Minute: minute}, nil
}

// String renders the time as H:MM.
func (c ClockTime) String() string {
	return fmt.Sprintf("%d:%02d", c.Hour, c.Minute)
}

type match struct {
	span Span
	time ClockTime
}

// Record is one paragraph plus the metadata attached during ingestion and extraction.
// The span and time are stored together so one is never present without the other.
type Record struct {
	Text   string
	Book   string
	Author string

	match *match
}

// New creates an un-highlighted record.
func New(text, book, author string) Record {
	return Record{Text: text, Book: book, Author: author}
}

// Highlight returns a copy of r carrying span and time. The receiver is left untouched,
// so one input can be fanned out into several independently highlighted copies.
func (r Record) Highlight(span Span, at ClockTime) (Record, error) {
	if r.match != nil {
		return Record{}, ErrAlreadyHighlighted
	}
	if span.Start < 0 || span.End < span.Start || span.End > len(r.Text) {
		return Record{}, fmt.Errorf("%w: [%d, %d) in %d bytes", ErrSpanRange, span.Start, span.End, len(r.Text))
	}
	if _, err := NewClockTime(at.Hour, at.Minute); err != nil {
		return Record{}, err
	}
	r.match = &match{span: span, time: at}
	return r, nil
}

// Highlighted reports whether the record carries a span and time.
func (r Record) Highlighted() bool { return r.match != nil }

// Span returns the highlighted span, if any.
func (r Record) Span() (Span, bool) {
	if r.match == nil {
		return Span{}, false
	}
	return r.match.span, true
}

// Time returns the clock time, if any.
func (r Record) Time() (ClockTime, bool) {
	if r.match == nil {
		return ClockTime{}, false
	}
	return r.match.time, true
}

// Parts splits the text around the highlighted span. For un-highlighted records the whole
// text is returned as before.
func (r Record) Parts() (before, highlighted, after string) {
	if r.match == nil {
		return r.Text, "", ""
	}
	s := r.match.span
	return r.Text[:s.Start], r.Text[s.Start:s.End], r.Text[s.End:]
}
