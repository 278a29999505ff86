// Package timeextract finds clock-time expressions in paragraph text.
//
// Two forms are recognized, case-insensitively:
//
//	9 o'clock, 12o'clock       hour only; read both as AM and PM
//	4:30pm, 11:15 a.m., 7:05 p hour and minute with a meridiem marker
//
// A "p" marker adds 12 to the hour without wrapping, so 12:30pm yields hour 24. The
// o'clock form wraps its PM reading modulo 24. Both rules are kept exactly as they are.
package timeextract

import (
	"context"
	"iter"
	"regexp"
	"strconv"
	"strings"

	"github.com/JakeFAU/literary-clock/internal/paragraph"
)

// Capture group indexes in timePattern.
const (
	groupOClockHour = 1
	groupHour       = 2
	groupMinute     = 3
	groupMeridiem   = 4
)

var timePattern = regexp.MustCompile(
	`(?i)\b(?:(\d{1,2}) ?o'clock|(\d{1,2}):(\d{2}) ?([ap])(?:m\b|\.m\.|\b))`,
)

// Mention is one matched expression and every clock time it may denote.
type Mention struct {
	Span  paragraph.Span
	Times []paragraph.ClockTime
}

// Extract returns every non-overlapping mention in text, left to right. Captures with an
// hour outside 0..24 or a minute outside 0..59 are skipped.
func Extract(text string) []Mention {
	var out []Mention
	for _, m := range timePattern.FindAllStringSubmatchIndex(text, -1) {
		span := paragraph.Span{Start: m[0], End: m[1]}
		var times []paragraph.ClockTime
		if m[2*groupOClockHour] >= 0 {
			times = oclockTimes(group(text, m, groupOClockHour))
		} else {
			times = digitalTimes(group(text, m, groupHour), group(text, m, groupMinute), group(text, m, groupMeridiem))
		}
		if len(times) == 0 {
			continue
		}
		out = append(out, Mention{Span: span, Times: times})
	}
	return out
}

func group(text string, loc []int, n int) string {
	start, end := loc[2*n], loc[2*n+1]
	if start < 0 {
		return ""
	}
	return text[start:end]
}

func oclockTimes(rawHour string) []paragraph.ClockTime {
	hour, err := strconv.Atoi(rawHour)
	if err != nil {
		return nil
	}
	literal, err := paragraph.NewClockTime(hour, 0)
	if err != nil {
		return nil
	}
	shifted, err := paragraph.NewClockTime((hour+12)%24, 0)
	if err != nil {
		return nil
	}
	return []paragraph.ClockTime{literal, shifted}
}

func digitalTimes(rawHour, rawMinute, meridiem string) []paragraph.ClockTime {
	hour, err := strconv.Atoi(rawHour)
	if err != nil {
		return nil
	}
	minute, err := strconv.Atoi(rawMinute)
	if err != nil {
		return nil
	}
	if strings.EqualFold(meridiem, "p") {
		hour += 12
	}
	t, err := paragraph.NewClockTime(hour, minute)
	if err != nil {
		return nil
	}
	return []paragraph.ClockTime{t}
}

// Extractor is the pipeline transform emitting one highlighted copy per mention and time.
type Extractor struct {
	Capacity int
}

// Name labels the stage.
func (e *Extractor) Name() string { return "time-extractor" }

// InputCapacity declares the stage's input queue size.
func (e *Extractor) InputCapacity() int { return e.Capacity }

// Transform fans r out into its highlighted copies. Records that already carry a
// highlight are not highlighted again and produce nothing.
func (e *Extractor) Transform(_ context.Context, r paragraph.Record) iter.Seq[paragraph.Record] {
	return func(yield func(paragraph.Record) bool) {
		if r.Highlighted() {
			return
		}
		for _, mention := range Extract(r.Text) {
			for _, at := range mention.Times {
				out, err := r.Highlight(mention.Span, at)
				if err != nil {
					continue
				}
				if !yield(out) {
					return
				}
			}
		}
	}
}
