// Package report prints collected records as they arrive and an hour histogram once the
// stream ends.
package report

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/JakeFAU/literary-clock/internal/paragraph"
)

// Buckets is the number of histogram rows. Hours run 0..24 inclusive because 24 is
// produced literally by both time forms.
const Buckets = paragraph.MaxHour + 1

// Reporter is a pipeline handler. It is driven by one sink goroutine and is not safe for
// concurrent use.
type Reporter struct {
	out       io.Writer
	highlight text.Colors
	hours     [Buckets]int
	total     int
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithHighlight sets the colours used for the matched span.
func WithHighlight(c text.Colors) Option {
	return func(r *Reporter) { r.highlight = c }
}

// New creates a Reporter writing to out.
func New(out io.Writer, opts ...Option) *Reporter {
	r := &Reporter{out: out, highlight: text.Colors{text.FgGreen, text.Bold}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name labels the handler.
func (r *Reporter) Name() string { return "reporter" }

// Handle counts rec and prints it with the match coloured.
func (r *Reporter) Handle(_ context.Context, rec paragraph.Record) {
	at, ok := rec.Time()
	if !ok {
		return
	}
	r.hours[at.Hour]++
	r.total++

	before, match, after := rec.Parts()
	fmt.Fprintf(r.out, "%s in %s with time %s:\n%s%s%s\n\n",
		rec.Author, rec.Book, at, before, r.highlight.Sprint(match), after)
}

// Finish renders the histogram.
func (r *Reporter) Finish(context.Context) {
	fmt.Fprintln(r.out, r.Render())
}

// Counts returns a copy of the per-hour totals.
func (r *Reporter) Counts() [Buckets]int { return r.hours }

// Total returns the number of records counted.
func (r *Reporter) Total() int { return r.total }

// Render formats the histogram with every hour present.
func (r *Reporter) Render() string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Hour", "Paragraphs"})
	for hour, n := range r.hours {
		tw.AppendRow(table.Row{strconv.Itoa(hour), n})
	}
	tw.AppendFooter(table.Row{"Total", r.total})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}
