// Package sample picks a stored paragraph matching the current time of day.
package sample

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"path"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/JakeFAU/literary-clock/internal/paragraph"
	"github.com/JakeFAU/literary-clock/internal/storage"
)

// FallbackMinute is read when the exact minute has no records.
const FallbackMinute = 0

// ErrNoParagraphs is returned when neither the exact minute nor the fallback has records.
var ErrNoParagraphs = errors.New("no paragraphs for the current time")

// Clock supplies the time to match.
type Clock interface {
	Now() time.Time
}

// Picker selects records uniformly at random.
type Picker struct {
	store storage.BlobStore
	clock Clock
	rng   *rand.Rand

	highlight   text.Colors
	attribution text.Colors
}

// Option configures a Picker.
type Option func(*Picker)

// WithRand fixes the random source.
func WithRand(r *rand.Rand) Option {
	return func(p *Picker) { p.rng = r }
}

// WithColors sets the colours for the matched span and the attribution line.
func WithColors(highlight, attribution text.Colors) Option {
	return func(p *Picker) {
		p.highlight = highlight
		p.attribution = attribution
	}
}

// NewPicker creates a Picker over store.
func NewPicker(store storage.BlobStore, clock Clock, opts ...Option) *Picker {
	p := &Picker{
		store:       store,
		clock:       clock,
		highlight:   text.Colors{text.FgGreen},
		attribution: text.Colors{text.FgBlack, text.BgHiWhite},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.rng == nil {
		p.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return p
}

// Pick returns a record filed under the clock's current hour and minute.
func (p *Picker) Pick(ctx context.Context) (paragraph.Record, error) {
	now := p.clock.Now()
	return p.PickAt(ctx, now.Hour(), now.Minute())
}

// PickAt returns a record filed under hour and minute, falling back to minute 0.
func (p *Picker) PickAt(ctx context.Context, hour, minute int) (paragraph.Record, error) {
	hourDir := strconv.Itoa(hour)
	names, err := p.store.ListObjects(ctx, path.Join(hourDir, strconv.Itoa(minute)))
	if err != nil {
		return paragraph.Record{}, fmt.Errorf("list %d:%02d: %w", hour, minute, err)
	}
	if len(names) == 0 && minute != FallbackMinute {
		names, err = p.store.ListObjects(ctx, path.Join(hourDir, strconv.Itoa(FallbackMinute)))
		if err != nil {
			return paragraph.Record{}, fmt.Errorf("list %d:00: %w", hour, err)
		}
	}
	if len(names) == 0 {
		return paragraph.Record{}, fmt.Errorf("%w: %d:%02d", ErrNoParagraphs, hour, minute)
	}

	name := names[p.rng.IntN(len(names))]
	data, err := p.store.GetObject(ctx, name)
	if err != nil {
		return paragraph.Record{}, fmt.Errorf("read %s: %w", name, err)
	}
	rec, err := paragraph.Unmarshal(data)
	if err != nil {
		return paragraph.Record{}, fmt.Errorf("decode %s: %w", name, err)
	}
	return rec, nil
}

// Render prints the paragraph with its match coloured, then the attribution indented on
// its own line.
func (p *Picker) Render(w io.Writer, rec paragraph.Record) error {
	before, match, after := rec.Parts()
	attribution := fmt.Sprintf("%s in %s", rec.Author, rec.Book)
	_, err := fmt.Fprintf(w, "%s%s%s\n\t\t\t\t%s\n", before, p.highlight.Sprint(match), after, p.attribution.Sprint(attribution))
	return err
}
