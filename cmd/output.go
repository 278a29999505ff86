package cmd

import (
	"context"
	"io"

	"github.com/JakeFAU/literary-clock/internal/app"
	"github.com/JakeFAU/literary-clock/internal/clock/system"
	"github.com/JakeFAU/literary-clock/internal/sample"
)

// outputClock is swapped in tests.
var outputClock sample.Clock = system.New()

func runOutput(ctx context.Context, a *app.App, out io.Writer) error {
	picker := sample.NewPicker(a.Paragraphs(), outputClock)
	rec, err := picker.Pick(ctx)
	if err != nil {
		return err
	}
	return picker.Render(out, rec)
}
