package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/JakeFAU/literary-clock/internal/app"
	"github.com/JakeFAU/literary-clock/internal/corpus"
	"github.com/JakeFAU/literary-clock/internal/filter"
	"github.com/JakeFAU/literary-clock/internal/hash/sha256"
	"github.com/JakeFAU/literary-clock/internal/paragraph"
	"github.com/JakeFAU/literary-clock/internal/persist"
	"github.com/JakeFAU/literary-clock/internal/pipeline"
	"github.com/JakeFAU/literary-clock/internal/report"
	"github.com/JakeFAU/literary-clock/internal/timeextract"
)

func buildCollectPipeline(a *app.App, out io.Writer) (*pipeline.Pipeline[paragraph.Record], error) {
	cfg := a.Config()
	logger := a.Logger()

	length, err := filter.NewLength(cfg.Pipeline.MinLength, cfg.Pipeline.MaxLength, cfg.Pipeline.FilterCapacity)
	if err != nil {
		return nil, fmt.Errorf("init length filter: %w", err)
	}
	handlers := []pipeline.Handler[paragraph.Record]{
		persist.New(a.Paragraphs(), sha256.New(), logger),
	}
	if cfg.Pipeline.Report {
		handlers = append(handlers, report.New(out))
	}

	return pipeline.New[paragraph.Record](logger.Named("pipeline")).
		From(corpus.NewWalker(cfg.Paths.Books, logger)).
		Then(length).
		Then(&timeextract.Extractor{Capacity: cfg.Pipeline.ExtractCapacity}).
		To(pipeline.Handlers(cfg.Pipeline.SinkCapacity, handlers...)).
		Build()
}

func runCollect(ctx context.Context, a *app.App, out io.Writer) error {
	p, err := buildCollectPipeline(a, out)
	if err != nil {
		return err
	}
	if err := p.Execute(ctx); err != nil {
		return fmt.Errorf("collect: %w", err)
	}
	return nil
}
