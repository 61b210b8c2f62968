package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"systems-api/internal/eddn"
)

// Pipeline turns raw relay messages into catalog writes and keeps the
// reporting window. It is driven by a single consumer goroutine and is not
// safe for concurrent use.
type Pipeline struct {
	writer   *Writer
	reporter *Reporter
	window   ReportingWindow
	now      func() time.Time
	logger   *slog.Logger
}

func NewPipeline(writer *Writer, reporter *Reporter, logger *slog.Logger) *Pipeline {
	return newPipeline(writer, reporter, time.Now, logger)
}

func newPipeline(writer *Writer, reporter *Reporter, now func() time.Time, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		writer:   writer,
		reporter: reporter,
		window:   NewReportingWindow(now()),
		now:      now,
		logger:   logger.With("component", "ingest_pipeline"),
	}
}

// Window returns the current reporting window.
func (p *Pipeline) Window() ReportingWindow {
	return p.window
}

func (p *Pipeline) HandleMessage(ctx context.Context, raw []byte) error {
	ev, err := eddn.Decode(raw)
	if err != nil {
		return err
	}

	p.window = p.reporter.Report(ctx, p.window, p.now())
	p.window.Messages++

	mutation, err := Classify(ev)
	if err != nil {
		return fmt.Errorf("classify %s from %s: %w", ev.Kind, ev.Header.SoftwareName, err)
	}
	if mutation == nil {
		return nil
	}

	outcome, err := p.writer.Apply(ctx, mutation)
	if err != nil {
		return err
	}

	if outcome.SystemAdded {
		p.window.NewSystems++
	}
	if outcome.StarAdded {
		p.window.NewStars++
	}
	return nil
}

var _ eddn.Handler = (*Pipeline)(nil)
