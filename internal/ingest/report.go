package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"systems-api/internal/notify"
)

// ReportingWindow accumulates ingestion counters between two reports.
type ReportingWindow struct {
	Start      time.Time
	Messages   int
	NewSystems int
	NewStars   int
}

func NewReportingWindow(start time.Time) ReportingWindow {
	return ReportingWindow{Start: start}
}

// Summary renders the report line for the window given fresh catalog totals.
func (w ReportingWindow) Summary(totalStars, totalSystems int64) string {
	return fmt.Sprintf("[SAPI]: %d msgs processed, %d new systems, %d new stars. DB contains %d stars and %d systems.",
		w.Messages, w.NewSystems, w.NewStars, totalStars, totalSystems)
}

// Totals reads the current catalog size.
type Totals interface {
	CountStars(ctx context.Context) (int64, error)
	CountSystems(ctx context.Context) (int64, error)
}

type ReporterConfig struct {
	Interval   time.Duration
	RetryDelay time.Duration
}

type Reporter struct {
	cfg      ReporterConfig
	totals   Totals
	notifier notify.Notifier
	logger   *slog.Logger
}

func NewReporter(cfg ReporterConfig, totals Totals, notifier notify.Notifier, logger *slog.Logger) *Reporter {
	return &Reporter{
		cfg:      cfg,
		totals:   totals,
		notifier: notifier,
		logger:   logger.With("component", "reporter", "channel", notifier.Name()),
	}
}

// Due reports whether the window has run longer than the interval.
func (r *Reporter) Due(w ReportingWindow, now time.Time) bool {
	return now.Sub(w.Start) > r.cfg.Interval
}

// Report emits the window's summary once it is due and returns the window
// to continue with: a fresh one after a delivered report, otherwise w with
// its counts intact and Start pushed back by the retry delay so the next
// attempt comes well before another full interval.
func (r *Reporter) Report(ctx context.Context, w ReportingWindow, now time.Time) ReportingWindow {
	if !r.Due(w, now) {
		return w
	}

	logger := r.logger.With("operation", "report",
		"messages", w.Messages, "new_systems", w.NewSystems, "new_stars", w.NewStars)

	stars, err := r.totals.CountStars(ctx)
	if err != nil {
		logger.Error("Failed to count stars, retrying later", "error", err, "retry_delay", r.cfg.RetryDelay)
		return r.postpone(w)
	}
	systems, err := r.totals.CountSystems(ctx)
	if err != nil {
		logger.Error("Failed to count systems, retrying later", "error", err, "retry_delay", r.cfg.RetryDelay)
		return r.postpone(w)
	}

	if err := r.notifier.Notify(ctx, w.Summary(stars, systems)); err != nil {
		if notify.IsTimeout(err) {
			logger.Warn("Report timed out, retrying later", "error", err, "retry_delay", r.cfg.RetryDelay)
		} else {
			logger.Error("Report failed, retrying later", "error", err, "retry_delay", r.cfg.RetryDelay)
		}
		return r.postpone(w)
	}

	logger.Info("Report delivered", "total_stars", stars, "total_systems", systems)
	return NewReportingWindow(now)
}

func (r *Reporter) postpone(w ReportingWindow) ReportingWindow {
	w.Start = w.Start.Add(r.cfg.RetryDelay)
	return w
}
