package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"systems-api/internal/catalog"
)

// Catalog is the write side of the catalog store. Both inserts must be
// conflict tolerant: inserting an existing id64 is a no-op reporting false.
type Catalog interface {
	InsertSystemIfAbsent(ctx context.Context, sys *catalog.StarSystem) (bool, error)
	InsertStarIfAbsent(ctx context.Context, star *catalog.Star) (bool, error)
}

// Outcome reports which rows a mutation created.
type Outcome struct {
	SystemAdded bool
	StarAdded   bool
}

type Writer struct {
	catalog Catalog
	logger  *slog.Logger
}

func NewWriter(c Catalog, logger *slog.Logger) *Writer {
	return &Writer{
		catalog: c,
		logger:  logger.With("component", "catalog_writer"),
	}
}

// Apply persists m. Each insert is its own statement and commits on its own.
func (w *Writer) Apply(ctx context.Context, m Mutation) (Outcome, error) {
	switch m := m.(type) {
	case NewSystem:
		added, err := w.catalog.InsertSystemIfAbsent(ctx, &m.System)
		if err != nil {
			return Outcome{}, fmt.Errorf("store system: %w", err)
		}
		if added {
			w.logger.Debug("Added new system", "id64", m.System.ID64, "name", m.System.Name)
		}
		return Outcome{SystemAdded: added}, nil

	case NewStar:
		added, err := w.catalog.InsertStarIfAbsent(ctx, &m.Star)
		if err != nil {
			return Outcome{}, fmt.Errorf("store star: %w", err)
		}
		if added {
			w.logger.Debug("Added new star", "id64", m.Star.ID64, "name", m.Star.Name, "type", m.Star.Type)
		}
		return Outcome{StarAdded: added}, nil

	case nil:
		return Outcome{}, nil

	default:
		return Outcome{}, fmt.Errorf("unknown mutation %T", m)
	}
}
