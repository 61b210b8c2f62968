package permit

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"systems-api/internal/shared/database"
)

type Repository struct {
	db     database.Executor
	logger *slog.Logger
}

func NewRepository(db database.Executor, logger *slog.Logger) *Repository {
	logger.Debug("Initializing permit repository")

	return &Repository{
		db:     db,
		logger: logger.With("component", "permit_repository"),
	}
}

func (r *Repository) ListPermits(ctx context.Context) ([]Permit, error) {
	logger := r.logger.With("operation", "list_permits")

	rows, err := r.db.QueryContext(ctx, `SELECT id64, permit_name FROM permits`)
	if err != nil {
		logger.Error("Failed to query permits", "error", err)
		return nil, fmt.Errorf("failed to query permits: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("Failed to close rows", "error", err)
		}
	}()

	var permits []Permit
	for rows.Next() {
		var (
			p    Permit
			name sql.NullString
		)
		if err := rows.Scan(&p.ID64, &name); err != nil {
			logger.Error("Failed to scan permit row", "error", err)
			return nil, fmt.Errorf("failed to scan permit: %w", err)
		}
		if name.Valid {
			p.Name = &name.String
		}
		permits = append(permits, p)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Error during rows iteration", "error", err)
		return nil, fmt.Errorf("error iterating permits: %w", err)
	}

	logger.Debug("Permits retrieved", "count", len(permits))
	return permits, nil
}
