package search

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"systems-api/internal/shared/database"
)

type Repository struct {
	db     database.Executor
	logger *slog.Logger
}

func NewRepository(db database.Executor, logger *slog.Logger) *Repository {
	logger.Debug("Initializing search repository")

	return &Repository{
		db:     db,
		logger: logger.With("component", "search_repository"),
	}
}

// ExactMatches is a case-insensitive equality lookup served by the
// lower(name) index.
func (r *Repository) ExactMatches(ctx context.Context, name string) ([]Match, error) {
	query := `
		SELECT id64, name, coords
		FROM systems
		WHERE lower(name) = lower($1)
	`
	return r.query(ctx, "exact_matches", query, scanPlain, name)
}

// TrigramMatches returns names similar to name under pg_trgm, best first.
func (r *Repository) TrigramMatches(ctx context.Context, name string, limit int) ([]Match, error) {
	query := `
		SELECT id64, name, coords, similarity(lower(name), lower($1)) AS sim
		FROM systems
		WHERE name % $1
		ORDER BY sim DESC
		LIMIT $2
	`
	return r.query(ctx, "trigram_matches", query, scanSimilarity, name, limit)
}

// PhoneticMatches returns names that sound like name (double metaphone or
// soundex) within maxDistance edits, closest first.
func (r *Repository) PhoneticMatches(ctx context.Context, name string, maxDistance, limit int) ([]Match, error) {
	query := `
		SELECT id64, name, coords, lev
		FROM (
			SELECT id64, name, coords, levenshtein(lower(name), lower($1)) AS lev
			FROM systems
			WHERE dmetaphone(name) = dmetaphone($1) OR soundex(name) = soundex($1)
		) phonetic
		WHERE lev < $2
		ORDER BY lev
		LIMIT $3
	`
	return r.query(ctx, "phonetic_matches", query, scanDistance, name, maxDistance, limit)
}

// PrefixMatches scans at most scan names starting with prefix and returns
// the limit most similar ones.
func (r *Repository) PrefixMatches(ctx context.Context, prefix string, scan, limit int) ([]Match, error) {
	query := `
		SELECT id64, name, coords, similarity(name, $1) AS sim
		FROM (
			SELECT id64, name, coords
			FROM systems
			WHERE name ILIKE $2 ESCAPE '\'
			LIMIT $3
		) prefixed
		ORDER BY sim DESC
		LIMIT $4
	`
	return r.query(ctx, "prefix_matches", query, scanSimilarity, prefix, escapeLike(prefix)+"%", scan, limit)
}

type scanFunc func(rows *sql.Rows) (Match, error)

func (r *Repository) query(ctx context.Context, operation, query string, scan scanFunc, args ...interface{}) ([]Match, error) {
	logger := r.logger.With("operation", operation)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.Error("Failed to query systems", "error", err)
		return nil, fmt.Errorf("%s: failed to query systems: %w", operation, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("Failed to close rows", "error", err)
		}
	}()

	var matches []Match
	for rows.Next() {
		m, err := scan(rows)
		if err != nil {
			logger.Error("Failed to scan system row", "error", err)
			return nil, fmt.Errorf("%s: failed to scan system: %w", operation, err)
		}
		matches = append(matches, m)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Error during rows iteration", "error", err)
		return nil, fmt.Errorf("%s: error iterating systems: %w", operation, err)
	}

	logger.Debug("Tier query finished", "matches", len(matches))
	return matches, nil
}

func scanPlain(rows *sql.Rows) (Match, error) {
	var m Match
	err := rows.Scan(&m.ID64, &m.Name, &m.Coords)
	return m, err
}

func scanSimilarity(rows *sql.Rows) (Match, error) {
	var (
		m   Match
		sim float64
	)
	if err := rows.Scan(&m.ID64, &m.Name, &m.Coords, &sim); err != nil {
		return m, err
	}
	m.Similarity = &sim
	return m, nil
}

func scanDistance(rows *sql.Rows) (Match, error) {
	var (
		m    Match
		dist int
	)
	if err := rows.Scan(&m.ID64, &m.Name, &m.Coords, &dist); err != nil {
		return m, err
	}
	m.Distance = &dist
	return m, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
