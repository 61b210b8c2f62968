package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"systems-api/internal/shared/database"
)

type Repository struct {
	db     database.Executor
	logger *slog.Logger
}

func NewRepository(db database.Executor, logger *slog.Logger) *Repository {
	logger.Debug("Initializing catalog repository")

	return &Repository{
		db:     db,
		logger: logger.With("component", "catalog_repository"),
	}
}

// InsertSystemIfAbsent stores sys unless a system with the same id64 already
// exists. It reports whether a row was created. Existing rows are never
// updated, so concurrent consumers cannot race each other into duplicates.
func (r *Repository) InsertSystemIfAbsent(ctx context.Context, sys *StarSystem) (bool, error) {
	logger := r.logger.With("operation", "insert_system", "id64", sys.ID64)

	query := `
		INSERT INTO systems (id64, name, coords, controlling_faction, last_update)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id64) DO NOTHING
	`

	res, err := r.db.ExecContext(ctx, query,
		sys.ID64,
		sys.Name,
		sys.Coords,
		nullJSON(sys.ControllingFaction),
		sys.LastUpdate,
	)
	if err != nil {
		logger.Error("Failed to insert system", "error", err)
		return false, fmt.Errorf("failed to insert system %d: %w", sys.ID64, err)
	}

	created, err := rowCreated(res)
	if err != nil {
		return false, fmt.Errorf("failed to insert system %d: %w", sys.ID64, err)
	}

	logger.Debug("System insert finished", "created", created, "name", sys.Name)
	return created, nil
}

// InsertStarIfAbsent is InsertSystemIfAbsent for stars.
func (r *Repository) InsertStarIfAbsent(ctx context.Context, star *Star) (bool, error) {
	logger := r.logger.With("operation", "insert_star", "id64", star.ID64, "body_id", star.BodyID)

	query := `
		INSERT INTO stars (
			id64, system_id64, body_id, name, system_name, age, axial_tilt,
			orbital_eccentricity, orbital_inclination, orbital_period, parents,
			arg_of_periapsis, belts, semi_major_axis, distance_to_arrival,
			luminosity, solar_radius, rotational_period, type, solar_masses,
			sub_type, surface_temperature, is_scoopable, is_main_star, last_update
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
		ON CONFLICT (id64) DO NOTHING
	`

	res, err := r.db.ExecContext(ctx, query,
		int64(star.ID64),
		star.SystemID64,
		star.BodyID,
		star.Name,
		star.SystemName,
		star.Age,
		star.AxialTilt,
		star.OrbitalEccentricity,
		star.OrbitalInclination,
		star.OrbitalPeriod,
		nullJSON(star.Parents),
		star.ArgOfPeriapsis,
		nullJSON(star.Belts),
		star.SemiMajorAxis,
		star.DistanceToArrival,
		star.Luminosity,
		star.SolarRadius,
		star.RotationalPeriod,
		star.Type,
		star.SolarMasses,
		star.SubType,
		star.SurfaceTemperature,
		star.IsScoopable,
		star.IsMainStar,
		star.LastUpdate,
	)
	if err != nil {
		logger.Error("Failed to insert star", "error", err)
		return false, fmt.Errorf("failed to insert star %d: %w", star.ID64, err)
	}

	created, err := rowCreated(res)
	if err != nil {
		return false, fmt.Errorf("failed to insert star %d: %w", star.ID64, err)
	}

	logger.Debug("Star insert finished", "created", created, "name", star.Name)
	return created, nil
}

func (r *Repository) CountSystems(ctx context.Context) (int64, error) {
	return r.count(ctx, "systems")
}

func (r *Repository) CountStars(ctx context.Context) (int64, error) {
	return r.count(ctx, "stars")
}

// count takes a fixed table name, never user input.
func (r *Repository) count(ctx context.Context, table string) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		r.logger.Error("Failed to count rows", "table", table, "error", err)
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}

func rowCreated(res interface{ RowsAffected() (int64, error) }) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// nullJSON maps an absent raw JSON value to SQL NULL.
func nullJSON(raw json.RawMessage) interface{} {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return []byte(raw)
}
