package postgres

import (
	"context"
	"fmt"
	"time"

	"courier-track/internal/domain/geo"
	"courier-track/internal/ports"

	"github.com/jackc/pgx/v5/pgxpool"
)

// LocationStore is the durable append-only log of courier position
// samples, backed by the courier_locations table. It runs against the
// pool directly: ingestion is a single-statement hot path that must
// not be coupled to the CRUD layer's transactions.
type LocationStore struct {
	pool *pgxpool.Pool
}

// NewLocationStore constructs a LocationStore on the given pool.
func NewLocationStore(pool *pgxpool.Pool) ports.LocationStore {
	return &LocationStore{pool: pool}
}

// Append durably records one sample and returns it with the assigned
// record id. When RecordedAt is zero the server clock is used; the
// courier clock is never trusted. No retries here: the caller decides
// what a failed write means.
func (store *LocationStore) Append(ctx context.Context, s geo.PositionSample) (geo.StoredSample, error) {
	if s.CourierID == "" {
		return geo.StoredSample{}, geo.ErrMissingCourierID
	}
	if s.RecordedAt.IsZero() {
		s.RecordedAt = time.Now().UTC()
	}

	stored := geo.StoredSample{PositionSample: s}
	err := store.pool.QueryRow(ctx, `
		INSERT INTO courier_locations (
			courier_id, latitude, longitude, accuracy, speed, recorded_at
		)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, recorded_at
	`,
		s.CourierID,
		s.Latitude,
		s.Longitude,
		s.Accuracy,
		s.Speed,
		s.RecordedAt,
	).Scan(&stored.ID, &stored.RecordedAt)
	if err != nil {
		return geo.StoredSample{}, fmt.Errorf("append courier location: %w", err)
	}

	return stored, nil
}

// QueryAll reads every raw sample, unordered. Only the projection
// rebuild and the legacy bulk read use this; operational scale is
// assumed small enough that no pagination is needed.
func (store *LocationStore) QueryAll(ctx context.Context) ([]geo.StoredSample, error) {
	rows, err := store.pool.Query(ctx, `
		SELECT id, courier_id, latitude, longitude, accuracy, speed, recorded_at
		FROM courier_locations
	`)
	if err != nil {
		return nil, fmt.Errorf("query courier locations: %w", err)
	}
	defer rows.Close()

	var out []geo.StoredSample
	for rows.Next() {
		var s geo.StoredSample
		if err := rows.Scan(&s.ID, &s.CourierID, &s.Latitude, &s.Longitude, &s.Accuracy, &s.Speed, &s.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan courier location: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}
