package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"courier-track/internal/domain/parcel"
	"courier-track/internal/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ParcelRepo persists parcel records using pgx and plain SQL.
type ParcelRepo struct{}

// NewParcelRepo constructs a new ParcelRepo.
func NewParcelRepo() ports.ParcelRepository {
	return &ParcelRepo{}
}

const parcelColumns = `id, recipient, address, courier_id, status, created_at, updated_at`

// Create inserts a new parcel row.
func (repo *ParcelRepo) Create(ctx context.Context, p *parcel.Parcel) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	if err := p.Validate(); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO parcels (id, recipient, address, courier_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		RETURNING created_at, updated_at
	`,
		p.ID,
		p.Recipient,
		p.Address,
		p.CourierID,
		p.Status.String(),
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert parcel: %w", err)
	}

	return nil
}

// List returns every parcel, newest first.
func (repo *ParcelRepo) List(ctx context.Context) ([]parcel.Parcel, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT `+parcelColumns+`
		FROM parcels
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list parcels: %w", err)
	}
	defer rows.Close()

	var out []parcel.Parcel
	for rows.Next() {
		p, err := scanParcel(rows)
		if err != nil {
			return nil, fmt.Errorf("scan parcel: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches one parcel by id.
func (repo *ParcelRepo) Get(ctx context.Context, id string) (*parcel.Parcel, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	row := tx.QueryRow(ctx, `
		SELECT `+parcelColumns+`
		FROM parcels
		WHERE id = $1
	`, id)

	p, err := scanParcel(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, parcel.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Update applies a partial update; nil fields keep their current value.
func (repo *ParcelRepo) Update(ctx context.Context, id string, upd parcel.Update) (*parcel.Parcel, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	sets := []string{"updated_at = now()"}
	args := []any{id}

	appendSet := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}

	if upd.Recipient != nil {
		appendSet("recipient", *upd.Recipient)
	}
	if upd.Address != nil {
		appendSet("address", *upd.Address)
	}
	if upd.CourierID != nil {
		appendSet("courier_id", *upd.CourierID)
	}
	if upd.Status != nil {
		if !upd.Status.Valid() {
			return nil, parcel.ErrInvalidStatus
		}
		appendSet("status", upd.Status.String())
	}

	row := tx.QueryRow(ctx, `
		UPDATE parcels
		SET `+strings.Join(sets, ", ")+`
		WHERE id = $1
		RETURNING `+parcelColumns+`
	`, args...)

	p, err := scanParcel(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, parcel.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateStatus transitions a parcel's status.
func (repo *ParcelRepo) UpdateStatus(ctx context.Context, id string, status parcel.Status) (*parcel.Parcel, error) {
	if !status.Valid() {
		return nil, parcel.ErrInvalidStatus
	}
	return repo.Update(ctx, id, parcel.Update{Status: &status})
}

// Assign hands the parcel to a courier and marks it assigned.
func (repo *ParcelRepo) Assign(ctx context.Context, id, courierID string) (*parcel.Parcel, error) {
	if strings.TrimSpace(courierID) == "" {
		return nil, errors.New("courier_id cannot be empty")
	}
	status := parcel.StatusAssigned
	return repo.Update(ctx, id, parcel.Update{CourierID: &courierID, Status: &status})
}

// Delete removes a parcel row.
func (repo *ParcelRepo) Delete(ctx context.Context, id string) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM parcels WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete parcel: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return parcel.ErrNotFound
	}
	return nil
}

func scanParcel(row pgx.Row) (*parcel.Parcel, error) {
	var p parcel.Parcel
	var status string
	if err := row.Scan(&p.ID, &p.Recipient, &p.Address, &p.CourierID, &status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Status, _ = parcel.ParseStatus(status)
	return &p, nil
}
