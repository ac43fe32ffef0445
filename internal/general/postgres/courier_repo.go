package postgres

import (
	"context"
	"errors"
	"fmt"

	"courier-track/internal/domain/courier"
	"courier-track/internal/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CourierRepo persists courier/admin accounts using pgx and plain SQL.
// Credentials are stored the way the dispatch frontend expects them: a
// bare username/password lookup, not an auth mechanism.
type CourierRepo struct{}

// NewCourierRepo constructs a new CourierRepo.
func NewCourierRepo() ports.CourierRepository {
	return &CourierRepo{}
}

const courierColumns = `id, username, name, role, status, created_at, updated_at`

// Create inserts a new account row.
func (repo *CourierRepo) Create(ctx context.Context, c *courier.Courier, password string) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	if err := c.Validate(); err != nil {
		return err
	}
	if password == "" {
		return errors.New("password cannot be empty")
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO users (id, username, password, name, role, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		RETURNING created_at, updated_at
	`,
		c.ID,
		c.Username,
		password,
		c.Name,
		c.Role.String(),
		c.Status.String(),
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// GetByCredentials looks up an account by exact username/password match.
func (repo *CourierRepo) GetByCredentials(ctx context.Context, username, password string) (*courier.Courier, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	row := tx.QueryRow(ctx, `
		SELECT `+courierColumns+`
		FROM users
		WHERE username = $1 AND password = $2
		LIMIT 1
	`, username, password)

	c, err := scanCourier(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, courier.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListByRole returns all accounts with the given role.
func (repo *CourierRepo) ListByRole(ctx context.Context, role courier.Role) ([]courier.Courier, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT `+courierColumns+`
		FROM users
		WHERE role = $1
		ORDER BY created_at
	`, role.String())
	if err != nil {
		return nil, fmt.Errorf("list users by role: %w", err)
	}
	defer rows.Close()

	return collectCouriers(rows)
}

// ListAvailable returns couriers currently marked available.
func (repo *CourierRepo) ListAvailable(ctx context.Context) ([]courier.Courier, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT `+courierColumns+`
		FROM users
		WHERE role = $1 AND status = $2
		ORDER BY created_at
	`, courier.RoleCourier.String(), courier.StatusAvailable.String())
	if err != nil {
		return nil, fmt.Errorf("list available couriers: %w", err)
	}
	defer rows.Close()

	return collectCouriers(rows)
}

// GetByIDs fetches accounts by id, returned as a map keyed by id.
// Unknown ids are simply absent from the result.
func (repo *CourierRepo) GetByIDs(ctx context.Context, ids []string) (map[string]courier.Courier, error) {
	out := make(map[string]courier.Courier, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT `+courierColumns+`
		FROM users
		WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("get users by ids: %w", err)
	}
	defer rows.Close()

	list, err := collectCouriers(rows)
	if err != nil {
		return nil, err
	}
	for _, c := range list {
		out[c.ID] = c
	}
	return out, nil
}

// UpdateStatus flips a courier's availability status and returns the
// updated row. Admin accounts are not couriers and cannot be updated
// through this path.
func (repo *CourierRepo) UpdateStatus(ctx context.Context, id string, status courier.Status) (*courier.Courier, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if !status.Valid() {
		return nil, courier.ErrInvalidStatus
	}

	row := tx.QueryRow(ctx, `
		UPDATE users
		SET status = $2, updated_at = now()
		WHERE id = $1 AND role = $3
		RETURNING `+courierColumns+`
	`, id, status.String(), courier.RoleCourier.String())

	c, err := scanCourier(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, courier.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ----- scan helpers -----

func scanCourier(row pgx.Row) (*courier.Courier, error) {
	var c courier.Courier
	var role, status string
	if err := row.Scan(&c.ID, &c.Username, &c.Name, &role, &status, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.Role, _ = courier.ParseRole(role)
	c.Status, _ = courier.ParseStatus(status)
	return &c, nil
}

func collectCouriers(rows pgx.Rows) ([]courier.Courier, error) {
	var out []courier.Courier
	for rows.Next() {
		c, err := scanCourier(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
