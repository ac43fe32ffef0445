package ports

import (
	"context"

	"courier-track/internal/domain/courier"
	"courier-track/internal/domain/geo"
	"courier-track/internal/domain/parcel"
)

// UnitOfWork interface is used to manage transactions across multiple repository operations.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// CourierRepository defines the methods for managing courier/admin accounts.
// All methods must be called within a UnitOfWork transaction.
type CourierRepository interface {
	Create(ctx context.Context, c *courier.Courier, password string) error
	GetByCredentials(ctx context.Context, username, password string) (*courier.Courier, error)
	ListByRole(ctx context.Context, role courier.Role) ([]courier.Courier, error)
	ListAvailable(ctx context.Context) ([]courier.Courier, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]courier.Courier, error)
	UpdateStatus(ctx context.Context, id string, status courier.Status) (*courier.Courier, error)
}

// ParcelRepository defines the methods for managing parcel records.
// All methods must be called within a UnitOfWork transaction.
type ParcelRepository interface {
	Create(ctx context.Context, p *parcel.Parcel) error
	List(ctx context.Context) ([]parcel.Parcel, error)
	Get(ctx context.Context, id string) (*parcel.Parcel, error)
	Update(ctx context.Context, id string, upd parcel.Update) (*parcel.Parcel, error)
	UpdateStatus(ctx context.Context, id string, status parcel.Status) (*parcel.Parcel, error)
	Assign(ctx context.Context, id, courierID string) (*parcel.Parcel, error)
	Delete(ctx context.Context, id string) error
}

// LocationStore owns the durable append-only log of position samples.
// It is used outside the UnitOfWork: each append is a single statement
// on the hot ingestion path.
type LocationStore interface {
	// Append durably records the sample, assigning recorded_at from the
	// server clock when the caller left it zero. It never retries.
	Append(ctx context.Context, s geo.PositionSample) (geo.StoredSample, error)
	// QueryAll reads all raw samples, unordered. Used for projection
	// rebuild and the legacy bulk read; no pagination at this scale.
	QueryAll(ctx context.Context) ([]geo.StoredSample, error)
}

// EventPublisher publishes messages to a broker exchange.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}
