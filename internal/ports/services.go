package ports

import (
	"context"
	"errors"
	"time"

	"courier-track/internal/domain/courier"
	"courier-track/internal/domain/parcel"
)

// ----- DTOs for the Dispatch Service -----

// CourierView is the API shape of a courier/admin account.
type CourierView struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// LoginResult is returned by DispatchService.Login().
type LoginResult struct {
	User  CourierView `json:"user"`
	Token string      `json:"token"`
}

// CourierBrief is the subset of courier identity joined onto parcel
// and location responses.
type CourierBrief struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username,omitempty"`
	Status   string `json:"status,omitempty"`
}

// ParcelView is the API shape of a parcel, optionally joined with the
// assigned courier's identity.
type ParcelView struct {
	ID        string        `json:"id"`
	Recipient string        `json:"recipient"`
	Address   string        `json:"address"`
	CourierID *string       `json:"courier_id"`
	Status    string        `json:"status"`
	CreatedAt string        `json:"created_at"`
	UpdatedAt string        `json:"updated_at"`
	Courier   *CourierBrief `json:"courier,omitempty"`
}

// CreateParcelInput is the validated input for POST /api/packages.
type CreateParcelInput struct {
	Recipient string
	Address   string
	CourierID *string
	Status    *parcel.Status
}

// UpdateParcelInput carries a partial update for PUT /api/packages/{id}.
type UpdateParcelInput struct {
	Recipient *string
	Address   *string
	CourierID *string
	Status    *parcel.Status
}

// CreateCourierInput is the validated input for POST /api/deliveries.
type CreateCourierInput struct {
	Username string
	Password string
	Name     string
}

// CourierLatest is one row of GET /api/delivery-locations/latest: the
// newest known position of a courier merged with their identity record.
type CourierLatest struct {
	CourierID  string        `json:"courier_id"`
	Latitude   float64       `json:"latitude"`
	Longitude  float64       `json:"longitude"`
	Accuracy   *float64      `json:"accuracy,omitempty"`
	Speed      *float64      `json:"speed,omitempty"`
	RecordedAt time.Time     `json:"timestamp"`
	Courier    *CourierBrief `json:"courier,omitempty"`
}

// MapData is the legacy GET /api/map-data response.
type MapData struct {
	Message   string       `json:"message"`
	Parcels   []ParcelView `json:"packages"`
	Timestamp string       `json:"timestamp"`
}

// ErrInvalidCredentials is returned by Login when no account matches.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ----- Dispatch Service Interface -----

// DispatchService exposes the HTTP-facing boundary of the dispatch
// backend: auth, courier and parcel CRUD, and the latest-positions
// read path backed by the tracking projection.
type DispatchService interface {
	Login(ctx context.Context, username, password string) (LoginResult, error)

	CreateCourier(ctx context.Context, in CreateCourierInput) (CourierView, error)
	ListCouriers(ctx context.Context) ([]CourierView, error)
	ListAvailableCouriers(ctx context.Context) ([]CourierView, error)
	UpdateCourierStatus(ctx context.Context, id string, status courier.Status) (CourierView, error)

	CreateParcel(ctx context.Context, in CreateParcelInput) (ParcelView, error)
	ListParcels(ctx context.Context) ([]ParcelView, error)
	GetParcel(ctx context.Context, id string) (ParcelView, error)
	UpdateParcel(ctx context.Context, id string, in UpdateParcelInput) (ParcelView, error)
	UpdateParcelStatus(ctx context.Context, id string, status parcel.Status) (ParcelView, error)
	AssignParcel(ctx context.Context, id, courierID string) (ParcelView, error)
	DeleteParcel(ctx context.Context, id string) error

	LatestLocations(ctx context.Context) ([]CourierLatest, error)
	MapData(ctx context.Context) (MapData, error)
}
