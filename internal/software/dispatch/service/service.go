package service

import (
	"time"

	"courier-track/internal/domain/courier"
	"courier-track/internal/domain/parcel"
	"courier-track/internal/general/jwt"
	"courier-track/internal/general/logger"
	"courier-track/internal/ports"
	"courier-track/internal/tracking"
)

// dispatchService implements the HTTP-facing dispatch logic: auth,
// courier and parcel management, and the latest-positions read path.
type dispatchService struct {
	logger    *logger.Logger
	uow       ports.UnitOfWork
	couriers  ports.CourierRepository
	parcels   ports.ParcelRepository
	store     ports.LocationStore
	projector *tracking.Projector
	auth      *jwt.Manager
}

// NewDispatchService creates the dispatch service with its dependencies.
func NewDispatchService(
	logger *logger.Logger,
	uow ports.UnitOfWork,
	couriers ports.CourierRepository,
	parcels ports.ParcelRepository,
	store ports.LocationStore,
	projector *tracking.Projector,
	auth *jwt.Manager,
) ports.DispatchService {
	return &dispatchService{
		logger:    logger,
		uow:       uow,
		couriers:  couriers,
		parcels:   parcels,
		store:     store,
		projector: projector,
		auth:      auth,
	}
}

// ----- view mapping -----

func courierView(c courier.Courier) ports.CourierView {
	return ports.CourierView{
		ID:        c.ID,
		Username:  c.Username,
		Name:      c.Name,
		Role:      c.Role.String(),
		Status:    c.Status.String(),
		CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: c.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func courierBrief(c courier.Courier) *ports.CourierBrief {
	return &ports.CourierBrief{
		ID:       c.ID,
		Name:     c.Name,
		Username: c.Username,
		Status:   c.Status.String(),
	}
}

func parcelView(p parcel.Parcel, assigned map[string]courier.Courier) ports.ParcelView {
	view := ports.ParcelView{
		ID:        p.ID,
		Recipient: p.Recipient,
		Address:   p.Address,
		CourierID: p.CourierID,
		Status:    p.Status.String(),
		CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: p.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if p.CourierID != nil {
		if c, ok := assigned[*p.CourierID]; ok {
			view.Courier = courierBrief(c)
		}
	}
	return view
}

// assignedCourierIDs collects distinct courier ids referenced by the
// given parcels, for one batched identity lookup.
func assignedCourierIDs(parcels []parcel.Parcel) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, p := range parcels {
		if p.CourierID == nil {
			continue
		}
		if _, ok := seen[*p.CourierID]; ok {
			continue
		}
		seen[*p.CourierID] = struct{}{}
		ids = append(ids, *p.CourierID)
	}
	return ids
}
