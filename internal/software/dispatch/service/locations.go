package service

import (
	"context"
	"sort"
	"time"

	"courier-track/internal/domain/courier"
	"courier-track/internal/domain/geo"
	"courier-track/internal/ports"
)

// LatestLocations returns one entry per courier who has ever reported
// a position: the newest sample, merged with the courier's identity.
// The in-memory projection serves the read; when it is empty (fresh
// process, rebuild failed at startup) the store is reduced directly so
// the endpoint stays correct while the index catches up.
func (service *dispatchService) LatestLocations(ctx context.Context) ([]ports.CourierLatest, error) {
	latest := service.projector.Snapshot()
	if len(latest) == 0 {
		reduced, err := service.reduceFromStore(ctx)
		if err != nil {
			service.logger.Error(ctx, "latest_locations_failed", "Failed to reduce location store", err, nil)
			return nil, err
		}
		latest = reduced
	}

	ids := make([]string, 0, len(latest))
	for id := range latest {
		ids = append(ids, id)
	}

	var identities map[string]courier.Courier
	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		var err error
		identities, err = service.couriers.GetByIDs(txCtx, ids)
		return err
	})
	if err != nil {
		service.logger.Error(ctx, "latest_locations_failed", "Failed to join courier identities", err, nil)
		return nil, err
	}

	out := make([]ports.CourierLatest, 0, len(latest))
	for id, s := range latest {
		row := ports.CourierLatest{
			CourierID:  id,
			Latitude:   s.Latitude,
			Longitude:  s.Longitude,
			Accuracy:   s.Accuracy,
			Speed:      s.Speed,
			RecordedAt: s.RecordedAt,
		}
		if c, ok := identities[id]; ok {
			row.Courier = courierBrief(c)
		}
		out = append(out, row)
	}

	// map iteration order is random; keep the response stable
	sort.Slice(out, func(i, j int) bool { return out[i].CourierID < out[j].CourierID })

	return out, nil
}

// reduceFromStore computes the newest sample per courier straight from
// the durable log, with the same keep-newest rule as the projection.
func (service *dispatchService) reduceFromStore(ctx context.Context) (map[string]geo.StoredSample, error) {
	samples, err := service.store.QueryAll(ctx)
	if err != nil {
		return nil, err
	}

	latest := make(map[string]geo.StoredSample)
	for _, s := range samples {
		cur, ok := latest[s.CourierID]
		if !ok || s.NewerThan(cur.PositionSample) {
			latest[s.CourierID] = s
		}
	}
	return latest, nil
}

// MapData serves the legacy dashboard bootstrap payload: every parcel
// with its assigned courier, plus a server timestamp.
func (service *dispatchService) MapData(ctx context.Context) (ports.MapData, error) {
	parcels, err := service.ListParcels(ctx)
	if err != nil {
		return ports.MapData{}, err
	}

	return ports.MapData{
		Message:   "Map data endpoint",
		Parcels:   parcels,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}, nil
}
