package tracking

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"courier-track/internal/domain/geo"
	"courier-track/internal/general/contracts"
	"courier-track/internal/general/logger"
	"courier-track/internal/ports"

	"github.com/google/uuid"
)

// ErrMalformedPayload is returned when an inbound location event lacks
// the courier id or either coordinate. The transport is fire-and-forget
// so the error is surfaced to the caller for logging only, never to the
// sending client, and never closes the connection.
var ErrMalformedPayload = errors.New("location update missing courier id or coordinates")

const producerName = "dispatch-service"

// Coordinator is the facade transport connections talk to: it accepts
// join requests, ingests position samples, and fans enriched events out
// to the admin channel. Ingestion is best effort at every hop; an error
// is terminal for that single event and never escalates to the
// connection or to other couriers' events.
type Coordinator struct {
	store     ports.LocationStore
	projector *Projector
	registry  *Registry
	events    ports.EventPublisher // optional broker egress, may be nil
	logger    *logger.Logger

	now func() time.Time
}

// NewCoordinator wires the ingestion facade. events may be nil when no
// broker egress is configured.
func NewCoordinator(store ports.LocationStore, projector *Projector, registry *Registry, events ports.EventPublisher, log *logger.Logger) *Coordinator {
	return &Coordinator{
		store:     store,
		projector: projector,
		registry:  registry,
		events:    events,
		logger:    log,
		now:       time.Now,
	}
}

// HandleJoinCourier subscribes the connection to its courier-scoped
// channel. The claimed courier id is taken at face value; there is no
// binding check between connection and courier identity.
func (co *Coordinator) HandleJoinCourier(sub Subscriber, courierID string) {
	co.registry.Join(sub, CourierChannel(courierID))
}

// HandleJoinAdmin subscribes the connection to the admin channel.
func (co *Coordinator) HandleJoinAdmin(sub Subscriber) {
	co.registry.Join(sub, AdminChannel)
}

// HandleDisconnect removes the connection from every channel. Invoked
// by the transport on any termination, normal or abnormal.
func (co *Coordinator) HandleDisconnect(sub Subscriber) {
	co.registry.Leave(sub)
}

// HandleLocationUpdate ingests one raw location event: validate,
// timestamp, persist, project, fan out. On a store failure the sample
// is dropped from both persistence and the real-time path; the caller
// is not told to retry and the admin dashboards simply miss one update.
func (co *Coordinator) HandleLocationUpdate(ctx context.Context, raw json.RawMessage) error {
	var data contracts.LocationUpdateData
	if err := json.Unmarshal(raw, &data); err != nil {
		co.logger.Error(ctx, "location_update_malformed", "Failed to parse location event", err, nil)
		return ErrMalformedPayload
	}
	if data.CourierID == nil || *data.CourierID == "" || data.Latitude == nil || data.Longitude == nil {
		co.logger.Error(ctx, "location_update_malformed", "Location event missing required fields", ErrMalformedPayload,
			map[string]any{"raw": string(raw)})
		return ErrMalformedPayload
	}

	sample, err := geo.NewPositionSample(*data.CourierID, *data.Latitude, *data.Longitude, data.Accuracy, data.Speed)
	if err != nil {
		co.logger.Error(ctx, "location_update_malformed", "Location event rejected", err, nil)
		return ErrMalformedPayload
	}
	// server clock, never the courier clock
	sample.RecordedAt = co.now().UTC()

	ctx = co.logger.WithCourierID(ctx, sample.CourierID)

	stored, err := co.store.Append(ctx, sample)
	if err != nil {
		// deliberate: no retry, no client notification, no fan-out
		co.logger.Error(ctx, "location_store_failed", "Durable write failed; sample dropped", err,
			map[string]any{"latitude": sample.Latitude, "longitude": sample.Longitude})
		return nil
	}

	co.projector.Observe(stored)

	delivered := co.registry.Publish(AdminChannel, contracts.WSDeliveryLocationUpdate{
		Type:      contracts.EventDeliveryLocationUpdate,
		CourierID: stored.CourierID,
		Latitude:  stored.Latitude,
		Longitude: stored.Longitude,
		Timestamp: stored.RecordedAt,
		Accuracy:  stored.Accuracy,
		Speed:     stored.Speed,
	})

	co.publishBroadcast(ctx, stored)

	co.logger.Info(ctx, "location_ingested", "Position sample recorded and fanned out",
		map[string]any{
			"record_id":   stored.ID,
			"latitude":    stored.Latitude,
			"longitude":   stored.Longitude,
			"admin_conns": delivered,
		})

	return nil
}

// publishBroadcast mirrors the sample onto the broker fanout exchange
// so other backend services can consume the stream. Best effort.
func (co *Coordinator) publishBroadcast(ctx context.Context, stored geo.StoredSample) {
	if co.events == nil {
		return
	}

	msg := contracts.LocationBroadcast{
		CourierID: stored.CourierID,
		Latitude:  stored.Latitude,
		Longitude: stored.Longitude,
		Accuracy:  stored.Accuracy,
		Speed:     stored.Speed,
		Timestamp: stored.RecordedAt,
		Envelope: contracts.Envelope{
			CorrelationID: uuid.NewString(),
			Producer:      producerName,
			SentAt:        co.now().UTC(),
		},
	}

	body, err := json.Marshal(msg)
	if err != nil {
		co.logger.Error(ctx, "location_broadcast_marshal_failed", "Failed to marshal broadcast message", err, nil)
		return
	}

	if err := co.events.Publish(contracts.ExchangeLocationFanout, "", body); err != nil {
		co.logger.Error(ctx, "location_broadcast_failed", "Failed to publish location broadcast", err, nil)
	}
}
