package tracking

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"courier-track/internal/domain/geo"
	"courier-track/internal/general/contracts"
	"courier-track/internal/general/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory LocationStore assigning sequential ids.
type fakeStore struct {
	samples   []geo.StoredSample
	appendErr error
	queryErr  error
}

func (s *fakeStore) Append(_ context.Context, sample geo.PositionSample) (geo.StoredSample, error) {
	if s.appendErr != nil {
		return geo.StoredSample{}, s.appendErr
	}
	stored := geo.StoredSample{ID: int64(len(s.samples) + 1), PositionSample: sample}
	s.samples = append(s.samples, stored)
	return stored, nil
}

func (s *fakeStore) QueryAll(_ context.Context) ([]geo.StoredSample, error) {
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	return s.samples, nil
}

// fakePublisher captures broker publishes.
type fakePublisher struct {
	bodies [][]byte
	err    error
}

func (p *fakePublisher) Publish(_, _ string, body []byte) error {
	if p.err != nil {
		return p.err
	}
	p.bodies = append(p.bodies, body)
	return nil
}

func newTestCoordinator(store *fakeStore, pub *fakePublisher) (*Coordinator, *Registry, *Projector) {
	log := logger.New("test")
	projector := NewProjector()
	registry := NewRegistry(log)
	co := NewCoordinator(store, projector, registry, nil, log)
	if pub != nil {
		co.events = pub
	}
	return co, registry, projector
}

func locationPayload(courierID string, lat, lng float64) json.RawMessage {
	raw, _ := json.Marshal(map[string]any{
		"courierId": courierID,
		"latitude":  lat,
		"longitude": lng,
	})
	return raw
}

func TestIngestPersistsProjectsAndFansOut(t *testing.T) {
	store := &fakeStore{}
	pub := &fakePublisher{}
	co, _, projector := newTestCoordinator(store, pub)

	admin := &fakeSubscriber{id: "admin-1"}
	co.HandleJoinAdmin(admin)
	courierConn := &fakeSubscriber{id: "courier-1"}
	co.HandleJoinCourier(courierConn, "c-1")

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	co.now = func() time.Time { return at }

	err := co.HandleLocationUpdate(context.Background(), locationPayload("c-1", 41.31, 69.24))
	require.NoError(t, err)

	// persisted with the server clock
	require.Len(t, store.samples, 1)
	assert.Equal(t, "c-1", store.samples[0].CourierID)
	assert.Equal(t, at, store.samples[0].RecordedAt)

	// projected
	snap := projector.Snapshot()
	require.Contains(t, snap, "c-1")
	assert.Equal(t, int64(1), snap["c-1"].ID)

	// fanned out to the admin channel only
	require.Len(t, admin.received, 1)
	evt, ok := admin.received[0].(contracts.WSDeliveryLocationUpdate)
	require.True(t, ok)
	assert.Equal(t, contracts.EventDeliveryLocationUpdate, evt.Type)
	assert.Equal(t, "c-1", evt.CourierID)
	assert.Equal(t, 41.31, evt.Latitude)
	assert.Equal(t, at, evt.Timestamp)
	assert.Empty(t, courierConn.received)

	// mirrored onto the broker
	require.Len(t, pub.bodies, 1)
	var msg contracts.LocationBroadcast
	require.NoError(t, json.Unmarshal(pub.bodies[0], &msg))
	assert.Equal(t, "c-1", msg.CourierID)
	assert.Equal(t, "dispatch-service", msg.Producer)
	assert.NotEmpty(t, msg.CorrelationID)
}

func TestIngestAssignsServerClockOverDeviceTime(t *testing.T) {
	store := &fakeStore{}
	co, _, _ := newTestCoordinator(store, nil)

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	co.now = func() time.Time { return at }

	// device-supplied timestamps are ignored even if present
	raw, _ := json.Marshal(map[string]any{
		"courierId": "c-1",
		"latitude":  41.31,
		"longitude": 69.24,
		"timestamp": "1999-01-01T00:00:00Z",
	})
	require.NoError(t, co.HandleLocationUpdate(context.Background(), raw))

	require.Len(t, store.samples, 1)
	assert.Equal(t, at, store.samples[0].RecordedAt)
}

func TestLateArrivalDoesNotClobberProjection(t *testing.T) {
	store := &fakeStore{}
	co, _, projector := newTestCoordinator(store, nil)

	later := time.Date(2025, 6, 1, 12, 0, 10, 0, time.UTC)
	co.now = func() time.Time { return later }
	require.NoError(t, co.HandleLocationUpdate(context.Background(), locationPayload("c-1", 41.0, 69.0)))

	// clock regression simulates the second sample being stamped earlier
	earlier := later.Add(-5 * time.Second)
	co.now = func() time.Time { return earlier }
	require.NoError(t, co.HandleLocationUpdate(context.Background(), locationPayload("c-1", 42.0, 70.0)))

	// both samples are durable, the projection keeps the newest
	require.Len(t, store.samples, 2)
	got := projector.Snapshot()["c-1"]
	assert.Equal(t, later, got.RecordedAt)
	assert.Equal(t, 41.0, got.Latitude)
}

func TestMalformedPayloadIsDroppedQuietly(t *testing.T) {
	store := &fakeStore{}
	co, _, projector := newTestCoordinator(store, nil)

	admin := &fakeSubscriber{id: "admin-1"}
	co.HandleJoinAdmin(admin)

	cases := map[string]string{
		"not json":          `{"courierId": "c-1",`,
		"missing courierId": `{"latitude": 41.0, "longitude": 69.0}`,
		"empty courierId":   `{"courierId": "", "latitude": 41.0, "longitude": 69.0}`,
		"missing latitude":  `{"courierId": "c-1", "longitude": 69.0}`,
		"missing longitude": `{"courierId": "c-1", "latitude": 41.0}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			err := co.HandleLocationUpdate(context.Background(), json.RawMessage(raw))
			assert.ErrorIs(t, err, ErrMalformedPayload)
		})
	}

	assert.Empty(t, store.samples)
	assert.Empty(t, projector.Snapshot())
	assert.Empty(t, admin.received)
}

func TestZeroCoordinatesAreValid(t *testing.T) {
	store := &fakeStore{}
	co, _, _ := newTestCoordinator(store, nil)

	// null island is a legitimate position, not an absent field
	err := co.HandleLocationUpdate(context.Background(), locationPayload("c-1", 0, 0))
	require.NoError(t, err)
	require.Len(t, store.samples, 1)
}

func TestStoreFailureDropsSampleWithoutFanOut(t *testing.T) {
	store := &fakeStore{appendErr: errors.New("connection refused")}
	pub := &fakePublisher{}
	co, _, projector := newTestCoordinator(store, pub)

	admin := &fakeSubscriber{id: "admin-1"}
	co.HandleJoinAdmin(admin)

	// the error is terminal for the sample, not for the caller
	err := co.HandleLocationUpdate(context.Background(), locationPayload("c-1", 41.31, 69.24))
	assert.NoError(t, err)

	assert.Empty(t, projector.Snapshot())
	assert.Empty(t, admin.received)
	assert.Empty(t, pub.bodies)
}

func TestIngestWithoutBrokerConfigured(t *testing.T) {
	store := &fakeStore{}
	co, _, _ := newTestCoordinator(store, nil)

	assert.NotPanics(t, func() {
		require.NoError(t, co.HandleLocationUpdate(context.Background(), locationPayload("c-1", 41.31, 69.24)))
	})
}

func TestBrokerFailureDoesNotAffectIngestion(t *testing.T) {
	store := &fakeStore{}
	pub := &fakePublisher{err: errors.New("channel closed")}
	co, _, projector := newTestCoordinator(store, pub)

	admin := &fakeSubscriber{id: "admin-1"}
	co.HandleJoinAdmin(admin)

	require.NoError(t, co.HandleLocationUpdate(context.Background(), locationPayload("c-1", 41.31, 69.24)))

	// dashboard fan-out and persistence are unaffected by broker egress
	assert.Len(t, store.samples, 1)
	assert.Len(t, admin.received, 1)
	assert.Contains(t, projector.Snapshot(), "c-1")
}

func TestOptionalAccuracyAndSpeedSurviveIngestion(t *testing.T) {
	store := &fakeStore{}
	co, _, _ := newTestCoordinator(store, nil)

	raw, _ := json.Marshal(map[string]any{
		"courierId": "c-1",
		"latitude":  41.31,
		"longitude": 69.24,
		"accuracy":  5.5,
		"speed":     12.0,
	})
	require.NoError(t, co.HandleLocationUpdate(context.Background(), raw))

	require.Len(t, store.samples, 1)
	require.NotNil(t, store.samples[0].Accuracy)
	assert.Equal(t, 5.5, *store.samples[0].Accuracy)
	require.NotNil(t, store.samples[0].Speed)
	assert.Equal(t, 12.0, *store.samples[0].Speed)
}
