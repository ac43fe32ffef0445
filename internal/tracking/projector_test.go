package tracking

import (
	"context"
	"testing"
	"time"

	"courier-track/internal/domain/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleAt(courierID string, recordedAt time.Time, id int64) geo.StoredSample {
	return geo.StoredSample{
		ID: id,
		PositionSample: geo.PositionSample{
			CourierID:  courierID,
			Latitude:   41.31,
			Longitude:  69.24,
			RecordedAt: recordedAt,
		},
	}
}

func TestProjectorKeepsNewestSample(t *testing.T) {
	p := NewProjector()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	p.Observe(sampleAt("c-1", base.Add(2*time.Second), 2))
	// arrives late, recorded earlier
	p.Observe(sampleAt("c-1", base, 1))

	got := p.Snapshot()["c-1"]
	assert.Equal(t, int64(2), got.ID)
	assert.Equal(t, base.Add(2*time.Second), got.RecordedAt)
}

func TestProjectorEqualTimestampDoesNotReplace(t *testing.T) {
	p := NewProjector()
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	p.Observe(sampleAt("c-1", at, 1))
	p.Observe(sampleAt("c-1", at, 2))

	assert.Equal(t, int64(1), p.Snapshot()["c-1"].ID)
}

func TestProjectorTracksCouriersIndependently(t *testing.T) {
	p := NewProjector()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	p.Observe(sampleAt("c-1", base, 1))
	p.Observe(sampleAt("c-2", base.Add(time.Minute), 2))
	p.Observe(sampleAt("c-1", base.Add(2*time.Minute), 3))

	snap := p.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, int64(3), snap["c-1"].ID)
	assert.Equal(t, int64(2), snap["c-2"].ID)
}

func TestProjectorSnapshotIsIsolated(t *testing.T) {
	p := NewProjector()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	p.Observe(sampleAt("c-1", base, 1))
	snap := p.Snapshot()

	p.Observe(sampleAt("c-1", base.Add(time.Second), 2))

	assert.Equal(t, int64(1), snap["c-1"].ID)
	assert.Equal(t, int64(2), p.Snapshot()["c-1"].ID)
}

func TestProjectorRebuildReducesStore(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{
		samples: []geo.StoredSample{
			sampleAt("c-1", base.Add(time.Minute), 2),
			sampleAt("c-1", base, 1),
			sampleAt("c-2", base, 3),
		},
	}

	p := NewProjector()
	// stale entry that must be discarded by the rebuild
	p.Observe(sampleAt("c-3", base, 9))

	require.NoError(t, p.Rebuild(context.Background(), store))

	snap := p.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, int64(2), snap["c-1"].ID)
	assert.Equal(t, int64(3), snap["c-2"].ID)
	assert.NotContains(t, snap, "c-3")
}

func TestProjectorRebuildPropagatesStoreError(t *testing.T) {
	p := NewProjector()
	store := &fakeStore{queryErr: assert.AnError}

	err := p.Rebuild(context.Background(), store)
	assert.ErrorIs(t, err, assert.AnError)
}
