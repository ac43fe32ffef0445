package tracking

import (
	"context"
	"fmt"
	"sync"

	"courier-track/internal/domain/geo"
	"courier-track/internal/ports"
)

// Projector maintains the latest-position index: one current position
// per courier, derived from the append-only location store. The index
// is a disposable cache with no durability obligations; Rebuild
// reconstructs it from the store at any time.
type Projector struct {
	mu     sync.RWMutex
	latest map[string]geo.StoredSample
}

// NewProjector constructs an empty projector.
func NewProjector() *Projector {
	return &Projector{latest: make(map[string]geo.StoredSample)}
}

// Observe applies one stored sample to the index. The entry for the
// sample's courier is replaced only when none exists yet or the
// existing one was recorded strictly earlier. Samples arriving late
// relative to a newer one already observed are therefore absorbed
// without clobbering the projection: the index always reflects the
// greatest recorded_at seen so far, regardless of arrival order.
func (p *Projector) Observe(s geo.StoredSample) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observeLocked(s)
}

func (p *Projector) observeLocked(s geo.StoredSample) {
	cur, ok := p.latest[s.CourierID]
	if !ok || s.NewerThan(cur.PositionSample) {
		p.latest[s.CourierID] = s
	}
}

// Snapshot returns a point-in-time copy of the index. Later Observe
// calls do not mutate a previously returned snapshot.
func (p *Projector) Snapshot() map[string]geo.StoredSample {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make(map[string]geo.StoredSample, len(p.latest))
	for id, s := range p.latest {
		out[id] = s
	}
	return out
}

// Rebuild discards the index and reconstructs it by scanning the whole
// store with the same keep-newest rule. Used at process start and after
// any suspected inconsistency.
func (p *Projector) Rebuild(ctx context.Context, store ports.LocationStore) error {
	samples, err := store.QueryAll(ctx)
	if err != nil {
		return fmt.Errorf("rebuild latest-position index: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.latest = make(map[string]geo.StoredSample, len(samples))
	for _, s := range samples {
		p.observeLocked(s)
	}
	return nil
}
