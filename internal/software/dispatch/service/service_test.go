package service

import (
	"context"
	"errors"
	"testing"

	"courier-track/internal/domain/courier"
	"courier-track/internal/domain/geo"
	"courier-track/internal/domain/parcel"

	"github.com/stretchr/testify/require"
)

// ----- in-memory fakes shared by the service tests -----

// fakeUow runs the function directly; there is no real transaction.
type fakeUow struct{}

func (fakeUow) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeCourierRepo struct {
	byID          map[string]courier.Courier
	byCredentials map[string]courier.Courier // "username:password"
	created       []courier.Courier
	statusUpdates map[string]courier.Status
	err           error
}

func newFakeCourierRepo() *fakeCourierRepo {
	return &fakeCourierRepo{
		byID:          make(map[string]courier.Courier),
		byCredentials: make(map[string]courier.Courier),
		statusUpdates: make(map[string]courier.Status),
	}
}

func (r *fakeCourierRepo) Create(_ context.Context, c *courier.Courier, _ string) error {
	if r.err != nil {
		return r.err
	}
	if c.ID == "" {
		c.ID = "generated-id"
	}
	r.created = append(r.created, *c)
	r.byID[c.ID] = *c
	return nil
}

func (r *fakeCourierRepo) GetByCredentials(_ context.Context, username, password string) (*courier.Courier, error) {
	if r.err != nil {
		return nil, r.err
	}
	c, ok := r.byCredentials[username+":"+password]
	if !ok {
		return nil, courier.ErrNotFound
	}
	return &c, nil
}

func (r *fakeCourierRepo) ListByRole(_ context.Context, role courier.Role) ([]courier.Courier, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []courier.Courier
	for _, c := range r.byID {
		if c.Role == role {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCourierRepo) ListAvailable(_ context.Context) ([]courier.Courier, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []courier.Courier
	for _, c := range r.byID {
		if c.Role == courier.RoleCourier && c.Status == courier.StatusAvailable {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCourierRepo) GetByIDs(_ context.Context, ids []string) (map[string]courier.Courier, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := make(map[string]courier.Courier, len(ids))
	for _, id := range ids {
		if c, ok := r.byID[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

func (r *fakeCourierRepo) UpdateStatus(_ context.Context, id string, status courier.Status) (*courier.Courier, error) {
	if r.err != nil {
		return nil, r.err
	}
	c, ok := r.byID[id]
	if !ok {
		return nil, courier.ErrNotFound
	}
	c.Status = status
	r.byID[id] = c
	r.statusUpdates[id] = status
	return &c, nil
}

type fakeParcelRepo struct {
	byID map[string]parcel.Parcel
	err  error
}

func newFakeParcelRepo() *fakeParcelRepo {
	return &fakeParcelRepo{byID: make(map[string]parcel.Parcel)}
}

func (r *fakeParcelRepo) Create(_ context.Context, p *parcel.Parcel) error {
	if r.err != nil {
		return r.err
	}
	if p.ID == "" {
		p.ID = "parcel-id"
	}
	r.byID[p.ID] = *p
	return nil
}

func (r *fakeParcelRepo) List(_ context.Context) ([]parcel.Parcel, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []parcel.Parcel
	for _, p := range r.byID {
		out = append(out, p)
	}
	return out, nil
}

func (r *fakeParcelRepo) Get(_ context.Context, id string) (*parcel.Parcel, error) {
	if r.err != nil {
		return nil, r.err
	}
	p, ok := r.byID[id]
	if !ok {
		return nil, parcel.ErrNotFound
	}
	return &p, nil
}

func (r *fakeParcelRepo) Update(_ context.Context, id string, upd parcel.Update) (*parcel.Parcel, error) {
	if r.err != nil {
		return nil, r.err
	}
	p, ok := r.byID[id]
	if !ok {
		return nil, parcel.ErrNotFound
	}
	if upd.Recipient != nil {
		p.Recipient = *upd.Recipient
	}
	if upd.Address != nil {
		p.Address = *upd.Address
	}
	if upd.CourierID != nil {
		p.CourierID = upd.CourierID
	}
	if upd.Status != nil {
		p.Status = *upd.Status
	}
	r.byID[id] = p
	return &p, nil
}

func (r *fakeParcelRepo) UpdateStatus(ctx context.Context, id string, status parcel.Status) (*parcel.Parcel, error) {
	return r.Update(ctx, id, parcel.Update{Status: &status})
}

func (r *fakeParcelRepo) Assign(ctx context.Context, id, courierID string) (*parcel.Parcel, error) {
	status := parcel.StatusAssigned
	return r.Update(ctx, id, parcel.Update{CourierID: &courierID, Status: &status})
}

func (r *fakeParcelRepo) Delete(_ context.Context, id string) error {
	if r.err != nil {
		return r.err
	}
	if _, ok := r.byID[id]; !ok {
		return parcel.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

type fakeLocationStore struct {
	samples []geo.StoredSample
	err     error
}

func (s *fakeLocationStore) Append(_ context.Context, sample geo.PositionSample) (geo.StoredSample, error) {
	if s.err != nil {
		return geo.StoredSample{}, s.err
	}
	stored := geo.StoredSample{ID: int64(len(s.samples) + 1), PositionSample: sample}
	s.samples = append(s.samples, stored)
	return stored, nil
}

func (s *fakeLocationStore) QueryAll(_ context.Context) ([]geo.StoredSample, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.samples, nil
}

var errRepoDown = errors.New("repo down")

func mustParcel(t *testing.T, recipient, address string, courierID *string) *parcel.Parcel {
	t.Helper()
	p, err := parcel.New(recipient, address, courierID)
	require.NoError(t, err)
	return p
}
