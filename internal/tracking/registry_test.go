package tracking

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSubscriber is an in-memory Subscriber capturing delivered events.
type fakeSubscriber struct {
	id       string
	received []any
	sendErr  error
}

func (s *fakeSubscriber) ID() string { return s.id }

func (s *fakeSubscriber) Send(v any) error {
	if s.sendErr != nil {
		return s.sendErr
	}
	s.received = append(s.received, v)
	return nil
}

func TestRegistryJoinIsIdempotent(t *testing.T) {
	reg := NewRegistry(nil)
	sub := &fakeSubscriber{id: "conn-1"}

	reg.Join(sub, AdminChannel)
	reg.Join(sub, AdminChannel)

	delivered := reg.Publish(AdminChannel, "evt")
	assert.Equal(t, 1, delivered)
	assert.Len(t, sub.received, 1)
}

func TestRegistryPublishTargetsOnlyTheChannel(t *testing.T) {
	reg := NewRegistry(nil)
	admin := &fakeSubscriber{id: "admin-1"}
	courierConn := &fakeSubscriber{id: "courier-1"}

	reg.Join(admin, AdminChannel)
	reg.Join(courierConn, CourierChannel("c-1"))

	delivered := reg.Publish(AdminChannel, "evt")

	assert.Equal(t, 1, delivered)
	assert.Len(t, admin.received, 1)
	assert.Empty(t, courierConn.received)
}

func TestRegistryDualMembership(t *testing.T) {
	reg := NewRegistry(nil)
	sub := &fakeSubscriber{id: "conn-1"}

	reg.Join(sub, CourierChannel("c-1"))
	reg.Join(sub, AdminChannel)

	assert.Equal(t, 1, reg.Publish(CourierChannel("c-1"), "a"))
	assert.Equal(t, 1, reg.Publish(AdminChannel, "b"))
	require.Len(t, sub.received, 2)
}

func TestRegistryLeaveRemovesAllMemberships(t *testing.T) {
	reg := NewRegistry(nil)
	sub := &fakeSubscriber{id: "conn-1"}

	reg.Join(sub, AdminChannel)
	reg.Join(sub, CourierChannel("c-1"))
	reg.Leave(sub)

	assert.Zero(t, reg.Publish(AdminChannel, "evt"))
	assert.Zero(t, reg.Publish(CourierChannel("c-1"), "evt"))
	assert.Empty(t, sub.received)
}

func TestRegistryLeaveWithoutJoinIsNoop(t *testing.T) {
	reg := NewRegistry(nil)
	sub := &fakeSubscriber{id: "conn-1"}

	assert.NotPanics(t, func() {
		reg.Leave(sub)
		reg.Leave(sub)
	})
}

func TestRegistryPublishSurvivesSendFailure(t *testing.T) {
	reg := NewRegistry(nil)
	broken := &fakeSubscriber{id: "broken", sendErr: errors.New("write: broken pipe")}
	healthy := &fakeSubscriber{id: "healthy"}

	reg.Join(broken, AdminChannel)
	reg.Join(healthy, AdminChannel)

	delivered := reg.Publish(AdminChannel, "evt")

	assert.Equal(t, 1, delivered)
	assert.Len(t, healthy.received, 1)
}

func TestRegistryPublishToEmptyChannel(t *testing.T) {
	reg := NewRegistry(nil)
	assert.Zero(t, reg.Publish(AdminChannel, "evt"))
}
