package tracking

import (
	"context"
	"sync"

	"courier-track/internal/general/logger"
)

// Subscriber is one live connection as the registry sees it. The
// websocket transport adapts its connections to this interface; tests
// use in-memory fakes.
type Subscriber interface {
	// ID uniquely identifies the connection for the process lifetime.
	ID() string
	// Send delivers one event to the connection. Best effort: an error
	// means this subscriber missed the event, nothing more.
	Send(v any) error
}

// ChannelKey names a logical broadcast group.
type ChannelKey string

// AdminChannel is the single process-wide channel all admin dashboard
// connections share.
const AdminChannel ChannelKey = "admin"

// CourierChannel returns the channel key scoped to one courier.
func CourierChannel(courierID string) ChannelKey {
	return ChannelKey("courier:" + courierID)
}

// Registry tracks which live connection belongs to which channel.
// Channels are created lazily on first join and never destroyed;
// membership simply empties on disconnect.
type Registry struct {
	mu sync.RWMutex

	// members holds, per channel, the subscribers keyed by their id.
	members map[ChannelKey]map[string]Subscriber
	// joined is the reverse index used by Leave.
	joined map[string]map[ChannelKey]struct{}

	logger *logger.Logger
}

// NewRegistry constructs an empty registry.
func NewRegistry(log *logger.Logger) *Registry {
	return &Registry{
		members: make(map[ChannelKey]map[string]Subscriber),
		joined:  make(map[string]map[ChannelKey]struct{}),
		logger:  log,
	}
}

// Join adds sub to the named channel. Joining twice is the same as
// joining once. A connection may hold a courier membership and the
// admin membership at the same time.
func (reg *Registry) Join(sub Subscriber, key ChannelKey) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	ch, ok := reg.members[key]
	if !ok {
		ch = make(map[string]Subscriber)
		reg.members[key] = ch
	}
	ch[sub.ID()] = sub

	keys, ok := reg.joined[sub.ID()]
	if !ok {
		keys = make(map[ChannelKey]struct{})
		reg.joined[sub.ID()] = keys
	}
	keys[key] = struct{}{}

	if reg.logger != nil {
		reg.logger.Info(context.Background(), "channel_joined", "Connection joined channel",
			map[string]any{"connection_id": sub.ID(), "channel": string(key)})
	}
}

// Leave removes sub from every channel it belongs to. Calling it twice,
// or for a connection that never joined anything, is a no-op.
func (reg *Registry) Leave(sub Subscriber) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	keys, ok := reg.joined[sub.ID()]
	if !ok {
		return
	}
	for key := range keys {
		if ch, ok := reg.members[key]; ok {
			delete(ch, sub.ID())
		}
	}
	delete(reg.joined, sub.ID())

	if reg.logger != nil {
		reg.logger.Info(context.Background(), "channels_left", "Connection left all channels",
			map[string]any{"connection_id": sub.ID()})
	}
}

// Publish delivers event to every current member of the named channel.
// Membership is snapshotted at the instant of the call: connections
// joining mid-publish do not retroactively receive the event. Send
// failures are logged and never fail the publish. Returns the number
// of successful deliveries.
func (reg *Registry) Publish(key ChannelKey, event any) int {
	reg.mu.RLock()
	targets := make([]Subscriber, 0, len(reg.members[key]))
	for _, sub := range reg.members[key] {
		targets = append(targets, sub)
	}
	reg.mu.RUnlock()

	delivered := 0
	for _, sub := range targets {
		if err := sub.Send(event); err != nil {
			if reg.logger != nil {
				reg.logger.Error(context.Background(), "publish_send_failed", "Failed to deliver event to channel member", err,
					map[string]any{"connection_id": sub.ID(), "channel": string(key)})
			}
			continue
		}
		delivered++
	}
	return delivered
}
