package contracts

// Exchanges
const (
	ExchangeLocationFanout = "location_fanout"
)

// Queues
const (
	QueueLocationUpdates = "location_updates_dispatch"
)

// WebSocket event types (client -> server)
const (
	EventJoinCourierChannel = "join-courier-channel"
	EventJoinAdminChannel   = "join-admin-channel"
	EventLocationUpdate     = "location-update"
)

// WebSocket event types (server -> client, admin channel only)
const (
	EventDeliveryLocationUpdate = "delivery-location-update"
)
