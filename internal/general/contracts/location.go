package contracts

import "time"

// Envelope adds cross-cutting headers all broker messages may carry.
type Envelope struct {
	CorrelationID string    `json:"correlation_id,omitempty"` // Correlation for tracing across services
	Producer      string    `json:"producer,omitempty"`       // Producer service name, e.g. "dispatch-service"
	SentAt        time.Time `json:"sent_at,omitempty"`        // ISO-8601 send time (UTC)
}

// LocationBroadcast mirrors each ingested position sample onto the
// location fanout exchange for downstream backend consumers. It is a
// best-effort egress, not the dashboard fan-out path.
type LocationBroadcast struct {
	CourierID string    `json:"courier_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Accuracy  *float64  `json:"accuracy,omitempty"`
	Speed     *float64  `json:"speed,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Envelope
}

// ----- WebSocket wire shapes -----

// JoinCourierData is the payload of a join-courier-channel event.
type JoinCourierData struct {
	CourierID string `json:"courierId"`
}

// LocationUpdateData is the raw payload of a location-update event.
// Required fields are pointers so that absence is distinguishable from
// a legitimate zero coordinate.
type LocationUpdateData struct {
	CourierID *string  `json:"courierId"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Accuracy  *float64 `json:"accuracy,omitempty"`
	Speed     *float64 `json:"speed,omitempty"`
}

// WSDeliveryLocationUpdate is pushed to every admin channel member for
// each ingested sample.
type WSDeliveryLocationUpdate struct {
	Type      string    `json:"type"` // always "delivery-location-update"
	CourierID string    `json:"courierId"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
	Accuracy  *float64  `json:"accuracy,omitempty"`
	Speed     *float64  `json:"speed,omitempty"`
}
