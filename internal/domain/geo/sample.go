package geo

import (
	"errors"
	"strings"
	"time"
)

// PositionSample is one courier's position at a point in time.
// Coordinates are accepted as given; no range validation happens at
// this layer. RecordedAt is assigned by the ingestion path (server
// clock), never by the courier device.
type PositionSample struct {
	CourierID  string
	Latitude   float64
	Longitude  float64
	Accuracy   *float64
	Speed      *float64
	RecordedAt time.Time
}

// StoredSample is a PositionSample after a durable write: it carries
// the opaque, monotonically increasing record id the store assigned.
type StoredSample struct {
	ID int64
	PositionSample
}

var ErrMissingCourierID = errors.New("courier id is missing")

// NewPositionSample constructs a sample for the given courier.
func NewPositionSample(courierID string, latitude, longitude float64, accuracy, speed *float64) (PositionSample, error) {
	s := PositionSample{
		CourierID: strings.TrimSpace(courierID),
		Latitude:  latitude,
		Longitude: longitude,
		Accuracy:  accuracy,
		Speed:     speed,
	}
	if s.CourierID == "" {
		return PositionSample{}, ErrMissingCourierID
	}
	return s, nil
}

// NewerThan reports whether s was recorded strictly after other. Used
// by the latest-position projection: equal timestamps do not replace.
func (s PositionSample) NewerThan(other PositionSample) bool {
	return s.RecordedAt.After(other.RecordedAt)
}
