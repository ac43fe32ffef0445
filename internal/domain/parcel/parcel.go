package parcel

import (
	"errors"
	"strings"
	"time"
)

// Parcel is the domain entity corresponding to the `parcels` table.
// CourierID is nil until the parcel is assigned.
type Parcel struct {
	ID        string
	Recipient string
	Address   string
	CourierID *string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

var (
	ErrEmptyRecipient = errors.New("recipient cannot be empty")
	ErrEmptyAddress   = errors.New("address cannot be empty")
	ErrNotFound       = errors.New("parcel not found")
)

// New constructs a pending parcel.
func New(recipient, address string, courierID *string) (*Parcel, error) {
	now := time.Now().UTC()
	p := &Parcel{
		Recipient: strings.TrimSpace(recipient),
		Address:   strings.TrimSpace(address),
		CourierID: courierID,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks invariants of the Parcel entity.
func (p *Parcel) Validate() error {
	if strings.TrimSpace(p.Recipient) == "" {
		return ErrEmptyRecipient
	}
	if strings.TrimSpace(p.Address) == "" {
		return ErrEmptyAddress
	}
	if !p.Status.Valid() {
		return ErrInvalidStatus
	}
	if p.CourierID != nil && strings.TrimSpace(*p.CourierID) == "" {
		return errors.New("courier_id cannot be blank when set")
	}
	return nil
}

// Update carries the optional fields of a partial parcel update. Nil
// fields are left untouched.
type Update struct {
	Recipient *string
	Address   *string
	CourierID *string
	Status    *Status
}
