package courier

import (
	"errors"
	"strings"
	"time"
)

// Courier is the domain entity corresponding to a row in the `users`
// table. Admin accounts live in the same table with RoleAdmin.
type Courier struct {
	ID        string
	Username  string
	Name      string
	Role      Role
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

var (
	ErrEmptyUsername = errors.New("username cannot be empty")
	ErrEmptyName     = errors.New("name cannot be empty")
	ErrNotFound      = errors.New("courier not found")
)

// New constructs a courier account with sane defaults: RoleCourier and
// StatusOffline until the courier reports in.
func New(username, name string) (*Courier, error) {
	now := time.Now().UTC()
	c := &Courier{
		Username:  strings.TrimSpace(username),
		Name:      strings.TrimSpace(name),
		Role:      RoleCourier,
		Status:    StatusOffline,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks invariants of the Courier entity.
func (c *Courier) Validate() error {
	if strings.TrimSpace(c.Username) == "" {
		return ErrEmptyUsername
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if !c.Role.Valid() {
		return ErrInvalidRole
	}
	if !c.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}
