package courier

import (
	"errors"
	"strings"
)

// Role is a user role as stored in the `users` table. The dispatch
// domain calls couriers "delivery" people, which is also the wire value.
type Role string

const (
	RoleCourier Role = "delivery"
	RoleAdmin   Role = "admin"
)

var ErrInvalidRole = errors.New("invalid role")

// ParseRole normalizes (lowercases+trims) and validates a role string.
func ParseRole(s string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(s)))
	if role.Valid() {
		return role, nil
	}
	return "", ErrInvalidRole
}

// Valid reports whether role is one of the allowed role constants.
func (role Role) Valid() bool {
	switch role {
	case RoleCourier, RoleAdmin:
		return true
	default:
		return false
	}
}

// String returns the string representation of the Role.
func (role Role) String() string {
	return string(role)
}

func (role Role) IsCourier() bool { return role == RoleCourier }
func (role Role) IsAdmin() bool   { return role == RoleAdmin }
