package domain

import (
	"errors"
	"time"
)

// Officer is a police officer or staff member who may call the assistant. Officers are never hard-deleted;
// Active is toggled by an administrator.
type Officer struct {
	ID          string
	BadgeNumber string
	Name        string
	Role        Role
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Role string

const (
	RoleOfficer    Role = "officer"
	RoleSupervisor Role = "supervisor"
	RoleAdmin      Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleOfficer, RoleSupervisor, RoleAdmin:
		return true
	}
	return false
}

// Validate validates the officer for persistence. Returns an error describing the first validation failure.
func (o *Officer) Validate() error {
	if o.ID == "" {
		return errors.New("id is required")
	}
	if o.BadgeNumber == "" {
		return errors.New("badge number is required")
	}
	if o.Role == "" {
		o.Role = RoleOfficer
	}
	if !o.Role.Valid() {
		return errors.New("role must be officer, supervisor or admin")
	}
	return nil
}
