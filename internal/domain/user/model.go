// Package user defines the console user resource and its store profile.
package user

import (
	"marketdesk/internal/gateway"
	"marketdesk/internal/wire"
)

// Role is a user's access role within the console.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleStaff   Role = "staff"
)

// Status is a user's account state.
type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
)

// Info holds a user's personal details.
type Info struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Contact holds a user's contact details.
type Contact struct {
	Phone string `json:"phone"`
}

// User is one console account.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Status    Status    `json:"status"`
	Info      Info      `json:"info"`
	Contact   Contact   `json:"contact"`
	CreatedAt wire.Time `json:"createdAt"`
}

// CreateRequest is the payload for provisioning a user.
type CreateRequest struct {
	Email   string  `json:"email"`
	Role    Role    `json:"role"`
	Info    Info    `json:"info"`
	Contact Contact `json:"contact"`
}

// UpdateRequest is a partial update; nil fields are left untouched.
type UpdateRequest struct {
	Email   *string  `json:"email,omitempty"`
	Role    *Role    `json:"role,omitempty"`
	Status  *Status  `json:"status,omitempty"`
	Info    *Info    `json:"info,omitempty"`
	Contact *Contact `json:"contact,omitempty"`
}

// Filter keys accepted by the users collection.
const (
	FilterRole   gateway.FilterKey = "role"
	FilterStatus gateway.FilterKey = "status"
)
