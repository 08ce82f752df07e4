// Package market defines the market resource (a managed property with its
// buildings and stalls) and its store profile.
package market

import "marketdesk/internal/wire"

// Address locates a market.
type Address struct {
	StreetAddress string `json:"streetAddress"`
	Town          string `json:"town"`
	LGA           string `json:"lga"`
	State         string `json:"state"`
}

// Building is one structure on a market's grounds.
type Building struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Floors int    `json:"floors,omitempty"`
}

// Stall is one rentable unit within a market.
type Stall struct {
	ID         string `json:"id"`
	Code       string `json:"code"`
	BuildingID string `json:"buildingId,omitempty"`
	Occupied   bool   `json:"occupied"`
}

// Market is one managed market property.
type Market struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Address   Address    `json:"address"`
	Buildings []Building `json:"buildings,omitempty"`
	Stalls    []Stall    `json:"stalls,omitempty"`
	CreatedAt wire.Time  `json:"createdAt"`
	UpdatedAt wire.Time  `json:"updatedAt"`
}

// CreateRequest is the payload for registering a market.
type CreateRequest struct {
	Name    string  `json:"name"`
	Address Address `json:"address"`
}

// UpdateRequest is a partial update; nil fields are left untouched.
type UpdateRequest struct {
	Name    *string  `json:"name,omitempty"`
	Address *Address `json:"address,omitempty"`
}
