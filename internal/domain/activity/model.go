// Package activity defines the maintenance-activity resource and its store
// profile.
package activity

import (
	"marketdesk/internal/gateway"
	"marketdesk/internal/wire"
)

// Status is the lifecycle state of an activity.
type Status string

const (
	StatusPlanned    Status = "Planned"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
	StatusOverdue    Status = "Overdue"
)

// Frequency is how often a recurring activity is scheduled.
type Frequency string

const (
	FrequencyDaily     Frequency = "Daily"
	FrequencyWeekly    Frequency = "Weekly"
	FrequencyMonthly   Frequency = "Monthly"
	FrequencyQuarterly Frequency = "Quarterly"
	FrequencyYearly    Frequency = "Yearly"
	FrequencyAdHoc     Frequency = "Ad Hoc"
)

// Statuses lists every status value, in display order.
func Statuses() []Status {
	return []Status{StatusPlanned, StatusInProgress, StatusCompleted, StatusOverdue}
}

// Frequencies lists every frequency value, in display order.
func Frequencies() []Frequency {
	return []Frequency{
		FrequencyDaily, FrequencyWeekly, FrequencyMonthly,
		FrequencyQuarterly, FrequencyYearly, FrequencyAdHoc,
	}
}

// Activity is one scheduled maintenance activity. The identifier is assigned
// by the backend and immutable afterwards. Overdue status is recomputed
// server-side, which is why update responses are taken as canonical.
type Activity struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	ScheduledTime wire.Time  `json:"scheduledTime"`
	Frequency     Frequency  `json:"frequency"`
	Status        Status     `json:"status"`
	MarketID      string     `json:"marketId,omitempty"`
	LastCompleted *wire.Time `json:"lastCompleted,omitempty"`
	CreatedAt     wire.Time  `json:"createdAt"`
	UpdatedAt     wire.Time  `json:"updatedAt"`
}

// CreateRequest is the payload for creating an activity. Status defaults to
// Planned when empty.
type CreateRequest struct {
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	ScheduledTime wire.Time `json:"scheduledTime"`
	Frequency     Frequency `json:"frequency"`
	Status        Status    `json:"status,omitempty"`
	MarketID      string    `json:"marketId,omitempty"`
}

// UpdateRequest is a partial update; nil fields are left untouched.
type UpdateRequest struct {
	Name          *string    `json:"name,omitempty"`
	Description   *string    `json:"description,omitempty"`
	ScheduledTime *wire.Time `json:"scheduledTime,omitempty"`
	Frequency     *Frequency `json:"frequency,omitempty"`
	Status        *Status    `json:"status,omitempty"`
	MarketID      *string    `json:"marketId,omitempty"`
	LastCompleted *wire.Time `json:"lastCompleted,omitempty"`
}

// Filter keys accepted by the activities collection.
const (
	FilterStatus    gateway.FilterKey = "status"
	FilterFrequency gateway.FilterKey = "frequency"
	FilterMarket    gateway.FilterKey = "marketId"
)
