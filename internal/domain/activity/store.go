package activity

import (
	"log/slog"
	"time"

	"marketdesk/internal/gateway"
	"marketdesk/internal/store"
)

// Store is the activities collection store.
type Store = store.Store[Activity, CreateRequest, UpdateRequest]

// Gateway is the remote gateway for activities.
type Gateway = gateway.Gateway[Activity, CreateRequest, UpdateRequest]

// NewStore creates the activities store over the given gateway.
func NewStore(gw Gateway, logger *slog.Logger, opts ...store.Option) *Store {
	return store.New(gw, Profile(), logger, opts...)
}

// Profile declares how the generic store reads activities: search over name
// and description, equality filters on status/frequency/market, range
// filtering over the scheduled time.
func Profile() store.Profile[Activity] {
	return store.Profile[Activity]{
		Resource: "activities",
		ID:       func(a Activity) string { return a.ID },
		SearchText: func(a Activity) []string {
			return []string{a.Name, a.Description}
		},
		Field: func(a Activity, key gateway.FilterKey) (string, bool) {
			switch key {
			case FilterStatus:
				return string(a.Status), true
			case FilterFrequency:
				return string(a.Frequency), true
			case FilterMarket:
				return a.MarketID, true
			}
			return "", false
		},
		Date: func(a Activity) (time.Time, bool) {
			return a.ScheduledTime.Time, !a.ScheduledTime.IsZero()
		},
	}
}
