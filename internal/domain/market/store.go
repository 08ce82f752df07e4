package market

import (
	"log/slog"

	"marketdesk/internal/gateway"
	"marketdesk/internal/store"
)

// Store is the markets collection store.
type Store = store.Store[Market, CreateRequest, UpdateRequest]

// Gateway is the remote gateway for markets.
type Gateway = gateway.Gateway[Market, CreateRequest, UpdateRequest]

// NewStore creates the markets store over the given gateway.
func NewStore(gw Gateway, logger *slog.Logger, opts ...store.Option) *Store {
	return store.New(gw, Profile(), logger, opts...)
}

// Profile declares how the generic store reads markets. Search spans the
// name, the identifier, and the address fields; markets carry no enumerated
// fields and no range-filter date.
func Profile() store.Profile[Market] {
	return store.Profile[Market]{
		Resource: "markets",
		ID:       func(m Market) string { return m.ID },
		SearchText: func(m Market) []string {
			return []string{
				m.Name,
				m.ID,
				m.Address.StreetAddress,
				m.Address.Town,
				m.Address.LGA,
				m.Address.State,
			}
		},
		Field: func(m Market, key gateway.FilterKey) (string, bool) {
			return "", false
		},
	}
}
