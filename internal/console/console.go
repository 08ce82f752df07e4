// Package console wires one collection store per resource type over a shared
// REST client. Stores are constructed once at application start and passed
// by reference to consumers; there is no global store state.
package console

import (
	"log/slog"
	"time"

	"marketdesk/internal/config"
	"marketdesk/internal/domain/activity"
	"marketdesk/internal/domain/market"
	"marketdesk/internal/domain/user"
	"marketdesk/internal/gateway"
	"marketdesk/internal/store"
)

// Console holds the per-resource stores of one console session.
type Console struct {
	Activities *activity.Store
	Markets    *market.Store
	Users      *user.Store
}

// New builds the REST gateways and stores from configuration. Extra client
// options (request decorators, a custom http.Client) are appended after the
// configured ones.
func New(cfg config.Config, logger *slog.Logger, clientOpts ...gateway.ClientOption) *Console {
	opts := append([]gateway.ClientOption{
		gateway.WithTimeout(time.Duration(cfg.API.TimeoutSeconds) * time.Second),
	}, clientOpts...)
	client := gateway.NewClient(cfg.API.BaseURL, logger, opts...)

	pageSize := store.WithPageSize(cfg.API.PageSize)

	activities := gateway.NewCompletableResource[activity.Activity, activity.CreateRequest, activity.UpdateRequest](client, "/activities")
	markets := gateway.NewResource[market.Market, market.CreateRequest, market.UpdateRequest](client, "/properties/markets")
	users := gateway.NewResource[user.User, user.CreateRequest, user.UpdateRequest](client, "/users")

	return &Console{
		Activities: activity.NewStore(activities, logger, pageSize),
		Markets:    market.NewStore(markets, logger, pageSize),
		Users:      user.NewStore(users, logger, pageSize),
	}
}
