package user

import (
	"log/slog"

	"marketdesk/internal/gateway"
	"marketdesk/internal/store"
)

// Store is the users collection store.
type Store = store.Store[User, CreateRequest, UpdateRequest]

// Gateway is the remote gateway for users.
type Gateway = gateway.Gateway[User, CreateRequest, UpdateRequest]

// NewStore creates the users store over the given gateway.
func NewStore(gw Gateway, logger *slog.Logger, opts ...store.Option) *Store {
	return store.New(gw, Profile(), logger, opts...)
}

// Profile declares how the generic store reads users. Search spans the
// identifier, email, role, status, names, and phone, matching the columns
// the users table shows.
func Profile() store.Profile[User] {
	return store.Profile[User]{
		Resource: "users",
		ID:       func(u User) string { return u.ID },
		SearchText: func(u User) []string {
			return []string{
				u.ID,
				u.Email,
				string(u.Role),
				string(u.Status),
				u.Info.FirstName,
				u.Info.LastName,
				u.Contact.Phone,
			}
		},
		Field: func(u User, key gateway.FilterKey) (string, bool) {
			switch key {
			case FilterRole:
				return string(u.Role), true
			case FilterStatus:
				return string(u.Status), true
			}
			return "", false
		},
	}
}
