package store

import (
	"time"

	"marketdesk/internal/gateway"
)

// Pagination is the paging position of a collection. Total and TotalPages
// are server-reported; only Page is client-driven, and only through a
// successful load.
type Pagination struct {
	Page       int
	Limit      int
	Total      int
	TotalPages int
}

// State is a point-in-time snapshot of a store's collection state. Snapshots
// are copies; mutating one has no effect on the store.
type State[T any] struct {
	Records    []T
	Selected   *T
	IsLoading  bool
	Error      string
	Search     string
	Filters    gateway.Filters
	Pagination Pagination
}

// Profile declares the resource-specific projections the generic store needs:
// how to read a record's identity, which text fields participate in search,
// how filterable fields are read, and which date field range filters apply to.
type Profile[T any] struct {
	// Resource names the collection in log output ("activities", ...).
	Resource string

	// ID returns the record's immutable identifier.
	ID func(T) string

	// SearchText returns the text fields matched by free-text search.
	SearchText func(T) []string

	// Field returns the value of one filterable field, and whether the key
	// is meaningful for this resource.
	Field func(T, gateway.FilterKey) (string, bool)

	// Date returns the record's date used for range filtering. Nil disables
	// range filtering for the resource.
	Date func(T) (time.Time, bool)
}
