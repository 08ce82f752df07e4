// Package gateway defines the remote resource gateway contract consumed by
// the collection stores, plus the HTTP implementation of it.
package gateway

import (
	"context"
	"time"
)

// FilterKey identifies one filterable field of a resource ("status",
// "frequency", "marketId", ...). The set of meaningful keys is declared by
// each domain package.
type FilterKey string

// Filters holds the active filter constraints for a collection. A key absent
// from Fields means "no constraint", never "match empty". Date bounds are
// optional; a nil bound leaves that side of the range open.
type Filters struct {
	Fields map[FilterKey]string
	Start  *time.Time
	End    *time.Time
}

// WithField returns a copy of the filters with one equality constraint set.
func (f Filters) WithField(key FilterKey, value string) Filters {
	out := f.clone()
	out.Fields[key] = value
	return out
}

// WithoutField returns a copy of the filters with one constraint removed.
func (f Filters) WithoutField(key FilterKey) Filters {
	out := f.clone()
	delete(out.Fields, key)
	return out
}

// Field reports the constraint for key, if present.
func (f Filters) Field(key FilterKey) (string, bool) {
	v, ok := f.Fields[key]
	return v, ok
}

// IsZero reports whether no constraint of any kind is active.
func (f Filters) IsZero() bool {
	return len(f.Fields) == 0 && f.Start == nil && f.End == nil
}

func (f Filters) clone() Filters {
	out := Filters{
		Fields: make(map[FilterKey]string, len(f.Fields)+1),
		Start:  f.Start,
		End:    f.End,
	}
	for k, v := range f.Fields {
		out.Fields[k] = v
	}
	return out
}

// Query describes one list request: free-text search, filters, and the
// requested page window. Zero Page/Limit leave paging to server defaults.
type Query struct {
	Search  string
	Filters Filters
	Page    int
	Limit   int
}

// Page is the paginated list envelope returned by the backend. Total and
// TotalPages are server-reported; the client never computes them.
type Page[T any] struct {
	Records    []T
	Total      int
	Page       int
	Limit      int
	TotalPages int
}

// Gateway performs the remote operations for one resource type. T is the
// record shape, C the create payload, P the update patch. Implementations
// map wire representations to records at this boundary and return errors
// classifiable via this package's helpers.
type Gateway[T, C, P any] interface {
	List(ctx context.Context, q Query) (Page[T], error)
	GetByID(ctx context.Context, id string) (T, error)
	Create(ctx context.Context, payload C) (T, error)
	Update(ctx context.Context, id string, patch P) (T, error)
	PatchStatus(ctx context.Context, id, status string) (T, error)
	Delete(ctx context.Context, id string) error
}

// Completer is an optional gateway extension for resources with a
// completion operation (activities). When is the completion timestamp; the
// zero value means "now", decided server-side.
type Completer[T any] interface {
	MarkCompleted(ctx context.Context, id string, when time.Time) (T, error)
}

// BulkPatcher is an optional gateway extension for bulk status updates.
// It returns the server-canonical copies of every record that was updated.
type BulkPatcher[T any] interface {
	BulkPatchStatus(ctx context.Context, ids []string, status string) ([]T, error)
}
