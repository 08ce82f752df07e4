package store

import (
	"context"

	"marketdesk/internal/gateway"
)

// NextPage loads the following page with the active search and filters
// carried forward unchanged. A no-op when the server reports no further
// page; totals only ever change through the load response itself.
func (s *Store[T, C, P]) NextPage(ctx context.Context) {
	s.mu.Lock()
	if s.pagination.Page >= s.pagination.TotalPages {
		s.mu.Unlock()
		return
	}
	q := gateway.Query{
		Search:  s.search,
		Filters: cloneFilters(s.filters),
		Page:    s.pagination.Page + 1,
		Limit:   s.pagination.Limit,
	}
	s.mu.Unlock()

	s.Load(ctx, q)
}

// PreviousPage loads the preceding page; a no-op on the first page.
func (s *Store[T, C, P]) PreviousPage(ctx context.Context) {
	s.mu.Lock()
	if s.pagination.Page <= 1 {
		s.mu.Unlock()
		return
	}
	q := gateway.Query{
		Search:  s.search,
		Filters: cloneFilters(s.filters),
		Page:    s.pagination.Page - 1,
		Limit:   s.pagination.Limit,
	}
	s.mu.Unlock()

	s.Load(ctx, q)
}
