package store

import (
	"strings"

	"marketdesk/internal/gateway"
)

// Derived views are pure projections: they read a snapshot of the collection
// state and compute their result on every call, so they can never go stale
// and never mutate anything.

// FilteredRecords returns the records matching the current search term and
// filters. Search is trimmed and case-folded and matches as a substring over
// the profile's search fields; equality filters then keep records whose
// field equals the constraint; date bounds keep records whose date falls
// within [start, end] inclusive, with an absent bound unconstrained.
func (s *Store[T, C, P]) FilteredRecords() []T {
	s.mu.Lock()
	records := make([]T, len(s.records))
	copy(records, s.records)
	search := s.search
	filters := cloneFilters(s.filters)
	s.mu.Unlock()

	return filterRecords(records, search, filters, s.profile)
}

// CountBy returns the number of records per value of one enumerated field.
// Counts always describe the whole (unfiltered) collection: the KPI tiles
// report the collection, not the current search scope.
func (s *Store[T, C, P]) CountBy(key gateway.FilterKey) map[string]int {
	s.mu.Lock()
	records := make([]T, len(s.records))
	copy(records, s.records)
	s.mu.Unlock()

	counts := make(map[string]int)
	for _, rec := range records {
		if v, ok := s.profile.Field(rec, key); ok {
			counts[v]++
		}
	}
	return counts
}

// HasNextPage reports whether a further page exists according to the
// server-reported page count.
func (s *Store[T, C, P]) HasNextPage() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pagination.Page < s.pagination.TotalPages
}

// HasPreviousPage reports whether the collection is past the first page.
func (s *Store[T, C, P]) HasPreviousPage() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pagination.Page > 1
}

func filterRecords[T any](records []T, search string, filters gateway.Filters, p Profile[T]) []T {
	out := make([]T, 0, len(records))

	term := strings.ToLower(strings.TrimSpace(search))
	for _, rec := range records {
		if term != "" && !matchesSearch(rec, term, p) {
			continue
		}
		if !matchesFilters(rec, filters, p) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func matchesSearch[T any](rec T, term string, p Profile[T]) bool {
	if p.SearchText == nil {
		return true
	}
	for _, field := range p.SearchText(rec) {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

func matchesFilters[T any](rec T, filters gateway.Filters, p Profile[T]) bool {
	for key, want := range filters.Fields {
		got, ok := p.Field(rec, key)
		if !ok || got != want {
			return false
		}
	}
	if (filters.Start != nil || filters.End != nil) && p.Date != nil {
		date, ok := p.Date(rec)
		if !ok {
			return false
		}
		if filters.Start != nil && date.Before(*filters.Start) {
			return false
		}
		if filters.End != nil && date.After(*filters.End) {
			return false
		}
	}
	return true
}
