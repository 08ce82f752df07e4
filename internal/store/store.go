// Package store implements the resource collection store: a per-resource
// state container that mediates between a remote gateway and presentation
// code. One generic implementation serves every resource type; behavior that
// differs per resource is injected through a Profile.
package store

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"marketdesk/internal/gateway"
)

const defaultPageSize = 20

// Store owns the collection state for one resource type. All state access
// goes through its methods; gateway calls run outside the internal lock so
// reads stay responsive while a request is in flight.
//
// T is the record type, C the create payload, P the update patch.
type Store[T, C, P any] struct {
	gw      gateway.Gateway[T, C, P]
	profile Profile[T]
	log     *slog.Logger

	mu         sync.Mutex
	records    []T
	selected   *T
	isLoading  bool
	errMsg     string
	search     string
	filters    gateway.Filters
	pagination Pagination

	// loadSeq tags each dispatched load; a completion whose tag is no
	// longer the latest is discarded, so a slow response can never
	// overwrite a fresher one.
	loadSeq uint64
}

// Option customizes a store.
type Option func(*options)

type options struct {
	pageSize int
}

// WithPageSize sets the default page size used when a load request does not
// specify one.
func WithPageSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.pageSize = n
		}
	}
}

// New creates a store for one resource type. The store starts empty, on
// page 1, with no filters and no error.
func New[T, C, P any](gw gateway.Gateway[T, C, P], profile Profile[T], logger *slog.Logger, opts ...Option) *Store[T, C, P] {
	o := options{pageSize: defaultPageSize}
	for _, opt := range opts {
		opt(&o)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store[T, C, P]{
		gw:      gw,
		profile: profile,
		log:     logger.With("store", profile.Resource),
		pagination: Pagination{
			Page:  1,
			Limit: o.pageSize,
		},
	}
}

// State returns a snapshot of the collection state. The snapshot is
// independent of the store; later operations do not alter it.
func (s *Store[T, C, P]) State() State[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store[T, C, P]) snapshotLocked() State[T] {
	st := State[T]{
		Records:    make([]T, len(s.records)),
		IsLoading:  s.isLoading,
		Error:      s.errMsg,
		Search:     s.search,
		Filters:    cloneFilters(s.filters),
		Pagination: s.pagination,
	}
	copy(st.Records, s.records)
	if s.selected != nil {
		sel := *s.selected
		st.Selected = &sel
	}
	return st
}

// Load fetches one page of records. On success the record list and
// pagination are replaced wholesale and the state's search/filters are set
// to exactly what the query asked for. On failure the previous records,
// selection, and pagination are preserved and only the error field is set;
// load failures are never returned to the caller. A load dispatched while
// an earlier one is still in flight supersedes it: the earlier response is
// discarded whenever it arrives.
func (s *Store[T, C, P]) Load(ctx context.Context, q gateway.Query) {
	s.mu.Lock()
	s.loadSeq++
	seq := s.loadSeq
	s.isLoading = true
	s.errMsg = ""
	if q.Limit == 0 {
		q.Limit = s.pagination.Limit
	}
	if q.Page == 0 {
		q.Page = 1
	}
	s.mu.Unlock()

	page, err := s.gw.List(ctx, q)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.loadSeq {
		// Superseded by a newer load; that load owns isLoading and state.
		s.log.Debug("stale load response discarded", "seq", seq)
		return
	}
	s.isLoading = false
	if err != nil {
		s.log.Error("load failed", "error", err)
		s.errMsg = gateway.UserMessage(err)
		return
	}
	s.records = page.Records
	s.pagination = Pagination{
		Page:       page.Page,
		Limit:      page.Limit,
		Total:      page.Total,
		TotalPages: page.TotalPages,
	}
	s.search = q.Search
	s.filters = cloneFilters(q.Filters)
}

// Reload re-issues the last load: current page, page size, search, and
// filters.
func (s *Store[T, C, P]) Reload(ctx context.Context) {
	s.mu.Lock()
	q := gateway.Query{
		Search:  s.search,
		Filters: cloneFilters(s.filters),
		Page:    s.pagination.Page,
		Limit:   s.pagination.Limit,
	}
	s.mu.Unlock()
	s.Load(ctx, q)
}

// LoadByID fetches a single record into the selection. Like Load, failures
// are recorded on the state rather than returned.
func (s *Store[T, C, P]) LoadByID(ctx context.Context, id string) {
	s.mu.Lock()
	s.isLoading = true
	s.errMsg = ""
	s.mu.Unlock()

	rec, err := s.gw.GetByID(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.isLoading = false
	if err != nil {
		s.log.Error("load by id failed", "id", id, "error", err)
		s.errMsg = gateway.UserMessage(err)
		return
	}
	s.selected = &rec
}

// Create sends a new record to the backend and, on success, prepends the
// server-canonical copy (the backend assigns the identifier) and bumps the
// reported total. On failure the error is both recorded on the state and
// returned, so a creation dialog can keep its form open.
func (s *Store[T, C, P]) Create(ctx context.Context, payload C) (T, error) {
	s.clearErr()

	rec, err := s.gw.Create(ctx, payload)
	if err != nil {
		s.fail("create failed", err)
		var zero T
		return zero, fmt.Errorf("create %s: %w", s.profile.Resource, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Drop any stale copy with the same identifier before prepending, so
	// identifier uniqueness holds even if the backend replays a record.
	s.records = removeByID(s.records, s.profile.ID(rec), s.profile.ID)
	s.records = append([]T{rec}, s.records...)
	s.pagination.Total++
	return rec, nil
}

// Update replaces fields of the identified record. The server response is
// canonical: the matching record (and the selection, if it is the same
// record) is replaced with the returned copy, never locally merged.
func (s *Store[T, C, P]) Update(ctx context.Context, id string, patch P) (T, error) {
	s.clearErr()

	rec, err := s.gw.Update(ctx, id, patch)
	if err != nil {
		s.fail("update failed", err)
		var zero T
		return zero, fmt.Errorf("update %s %s: %w", s.profile.Resource, id, err)
	}
	s.replace(id, rec)
	return rec, nil
}

// UpdateStatus patches only the status field, applying the server-returned
// record the same way Update does.
func (s *Store[T, C, P]) UpdateStatus(ctx context.Context, id, status string) (T, error) {
	s.clearErr()

	rec, err := s.gw.PatchStatus(ctx, id, status)
	if err != nil {
		s.fail("status update failed", err)
		var zero T
		return zero, fmt.Errorf("update %s %s status: %w", s.profile.Resource, id, err)
	}
	s.replace(id, rec)
	return rec, nil
}

// MarkCompleted records a completion through the gateway's completion
// extension. The zero time lets the backend stamp the current moment.
// Gateways without the extension report ErrUnsupported.
func (s *Store[T, C, P]) MarkCompleted(ctx context.Context, id string, when time.Time) (T, error) {
	var zero T
	completer, ok := s.gw.(gateway.Completer[T])
	if !ok {
		return zero, fmt.Errorf("mark %s %s completed: %w", s.profile.Resource, id, gateway.ErrUnsupported)
	}
	s.clearErr()

	rec, err := completer.MarkCompleted(ctx, id, when)
	if err != nil {
		s.fail("mark completed failed", err)
		return zero, fmt.Errorf("mark %s %s completed: %w", s.profile.Resource, id, err)
	}
	s.replace(id, rec)
	return rec, nil
}

// BulkUpdateStatus patches the status of several records in one call and
// replaces each affected record with its server-canonical copy. Gateways
// without the bulk extension report ErrUnsupported.
func (s *Store[T, C, P]) BulkUpdateStatus(ctx context.Context, ids []string, status string) (int, error) {
	bulk, ok := s.gw.(gateway.BulkPatcher[T])
	if !ok {
		return 0, fmt.Errorf("bulk update %s status: %w", s.profile.Resource, gateway.ErrUnsupported)
	}
	s.clearErr()

	updated, err := bulk.BulkPatchStatus(ctx, ids, status)
	if err != nil {
		s.fail("bulk status update failed", err)
		return 0, fmt.Errorf("bulk update %s status: %w", s.profile.Resource, err)
	}
	for _, rec := range updated {
		s.replace(s.profile.ID(rec), rec)
	}
	return len(updated), nil
}

// Delete removes the identified record. Removal is never optimistic: the
// local list changes only after the backend confirms, so a rejected delete
// cannot ghost a record out of view.
func (s *Store[T, C, P]) Delete(ctx context.Context, id string) error {
	s.clearErr()

	if err := s.gw.Delete(ctx, id); err != nil {
		s.fail("delete failed", err)
		return fmt.Errorf("delete %s %s: %w", s.profile.Resource, id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	before := len(s.records)
	s.records = removeByID(s.records, id, s.profile.ID)
	if len(s.records) < before && s.pagination.Total > 0 {
		s.pagination.Total--
	}
	if s.selected != nil && s.profile.ID(*s.selected) == id {
		s.selected = nil
	}
	return nil
}

// SetSearch sets the free-text search term. Purely local: no gateway call,
// no effect on loading or error state. The filtered view reflects the new
// term on its next read.
func (s *Store[T, C, P]) SetSearch(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.search = term
}

// SetFilter sets one equality filter constraint.
func (s *Store[T, C, P]) SetFilter(key gateway.FilterKey, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = s.filters.WithField(key, value)
}

// ClearFilter removes one equality filter constraint.
func (s *Store[T, C, P]) ClearFilter(key gateway.FilterKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = s.filters.WithoutField(key)
}

// SetDateRange sets the date-range bounds used by the filtered view. A nil
// bound leaves that side open; two nils clear the range.
func (s *Store[T, C, P]) SetDateRange(start, end *time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := cloneFilters(s.filters)
	f.Start = start
	f.End = end
	s.filters = f
}

// ClearError clears the error field and nothing else.
func (s *Store[T, C, P]) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = ""
}

// Clear resets records, selection, and pagination to their initial values.
// Search and filters are kept, matching the original console behavior.
func (s *Store[T, C, P]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	s.selected = nil
	s.pagination = Pagination{Page: 1, Limit: s.pagination.Limit}
}

// replace swaps the record with the given identifier for the server copy,
// along with the selection when it refers to the same record. Records are
// always addressed by identifier, never by index, so interleaved writes
// stay correct.
func (s *Store[T, C, P]) replace(id string, rec T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.profile.ID(s.records[i]) == id {
			s.records[i] = rec
			break
		}
	}
	if s.selected != nil && s.profile.ID(*s.selected) == id {
		sel := rec
		s.selected = &sel
	}
}

func (s *Store[T, C, P]) clearErr() {
	s.mu.Lock()
	s.errMsg = ""
	s.mu.Unlock()
}

func (s *Store[T, C, P]) fail(msg string, err error) {
	s.log.Error(msg, "error", err)
	s.mu.Lock()
	s.errMsg = gateway.UserMessage(err)
	s.mu.Unlock()
}

func removeByID[T any](records []T, id string, idOf func(T) string) []T {
	out := records[:0]
	for _, rec := range records {
		if idOf(rec) != id {
			out = append(out, rec)
		}
	}
	return out
}

func cloneFilters(f gateway.Filters) gateway.Filters {
	out := gateway.Filters{Start: f.Start, End: f.End}
	if len(f.Fields) > 0 {
		out.Fields = make(map[gateway.FilterKey]string, len(f.Fields))
		for k, v := range f.Fields {
			out.Fields[k] = v
		}
	}
	return out
}
