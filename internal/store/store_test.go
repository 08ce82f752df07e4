package store_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"marketdesk/internal/domain/activity"
	"marketdesk/internal/gateway"
	"marketdesk/internal/gateway/mocks"
	"marketdesk/internal/store"
	"marketdesk/internal/wire"
)

type activityGateway = mocks.CompletableGateway[activity.Activity, activity.CreateRequest, activity.UpdateRequest]

func newActivityStore(t *testing.T) (*activity.Store, *activityGateway) {
	t.Helper()
	gw := &activityGateway{}
	return activity.NewStore(gw, nil), gw
}

func act(id, name string) activity.Activity {
	return activity.Activity{
		ID:            id,
		Name:          name,
		Status:        activity.StatusPlanned,
		Frequency:     activity.FrequencyWeekly,
		ScheduledTime: wire.NewTime(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)),
	}
}

func ids(records []activity.Activity) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func page(records []activity.Activity, total int) gateway.Page[activity.Activity] {
	return gateway.Page[activity.Activity]{
		Records:    records,
		Total:      total,
		Page:       1,
		Limit:      20,
		TotalPages: 1,
	}
}

// seedLoad populates the store with an initial page so mutation tests start
// from a known collection.
func seedLoad(t *testing.T, s *activity.Store, gw *activityGateway, records []activity.Activity, total int) {
	t.Helper()
	gw.On("List", mock.Anything, mock.Anything).Return(page(records, total), nil).Once()
	s.Load(context.Background(), gateway.Query{})
	st := s.State()
	require.Empty(t, st.Error)
	require.Len(t, st.Records, len(records))
}

func TestLoadReplacesRecordsAndPagination(t *testing.T) {
	s, gw := newActivityStore(t)
	result := gateway.Page[activity.Activity]{
		Records:    []activity.Activity{act("a1", "Clean Stalls"), act("a2", "Fix Roof")},
		Total:      41,
		Page:       2,
		Limit:      20,
		TotalPages: 3,
	}
	gw.On("List", mock.Anything, mock.MatchedBy(func(q gateway.Query) bool {
		return q.Search == "clean" && q.Page == 2 && q.Limit == 20
	})).Return(result, nil)

	s.Load(context.Background(), gateway.Query{Search: "clean", Page: 2, Limit: 20})

	st := s.State()
	require.False(t, st.IsLoading)
	require.Empty(t, st.Error)
	require.Equal(t, []string{"a1", "a2"}, ids(st.Records))
	require.Equal(t, store.Pagination{Page: 2, Limit: 20, Total: 41, TotalPages: 3}, st.Pagination)
	require.Equal(t, "clean", st.Search)
}

func TestLoadDefaultsPageAndLimit(t *testing.T) {
	s, gw := newActivityStore(t)
	gw.On("List", mock.Anything, mock.MatchedBy(func(q gateway.Query) bool {
		return q.Page == 1 && q.Limit == 20
	})).Return(page(nil, 0), nil)

	s.Load(context.Background(), gateway.Query{})

	gw.AssertExpectations(t)
}

func TestLoadHonorsConfiguredPageSize(t *testing.T) {
	gw := &activityGateway{}
	s := activity.NewStore(gw, nil, store.WithPageSize(5))
	gw.On("List", mock.Anything, mock.MatchedBy(func(q gateway.Query) bool {
		return q.Limit == 5
	})).Return(page(nil, 0), nil)

	s.Load(context.Background(), gateway.Query{})

	gw.AssertExpectations(t)
}

func TestLoadFailurePreservesRecords(t *testing.T) {
	s, gw := newActivityStore(t)
	seedLoad(t, s, gw, []activity.Activity{act("a1", "Clean Stalls")}, 1)

	gw.On("List", mock.Anything, mock.Anything).
		Return(gateway.Page[activity.Activity]{}, &gateway.StatusError{Status: 500, Message: "db down"}).Once()

	s.Load(context.Background(), gateway.Query{Search: "clean"})

	st := s.State()
	require.False(t, st.IsLoading)
	require.Equal(t, "internal server error", st.Error)
	require.Equal(t, []string{"a1"}, ids(st.Records))
	require.Equal(t, 1, st.Pagination.Total)
	// Failed loads do not adopt the query's search either.
	require.Empty(t, st.Search)
}

func TestLoadNetworkFailureSetsGenericMessage(t *testing.T) {
	s, gw := newActivityStore(t)
	gw.On("List", mock.Anything, mock.Anything).
		Return(gateway.Page[activity.Activity]{}, gateway.ErrNetwork)

	s.Load(context.Background(), gateway.Query{})

	require.Equal(t, "an error occurred", s.State().Error)
}

func TestReloadRepeatsLastQuery(t *testing.T) {
	s, gw := newActivityStore(t)
	filters := gateway.Filters{}.WithField(activity.FilterStatus, string(activity.StatusPlanned))
	result := gateway.Page[activity.Activity]{
		Records:    []activity.Activity{act("a1", "Clean Stalls")},
		Total:      21,
		Page:       2,
		Limit:      10,
		TotalPages: 3,
	}
	gw.On("List", mock.Anything, mock.Anything).Return(result, nil).Once()
	s.Load(context.Background(), gateway.Query{Search: "clean", Filters: filters, Page: 2, Limit: 10})

	gw.On("List", mock.Anything, mock.MatchedBy(func(q gateway.Query) bool {
		v, ok := q.Filters.Field(activity.FilterStatus)
		return q.Search == "clean" && q.Page == 2 && q.Limit == 10 &&
			ok && v == string(activity.StatusPlanned)
	})).Return(result, nil).Once()

	s.Reload(context.Background())

	gw.AssertExpectations(t)
}

func TestLoadByIDSetsSelection(t *testing.T) {
	s, gw := newActivityStore(t)
	rec := act("a1", "Clean Stalls")
	gw.On("GetByID", mock.Anything, "a1").Return(rec, nil)

	s.LoadByID(context.Background(), "a1")

	st := s.State()
	require.NotNil(t, st.Selected)
	require.Equal(t, "a1", st.Selected.ID)
	require.False(t, st.IsLoading)
	require.Empty(t, st.Error)
}

func TestLoadByIDFailureKeepsSelection(t *testing.T) {
	s, gw := newActivityStore(t)
	gw.On("GetByID", mock.Anything, "a1").Return(act("a1", "Clean Stalls"), nil).Once()
	s.LoadByID(context.Background(), "a1")

	gw.On("GetByID", mock.Anything, "missing").
		Return(activity.Activity{}, &gateway.StatusError{Status: 404}).Once()
	s.LoadByID(context.Background(), "missing")

	st := s.State()
	require.Equal(t, "resource not found", st.Error)
	require.NotNil(t, st.Selected)
	require.Equal(t, "a1", st.Selected.ID)
}

func TestCreatePrependsAndBumpsTotal(t *testing.T) {
	s, gw := newActivityStore(t)
	seedLoad(t, s, gw, []activity.Activity{act("a2", "Fix Roof")}, 1)

	req := activity.CreateRequest{
		Name:          "Clean Stalls",
		Frequency:     activity.FrequencyWeekly,
		ScheduledTime: wire.NewTime(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)),
	}
	created := act("a1", "Clean Stalls")
	gw.On("Create", mock.Anything, req).Return(created, nil)

	got, err := s.Create(context.Background(), req)

	require.NoError(t, err)
	require.Equal(t, created, got)
	st := s.State()
	require.Equal(t, []string{"a1", "a2"}, ids(st.Records))
	require.Equal(t, 2, st.Pagination.Total)
	require.Empty(t, st.Error)
}

func TestCreateFailureReturnsAndRecordsError(t *testing.T) {
	s, gw := newActivityStore(t)
	seedLoad(t, s, gw, []activity.Activity{act("a1", "Clean Stalls")}, 1)

	gw.On("Create", mock.Anything, mock.Anything).
		Return(activity.Activity{}, &gateway.StatusError{Status: 400, Message: "name is required"})

	_, err := s.Create(context.Background(), activity.CreateRequest{})

	require.Error(t, err)
	var se *gateway.StatusError
	require.ErrorAs(t, err, &se)
	st := s.State()
	require.Equal(t, "invalid request data", st.Error)
	require.Equal(t, []string{"a1"}, ids(st.Records))
	require.Equal(t, 1, st.Pagination.Total)
}

func TestCreateKeepsIdentifiersUnique(t *testing.T) {
	s, gw := newActivityStore(t)
	seedLoad(t, s, gw, []activity.Activity{act("a1", "Clean Stalls"), act("a2", "Fix Roof")}, 2)

	replayed := act("a2", "Fix Roof Again")
	gw.On("Create", mock.Anything, mock.Anything).Return(replayed, nil)

	_, err := s.Create(context.Background(), activity.CreateRequest{Name: "Fix Roof Again"})

	require.NoError(t, err)
	st := s.State()
	require.Equal(t, []string{"a2", "a1"}, ids(st.Records))
	require.Equal(t, "Fix Roof Again", st.Records[0].Name)
}

func TestUpdateAppliesServerCopy(t *testing.T) {
	s, gw := newActivityStore(t)
	seedLoad(t, s, gw, []activity.Activity{act("a1", "Clean Stalls"), act("a2", "Fix Roof")}, 2)
	gw.On("GetByID", mock.Anything, "a1").Return(act("a1", "Clean Stalls"), nil)
	s.LoadByID(context.Background(), "a1")

	name := "Clean All Stalls"
	canonical := act("a1", name)
	canonical.Status = activity.StatusInProgress
	gw.On("Update", mock.Anything, "a1", activity.UpdateRequest{Name: &name}).Return(canonical, nil)

	got, err := s.Update(context.Background(), "a1", activity.UpdateRequest{Name: &name})

	require.NoError(t, err)
	require.Equal(t, canonical, got)
	st := s.State()
	require.Equal(t, []string{"a1", "a2"}, ids(st.Records))
	require.Equal(t, canonical, st.Records[0])
	require.NotNil(t, st.Selected)
	require.Equal(t, canonical, *st.Selected)
}

func TestUpdateFailureLeavesRecordUntouched(t *testing.T) {
	s, gw := newActivityStore(t)
	seedLoad(t, s, gw, []activity.Activity{act("a1", "Clean Stalls")}, 1)

	name := "Renamed"
	gw.On("Update", mock.Anything, "a1", mock.Anything).
		Return(activity.Activity{}, &gateway.StatusError{Status: 500})

	_, err := s.Update(context.Background(), "a1", activity.UpdateRequest{Name: &name})

	require.Error(t, err)
	st := s.State()
	require.Equal(t, "internal server error", st.Error)
	require.Equal(t, "Clean Stalls", st.Records[0].Name)
}

func TestUpdateStatus(t *testing.T) {
	s, gw := newActivityStore(t)
	seedLoad(t, s, gw, []activity.Activity{act("a1", "Clean Stalls")}, 1)

	canonical := act("a1", "Clean Stalls")
	canonical.Status = activity.StatusCompleted
	gw.On("PatchStatus", mock.Anything, "a1", string(activity.StatusCompleted)).Return(canonical, nil)

	got, err := s.UpdateStatus(context.Background(), "a1", string(activity.StatusCompleted))

	require.NoError(t, err)
	require.Equal(t, activity.StatusCompleted, got.Status)
	require.Equal(t, activity.StatusCompleted, s.State().Records[0].Status)
}

func TestDeleteRemovesAfterConfirmation(t *testing.T) {
	s, gw := newActivityStore(t)
	seedLoad(t, s, gw, []activity.Activity{act("a1", "Clean Stalls"), act("a2", "Fix Roof")}, 2)
	gw.On("GetByID", mock.Anything, "a1").Return(act("a1", "Clean Stalls"), nil)
	s.LoadByID(context.Background(), "a1")

	gw.On("Delete", mock.Anything, "a1").Return(nil)

	require.NoError(t, s.Delete(context.Background(), "a1"))

	st := s.State()
	require.Equal(t, []string{"a2"}, ids(st.Records))
	require.Equal(t, 1, st.Pagination.Total)
	require.Nil(t, st.Selected)
}

func TestDeleteUnknownIDSurfacesError(t *testing.T) {
	s, gw := newActivityStore(t)
	seedLoad(t, s, gw, []activity.Activity{act("a1", "Clean Stalls")}, 1)

	gw.On("Delete", mock.Anything, "missing").Return(&gateway.StatusError{Status: 404})

	err := s.Delete(context.Background(), "missing")

	require.Error(t, err)
	st := s.State()
	require.Equal(t, "resource not found", st.Error)
	require.Equal(t, []string{"a1"}, ids(st.Records))
	require.Equal(t, 1, st.Pagination.Total)
}

func TestMarkCompleted(t *testing.T) {
	s, gw := newActivityStore(t)
	seedLoad(t, s, gw, []activity.Activity{act("a1", "Clean Stalls")}, 1)

	when := time.Date(2026, 3, 12, 14, 0, 0, 0, time.UTC)
	completed := act("a1", "Clean Stalls")
	completed.Status = activity.StatusCompleted
	last := wire.NewTime(when)
	completed.LastCompleted = &last
	gw.On("MarkCompleted", mock.Anything, "a1", when).Return(completed, nil)

	got, err := s.MarkCompleted(context.Background(), "a1", when)

	require.NoError(t, err)
	require.Equal(t, activity.StatusCompleted, got.Status)
	require.Equal(t, completed, s.State().Records[0])
}

func TestMarkCompletedUnsupportedGateway(t *testing.T) {
	gw := &mocks.Gateway[activity.Activity, activity.CreateRequest, activity.UpdateRequest]{}
	s := activity.NewStore(gw, nil)

	_, err := s.MarkCompleted(context.Background(), "a1", time.Time{})

	require.ErrorIs(t, err, gateway.ErrUnsupported)
}

func TestBulkUpdateStatus(t *testing.T) {
	s, gw := newActivityStore(t)
	seedLoad(t, s, gw, []activity.Activity{act("a1", "Clean Stalls"), act("a2", "Fix Roof"), act("a3", "Restock")}, 3)

	first := act("a1", "Clean Stalls")
	first.Status = activity.StatusInProgress
	second := act("a3", "Restock")
	second.Status = activity.StatusInProgress
	gw.On("BulkPatchStatus", mock.Anything, []string{"a1", "a3"}, string(activity.StatusInProgress)).
		Return([]activity.Activity{first, second}, nil)

	n, err := s.BulkUpdateStatus(context.Background(), []string{"a1", "a3"}, string(activity.StatusInProgress))

	require.NoError(t, err)
	require.Equal(t, 2, n)
	st := s.State()
	require.Equal(t, activity.StatusInProgress, st.Records[0].Status)
	require.Equal(t, activity.StatusPlanned, st.Records[1].Status)
	require.Equal(t, activity.StatusInProgress, st.Records[2].Status)
}

func TestBulkUpdateStatusUnsupportedGateway(t *testing.T) {
	gw := &mocks.Gateway[activity.Activity, activity.CreateRequest, activity.UpdateRequest]{}
	s := activity.NewStore(gw, nil)

	_, err := s.BulkUpdateStatus(context.Background(), []string{"a1"}, string(activity.StatusCompleted))

	require.ErrorIs(t, err, gateway.ErrUnsupported)
}

func TestClearResetsCollectionKeepsFilters(t *testing.T) {
	s, gw := newActivityStore(t)
	seedLoad(t, s, gw, []activity.Activity{act("a1", "Clean Stalls")}, 1)
	s.SetSearch("clean")
	s.SetFilter(activity.FilterStatus, string(activity.StatusPlanned))

	s.Clear()

	st := s.State()
	require.Empty(t, st.Records)
	require.Nil(t, st.Selected)
	require.Equal(t, store.Pagination{Page: 1, Limit: 20}, st.Pagination)
	require.Equal(t, "clean", st.Search)
	v, ok := st.Filters.Field(activity.FilterStatus)
	require.True(t, ok)
	require.Equal(t, string(activity.StatusPlanned), v)
}

func TestClearError(t *testing.T) {
	s, gw := newActivityStore(t)
	gw.On("Delete", mock.Anything, "missing").Return(&gateway.StatusError{Status: 404})
	require.Error(t, s.Delete(context.Background(), "missing"))
	require.Equal(t, "resource not found", s.State().Error)

	s.ClearError()

	require.Empty(t, s.State().Error)
}

func TestStateSnapshotIsIndependent(t *testing.T) {
	s, gw := newActivityStore(t)
	seedLoad(t, s, gw, []activity.Activity{act("a1", "Clean Stalls")}, 1)

	before := s.State()
	gw.On("Delete", mock.Anything, "a1").Return(nil)
	require.NoError(t, s.Delete(context.Background(), "a1"))

	require.Equal(t, []string{"a1"}, ids(before.Records))
	require.Empty(t, s.State().Records)
}

// fakeActivityGateway is a function-backed gateway used where test ordering
// has to be controlled from inside the List call itself.
type fakeActivityGateway struct {
	list func(ctx context.Context, q gateway.Query) (gateway.Page[activity.Activity], error)
}

func (f *fakeActivityGateway) List(ctx context.Context, q gateway.Query) (gateway.Page[activity.Activity], error) {
	return f.list(ctx, q)
}

func (f *fakeActivityGateway) GetByID(context.Context, string) (activity.Activity, error) {
	return activity.Activity{}, errors.New("not implemented")
}

func (f *fakeActivityGateway) Create(context.Context, activity.CreateRequest) (activity.Activity, error) {
	return activity.Activity{}, errors.New("not implemented")
}

func (f *fakeActivityGateway) Update(context.Context, string, activity.UpdateRequest) (activity.Activity, error) {
	return activity.Activity{}, errors.New("not implemented")
}

func (f *fakeActivityGateway) PatchStatus(context.Context, string, string) (activity.Activity, error) {
	return activity.Activity{}, errors.New("not implemented")
}

func (f *fakeActivityGateway) Delete(context.Context, string) error {
	return errors.New("not implemented")
}

func TestStaleLoadResponseDiscarded(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	gw := &fakeActivityGateway{}
	gw.list = func(_ context.Context, q gateway.Query) (gateway.Page[activity.Activity], error) {
		if q.Search == "slow" {
			close(started)
			<-release
			return page([]activity.Activity{act("old", "Stale Result")}, 1), nil
		}
		return page([]activity.Activity{act("new", "Fresh Result")}, 1), nil
	}
	s := activity.NewStore(gw, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.Load(context.Background(), gateway.Query{Search: "slow"})
	}()
	<-started

	// A second load dispatched while the first is blocked supersedes it.
	s.Load(context.Background(), gateway.Query{Search: "fast"})
	close(release)
	wg.Wait()

	st := s.State()
	require.Equal(t, "fast", st.Search)
	require.Equal(t, []string{"new"}, ids(st.Records))
	require.False(t, st.IsLoading)
	require.Empty(t, st.Error)
}

func TestStaleLoadFailureDiscarded(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	gw := &fakeActivityGateway{}
	gw.list = func(_ context.Context, q gateway.Query) (gateway.Page[activity.Activity], error) {
		if q.Search == "slow" {
			close(started)
			<-release
			return gateway.Page[activity.Activity]{}, &gateway.StatusError{Status: 500}
		}
		return page([]activity.Activity{act("new", "Fresh Result")}, 1), nil
	}
	s := activity.NewStore(gw, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.Load(context.Background(), gateway.Query{Search: "slow"})
	}()
	<-started

	s.Load(context.Background(), gateway.Query{Search: "fast"})
	close(release)
	wg.Wait()

	// The superseded failure must not surface as an error.
	st := s.State()
	require.Empty(t, st.Error)
	require.Equal(t, []string{"new"}, ids(st.Records))
}
