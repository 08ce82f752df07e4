package transport

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"marketdesk/internal/domain/activity"
	"marketdesk/internal/sqlite"
)

func validActivityStatus(s activity.Status) bool {
	for _, v := range activity.Statuses() {
		if s == v {
			return true
		}
	}
	return false
}

func validFrequency(f activity.Frequency) bool {
	for _, v := range activity.Frequencies() {
		if f == v {
			return true
		}
	}
	return false
}

func (s *Server) activityListOptions(r *http.Request) (sqlite.ListActivitiesOptions, error) {
	page, limit := paging(r)
	q := r.URL.Query()
	opts := sqlite.ListActivitiesOptions{
		Status:    q.Get("status"),
		Frequency: q.Get("frequency"),
		MarketID:  q.Get("marketId"),
		Search:    q.Get("search"),
		Page:      page,
		Limit:     limit,
	}
	start, err := parseDateParam(r, "startDate")
	if err != nil {
		return opts, err
	}
	end, err := parseDateParam(r, "endDate")
	if err != nil {
		return opts, err
	}
	opts.Start = start
	opts.End = end
	return opts, nil
}

func (s *Server) listActivities(w http.ResponseWriter, r *http.Request) {
	opts, err := s.activityListOptions(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid date parameter")
		return
	}
	records, total, err := s.activities.List(r.Context(), opts)
	if err != nil {
		s.writeRepoError(w, err, "activity not found")
		return
	}
	s.writeJSON(w, http.StatusOK, pageEnvelope{
		Records:    records,
		Total:      total,
		Page:       opts.Page,
		Limit:      opts.Limit,
		TotalPages: totalPages(total, opts.Limit),
	})
}

func (s *Server) listMarketActivities(w http.ResponseWriter, r *http.Request) {
	opts, err := s.activityListOptions(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid date parameter")
		return
	}
	opts.MarketID = chi.URLParam(r, "id")
	records, total, err := s.activities.List(r.Context(), opts)
	if err != nil {
		s.writeRepoError(w, err, "activity not found")
		return
	}
	s.writeJSON(w, http.StatusOK, pageEnvelope{
		Records:    records,
		Total:      total,
		Page:       opts.Page,
		Limit:      opts.Limit,
		TotalPages: totalPages(total, opts.Limit),
	})
}

func (s *Server) getActivity(w http.ResponseWriter, r *http.Request) {
	act, err := s.activities.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeRepoError(w, err, "activity not found")
		return
	}
	s.writeJSON(w, http.StatusOK, act)
}

func (s *Server) createActivity(w http.ResponseWriter, r *http.Request) {
	var req activity.CreateRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.ScheduledTime.IsZero() || !validFrequency(req.Frequency) {
		s.writeError(w, http.StatusBadRequest, "name, scheduledTime and a valid frequency are required")
		return
	}
	if req.Status != "" && !validActivityStatus(req.Status) {
		s.writeError(w, http.StatusBadRequest, "invalid status")
		return
	}
	act, err := s.activities.Create(r.Context(), req)
	if err != nil {
		s.writeRepoError(w, err, "activity not found")
		return
	}
	s.writeJSON(w, http.StatusCreated, act)
}

func (s *Server) updateActivity(w http.ResponseWriter, r *http.Request) {
	var req activity.UpdateRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Status != nil && !validActivityStatus(*req.Status) {
		s.writeError(w, http.StatusBadRequest, "invalid status")
		return
	}
	if req.Frequency != nil && !validFrequency(*req.Frequency) {
		s.writeError(w, http.StatusBadRequest, "invalid frequency")
		return
	}
	act, err := s.activities.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		s.writeRepoError(w, err, "activity not found")
		return
	}
	s.writeJSON(w, http.StatusOK, act)
}

func (s *Server) patchActivityStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status activity.Status `json:"status"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !validActivityStatus(req.Status) {
		s.writeError(w, http.StatusBadRequest, "invalid status")
		return
	}
	act, err := s.activities.PatchStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		s.writeRepoError(w, err, "activity not found")
		return
	}
	s.writeJSON(w, http.StatusOK, act)
}

func (s *Server) completeActivity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LastCompleted string `json:"lastCompleted"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	var when time.Time
	if req.LastCompleted != "" {
		parsed, err := time.Parse(time.RFC3339, req.LastCompleted)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid lastCompleted date")
			return
		}
		when = parsed
	}
	act, err := s.activities.MarkCompleted(r.Context(), chi.URLParam(r, "id"), when)
	if err != nil {
		s.writeRepoError(w, err, "activity not found")
		return
	}
	s.writeJSON(w, http.StatusOK, act)
}

func (s *Server) bulkActivityStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs    []string        `json:"ids"`
		Status activity.Status `json:"status"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.IDs) == 0 || !validActivityStatus(req.Status) {
		s.writeError(w, http.StatusBadRequest, "ids and a valid status are required")
		return
	}
	updated, err := s.activities.BulkPatchStatus(r.Context(), req.IDs, req.Status)
	if err != nil {
		s.writeRepoError(w, err, "activity not found")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"updated": len(updated),
		"records": updated,
	})
}

func (s *Server) deleteActivity(w http.ResponseWriter, r *http.Request) {
	if err := s.activities.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeRepoError(w, err, "activity not found")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"message": "activity deleted"})
}

func (s *Server) activityStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.activities.Stats(r.Context(), r.URL.Query().Get("marketId"))
	if err != nil {
		s.writeRepoError(w, err, "activity not found")
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) upcomingActivities(w http.ResponseWriter, r *http.Request) {
	days := 7
	if v := r.URL.Query().Get("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			s.writeError(w, http.StatusBadRequest, "invalid days parameter")
			return
		}
		days = parsed
	}
	records, err := s.activities.Upcoming(r.Context(), days, r.URL.Query().Get("marketId"))
	if err != nil {
		s.writeRepoError(w, err, "activity not found")
		return
	}
	s.writeJSON(w, http.StatusOK, records)
}

func (s *Server) overdueActivities(w http.ResponseWriter, r *http.Request) {
	records, err := s.activities.Overdue(r.Context(), r.URL.Query().Get("marketId"))
	if err != nil {
		s.writeRepoError(w, err, "activity not found")
		return
	}
	s.writeJSON(w, http.StatusOK, records)
}
