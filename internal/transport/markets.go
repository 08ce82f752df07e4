package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"marketdesk/internal/domain/market"
	"marketdesk/internal/sqlite"
)

func (s *Server) listMarkets(w http.ResponseWriter, r *http.Request) {
	page, limit := paging(r)
	opts := sqlite.ListMarketsOptions{
		Search: r.URL.Query().Get("search"),
		Page:   page,
		Limit:  limit,
	}
	records, total, err := s.markets.List(r.Context(), opts)
	if err != nil {
		s.writeRepoError(w, err, "market not found")
		return
	}
	s.writeJSON(w, http.StatusOK, pageEnvelope{
		Records:    records,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	})
}

func (s *Server) getMarket(w http.ResponseWriter, r *http.Request) {
	m, err := s.markets.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeRepoError(w, err, "market not found")
		return
	}
	s.writeJSON(w, http.StatusOK, m)
}

func (s *Server) createMarket(w http.ResponseWriter, r *http.Request) {
	var req market.CreateRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		s.writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	m, err := s.markets.Create(r.Context(), req)
	if err != nil {
		s.writeRepoError(w, err, "market not found")
		return
	}
	s.writeJSON(w, http.StatusCreated, m)
}

func (s *Server) updateMarket(w http.ResponseWriter, r *http.Request) {
	var req market.UpdateRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	m, err := s.markets.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		s.writeRepoError(w, err, "market not found")
		return
	}
	s.writeJSON(w, http.StatusOK, m)
}

func (s *Server) deleteMarket(w http.ResponseWriter, r *http.Request) {
	if err := s.markets.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeRepoError(w, err, "market not found")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"message": "market deleted"})
}
