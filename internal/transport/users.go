package transport

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"marketdesk/internal/domain/user"
	"marketdesk/internal/sqlite"
)

func validUserStatus(s user.Status) bool {
	return s == user.StatusActive || s == user.StatusSuspended
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	page, limit := paging(r)
	q := r.URL.Query()
	opts := sqlite.ListUsersOptions{
		Role:   q.Get("role"),
		Status: q.Get("status"),
		Search: q.Get("search"),
		Page:   page,
		Limit:  limit,
	}
	records, total, err := s.users.List(r.Context(), opts)
	if err != nil {
		s.writeRepoError(w, err, "user not found")
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

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.users.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeRepoError(w, err, "user not found")
		return
	}
	s.writeJSON(w, http.StatusOK, u)
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var req user.CreateRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Role == "" {
		s.writeError(w, http.StatusBadRequest, "email and role are required")
		return
	}
	u, err := s.users.Create(r.Context(), req)
	if err != nil {
		if strings.Contains(err.Error(), "already registered") {
			s.writeError(w, http.StatusBadRequest, "email already registered")
			return
		}
		s.writeRepoError(w, err, "user not found")
		return
	}
	s.writeJSON(w, http.StatusCreated, u)
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	var req user.UpdateRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Status != nil && !validUserStatus(*req.Status) {
		s.writeError(w, http.StatusBadRequest, "invalid status")
		return
	}
	u, err := s.users.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		s.writeRepoError(w, err, "user not found")
		return
	}
	s.writeJSON(w, http.StatusOK, u)
}

func (s *Server) patchUserStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status user.Status `json:"status"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !validUserStatus(req.Status) {
		s.writeError(w, http.StatusBadRequest, "invalid status")
		return
	}
	u, err := s.users.PatchStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		s.writeRepoError(w, err, "user not found")
		return
	}
	s.writeJSON(w, http.StatusOK, u)
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.users.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeRepoError(w, err, "user not found")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"message": "user deleted"})
}
