// Package transport exposes the development server's REST surface: the
// endpoints the console gateways consume, backed by the sqlite repositories.
package transport

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"marketdesk/internal/sqlite"
)

// Server wires the REST handlers.
type Server struct {
	activities *sqlite.ActivityRepository
	markets    *sqlite.MarketRepository
	users      *sqlite.UserRepository
	log        *slog.Logger
}

// NewServer creates the REST router.
func NewServer(activities *sqlite.ActivityRepository, markets *sqlite.MarketRepository, users *sqlite.UserRepository, logger *slog.Logger) *chi.Mux {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	srv := &Server{
		activities: activities,
		markets:    markets,
		users:      users,
		log:        logger,
	}

	r := chi.NewRouter()

	r.Get("/health", srv.handleHealth)

	r.Route("/activities", func(r chi.Router) {
		r.Get("/", srv.listActivities)
		r.Post("/", srv.createActivity)
		r.Get("/stats", srv.activityStats)
		r.Get("/upcoming", srv.upcomingActivities)
		r.Get("/overdue", srv.overdueActivities)
		r.Patch("/bulk/status", srv.bulkActivityStatus)
		r.Get("/{id}", srv.getActivity)
		r.Put("/{id}", srv.updateActivity)
		r.Delete("/{id}", srv.deleteActivity)
		r.Patch("/{id}/status", srv.patchActivityStatus)
		r.Patch("/{id}/complete", srv.completeActivity)
	})

	r.Route("/properties/markets", func(r chi.Router) {
		r.Get("/", srv.listMarkets)
		r.Post("/", srv.createMarket)
		r.Get("/{id}", srv.getMarket)
		r.Put("/{id}", srv.updateMarket)
		r.Delete("/{id}", srv.deleteMarket)
		r.Get("/{id}/activities", srv.listMarketActivities)
	})

	r.Route("/users", func(r chi.Router) {
		r.Get("/", srv.listUsers)
		r.Post("/", srv.createUser)
		r.Get("/{id}", srv.getUser)
		r.Put("/{id}", srv.updateUser)
		r.Delete("/{id}", srv.deleteUser)
		r.Patch("/{id}/status", srv.patchUserStatus)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// pageEnvelope is the paginated list response shape.
type pageEnvelope struct {
	Records    any `json:"records"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

func paging(r *http.Request) (page, limit int) {
	page = defaultPage
	limit = defaultLimit
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

func totalPages(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

func parseDateParam(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"message": message})
}

// writeRepoError maps repository failures onto status codes with the
// {"message": ...} body the client expects.
func (s *Server) writeRepoError(w http.ResponseWriter, err error, notFoundMsg string) {
	if errors.Is(err, sqlite.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, notFoundMsg)
		return
	}
	s.log.Error("repository error", "error", err)
	s.writeError(w, http.StatusInternalServerError, "internal server error")
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
