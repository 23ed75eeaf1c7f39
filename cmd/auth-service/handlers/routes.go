package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Pinger reports database reachability for /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Routes returns the service router.
func (a *API) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(a.logger))
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeNotFound, "The requested resource was not found on this server.", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "Method not allowed.", nil)
	})

	r.Get("/health", a.handleHealth)
	if a.metrics != nil {
		r.Method(http.MethodGet, "/metrics", a.metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/external", func(r chi.Router) {
			r.Get("/ping", a.withError(handlePing("pong from external v1")))
			r.Post("/security/login", a.withError(a.handleLogin))
		})
		r.Route("/internal", func(r chi.Router) {
			r.Use(RequireSession(a.verifier, a.logger))
			r.Get("/ping", a.withError(handleInternalPing))
		})
	})

	return r
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	if a.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := a.db.Ping(ctx); err != nil {
			_ = writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	_ = writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handlePing(message string) func(http.ResponseWriter, *http.Request) error {
	return func(w http.ResponseWriter, _ *http.Request) error {
		return writeJSON(w, http.StatusOK, map[string]string{"message": message})
	}
}

type sessionUser struct {
	UserID    int64  `json:"idUser"`
	AccountID int64  `json:"idAccount"`
	Name      string `json:"name"`
}

func handleInternalPing(w http.ResponseWriter, r *http.Request) error {
	claims, _ := ClaimsFromContext(r.Context())
	return writeJSON(w, http.StatusOK, map[string]any{
		"message": "pong from internal v1",
		"user": sessionUser{
			UserID:    claims.UserID,
			AccountID: claims.AccountID,
			Name:      claims.Name,
		},
	})
}
