package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/benjaminclark40063-sketch/botbot4xin/internal/middleware"
)

// NewRouter builds the health router.
func NewRouter(h *Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(Logger)
	r.Use(chimw.Recoverer)

	r.Get("/", h.Alive)
	r.Head("/", h.Alive)
	r.Get("/db-check", h.DBCheck)
	return r
}
