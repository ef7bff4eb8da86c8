package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers serves the liveness and database probes.
type Handlers struct {
	DB          Pinger
	PingTimeout time.Duration
}

// Alive reports that the process is up.
func (h *Handlers) Alive(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, "Alive")
}

// DBCheck reports whether the database answers.
func (h *Handlers) DBCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.PingTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.PingTimeout)
		defer cancel()
	}

	if err := h.DB.Ping(ctx); err != nil {
		slog.ErrorContext(ctx, "health check failed", "error", err)
		writeText(w, http.StatusInternalServerError, "Database Error")
		return
	}
	writeText(w, http.StatusOK, "Database is Healthy")
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
