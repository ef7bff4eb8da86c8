// Package middleware provides HTTP middleware for the health surface.
package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/benjaminclark40063-sketch/botbot4xin/internal/logger"
)

const headerRequestID = "X-Request-ID"

// RequestID takes X-Request-ID from the request or generates a UUID, stores
// it in the context for log correlation and echoes it on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}

		ctx := logger.WithRequestID(r.Context(), id)
		w.Header().Set(headerRequestID, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
