package utils

import (
	"context"
	"net/http"

	"tripdesk/globals"

	"github.com/google/uuid"
)

func GetUUID() string {
	return uuid.New().String()
}

// WithRequestID tags every request with an id that is forwarded to the
// backend as X-Request-ID.
func WithRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = GetUUID()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), globals.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
