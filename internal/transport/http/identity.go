package http

import (
	"context"
	"net/http"
)

// Caller identity arrives in trusted headers; token verification happens at
// the gateway in front of this service.
const (
	adminHeader  = "X-Admin-ID"
	doctorHeader = "X-Doctor-ID"
)

type contextKey int

const (
	adminIDKey contextKey = iota
	doctorIDKey
)

func adminID(ctx context.Context) string {
	if v, ok := ctx.Value(adminIDKey).(string); ok {
		return v
	}
	return ""
}

func doctorID(ctx context.Context) string {
	if v, ok := ctx.Value(doctorIDKey).(string); ok {
		return v
	}
	return ""
}

func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(adminHeader)
		if id == "" {
			writeError(w, http.StatusUnauthorized, "X-Admin-ID header required")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), adminIDKey, id)))
	})
}

func requireDoctor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(doctorHeader)
		if id == "" {
			writeError(w, http.StatusUnauthorized, "X-Doctor-ID header required")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), doctorIDKey, id)))
	})
}
