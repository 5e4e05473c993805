package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/askar/teamboard/internal/logger"
)

// RequestIDMiddleware assigns each request a uuid, echoes it in the
// X-Request-ID header and stamps it onto the context for log correlation.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := logger.ContextWithRequestID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
