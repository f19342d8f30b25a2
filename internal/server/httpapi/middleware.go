package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"guestsnap/internal/common"
	"guestsnap/internal/logging"
	"guestsnap/internal/server/auth"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

// guestIDKey is the context key for the authenticated guest's ID.
const guestIDKey contextKey = "guestID"

// GuestIDFromContext returns the authenticated guest id, or "" when the
// request was not authenticated.
func GuestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(guestIDKey).(string)
	return id
}

// RequireGuest returns middleware that validates the Bearer guest JWT and
// checks the token was issued for the event in the URL. A token for
// another event is rejected, not just ignored.
func RequireGuest(jwtSecret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get(common.AuthHeaderName)
			if header == "" {
				writeError(w, http.StatusUnauthorized, "authorization header required")
				return
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				writeError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			claims, err := auth.ParseToken(parts[1], jwtSecret)
			if err != nil {
				if errors.Is(err, common.ErrTokenExpired) {
					writeError(w, http.StatusUnauthorized, "token expired")
					return
				}
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			if eventID := chi.URLParam(r, "eventID"); claims.EventID != eventID {
				writeError(w, http.StatusUnauthorized, "token not valid for this event")
				return
			}

			ctx := context.WithValue(r.Context(), guestIDKey, claims.GuestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestLogger logs one line per request with method, path, status and
// duration.
func RequestLogger(log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			log.Info(r.Context(), "request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"duration", time.Since(start),
			)
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
