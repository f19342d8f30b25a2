package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"guestsnap/internal/logging"
)

// NewRouter assembles the public HTTP surface. Event reads and guest
// registration are open; the upload and deletion endpoints sit behind the
// guest session token.
func NewRouter(h *Handler, jwtSecret []byte, log logging.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(RequestLogger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/events/{eventID}", func(r chi.Router) {
		r.Get("/", h.GetEvent)
		r.Get("/pictures", h.ListPictures)
		r.Post("/register", h.Register)

		r.Group(func(r chi.Router) {
			r.Use(RequireGuest(jwtSecret))
			r.Post("/inquire-upload", h.InquireUpload)
			r.Post("/upload", h.Upload)
			r.Delete("/pictures/magic-delete", h.MagicDelete)
		})
	})

	return r
}
