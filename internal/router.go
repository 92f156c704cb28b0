package courier

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func NewRouter(logger *slog.Logger, h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(LoggingMiddleware(logger), SecHeaders)

	r.Get("/health", HandleHealth)
	r.HandleFunc("/api/contact", h.HandleContact)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, response{Error: "Not found."})
	})
	return r
}
