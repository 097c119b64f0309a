package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// NewMux wires all routes. The pipeline endpoint and the two side-channels
// (issue detail, chat) are independent surfaces over the same vehicle.
func NewMux(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", h.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/analyze", h.handleAnalyze)
		r.Post("/issues/detail", h.handleIssueDetail)

		r.Route("/chat/sessions", func(r chi.Router) {
			r.Post("/", h.handleChatCreate)
			r.Post("/{sessionID}/messages", h.handleChatMessage)
			r.Delete("/{sessionID}", h.handleChatClose)
			r.Get("/{sessionID}/ws", h.handleChatWS)
		})
	})

	return otelhttp.NewHandler(r, "carsight-api")
}
