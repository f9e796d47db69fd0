package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all forecast routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/forecasts", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Get("/{ticker}", h.HandleGet)
	})
}
