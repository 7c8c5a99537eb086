package ui

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes attaches the dashboard routes to r.
func MountRoutes(r chi.Router, h *Handler) {
	r.Get("/", h.Dashboard)
	r.Post("/query", h.RunQuery)
	r.Get("/healthz", h.Healthz)
	r.Get("/static/app.css", h.Stylesheet)
}
