package receivablehttp

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers receivables routes onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	r.Get("/receivables", h.snapshot)
	r.Get("/receivables/export", h.exportCSV)
	r.Post("/receivables/refresh", h.refresh)
}
