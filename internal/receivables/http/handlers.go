// Package receivablehttp serves the receivables reports over HTTP.
package receivablehttp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Keshvi-8/fleet-ledger/internal/platform/httpx"
	"github.com/Keshvi-8/fleet-ledger/internal/receivables"
	"github.com/Keshvi-8/fleet-ledger/internal/receivables/export"
)

// SnapshotService defines the receivables data contract used by the
// handler. Satisfied by the receivables service.
type SnapshotService interface {
	Snapshot(ctx context.Context) (*receivables.Snapshot, error)
	Refresh(ctx context.Context) (*receivables.Snapshot, error)
}

// Handler exposes receivables reporting endpoints.
type Handler struct {
	logger  *slog.Logger
	service SnapshotService
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service SnapshotService) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Snapshot(r.Context())
	if err != nil {
		h.logger.Error("receivables snapshot", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, snap)
}

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Snapshot(r.Context())
	if err != nil {
		h.logger.Error("receivables export", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	filename := fmt.Sprintf("receivables-%s.csv", snap.GeneratedAt.Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := export.CSV(w, *snap); err != nil {
		h.logger.Error("write receivables csv", slog.Any("error", err))
	}
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Refresh(r.Context())
	if err != nil {
		h.logger.Error("receivables refresh", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, snap)
}
