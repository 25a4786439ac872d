package reports

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Keshvi-8/fleet-ledger/internal/platform/httpx"
)

// Handler exposes reporting endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/reports/profit-loss", h.profitLoss)
	r.Get("/reports/expenses", h.expenses)
}

func (h *Handler) profitLoss(w http.ResponseWriter, r *http.Request) {
	req, err := parseReportRequest(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	report, err := h.service.ProfitLoss(r.Context(), req)
	if err != nil {
		h.respondErr(w, "profit loss report", err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) expenses(w http.ResponseWriter, r *http.Request) {
	req, err := parseReportRequest(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	groupBy := GroupBy(r.URL.Query().Get("group_by"))
	if groupBy == "" {
		groupBy = GroupByOverall
	}
	report, err := h.service.Expenses(r.Context(), req, groupBy)
	if err != nil {
		h.respondErr(w, "expense report", err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func parseReportRequest(r *http.Request) (ReportRequest, error) {
	q := r.URL.Query()
	req := ReportRequest{Timeframe: Timeframe(q.Get("timeframe"))}
	if req.Timeframe == "" {
		req.Timeframe = TimeframeThisMonth
	}
	if from := q.Get("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return req, errors.New("invalid from date, want YYYY-MM-DD")
		}
		req.From = t
	}
	if to := q.Get("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return req, errors.New("invalid to date, want YYYY-MM-DD")
		}
		req.To = t
	}
	return req, nil
}

func (h *Handler) respondErr(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrUnknownTimeframe), errors.Is(err, ErrCustomRange), errors.Is(err, ErrUnknownGroupBy):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
