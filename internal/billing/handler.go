package billing

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/Keshvi-8/fleet-ledger/internal/platform/httpx"
	"github.com/Keshvi-8/fleet-ledger/internal/shared"
)

// Handler exposes billing period and invoice endpoints.
type Handler struct {
	logger      *slog.Logger
	service     *Service
	validator   *validator.Validate
	idempotency *shared.IdempotencyStore
}

// NewHandler builds Handler instance. idempotency may be nil.
func NewHandler(logger *slog.Logger, service *Service, idempotency *shared.IdempotencyStore) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New(), idempotency: idempotency}
}

// MountRoutes registers billing routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/billing/periods", h.listPeriods)
	r.Post("/billing/generate", h.generate)
	r.Get("/bills", h.listBills)
	r.Get("/bills/{id}", h.getBill)
	r.Post("/bills/{id}/send", h.markSent)
}

func (h *Handler) listPeriods(w http.ResponseWriter, r *http.Request) {
	periods := h.service.Periods()
	keys := make([]map[string]any, 0, len(periods))
	for _, p := range periods {
		keys = append(keys, map[string]any{
			"key":                  p.Key(),
			"label":                p.Label,
			"start":                p.Start,
			"end":                  p.End,
			"generation_date":      p.GenerationDate,
			"payment_window_start": p.PaymentWindowStart,
			"payment_window_end":   p.PaymentWindowEnd,
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"periods": keys})
}

func (h *Handler) generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	idemKey := r.Header.Get("X-Idempotency-Key")
	if idemKey != "" && h.idempotency != nil {
		if err := h.idempotency.CheckAndInsert(r.Context(), idemKey, "billing:generate"); err != nil {
			if errors.Is(err, shared.ErrIdempotencyConflict) {
				httpx.Problem(w, http.StatusConflict, "Conflict", "request already processed")
				return
			}
			h.respondErr(w, "idempotency check", err)
			return
		}
	}
	result, err := h.service.Generate(r.Context(), req)
	if err != nil {
		// Release the key so the caller can retry a failed run.
		if idemKey != "" && h.idempotency != nil {
			if delErr := h.idempotency.Delete(r.Context(), idemKey); delErr != nil {
				h.logger.Warn("release idempotency key", slog.Any("error", delErr))
			}
		}
		h.respondErr(w, "generate bills", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, result)
}

func (h *Handler) getBill(w http.ResponseWriter, r *http.Request) {
	id, err := billID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid bill ID")
		return
	}
	bill, err := h.service.GetBill(r.Context(), id)
	if err != nil {
		h.respondErr(w, "get bill", err)
		return
	}
	httpx.JSON(w, http.StatusOK, bill)
}

func (h *Handler) listBills(w http.ResponseWriter, r *http.Request) {
	req := ListBillsRequest{Limit: 100}
	q := r.URL.Query()
	if clientID := q.Get("client_id"); clientID != "" {
		req.ClientID, _ = strconv.ParseInt(clientID, 10, 64)
	}
	if status := q.Get("status"); status != "" {
		req.Status = BillStatus(status)
	}
	if key := q.Get("period"); key != "" {
		period, ok := h.service.ResolvePeriod(key)
		if !ok {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "unknown billing period")
			return
		}
		req.PeriodStart, req.PeriodEnd = period.Start, period.End
	}
	bills, err := h.service.ListBills(r.Context(), req)
	if err != nil {
		h.respondErr(w, "list bills", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"bills": bills})
}

func (h *Handler) markSent(w http.ResponseWriter, r *http.Request) {
	id, err := billID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid bill ID")
		return
	}
	bill, err := h.service.MarkSent(r.Context(), id)
	if err != nil {
		h.respondErr(w, "mark bill sent", err)
		return
	}
	httpx.JSON(w, http.StatusOK, bill)
}

func (h *Handler) respondErr(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrBillNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrPeriodUnknown):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrBillAlreadyPaid), errors.Is(err, ErrDuplicateBill):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func billID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
