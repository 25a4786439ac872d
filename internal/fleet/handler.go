package fleet

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

// Handler exposes trip lifecycle endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers fleet routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/trips", h.listTrips)
	r.Post("/trips", h.startTrip)
	r.Get("/trips/{id}", h.getTrip)
	r.Post("/trips/{id}/journeys", h.addJourney)
	r.Post("/trips/{id}/end", h.endTrip)
	r.Post("/trips/{id}/lock", h.lockTrip)
	r.Get("/clients", h.listClients)
	r.Get("/trucks", h.listTrucks)
}

func (h *Handler) startTrip(w http.ResponseWriter, r *http.Request) {
	var req StartTripRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	trip, err := h.service.StartTrip(r.Context(), req)
	if err != nil {
		h.respondErr(w, "start trip", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, trip)
}

func (h *Handler) addJourney(w http.ResponseWriter, r *http.Request) {
	id, err := tripID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid trip ID")
		return
	}
	var req AddJourneyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	journey, err := h.service.AddJourney(r.Context(), id, req)
	if err != nil {
		h.respondErr(w, "add journey", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, journey)
}

func (h *Handler) endTrip(w http.ResponseWriter, r *http.Request) {
	id, err := tripID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid trip ID")
		return
	}
	var req EndTripRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	trip, err := h.service.EndTrip(r.Context(), id, req)
	if err != nil {
		h.respondErr(w, "end trip", err)
		return
	}
	httpx.JSON(w, http.StatusOK, trip)
}

func (h *Handler) lockTrip(w http.ResponseWriter, r *http.Request) {
	id, err := tripID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid trip ID")
		return
	}
	trip, err := h.service.LockTrip(r.Context(), id)
	if err != nil {
		h.respondErr(w, "lock trip", err)
		return
	}
	httpx.JSON(w, http.StatusOK, trip)
}

func (h *Handler) getTrip(w http.ResponseWriter, r *http.Request) {
	id, err := tripID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid trip ID")
		return
	}
	trip, err := h.service.GetTrip(r.Context(), id)
	if err != nil {
		h.respondErr(w, "get trip", err)
		return
	}
	httpx.JSON(w, http.StatusOK, trip)
}

func (h *Handler) listTrips(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page <= 0 {
		page = 1
	}
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	if perPage <= 0 || perPage > 200 {
		perPage = 20
	}

	req := ListTripsRequest{Limit: perPage, Offset: (page - 1) * perPage}
	if status := q.Get("status"); status != "" {
		req.Status = TripStatus(status)
	}
	if truckID := q.Get("truck_id"); truckID != "" {
		req.TruckID, _ = strconv.ParseInt(truckID, 10, 64)
	}
	total, err := h.service.CountTrips(r.Context(), req)
	if err != nil {
		h.respondErr(w, "count trips", err)
		return
	}
	trips, err := h.service.ListTrips(r.Context(), req)
	if err != nil {
		h.respondErr(w, "list trips", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"trips":      trips,
		"pagination": shared.NewPagination(page, perPage, total),
	})
}

func (h *Handler) listClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.service.ListClients(r.Context())
	if err != nil {
		h.respondErr(w, "list clients", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"clients": clients})
}

func (h *Handler) listTrucks(w http.ResponseWriter, r *http.Request) {
	trucks, err := h.service.ListTrucks(r.Context())
	if err != nil {
		h.respondErr(w, "list trucks", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"trucks": trucks})
}

func (h *Handler) respondErr(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrTripNotFound), errors.Is(err, ErrClientNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrTripNotRunning), errors.Is(err, ErrTripNotCompleted), errors.Is(err, ErrTripLocked):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, ErrEndBeforeStart):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func tripID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
