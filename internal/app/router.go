package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Keshvi-8/fleet-ledger/internal/billing"
	"github.com/Keshvi-8/fleet-ledger/internal/fleet"
	"github.com/Keshvi-8/fleet-ledger/internal/observability"
	"github.com/Keshvi-8/fleet-ledger/internal/payments"
	receivablehttp "github.com/Keshvi-8/fleet-ledger/internal/receivables/http"
	"github.com/Keshvi-8/fleet-ledger/internal/reports"
	"github.com/Keshvi-8/fleet-ledger/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	FleetHandler       *fleet.Handler
	BillingHandler     *billing.Handler
	PaymentsHandler    *payments.Handler
	ReceivablesHandler *receivablehttp.Handler
	ReportsHandler     *reports.Handler
	JobHandler         *jobs.Handler
	Pool               *pgxpool.Pool
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		code, status := http.StatusOK, `{"status":"ok"}`
		if params.Pool != nil {
			if err := params.Pool.Ping(r.Context()); err != nil {
				code, status = http.StatusServiceUnavailable, `{"status":"degraded"}`
			}
		}
		w.WriteHeader(code)
		_, _ = w.Write([]byte(status))
	})

	if params.Metrics != nil {
		r.Handle("/metrics", params.Metrics.Handler())
	}

	r.Route("/api/v1", func(api chi.Router) {
		if params.FleetHandler != nil {
			params.FleetHandler.MountRoutes(api)
		}
		if params.BillingHandler != nil {
			params.BillingHandler.MountRoutes(api)
		}
		if params.PaymentsHandler != nil {
			params.PaymentsHandler.MountRoutes(api)
		}
		if params.ReceivablesHandler != nil {
			params.ReceivablesHandler.MountRoutes(api)
		}
		if params.ReportsHandler != nil {
			params.ReportsHandler.MountRoutes(api)
		}
	})

	if params.JobHandler != nil {
		r.Route("/jobs", func(jr chi.Router) {
			params.JobHandler.MountRoutes(jr)
		})
	}

	return r
}
