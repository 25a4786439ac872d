package receivablehttp

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/Keshvi-8/fleet-ledger/internal/receivables"
)

type fakeService struct {
	snap      receivables.Snapshot
	refreshed bool
}

func (f *fakeService) Snapshot(context.Context) (*receivables.Snapshot, error) {
	s := f.snap
	return &s, nil
}

func (f *fakeService) Refresh(context.Context) (*receivables.Snapshot, error) {
	f.refreshed = true
	s := f.snap
	return &s, nil
}

func newTestRouter(svc SnapshotService) chi.Router {
	r := chi.NewRouter()
	NewHandler(slog.Default(), svc).MountRoutes(r)
	return r
}

func TestReceivablesRoutes(t *testing.T) {
	svc := &fakeService{snap: receivables.Snapshot{
		GeneratedAt:      time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC),
		TotalOutstanding: 46800,
		UnpaidBills:      2,
		Clients: []receivables.ClientReceivables{
			{ClientID: 1, ClientName: "Mehta Traders", BillCount: 2, Outstanding: 46800},
		},
	}}
	router := newTestRouter(svc)

	t.Run("snapshot returns json", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/receivables", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), `"total_outstanding":46800`)
		require.Contains(t, rec.Body.String(), `"Mehta Traders"`)
	})

	t.Run("export streams a csv attachment", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/receivables/export", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
		require.Contains(t, rec.Header().Get("Content-Disposition"), "receivables-2025-04-01.csv")

		lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
		require.Len(t, lines, 3)
		require.True(t, strings.HasPrefix(lines[1], "1,Mehta Traders,2,46800.00"))
		require.Contains(t, lines[2], "TOTAL")
	})

	t.Run("refresh rebuilds the snapshot", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/receivables/refresh", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.True(t, svc.refreshed)
	})
}
