package receivables

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/Keshvi-8/fleet-ledger/internal/billing"
)

type fakeBillSource struct {
	bills []billing.Bill
	calls int
}

func (f *fakeBillSource) ListBills(context.Context, billing.ListBillsRequest) ([]billing.Bill, error) {
	f.calls++
	return f.bills, nil
}

func newCachedService(t *testing.T, src *fakeBillSource) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	svc := NewService(slog.Default(), src, NewCache(client, time.Minute))
	svc.now = func() time.Time { return date(2025, time.April, 1) }
	return svc
}

func TestSnapshotCaching(t *testing.T) {
	src := &fakeBillSource{bills: []billing.Bill{
		unpaidBill(1, 1, "Mehta Traders", 50000, date(2025, time.March, 20)),
	}}
	svc := newCachedService(t, src)

	first, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	require.Equal(t, 50000.0, first.TotalOutstanding)
	require.Equal(t, 1, src.calls)

	// Second read is served from cache.
	second, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	require.Equal(t, first.TotalOutstanding, second.TotalOutstanding)
	require.Equal(t, 1, src.calls)
}

func TestRefreshInvalidates(t *testing.T) {
	src := &fakeBillSource{bills: []billing.Bill{
		unpaidBill(1, 1, "Mehta Traders", 50000, date(2025, time.March, 20)),
	}}
	svc := newCachedService(t, src)

	_, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, src.calls)

	src.bills = append(src.bills,
		unpaidBill(2, 2, "Verma Logistics", 20000, date(2025, time.March, 25)))

	snap, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, src.calls)
	require.Equal(t, 70000.0, snap.TotalOutstanding)
}

func TestSnapshotWithoutCache(t *testing.T) {
	src := &fakeBillSource{}
	svc := NewService(slog.Default(), src, nil)
	svc.now = func() time.Time { return date(2025, time.April, 1) }

	_, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	_, err = svc.Snapshot(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, src.calls)
}
