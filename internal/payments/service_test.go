package payments

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Keshvi-8/fleet-ledger/internal/billing"
)

type fakeRepo struct {
	bill   *billing.Bill
	nextID int64
}

func (f *fakeRepo) GetBill(_ context.Context, id int64) (*billing.Bill, error) {
	if f.bill == nil || f.bill.ID != id {
		return nil, billing.ErrBillNotFound
	}
	b := *f.bill
	b.Payments = append([]billing.Payment(nil), f.bill.Payments...)
	return &b, nil
}

func (f *fakeRepo) AddPayment(_ context.Context, p billing.Payment) (*billing.Payment, error) {
	f.nextID++
	p.ID = f.nextID
	f.bill.Payments = append(f.bill.Payments, p)
	return &p, nil
}

func (f *fakeRepo) SetStatus(_ context.Context, id int64, status billing.BillStatus, at time.Time) error {
	if f.bill == nil || f.bill.ID != id {
		return billing.ErrBillNotFound
	}
	f.bill.Status = status
	if status == billing.BillStatusPaid {
		f.bill.PaidAt = &at
	}
	return nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestService(repo *fakeRepo) *Service {
	svc := NewService(slog.Default(), repo, nil)
	svc.now = func() time.Time { return date(2025, time.January, 22) }
	return svc
}

func newBill(net float64) *billing.Bill {
	return &billing.Bill{
		ID: 1, BillNumber: "INV-202501-0001", ClientID: 1,
		NetPayable: net, Status: billing.BillStatusSent,
		GeneratedAt: date(2025, time.January, 15),
	}
}

func TestRecord(t *testing.T) {
	t.Run("partial payment keeps a balance", func(t *testing.T) {
		repo := &fakeRepo{bill: newBill(95300)}
		svc := newTestService(repo)

		summary, err := svc.Record(context.Background(), 1, RecordPaymentRequest{
			Amount: 50000, Date: date(2025, time.January, 21), Mode: "bank", Reference: "NEFT-123",
		})
		require.NoError(t, err)
		require.Equal(t, 50000.0, summary.AmountPaid)
		require.Equal(t, 45300.0, summary.Balance)
		require.False(t, summary.IsPaidInFull)
		require.Equal(t, billing.BillStatusSent, repo.bill.Status)
	})

	t.Run("settling payment marks the bill paid", func(t *testing.T) {
		repo := &fakeRepo{bill: newBill(95300)}
		svc := newTestService(repo)

		_, err := svc.Record(context.Background(), 1, RecordPaymentRequest{
			Amount: 50000, Date: date(2025, time.January, 21), Mode: "bank",
		})
		require.NoError(t, err)
		summary, err := svc.Record(context.Background(), 1, RecordPaymentRequest{
			Amount: 45300, Date: date(2025, time.January, 22), Mode: "upi",
		})
		require.NoError(t, err)
		require.True(t, summary.IsPaidInFull)
		require.Equal(t, 0.0, summary.Balance)
		require.Equal(t, billing.BillStatusPaid, repo.bill.Status)
		require.NotNil(t, repo.bill.PaidAt)
	})

	t.Run("overpayment clamps the balance at zero", func(t *testing.T) {
		repo := &fakeRepo{bill: newBill(10000)}
		svc := newTestService(repo)

		summary, err := svc.Record(context.Background(), 1, RecordPaymentRequest{
			Amount: 12000, Date: date(2025, time.January, 21), Mode: "cash",
		})
		require.NoError(t, err)
		require.Equal(t, 12000.0, summary.AmountPaid)
		require.Equal(t, 0.0, summary.Balance)
		require.True(t, summary.IsPaidInFull)
	})

	t.Run("validation", func(t *testing.T) {
		repo := &fakeRepo{bill: newBill(10000)}
		svc := newTestService(repo)

		_, err := svc.Record(context.Background(), 1, RecordPaymentRequest{
			Amount: 0, Date: date(2025, time.January, 21), Mode: "cash",
		})
		require.ErrorIs(t, err, ErrInvalidAmount)

		_, err = svc.Record(context.Background(), 1, RecordPaymentRequest{
			Amount: -50, Date: date(2025, time.January, 21), Mode: "cash",
		})
		require.ErrorIs(t, err, ErrInvalidAmount)

		_, err = svc.Record(context.Background(), 1, RecordPaymentRequest{
			Amount: 100, Date: date(2025, time.January, 23), Mode: "cash",
		})
		require.ErrorIs(t, err, ErrFutureDate)

		_, err = svc.Record(context.Background(), 1, RecordPaymentRequest{
			Amount: 100, Date: date(2025, time.January, 21), Mode: "cheque",
		})
		require.ErrorIs(t, err, ErrInvalidMode)

		require.Empty(t, repo.bill.Payments)
	})

	t.Run("payment dated today is accepted", func(t *testing.T) {
		repo := &fakeRepo{bill: newBill(10000)}
		svc := newTestService(repo)

		_, err := svc.Record(context.Background(), 1, RecordPaymentRequest{
			Amount: 100, Date: date(2025, time.January, 22), Mode: "upi",
		})
		require.NoError(t, err)
	})

	t.Run("unknown bill", func(t *testing.T) {
		svc := newTestService(&fakeRepo{})
		_, err := svc.Record(context.Background(), 42, RecordPaymentRequest{
			Amount: 100, Date: date(2025, time.January, 21), Mode: "cash",
		})
		require.ErrorIs(t, err, billing.ErrBillNotFound)
	})
}

func TestSummarize(t *testing.T) {
	t.Run("credit bill is paid in full with zero balance", func(t *testing.T) {
		bill := newBill(-3200)
		summary := Summarize(*bill)
		require.True(t, summary.IsPaidInFull)
		require.Equal(t, 0.0, summary.Balance)
		require.Equal(t, 0.0, summary.AmountPaid)
	})

	t.Run("no payments", func(t *testing.T) {
		summary := Summarize(*newBill(500))
		require.False(t, summary.IsPaidInFull)
		require.Equal(t, 500.0, summary.Balance)
	})
}
