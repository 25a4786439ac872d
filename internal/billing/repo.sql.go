package billing

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDuplicateBill indicates an invoice number collision, which means
// two generation runs raced for the same period.
var ErrDuplicateBill = errors.New("billing: duplicate bill number")

// PGRepository provides PostgreSQL backed persistence for bills.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const billColumns = `id, bill_number, client_id, client_name, client_gst, client_address, client_whatsapp,
period_start, period_end, period_label, subtotal, cgst, sgst, igst, total_gst,
total_advance, grand_total, net_payable, status, generated_at, sent_at, paid_at`

func scanBill(row pgx.Row) (*Bill, error) {
	var b Bill
	err := row.Scan(&b.ID, &b.BillNumber, &b.ClientID, &b.ClientName, &b.ClientGST, &b.ClientAddress,
		&b.ClientWhatsapp, &b.PeriodStart, &b.PeriodEnd, &b.PeriodLabel, &b.Subtotal, &b.CGST,
		&b.SGST, &b.IGST, &b.TotalGST, &b.TotalAdvance, &b.GrandTotal, &b.NetPayable,
		&b.Status, &b.GeneratedAt, &b.SentAt, &b.PaidAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBillNotFound
		}
		return nil, err
	}
	return &b, nil
}

// CountBillsForPeriod returns how many bills exist for a period, which
// seeds invoice numbering for repeat generation runs.
func (r *PGRepository) CountBillsForPeriod(ctx context.Context, start, end time.Time) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM bills WHERE period_start=$1 AND period_end=$2`, start, end).Scan(&n)
	return n, err
}

// SaveBills persists a generation run atomically: all bills and their
// line items land, or none do.
func (r *PGRepository) SaveBills(ctx context.Context, bills []Bill) ([]Bill, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	saved := make([]Bill, 0, len(bills))
	for _, b := range bills {
		err := tx.QueryRow(ctx, `INSERT INTO bills (bill_number, client_id, client_name, client_gst,
client_address, client_whatsapp, period_start, period_end, period_label, subtotal, cgst, sgst,
igst, total_gst, total_advance, grand_total, net_payable, status, generated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19) RETURNING id`,
			b.BillNumber, b.ClientID, b.ClientName, b.ClientGST, b.ClientAddress, b.ClientWhatsapp,
			b.PeriodStart, b.PeriodEnd, b.PeriodLabel, b.Subtotal, b.CGST, b.SGST, b.IGST,
			b.TotalGST, b.TotalAdvance, b.GrandTotal, b.NetPayable, b.Status, b.GeneratedAt).Scan(&b.ID)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return nil, ErrDuplicateBill
			}
			return nil, err
		}
		for i := range b.LineItems {
			item := &b.LineItems[i]
			err := tx.QueryRow(ctx, `INSERT INTO bill_line_items (bill_id, journey_id, trip_id,
truck_number, from_location, to_location, weight, rate_per_ton, freight_amount, client_advance, item_date)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11) RETURNING id`,
				b.ID, item.JourneyID, item.TripID, item.TruckNumber, item.FromLocation, item.ToLocation,
				item.Weight, item.RatePerTon, item.FreightAmount, item.ClientAdvance, item.Date).Scan(&item.ID)
			if err != nil {
				return nil, err
			}
		}
		saved = append(saved, b)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return saved, nil
}

// GetBill loads a bill with line items and payments.
func (r *PGRepository) GetBill(ctx context.Context, id int64) (*Bill, error) {
	bill, err := scanBill(r.pool.QueryRow(ctx, `SELECT `+billColumns+` FROM bills WHERE id=$1`, id))
	if err != nil {
		return nil, err
	}
	items, err := r.listLineItems(ctx, []int64{bill.ID})
	if err != nil {
		return nil, err
	}
	bill.LineItems = items[bill.ID]
	payments, err := r.listPayments(ctx, []int64{bill.ID})
	if err != nil {
		return nil, err
	}
	bill.Payments = payments[bill.ID]
	return bill, nil
}

// ListBills returns bills matching the filter, payments included so
// callers can derive settlement state without extra round trips.
func (r *PGRepository) ListBills(ctx context.Context, req ListBillsRequest) ([]Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE 1=1`
	args := []any{}
	if req.ClientID != 0 {
		args = append(args, req.ClientID)
		query += ` AND client_id=$` + strconv.Itoa(len(args))
	}
	if req.Status != "" {
		args = append(args, req.Status)
		query += ` AND status=$` + strconv.Itoa(len(args))
	}
	if !req.PeriodStart.IsZero() {
		args = append(args, req.PeriodStart)
		query += ` AND period_start=$` + strconv.Itoa(len(args))
	}
	if !req.PeriodEnd.IsZero() {
		args = append(args, req.PeriodEnd)
		query += ` AND period_end=$` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY generated_at DESC, id DESC`
	if req.Limit > 0 {
		args = append(args, req.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}
	if req.Offset > 0 {
		args = append(args, req.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bills []Bill
	var ids []int64
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, *bill)
		ids = append(ids, bill.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return bills, nil
	}
	items, err := r.listLineItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	payments, err := r.listPayments(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range bills {
		bills[i].LineItems = items[bills[i].ID]
		bills[i].Payments = payments[bills[i].ID]
	}
	return bills, nil
}

// SetStatus updates bill lifecycle state, stamping sent_at or paid_at.
func (r *PGRepository) SetStatus(ctx context.Context, id int64, status BillStatus, at time.Time) error {
	column := "sent_at"
	if status == BillStatusPaid {
		column = "paid_at"
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE bills SET status=$1, `+column+`=$2 WHERE id=$3`, status, at, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrBillNotFound
	}
	return nil
}

func (r *PGRepository) listLineItems(ctx context.Context, billIDs []int64) (map[int64][]BillLineItem, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, bill_id, journey_id, trip_id, truck_number,
from_location, to_location, weight, rate_per_ton, freight_amount, client_advance, item_date
FROM bill_line_items WHERE bill_id = ANY($1) ORDER BY id`, billIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64][]BillLineItem)
	for rows.Next() {
		var billID int64
		var item BillLineItem
		if err := rows.Scan(&item.ID, &billID, &item.JourneyID, &item.TripID, &item.TruckNumber,
			&item.FromLocation, &item.ToLocation, &item.Weight, &item.RatePerTon,
			&item.FreightAmount, &item.ClientAdvance, &item.Date); err != nil {
			return nil, err
		}
		out[billID] = append(out[billID], item)
	}
	return out, rows.Err()
}

func (r *PGRepository) listPayments(ctx context.Context, billIDs []int64) (map[int64][]Payment, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, bill_id, amount, paid_on, mode, reference, notes, recorded_at
FROM payments WHERE bill_id = ANY($1) ORDER BY paid_on, id`, billIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64][]Payment)
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.BillID, &p.Amount, &p.Date, &p.Mode, &p.Reference,
			&p.Notes, &p.RecordedAt); err != nil {
			return nil, err
		}
		out[p.BillID] = append(out[p.BillID], p)
	}
	return out, rows.Err()
}
