package payments

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Keshvi-8/fleet-ledger/internal/billing"
)

// PGRepository layers ledger writes over the billing store: bill reads
// and status updates come from the embedded billing repository.
type PGRepository struct {
	*billing.PGRepository
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{PGRepository: billing.NewRepository(pool), pool: pool}
}

// AddPayment appends a ledger entry. Entries are immutable; corrections
// are new entries.
func (r *PGRepository) AddPayment(ctx context.Context, p billing.Payment) (*billing.Payment, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO payments (bill_id, amount, paid_on, mode, reference, notes, recorded_at)
VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		p.BillID, p.Amount, p.Date, p.Mode, p.Reference, p.Notes, p.RecordedAt).Scan(&p.ID)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
