package fleet

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGRepository provides PostgreSQL backed persistence for trips.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const tripColumns = `id, truck_id, truck_number, driver_name, start_date, end_date, status,
driver_advance, total_km, diesel_quantity, diesel_amount, toll_expense, other_expense,
total_income, total_expense, profit, created_at, updated_at`

func scanTrip(row pgx.Row) (*Trip, error) {
	var t Trip
	err := row.Scan(&t.ID, &t.TruckID, &t.TruckNumber, &t.DriverName, &t.StartDate, &t.EndDate,
		&t.Status, &t.DriverAdvance, &t.TotalKm, &t.DieselQuantity, &t.DieselAmount,
		&t.TollExpense, &t.OtherExpense, &t.TotalIncome, &t.TotalExpense, &t.Profit,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTripNotFound
		}
		return nil, err
	}
	return &t, nil
}

// CreateTrip inserts a new trip.
func (r *PGRepository) CreateTrip(ctx context.Context, trip Trip) (*Trip, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO trips (truck_id, truck_number, driver_name, start_date, status,
driver_advance, total_income, total_expense, profit, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, 0, 0, 0, $7, $8) RETURNING `+tripColumns,
		trip.TruckID, trip.TruckNumber, trip.DriverName, trip.StartDate, trip.Status,
		trip.DriverAdvance, trip.CreatedAt, trip.UpdatedAt)
	return scanTrip(row)
}

// GetTrip loads a trip with its journeys.
func (r *PGRepository) GetTrip(ctx context.Context, id int64) (*Trip, error) {
	trip, err := scanTrip(r.pool.QueryRow(ctx, `SELECT `+tripColumns+` FROM trips WHERE id=$1`, id))
	if err != nil {
		return nil, err
	}
	journeys, err := r.listJourneys(ctx, []int64{trip.ID})
	if err != nil {
		return nil, err
	}
	trip.Journeys = journeys[trip.ID]
	return trip, nil
}

func tripFilter(req ListTripsRequest) (string, []any) {
	clause := ` WHERE 1=1`
	args := []any{}
	if req.Status != "" {
		args = append(args, req.Status)
		clause += ` AND status=$` + itoa(len(args))
	}
	if req.TruckID != 0 {
		args = append(args, req.TruckID)
		clause += ` AND truck_id=$` + itoa(len(args))
	}
	if !req.DateFrom.IsZero() {
		args = append(args, req.DateFrom)
		clause += ` AND COALESCE(end_date, start_date) >= $` + itoa(len(args))
	}
	if !req.DateTo.IsZero() {
		args = append(args, req.DateTo)
		clause += ` AND COALESCE(end_date, start_date) <= $` + itoa(len(args))
	}
	return clause, args
}

// CountTrips returns the number of trips matching the filter.
func (r *PGRepository) CountTrips(ctx context.Context, req ListTripsRequest) (int, error) {
	clause, args := tripFilter(req)
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM trips`+clause, args...).Scan(&n)
	return n, err
}

// ListTrips returns trips matching the filter, journeys included.
func (r *PGRepository) ListTrips(ctx context.Context, req ListTripsRequest) ([]Trip, error) {
	clause, args := tripFilter(req)
	query := `SELECT ` + tripColumns + ` FROM trips` + clause
	query += ` ORDER BY start_date DESC, id DESC`
	if req.Limit > 0 {
		args = append(args, req.Limit)
		query += ` LIMIT $` + itoa(len(args))
	}
	if req.Offset > 0 {
		args = append(args, req.Offset)
		query += ` OFFSET $` + itoa(len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []Trip
	var ids []int64
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, *trip)
		ids = append(ids, trip.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return trips, nil
	}
	journeys, err := r.listJourneys(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range trips {
		trips[i].Journeys = journeys[trips[i].ID]
	}
	return trips, nil
}

// UpdateTrip persists lifecycle changes (end, lock).
func (r *PGRepository) UpdateTrip(ctx context.Context, trip Trip) error {
	tag, err := r.pool.Exec(ctx, `UPDATE trips SET end_date=$1, status=$2, total_km=$3,
diesel_quantity=$4, diesel_amount=$5, toll_expense=$6, other_expense=$7,
total_expense=$8, profit=$9, updated_at=$10 WHERE id=$11`,
		trip.EndDate, trip.Status, trip.TotalKm, trip.DieselQuantity, trip.DieselAmount,
		trip.TollExpense, trip.OtherExpense, trip.TotalExpense, trip.Profit, trip.UpdatedAt, trip.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTripNotFound
	}
	return nil
}

// AppendJourney inserts a journey and bumps the parent trip's income in
// one transaction.
func (r *PGRepository) AppendJourney(ctx context.Context, tripID int64, journey Journey, tripIncome float64) (*Journey, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `INSERT INTO journeys (trip_id, client_id, client_name, from_location, to_location,
weight, rate_per_ton, freight_amount, client_advance, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`,
		journey.TripID, journey.ClientID, journey.ClientName, journey.FromLocation, journey.ToLocation,
		journey.Weight, journey.RatePerTon, journey.FreightAmount, journey.ClientAdvance, journey.CreatedAt).Scan(&journey.ID)
	if err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, `UPDATE trips SET total_income=$1, updated_at=$2 WHERE id=$3`,
		tripIncome, journey.CreatedAt, tripID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &journey, nil
}

func (r *PGRepository) listJourneys(ctx context.Context, tripIDs []int64) (map[int64][]Journey, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, trip_id, client_id, client_name, from_location, to_location,
weight, rate_per_ton, freight_amount, client_advance, created_at
FROM journeys WHERE trip_id = ANY($1) ORDER BY created_at, id`, tripIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64][]Journey)
	for rows.Next() {
		var j Journey
		if err := rows.Scan(&j.ID, &j.TripID, &j.ClientID, &j.ClientName, &j.FromLocation, &j.ToLocation,
			&j.Weight, &j.RatePerTon, &j.FreightAmount, &j.ClientAdvance, &j.CreatedAt); err != nil {
			return nil, err
		}
		out[j.TripID] = append(out[j.TripID], j)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTruck loads a truck by ID.
func (r *PGRepository) GetTruck(ctx context.Context, id int64) (*Truck, error) {
	var t Truck
	err := r.pool.QueryRow(ctx, `SELECT id, registration_number, model, capacity FROM trucks WHERE id=$1`, id).
		Scan(&t.ID, &t.RegistrationNumber, &t.Model, &t.Capacity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTripNotFound
		}
		return nil, err
	}
	return &t, nil
}

// ListTrucks returns all trucks.
func (r *PGRepository) ListTrucks(ctx context.Context) ([]Truck, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, registration_number, model, capacity FROM trucks ORDER BY registration_number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var trucks []Truck
	for rows.Next() {
		var t Truck
		if err := rows.Scan(&t.ID, &t.RegistrationNumber, &t.Model, &t.Capacity); err != nil {
			return nil, err
		}
		trucks = append(trucks, t)
	}
	return trucks, rows.Err()
}

// GetClient loads a client by ID.
func (r *PGRepository) GetClient(ctx context.Context, id int64) (*Client, error) {
	var c Client
	err := r.pool.QueryRow(ctx, `SELECT id, name, gst_number, address, whatsapp_number FROM clients WHERE id=$1`, id).
		Scan(&c.ID, &c.Name, &c.GSTNumber, &c.Address, &c.WhatsappNumber)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	return &c, nil
}

// ListClients returns all clients.
func (r *PGRepository) ListClients(ctx context.Context) ([]Client, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, gst_number, address, whatsapp_number FROM clients ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var clients []Client
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.ID, &c.Name, &c.GSTNumber, &c.Address, &c.WhatsappNumber); err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
