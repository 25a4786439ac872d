package fleet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Keshvi-8/fleet-ledger/internal/shared"
)

var (
	// ErrTripNotFound indicates the trip does not exist.
	ErrTripNotFound = errors.New("fleet: trip not found")
	// ErrTripNotRunning indicates a lifecycle operation on a trip that
	// already ended.
	ErrTripNotRunning = errors.New("fleet: trip is not running")
	// ErrTripNotCompleted indicates lock was requested before the trip ended.
	ErrTripNotCompleted = errors.New("fleet: trip is not completed")
	// ErrTripLocked indicates the trip is frozen against edits.
	ErrTripLocked = errors.New("fleet: trip is locked")
	// ErrClientNotFound indicates the journey references an unknown client.
	ErrClientNotFound = errors.New("fleet: client not found")
	// ErrEndBeforeStart indicates the end date precedes the start date.
	ErrEndBeforeStart = errors.New("fleet: end date before start date")
)

// Repository defines data access for trips and reference data.
type Repository interface {
	CreateTrip(ctx context.Context, trip Trip) (*Trip, error)
	GetTrip(ctx context.Context, id int64) (*Trip, error)
	ListTrips(ctx context.Context, req ListTripsRequest) ([]Trip, error)
	CountTrips(ctx context.Context, req ListTripsRequest) (int, error)
	UpdateTrip(ctx context.Context, trip Trip) error
	AppendJourney(ctx context.Context, tripID int64, journey Journey, tripIncome float64) (*Journey, error)

	GetTruck(ctx context.Context, id int64) (*Truck, error)
	ListTrucks(ctx context.Context) ([]Truck, error)
	GetClient(ctx context.Context, id int64) (*Client, error)
	ListClients(ctx context.Context) ([]Client, error)
}

// Service owns trip lifecycle rules.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// StartTrip opens a new running trip for a truck.
func (s *Service) StartTrip(ctx context.Context, req StartTripRequest) (*Trip, error) {
	truck, err := s.repo.GetTruck(ctx, req.TruckID)
	if err != nil {
		return nil, fmt.Errorf("verify truck: %w", err)
	}
	now := s.now()
	trip := Trip{
		TruckID:       truck.ID,
		TruckNumber:   truck.RegistrationNumber,
		DriverName:    req.DriverName,
		StartDate:     req.StartDate,
		Status:        TripStatusRunning,
		DriverAdvance: req.DriverAdvance,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return s.repo.CreateTrip(ctx, trip)
}

// AddJourney appends a haul to a running trip. Freight is computed from
// weight and rate here; journeys are immutable afterwards.
func (s *Service) AddJourney(ctx context.Context, tripID int64, req AddJourneyRequest) (*Journey, error) {
	trip, err := s.repo.GetTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip.Status == TripStatusLocked {
		return nil, ErrTripLocked
	}
	if trip.Status != TripStatusRunning {
		return nil, ErrTripNotRunning
	}
	client, err := s.repo.GetClient(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}

	freight := shared.Round2(req.Weight * req.RatePerTon)
	journey := Journey{
		TripID:        trip.ID,
		ClientID:      client.ID,
		ClientName:    client.Name,
		FromLocation:  req.FromLocation,
		ToLocation:    req.ToLocation,
		Weight:        req.Weight,
		RatePerTon:    req.RatePerTon,
		FreightAmount: freight,
		ClientAdvance: req.ClientAdvance,
		CreatedAt:     s.now(),
	}
	return s.repo.AppendJourney(ctx, trip.ID, journey, trip.TotalIncome+freight)
}

// EndTrip closes a running trip, fixing its expense fields and profit.
func (s *Service) EndTrip(ctx context.Context, tripID int64, req EndTripRequest) (*Trip, error) {
	trip, err := s.repo.GetTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip.Status != TripStatusRunning {
		return nil, ErrTripNotRunning
	}
	if req.EndDate.Before(trip.StartDate) {
		return nil, ErrEndBeforeStart
	}

	end := req.EndDate
	trip.EndDate = &end
	trip.Status = TripStatusCompleted
	trip.TotalKm = req.TotalKm
	trip.DieselQuantity = req.DieselQuantity
	trip.DieselAmount = req.DieselAmount
	trip.TollExpense = req.TollExpense
	trip.OtherExpense = req.OtherExpense
	trip.TotalExpense = req.DieselAmount + req.TollExpense + req.OtherExpense + trip.DriverAdvance
	trip.Profit = trip.TotalIncome - trip.TotalExpense
	trip.UpdatedAt = s.now()

	if err := s.repo.UpdateTrip(ctx, *trip); err != nil {
		return nil, err
	}
	return trip, nil
}

// LockTrip freezes a completed trip against further edits. Locked trips
// remain billable.
func (s *Service) LockTrip(ctx context.Context, tripID int64) (*Trip, error) {
	trip, err := s.repo.GetTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip.Status == TripStatusLocked {
		return trip, nil
	}
	if trip.Status != TripStatusCompleted {
		return nil, ErrTripNotCompleted
	}
	trip.Status = TripStatusLocked
	trip.UpdatedAt = s.now()
	if err := s.repo.UpdateTrip(ctx, *trip); err != nil {
		return nil, err
	}
	return trip, nil
}

// GetTrip returns a trip with its journeys.
func (s *Service) GetTrip(ctx context.Context, id int64) (*Trip, error) {
	return s.repo.GetTrip(ctx, id)
}

// ListTrips returns trips matching the filter, journeys included.
func (s *Service) ListTrips(ctx context.Context, req ListTripsRequest) ([]Trip, error) {
	return s.repo.ListTrips(ctx, req)
}

// CountTrips returns the number of trips matching the filter.
func (s *Service) CountTrips(ctx context.Context, req ListTripsRequest) (int, error) {
	return s.repo.CountTrips(ctx, req)
}

// ListClients returns billing reference clients.
func (s *Service) ListClients(ctx context.Context) ([]Client, error) {
	return s.repo.ListClients(ctx)
}

// ListTrucks returns the fleet's trucks.
func (s *Service) ListTrucks(ctx context.Context) ([]Truck, error) {
	return s.repo.ListTrucks(ctx)
}
