package fleet

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	trips   map[int64]*Trip
	trucks  map[int64]*Truck
	clients map[int64]*Client
	nextID  int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		trips: map[int64]*Trip{},
		trucks: map[int64]*Truck{
			1: {ID: 1, RegistrationNumber: "MH31AB1234", Model: "Tata LPT 3118", Capacity: 25},
		},
		clients: map[int64]*Client{
			1: {ID: 1, Name: "Mehta Traders", GSTNumber: "27AAAAA0000A1Z5"},
		},
	}
}

func (f *fakeRepo) CreateTrip(_ context.Context, trip Trip) (*Trip, error) {
	f.nextID++
	trip.ID = f.nextID
	f.trips[trip.ID] = &trip
	out := trip
	return &out, nil
}

func (f *fakeRepo) GetTrip(_ context.Context, id int64) (*Trip, error) {
	trip, ok := f.trips[id]
	if !ok {
		return nil, ErrTripNotFound
	}
	out := *trip
	out.Journeys = append([]Journey(nil), trip.Journeys...)
	return &out, nil
}

func (f *fakeRepo) ListTrips(_ context.Context, _ ListTripsRequest) ([]Trip, error) {
	var out []Trip
	for _, t := range f.trips {
		out = append(out, *t)
	}
	return out, nil
}

func (f *fakeRepo) CountTrips(_ context.Context, _ ListTripsRequest) (int, error) {
	return len(f.trips), nil
}

func (f *fakeRepo) UpdateTrip(_ context.Context, trip Trip) error {
	if _, ok := f.trips[trip.ID]; !ok {
		return ErrTripNotFound
	}
	f.trips[trip.ID] = &trip
	return nil
}

func (f *fakeRepo) AppendJourney(_ context.Context, tripID int64, journey Journey, tripIncome float64) (*Journey, error) {
	trip, ok := f.trips[tripID]
	if !ok {
		return nil, ErrTripNotFound
	}
	journey.ID = int64(len(trip.Journeys) + 1)
	trip.Journeys = append(trip.Journeys, journey)
	trip.TotalIncome = tripIncome
	return &journey, nil
}

func (f *fakeRepo) GetTruck(_ context.Context, id int64) (*Truck, error) {
	truck, ok := f.trucks[id]
	if !ok {
		return nil, ErrTripNotFound
	}
	return truck, nil
}

func (f *fakeRepo) ListTrucks(_ context.Context) ([]Truck, error) {
	var out []Truck
	for _, t := range f.trucks {
		out = append(out, *t)
	}
	return out, nil
}

func (f *fakeRepo) GetClient(_ context.Context, id int64) (*Client, error) {
	client, ok := f.clients[id]
	if !ok {
		return nil, ErrClientNotFound
	}
	return client, nil
}

func (f *fakeRepo) ListClients(_ context.Context) ([]Client, error) {
	var out []Client
	for _, c := range f.clients {
		out = append(out, *c)
	}
	return out, nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestService(repo *fakeRepo) *Service {
	svc := NewService(repo)
	svc.now = func() time.Time { return date(2025, time.January, 10) }
	return svc
}

func startTrip(t *testing.T, svc *Service) *Trip {
	t.Helper()
	trip, err := svc.StartTrip(context.Background(), StartTripRequest{
		TruckID: 1, DriverName: "Ramesh", StartDate: date(2025, time.January, 2), DriverAdvance: 5000,
	})
	require.NoError(t, err)
	return trip
}

func TestStartTrip(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	trip := startTrip(t, svc)
	require.Equal(t, TripStatusRunning, trip.Status)
	require.Equal(t, "MH31AB1234", trip.TruckNumber)
	require.Equal(t, 5000.0, trip.DriverAdvance)
	require.Zero(t, trip.TotalIncome)

	_, err := svc.StartTrip(context.Background(), StartTripRequest{
		TruckID: 99, DriverName: "Ramesh", StartDate: date(2025, time.January, 2),
	})
	require.ErrorIs(t, err, ErrTripNotFound)
}

func TestAddJourney(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	trip := startTrip(t, svc)

	t.Run("computes freight and accrues income", func(t *testing.T) {
		journey, err := svc.AddJourney(context.Background(), trip.ID, AddJourneyRequest{
			ClientID: 1, FromLocation: "Nagpur", ToLocation: "Pune",
			Weight: 25.5, RatePerTon: 1000, ClientAdvance: 2000,
		})
		require.NoError(t, err)
		require.Equal(t, 25500.0, journey.FreightAmount)
		require.Equal(t, "Mehta Traders", journey.ClientName)

		got, err := svc.GetTrip(context.Background(), trip.ID)
		require.NoError(t, err)
		require.Equal(t, 25500.0, got.TotalIncome)
	})

	t.Run("rounds fractional freight", func(t *testing.T) {
		journey, err := svc.AddJourney(context.Background(), trip.ID, AddJourneyRequest{
			ClientID: 1, FromLocation: "Pune", ToLocation: "Nagpur",
			Weight: 10.333, RatePerTon: 999.99,
		})
		require.NoError(t, err)
		require.Equal(t, 10332.9, journey.FreightAmount)
	})

	t.Run("unknown client", func(t *testing.T) {
		_, err := svc.AddJourney(context.Background(), trip.ID, AddJourneyRequest{
			ClientID: 42, FromLocation: "A", ToLocation: "B", Weight: 1, RatePerTon: 1,
		})
		require.ErrorIs(t, err, ErrClientNotFound)
	})

	t.Run("rejected after trip ends", func(t *testing.T) {
		_, err := svc.EndTrip(context.Background(), trip.ID, EndTripRequest{
			EndDate: date(2025, time.January, 9),
		})
		require.NoError(t, err)

		_, err = svc.AddJourney(context.Background(), trip.ID, AddJourneyRequest{
			ClientID: 1, FromLocation: "A", ToLocation: "B", Weight: 1, RatePerTon: 1,
		})
		require.ErrorIs(t, err, ErrTripNotRunning)
	})
}

func TestEndTrip(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	trip := startTrip(t, svc)

	_, err := svc.AddJourney(context.Background(), trip.ID, AddJourneyRequest{
		ClientID: 1, FromLocation: "Nagpur", ToLocation: "Pune", Weight: 20, RatePerTon: 2000,
	})
	require.NoError(t, err)

	t.Run("end before start rejected", func(t *testing.T) {
		_, err := svc.EndTrip(context.Background(), trip.ID, EndTripRequest{
			EndDate: date(2025, time.January, 1),
		})
		require.ErrorIs(t, err, ErrEndBeforeStart)
	})

	t.Run("fixes expenses and profit", func(t *testing.T) {
		got, err := svc.EndTrip(context.Background(), trip.ID, EndTripRequest{
			EndDate: date(2025, time.January, 9), TotalKm: 800, DieselQuantity: 200,
			DieselAmount: 18000, TollExpense: 2500, OtherExpense: 1500,
		})
		require.NoError(t, err)
		require.Equal(t, TripStatusCompleted, got.Status)
		// driver advance counts as a trip expense
		require.Equal(t, 27000.0, got.TotalExpense)
		require.Equal(t, 13000.0, got.Profit)
		require.Equal(t, 4.0, got.Mileage())
	})

	t.Run("cannot end twice", func(t *testing.T) {
		_, err := svc.EndTrip(context.Background(), trip.ID, EndTripRequest{
			EndDate: date(2025, time.January, 9),
		})
		require.ErrorIs(t, err, ErrTripNotRunning)
	})
}

func TestLockTrip(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	trip := startTrip(t, svc)

	t.Run("running trip cannot be locked", func(t *testing.T) {
		_, err := svc.LockTrip(context.Background(), trip.ID)
		require.ErrorIs(t, err, ErrTripNotCompleted)
	})

	t.Run("locks completed trip, idempotent", func(t *testing.T) {
		_, err := svc.EndTrip(context.Background(), trip.ID, EndTripRequest{
			EndDate: date(2025, time.January, 9),
		})
		require.NoError(t, err)

		locked, err := svc.LockTrip(context.Background(), trip.ID)
		require.NoError(t, err)
		require.Equal(t, TripStatusLocked, locked.Status)

		again, err := svc.LockTrip(context.Background(), trip.ID)
		require.NoError(t, err)
		require.Equal(t, TripStatusLocked, again.Status)
	})
}
