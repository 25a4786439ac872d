package fleet

import (
	"time"
)

// TripStatus enumerates trip lifecycle states.
type TripStatus string

const (
	TripStatusRunning   TripStatus = "running"
	TripStatusCompleted TripStatus = "completed"
	TripStatusLocked    TripStatus = "locked"
)

// Billable reports whether journeys on a trip in this state may be invoiced.
func (s TripStatus) Billable() bool {
	return s == TripStatusCompleted || s == TripStatusLocked
}

// Trip is a truck/driver assignment over a date range. Expense fields
// and EndDate are populated only once the trip is ended; running trips
// carry zero expense.
type Trip struct {
	ID            int64      `json:"id"`
	TruckID       int64      `json:"truck_id"`
	TruckNumber   string     `json:"truck_number"`
	DriverName    string     `json:"driver_name"`
	StartDate     time.Time  `json:"start_date"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	Status        TripStatus `json:"status"`
	DriverAdvance float64    `json:"driver_advance"`

	TotalKm        float64 `json:"total_km"`
	DieselQuantity float64 `json:"diesel_quantity"`
	DieselAmount   float64 `json:"diesel_amount"`
	TollExpense    float64 `json:"toll_expense"`
	OtherExpense   float64 `json:"other_expense"`

	TotalIncome  float64 `json:"total_income"`
	TotalExpense float64 `json:"total_expense"`
	Profit       float64 `json:"profit"`

	Journeys []Journey `json:"journeys"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EffectiveDate is the date a trip is attributed to in reports: the end
// date once ended, otherwise the start date.
func (t Trip) EffectiveDate() time.Time {
	if t.EndDate != nil {
		return *t.EndDate
	}
	return t.StartDate
}

// Mileage returns km per litre, or 0 when no diesel was recorded.
func (t Trip) Mileage() float64 {
	if t.DieselQuantity == 0 {
		return 0
	}
	return t.TotalKm / t.DieselQuantity
}

// Journey is a single client haul within a trip. Immutable once created;
// CreatedAt drives billing-period membership.
type Journey struct {
	ID            int64     `json:"id"`
	TripID        int64     `json:"trip_id"`
	ClientID      int64     `json:"client_id"`
	ClientName    string    `json:"client_name"`
	FromLocation  string    `json:"from_location"`
	ToLocation    string    `json:"to_location"`
	Weight        float64   `json:"weight"`
	RatePerTon    float64   `json:"rate_per_ton"`
	FreightAmount float64   `json:"freight_amount"`
	ClientAdvance float64   `json:"client_advance"`
	CreatedAt     time.Time `json:"created_at"`
}

// Client is read-only reference data for billing.
type Client struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	GSTNumber      string `json:"gst_number"`
	Address        string `json:"address"`
	WhatsappNumber string `json:"whatsapp_number"`
}

// Truck is read-only reference data for trips and expense reports.
type Truck struct {
	ID                 int64   `json:"id"`
	RegistrationNumber string  `json:"registration_number"`
	Model              string  `json:"model"`
	Capacity           float64 `json:"capacity"`
}

// StartTripRequest opens a new running trip.
type StartTripRequest struct {
	TruckID       int64     `json:"truck_id" validate:"required,gt=0"`
	DriverName    string    `json:"driver_name" validate:"required,max=200"`
	StartDate     time.Time `json:"start_date" validate:"required"`
	DriverAdvance float64   `json:"driver_advance" validate:"gte=0"`
}

// AddJourneyRequest appends a haul to a running trip.
type AddJourneyRequest struct {
	ClientID      int64   `json:"client_id" validate:"required,gt=0"`
	FromLocation  string  `json:"from_location" validate:"required,max=200"`
	ToLocation    string  `json:"to_location" validate:"required,max=200"`
	Weight        float64 `json:"weight" validate:"required,gt=0"`
	RatePerTon    float64 `json:"rate_per_ton" validate:"required,gt=0"`
	ClientAdvance float64 `json:"client_advance" validate:"gte=0"`
}

// EndTripRequest closes a running trip and fixes its expense fields.
type EndTripRequest struct {
	EndDate        time.Time `json:"end_date" validate:"required"`
	TotalKm        float64   `json:"total_km" validate:"gte=0"`
	DieselQuantity float64   `json:"diesel_quantity" validate:"gte=0"`
	DieselAmount   float64   `json:"diesel_amount" validate:"gte=0"`
	TollExpense    float64   `json:"toll_expense" validate:"gte=0"`
	OtherExpense   float64   `json:"other_expense" validate:"gte=0"`
}

// ListTripsRequest filters trip listings.
type ListTripsRequest struct {
	Status   TripStatus
	TruckID  int64
	DateFrom time.Time
	DateTo   time.Time
	Limit    int
	Offset   int
}
