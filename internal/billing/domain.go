package billing

import (
	"time"

	"github.com/Keshvi-8/fleet-ledger/internal/shared"
)

// GST rates for freight services. Intra-state supplies split the levy
// into CGST and SGST halves; inter-state supplies charge IGST at the
// combined rate.
const (
	CGSTRate = 0.09
	SGSTRate = 0.09
	IGSTRate = CGSTRate + SGSTRate
)

// BillStatus enumerates invoice lifecycle states.
type BillStatus string

const (
	BillStatusGenerated BillStatus = "generated"
	BillStatusSent      BillStatus = "sent"
	BillStatusPaid      BillStatus = "paid"
)

// GSTBreakdown is the tax levied on a bill's subtotal. Each component
// is rounded to 2 decimals independently and Total is the sum of the
// rounded components, so the printed lines always add up.
type GSTBreakdown struct {
	CGST  float64 `json:"cgst"`
	SGST  float64 `json:"sgst"`
	IGST  float64 `json:"igst"`
	Total float64 `json:"total"`
}

// CalculateGST computes the levy on a subtotal. interState selects
// IGST over the CGST/SGST split.
func CalculateGST(subtotal float64, interState bool) GSTBreakdown {
	if interState {
		igst := shared.Round2(subtotal * IGSTRate)
		return GSTBreakdown{IGST: igst, Total: igst}
	}
	cgst := shared.Round2(subtotal * CGSTRate)
	sgst := shared.Round2(subtotal * SGSTRate)
	return GSTBreakdown{CGST: cgst, SGST: sgst, Total: cgst + sgst}
}

// Bill is a GST invoice for one client over one billing period. Client
// details are snapshotted at generation time so later edits to the
// client record do not rewrite issued invoices.
type Bill struct {
	ID         int64  `json:"id"`
	BillNumber string `json:"bill_number"`

	ClientID       int64  `json:"client_id"`
	ClientName     string `json:"client_name"`
	ClientGST      string `json:"client_gst"`
	ClientAddress  string `json:"client_address"`
	ClientWhatsapp string `json:"client_whatsapp"`

	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	PeriodLabel string    `json:"period_label"`

	LineItems []BillLineItem `json:"line_items"`

	Subtotal     float64 `json:"subtotal"`
	CGST         float64 `json:"cgst"`
	SGST         float64 `json:"sgst"`
	IGST         float64 `json:"igst"`
	TotalGST     float64 `json:"total_gst"`
	TotalAdvance float64 `json:"total_advance"`
	GrandTotal   float64 `json:"grand_total"`
	// NetPayable may be negative when advances exceed the invoiced
	// amount; the surplus is a credit owed back to the client.
	NetPayable float64 `json:"net_payable"`

	Status      BillStatus `json:"status"`
	GeneratedAt time.Time  `json:"generated_at"`
	SentAt      *time.Time `json:"sent_at,omitempty"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`

	Payments []Payment `json:"payments"`
}

// AmountPaid sums the recorded payments.
func (b Bill) AmountPaid() float64 {
	var paid float64
	for _, p := range b.Payments {
		paid += p.Amount
	}
	return paid
}

// AgeDays is the whole number of days since the bill was generated.
func (b Bill) AgeDays(now time.Time) int {
	if now.Before(b.GeneratedAt) {
		return 0
	}
	return int(now.Sub(b.GeneratedAt).Hours() / 24)
}

// BillLineItem is one journey rendered on an invoice. Quantities are
// copied from the journey at generation time.
type BillLineItem struct {
	ID            int64     `json:"id"`
	JourneyID     int64     `json:"journey_id"`
	TripID        int64     `json:"trip_id"`
	TruckNumber   string    `json:"truck_number"`
	FromLocation  string    `json:"from_location"`
	ToLocation    string    `json:"to_location"`
	Weight        float64   `json:"weight"`
	RatePerTon    float64   `json:"rate_per_ton"`
	FreightAmount float64   `json:"freight_amount"`
	ClientAdvance float64   `json:"client_advance"`
	Date          time.Time `json:"date"`
}

// PaymentMode enumerates accepted settlement channels.
type PaymentMode string

const (
	PaymentModeCash PaymentMode = "cash"
	PaymentModeBank PaymentMode = "bank"
	PaymentModeUPI  PaymentMode = "upi"
)

// Valid reports whether the mode is one of the accepted channels.
func (m PaymentMode) Valid() bool {
	switch m {
	case PaymentModeCash, PaymentModeBank, PaymentModeUPI:
		return true
	}
	return false
}

// Payment is an append-only ledger entry against a bill.
type Payment struct {
	ID         int64       `json:"id"`
	BillID     int64       `json:"bill_id"`
	Amount     float64     `json:"amount"`
	Date       time.Time   `json:"date"`
	Mode       PaymentMode `json:"mode"`
	Reference  string      `json:"reference,omitempty"`
	Notes      string      `json:"notes,omitempty"`
	RecordedAt time.Time   `json:"recorded_at"`
}
