package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Keshvi-8/fleet-ledger/internal/fleet"
)

func completedTrip(id int64, truck string, journeys ...fleet.Journey) fleet.Trip {
	return fleet.Trip{ID: id, TruckNumber: truck, Status: fleet.TripStatusCompleted, Journeys: journeys}
}

func journey(id, clientID int64, freight, advance float64, on time.Time) fleet.Journey {
	return fleet.Journey{ID: id, ClientID: clientID, ClientName: "client", Weight: 10,
		RatePerTon: freight / 10, FreightAmount: freight, ClientAdvance: advance, CreatedAt: on}
}

func TestCalculateGST(t *testing.T) {
	t.Run("intra state splits the levy", func(t *testing.T) {
		gst := CalculateGST(85000, false)
		require.Equal(t, 7650.0, gst.CGST)
		require.Equal(t, 7650.0, gst.SGST)
		require.Equal(t, 0.0, gst.IGST)
		require.Equal(t, 15300.0, gst.Total)
	})

	t.Run("inter state charges igst", func(t *testing.T) {
		gst := CalculateGST(85000, true)
		require.Equal(t, 0.0, gst.CGST)
		require.Equal(t, 0.0, gst.SGST)
		require.Equal(t, 15300.0, gst.IGST)
		require.Equal(t, 15300.0, gst.Total)
	})

	t.Run("total equals sum of rounded components", func(t *testing.T) {
		// 9% of 100.55 is 9.0495, which rounds to 9.05 per component.
		gst := CalculateGST(100.55, false)
		require.Equal(t, 9.05, gst.CGST)
		require.Equal(t, 9.05, gst.SGST)
		require.Equal(t, 18.10, gst.Total)
	})
}

func TestGenerateBills(t *testing.T) {
	period := PeriodsForMonth(date(2025, time.January, 1))[0]
	clients := []fleet.Client{
		{ID: 1, Name: "Mehta Traders", GSTNumber: "27AAAAA0000A1Z5", Address: "Nagpur", WhatsappNumber: "+911234567890"},
		{ID: 2, Name: "Verma Logistics"},
	}

	t.Run("single client totals", func(t *testing.T) {
		trips := []fleet.Trip{completedTrip(1, "MH31AB1234",
			journey(1, 1, 50000, 10000, date(2025, time.January, 3)),
			journey(2, 1, 35000, 5000, date(2025, time.January, 12)),
		)}

		result, err := GenerateBills(trips, clients, period, GenerateOptions{})
		require.NoError(t, err)
		require.Len(t, result.Bills, 1)
		require.Zero(t, result.SkippedJourneys)

		bill := result.Bills[0]
		require.Equal(t, "INV-202501-0001", bill.BillNumber)
		require.Equal(t, "Mehta Traders", bill.ClientName)
		require.Equal(t, "27AAAAA0000A1Z5", bill.ClientGST)
		require.Len(t, bill.LineItems, 2)
		require.Equal(t, 85000.0, bill.Subtotal)
		require.Equal(t, 7650.0, bill.CGST)
		require.Equal(t, 7650.0, bill.SGST)
		require.Equal(t, 15300.0, bill.TotalGST)
		require.Equal(t, 100300.0, bill.GrandTotal)
		require.Equal(t, 15000.0, bill.TotalAdvance)
		require.Equal(t, 85300.0, bill.NetPayable)
		require.Equal(t, BillStatusGenerated, bill.Status)
		require.Equal(t, "MH31AB1234", bill.LineItems[0].TruckNumber)
	})

	t.Run("advance exceeding freight yields negative net payable", func(t *testing.T) {
		trips := []fleet.Trip{completedTrip(1, "MH31AB1234",
			journey(1, 1, 10000, 15000, date(2025, time.January, 3)),
		)}

		result, err := GenerateBills(trips, clients, period, GenerateOptions{})
		require.NoError(t, err)
		require.Len(t, result.Bills, 1)
		require.Equal(t, 11800.0, result.Bills[0].GrandTotal)
		require.Equal(t, -3200.0, result.Bills[0].NetPayable)
	})

	t.Run("one bill per client, numbered in first appearance order", func(t *testing.T) {
		trips := []fleet.Trip{
			completedTrip(1, "MH31AB1234",
				journey(1, 2, 20000, 0, date(2025, time.January, 4)),
				journey(2, 1, 30000, 0, date(2025, time.January, 5)),
			),
			completedTrip(2, "MH31CD5678",
				journey(3, 2, 10000, 0, date(2025, time.January, 9)),
			),
		}

		result, err := GenerateBills(trips, clients, period, GenerateOptions{})
		require.NoError(t, err)
		require.Len(t, result.Bills, 2)
		require.Equal(t, int64(2), result.Bills[0].ClientID)
		require.Equal(t, "INV-202501-0001", result.Bills[0].BillNumber)
		require.Equal(t, 30000.0, result.Bills[0].Subtotal)
		require.Len(t, result.Bills[0].LineItems, 2)
		require.Equal(t, int64(1), result.Bills[1].ClientID)
		require.Equal(t, "INV-202501-0002", result.Bills[1].BillNumber)
	})

	t.Run("running trips are excluded, locked trips bill", func(t *testing.T) {
		running := fleet.Trip{ID: 1, TruckNumber: "MH31AB1234", Status: fleet.TripStatusRunning,
			Journeys: []fleet.Journey{journey(1, 1, 50000, 0, date(2025, time.January, 3))}}
		locked := fleet.Trip{ID: 2, TruckNumber: "MH31CD5678", Status: fleet.TripStatusLocked,
			Journeys: []fleet.Journey{journey(2, 1, 20000, 0, date(2025, time.January, 4))}}

		result, err := GenerateBills([]fleet.Trip{running, locked}, clients, period, GenerateOptions{})
		require.NoError(t, err)
		require.Len(t, result.Bills, 1)
		require.Equal(t, 20000.0, result.Bills[0].Subtotal)
	})

	t.Run("journeys outside the period are excluded", func(t *testing.T) {
		trips := []fleet.Trip{completedTrip(1, "MH31AB1234",
			journey(1, 1, 50000, 0, date(2025, time.January, 15)),
			journey(2, 1, 20000, 0, date(2025, time.January, 16)),
		)}

		result, err := GenerateBills(trips, clients, period, GenerateOptions{})
		require.NoError(t, err)
		require.Len(t, result.Bills, 1)
		require.Equal(t, 50000.0, result.Bills[0].Subtotal)
	})

	t.Run("unknown client journeys are skipped and counted", func(t *testing.T) {
		trips := []fleet.Trip{completedTrip(1, "MH31AB1234",
			journey(1, 99, 50000, 0, date(2025, time.January, 3)),
			journey(2, 99, 10000, 0, date(2025, time.January, 4)),
			journey(3, 1, 20000, 0, date(2025, time.January, 5)),
		)}

		result, err := GenerateBills(trips, clients, period, GenerateOptions{})
		require.NoError(t, err)
		require.Len(t, result.Bills, 1)
		require.Equal(t, 2, result.SkippedJourneys)
		require.Equal(t, "INV-202501-0001", result.Bills[0].BillNumber)
	})

	t.Run("start sequence continues existing numbering", func(t *testing.T) {
		trips := []fleet.Trip{completedTrip(1, "MH31AB1234",
			journey(1, 1, 50000, 0, date(2025, time.January, 3)),
		)}

		result, err := GenerateBills(trips, clients, period, GenerateOptions{StartSequence: 7})
		require.NoError(t, err)
		require.Equal(t, "INV-202501-0007", result.Bills[0].BillNumber)
	})

	t.Run("empty period produces no bills", func(t *testing.T) {
		result, err := GenerateBills(nil, clients, period, GenerateOptions{})
		require.NoError(t, err)
		require.Empty(t, result.Bills)
	})

	t.Run("inverted period rejected", func(t *testing.T) {
		bad := Period{Start: date(2025, time.January, 15), End: date(2025, time.January, 1)}
		_, err := GenerateBills(nil, clients, bad, GenerateOptions{})
		require.ErrorIs(t, err, ErrInvalidPeriod)
	})
}
