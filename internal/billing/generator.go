package billing

import (
	"fmt"
	"time"

	"github.com/Keshvi-8/fleet-ledger/internal/fleet"
	"github.com/Keshvi-8/fleet-ledger/internal/shared"
)

// GenerateOptions tunes a generation run.
type GenerateOptions struct {
	// InterState levies IGST instead of the CGST/SGST split.
	InterState bool
	// StartSequence seeds invoice numbering for the period. The caller
	// is responsible for serializing runs over the same period.
	StartSequence int
	// Now stamps GeneratedAt; defaults to time.Now.
	Now func() time.Time
}

// GenerateResult carries the produced bills plus generation diagnostics.
type GenerateResult struct {
	Bills []Bill `json:"bills"`
	// SkippedJourneys counts journeys dropped because their client no
	// longer exists in the directory.
	SkippedJourneys int `json:"skipped_journeys"`
}

// GenerateBills produces one invoice per client with billable journeys
// in the period. Pure over its inputs apart from the GeneratedAt
// timestamp; persistence belongs to the caller.
//
// Bill ordering follows first journey appearance, and invoice numbers
// are assigned in that order: INV-YYYYMM-NNNN, year and month taken
// from the period start.
func GenerateBills(trips []fleet.Trip, clients []fleet.Client, period Period, opts GenerateOptions) (GenerateResult, error) {
	if period.Start.After(period.End) {
		return GenerateResult{}, ErrInvalidPeriod
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	seq := opts.StartSequence
	if seq < 1 {
		seq = 1
	}

	byID := make(map[int64]fleet.Client, len(clients))
	for _, c := range clients {
		byID[c.ID] = c
	}

	var result GenerateResult
	for _, group := range GroupByClient(JourneysInPeriod(trips, period)) {
		client, ok := byID[group.ClientID]
		if !ok {
			result.SkippedJourneys += len(group.Journeys)
			continue
		}

		bill := Bill{
			BillNumber:     invoiceNumber(period, seq),
			ClientID:       client.ID,
			ClientName:     client.Name,
			ClientGST:      client.GSTNumber,
			ClientAddress:  client.Address,
			ClientWhatsapp: client.WhatsappNumber,
			PeriodStart:    period.Start,
			PeriodEnd:      period.End,
			PeriodLabel:    period.Label,
			Status:         BillStatusGenerated,
			GeneratedAt:    now(),
		}
		for _, pj := range group.Journeys {
			j := pj.Journey
			bill.LineItems = append(bill.LineItems, BillLineItem{
				JourneyID:     j.ID,
				TripID:        pj.TripID,
				TruckNumber:   pj.TruckNumber,
				FromLocation:  j.FromLocation,
				ToLocation:    j.ToLocation,
				Weight:        j.Weight,
				RatePerTon:    j.RatePerTon,
				FreightAmount: j.FreightAmount,
				ClientAdvance: j.ClientAdvance,
				Date:          j.CreatedAt,
			})
			bill.Subtotal += j.FreightAmount
			bill.TotalAdvance += j.ClientAdvance
		}
		bill.Subtotal = shared.Round2(bill.Subtotal)
		bill.TotalAdvance = shared.Round2(bill.TotalAdvance)

		gst := CalculateGST(bill.Subtotal, opts.InterState)
		bill.CGST = gst.CGST
		bill.SGST = gst.SGST
		bill.IGST = gst.IGST
		bill.TotalGST = gst.Total
		bill.GrandTotal = shared.Round2(bill.Subtotal + bill.TotalGST)
		bill.NetPayable = shared.Round2(bill.GrandTotal - bill.TotalAdvance)

		result.Bills = append(result.Bills, bill)
		seq++
	}
	return result, nil
}

func invoiceNumber(period Period, seq int) string {
	return fmt.Sprintf("INV-%04d%02d-%04d", period.Start.Year(), int(period.Start.Month()), seq)
}
