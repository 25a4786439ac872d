// Package export renders receivables snapshots for download.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/Keshvi-8/fleet-ledger/internal/receivables"
)

var csvHeader = []string{
	"client_id", "client_name", "bill_count", "outstanding",
	"current_0_30", "days_31_60", "days_61_90", "over_90", "oldest_bill_days",
}

// CSV writes a snapshot as CSV, one row per client plus a totals row.
func CSV(w io.Writer, snap receivables.Snapshot) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, c := range snap.Clients {
		row := []string{
			strconv.FormatInt(c.ClientID, 10),
			c.ClientName,
			strconv.Itoa(c.BillCount),
			amount(c.Outstanding),
			amount(c.Buckets.Current),
			amount(c.Buckets.Days31to60),
			amount(c.Buckets.Days61to90),
			amount(c.Buckets.Over90),
			strconv.Itoa(c.OldestBillDays),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	total := []string{
		"", "TOTAL",
		strconv.Itoa(snap.UnpaidBills),
		amount(snap.TotalOutstanding),
		amount(snap.Buckets.Current),
		amount(snap.Buckets.Days31to60),
		amount(snap.Buckets.Days61to90),
		amount(snap.Buckets.Over90),
		"",
	}
	if err := cw.Write(total); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func amount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
