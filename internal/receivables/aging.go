package receivables

import (
	"sort"
	"time"

	"github.com/Keshvi-8/fleet-ledger/internal/billing"
	"github.com/Keshvi-8/fleet-ledger/internal/shared"
)

// AgingBuckets splits outstanding amounts by bill age in days.
// Bucket boundaries are inclusive of the upper edge: a 30 day old bill
// is current, a 31 day old bill is overdue.
type AgingBuckets struct {
	Current    float64 `json:"current"` // 0-30 days
	Days31to60 float64 `json:"days_31_to_60"`
	Days61to90 float64 `json:"days_61_to_90"`
	Over90     float64 `json:"over_90"`
}

// Add places an amount in the bucket for the given age.
func (b *AgingBuckets) Add(amount float64, ageDays int) {
	switch {
	case ageDays <= 30:
		b.Current += amount
	case ageDays <= 60:
		b.Days31to60 += amount
	case ageDays <= 90:
		b.Days61to90 += amount
	default:
		b.Over90 += amount
	}
}

func (b *AgingBuckets) round() {
	b.Current = shared.Round2(b.Current)
	b.Days31to60 = shared.Round2(b.Days31to60)
	b.Days61to90 = shared.Round2(b.Days61to90)
	b.Over90 = shared.Round2(b.Over90)
}

// OutstandingBill is one unpaid bill as it appears in a client rollup.
type OutstandingBill struct {
	BillID      int64     `json:"bill_id"`
	BillNumber  string    `json:"bill_number"`
	NetPayable  float64   `json:"net_payable"`
	AgeDays     int       `json:"age_days"`
	GeneratedAt time.Time `json:"generated_at"`
}

// ClientReceivables aggregates a client's unpaid bills. Amounts use the
// full net payable of each unpaid bill; partial payments do not shrink
// the aged amount, they only settle the bill once complete. Bills are
// listed oldest first.
type ClientReceivables struct {
	ClientID       int64             `json:"client_id"`
	ClientName     string            `json:"client_name"`
	BillCount      int               `json:"bill_count"`
	Outstanding    float64           `json:"outstanding"`
	OldestBillDays int               `json:"oldest_bill_days"`
	Buckets        AgingBuckets      `json:"buckets"`
	Bills          []OutstandingBill `json:"bills"`
}

// Snapshot is the receivables position at a point in time.
type Snapshot struct {
	GeneratedAt      time.Time           `json:"generated_at"`
	TotalOutstanding float64             `json:"total_outstanding"`
	UnpaidBills      int                 `json:"unpaid_bills"`
	Buckets          AgingBuckets        `json:"buckets"`
	Clients          []ClientReceivables `json:"clients"`
}

// BuildSnapshot computes the receivables position from a bill listing.
// Only paid bills are excluded: a credit bill (negative net payable)
// stays in the report with its negative amount so the sum owed back to
// the client remains visible.
// Clients are ordered by outstanding amount, largest first; ties break
// on client ID for a stable report.
func BuildSnapshot(bills []billing.Bill, now time.Time) Snapshot {
	snap := Snapshot{GeneratedAt: now}
	index := make(map[int64]int)

	for _, bill := range bills {
		if bill.Status == billing.BillStatusPaid {
			continue
		}
		age := bill.AgeDays(now)

		i, ok := index[bill.ClientID]
		if !ok {
			i = len(snap.Clients)
			index[bill.ClientID] = i
			snap.Clients = append(snap.Clients, ClientReceivables{
				ClientID:   bill.ClientID,
				ClientName: bill.ClientName,
			})
		}
		client := &snap.Clients[i]
		client.BillCount++
		client.Outstanding += bill.NetPayable
		client.Buckets.Add(bill.NetPayable, age)
		client.Bills = append(client.Bills, OutstandingBill{
			BillID:      bill.ID,
			BillNumber:  bill.BillNumber,
			NetPayable:  bill.NetPayable,
			AgeDays:     age,
			GeneratedAt: bill.GeneratedAt,
		})
		if age > client.OldestBillDays {
			client.OldestBillDays = age
		}

		snap.UnpaidBills++
		snap.TotalOutstanding += bill.NetPayable
		snap.Buckets.Add(bill.NetPayable, age)
	}

	for i := range snap.Clients {
		snap.Clients[i].Outstanding = shared.Round2(snap.Clients[i].Outstanding)
		snap.Clients[i].Buckets.round()
		bills := snap.Clients[i].Bills
		sort.SliceStable(bills, func(a, b int) bool {
			return bills[a].GeneratedAt.Before(bills[b].GeneratedAt)
		})
	}
	snap.TotalOutstanding = shared.Round2(snap.TotalOutstanding)
	snap.Buckets.round()

	sort.SliceStable(snap.Clients, func(i, j int) bool {
		if snap.Clients[i].Outstanding != snap.Clients[j].Outstanding {
			return snap.Clients[i].Outstanding > snap.Clients[j].Outstanding
		}
		return snap.Clients[i].ClientID < snap.Clients[j].ClientID
	})
	return snap
}
