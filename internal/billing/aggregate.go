package billing

import (
	"github.com/Keshvi-8/fleet-ledger/internal/fleet"
)

// PeriodJourney pairs a journey with the trip context an invoice line
// needs (truck number, trip ID).
type PeriodJourney struct {
	Journey     fleet.Journey
	TripID      int64
	TruckNumber string
}

// JourneysInPeriod collects journeys from billable trips whose creation
// date falls inside the period. Running trips are excluded entirely;
// their journeys bill in a later cycle once the trip completes.
// Trip-slice order is preserved.
func JourneysInPeriod(trips []fleet.Trip, period Period) []PeriodJourney {
	var out []PeriodJourney
	for _, trip := range trips {
		if !trip.Status.Billable() {
			continue
		}
		for _, j := range trip.Journeys {
			if !period.Contains(j.CreatedAt) {
				continue
			}
			out = append(out, PeriodJourney{
				Journey:     j,
				TripID:      trip.ID,
				TruckNumber: trip.TruckNumber,
			})
		}
	}
	return out
}

// ClientGroup is one client's journeys within a period, in input order.
type ClientGroup struct {
	ClientID   int64
	ClientName string
	Journeys   []PeriodJourney
}

// GroupByClient buckets period journeys by client, preserving first-seen
// client order and input journey order within each group.
func GroupByClient(journeys []PeriodJourney) []ClientGroup {
	index := make(map[int64]int)
	var groups []ClientGroup
	for _, pj := range journeys {
		i, ok := index[pj.Journey.ClientID]
		if !ok {
			i = len(groups)
			index[pj.Journey.ClientID] = i
			groups = append(groups, ClientGroup{
				ClientID:   pj.Journey.ClientID,
				ClientName: pj.Journey.ClientName,
			})
		}
		groups[i].Journeys = append(groups[i].Journeys, pj)
	}
	return groups
}
