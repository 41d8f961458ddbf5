package core

import "sort"

// TypeSummary aggregates bills of one type.
type TypeSummary struct {
	Type    BillType `json:"type"`
	Count   int      `json:"count"`
	Revenue Amount   `json:"revenue"`
}

// Overview is the dashboard summary across all stored bills.
type Overview struct {
	TotalRevenue Amount        `json:"totalRevenue"`
	BillCount    int           `json:"billCount"`
	ByType       []TypeSummary `json:"byType"`
	Recent       []Bill        `json:"recent"`
}

// RecentLimit is how many bills the overview lists as recent.
const RecentLimit = 5

// Summarize builds the overview. Recent bills are ordered by bill date,
// newest first; ties keep insertion order.
func Summarize(bills []Bill) Overview {
	ov := Overview{BillCount: len(bills)}
	byType := map[BillType]*TypeSummary{
		Corporate: {Type: Corporate},
		Event:     {Type: Event},
	}
	for _, b := range bills {
		ov.TotalRevenue += b.GrandTotal
		if s, ok := byType[b.Type]; ok {
			s.Count++
			s.Revenue += b.GrandTotal
		}
	}
	ov.ByType = []TypeSummary{*byType[Corporate], *byType[Event]}

	recent := make([]Bill, len(bills))
	copy(recent, bills)
	// DateLayout strings sort chronologically
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].Date > recent[j].Date
	})
	if len(recent) > RecentLimit {
		recent = recent[:RecentLimit]
	}
	ov.Recent = recent
	return ov
}
