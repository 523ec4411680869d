package model

import "sort"

// ModelRollup aggregates cost and message volume under one short model name
// across many sessions. Used by the scan summary and the dashboard.
type ModelRollup struct {
	Model    string
	Sessions int
	Msgs     int
	Cost     float64
}

// SortRollups orders rollups by descending cost.
func SortRollups(rollups []ModelRollup) {
	sort.Slice(rollups, func(i, j int) bool {
		return rollups[i].Cost > rollups[j].Cost
	})
}

// ScanSummary is the cross-session aggregate produced by a full project scan.
type ScanSummary struct {
	Sessions     int
	Unreadable   int
	ParentMsgs   int
	SubagentMsgs int
	TotalCost    float64
	ByModel      []ModelRollup
}
