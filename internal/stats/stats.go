// Package stats computes cost statistics over the tracking history:
// rolling averages, percentiles, outlier thresholds, and per-model and
// per-workflow breakdowns. The snapshot is recomputed in full on every
// run; history stays small enough that incremental updates would buy
// nothing.
package stats

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ecclabs/wcost/internal/history"
)

// Snapshot is the stats document written next to the tracking CSV.
type Snapshot struct {
	Generated      string                  `json:"generated"`
	CSVPath        string                  `json:"csv_path"`
	TotalSessions  int                     `json:"total_sessions"`
	TotalCost      float64                 `json:"total_cost"`
	Averages       Averages                `json:"averages"`
	Percentiles    Percentiles             `json:"percentiles"`
	Thresholds     Thresholds              `json:"thresholds"`
	Trend          *float64                `json:"trend_last10_vs_prev10_pct"`
	RecentOutliers []Outlier               `json:"recent_outliers"`
	ByModel        map[string]ModelStat    `json:"by_model"`
	ByWorkflow     map[string]WorkflowStat `json:"by_workflow"`
}

type Averages struct {
	Overall float64 `json:"overall"`
	Last10  float64 `json:"last_10"`
	Last20  float64 `json:"last_20"`
}

type Percentiles struct {
	P50 float64 `json:"p50"`
	P75 float64 `json:"p75"`
	P90 float64 `json:"p90"`
	P95 float64 `json:"p95"`
}

// Thresholds hold the outlier cut lines: warning at max(P75, 1.5x the
// last-20 average), high at max(P90, 2x).
type Thresholds struct {
	Warning float64 `json:"warning"`
	High    float64 `json:"high"`
}

// Outlier is a recent session at or above the warning threshold.
type Outlier struct {
	Date      string  `json:"date"`
	SessionID string  `json:"session_id"`
	Cost      float64 `json:"cost"`
	Ratio     float64 `json:"ratio"`
}

type ModelStat struct {
	Count     int     `json:"count"`
	TotalCost float64 `json:"total_cost"`
}

type WorkflowStat struct {
	Count     int     `json:"count"`
	TotalCost float64 `json:"total_cost"`
	Avg       float64 `json:"avg"`
	AvgLast10 float64 `json:"avg_last_10"`
	P50       float64 `json:"p50"`
	P75       float64 `json:"p75"`
	P90       float64 `json:"p90"`
}

// Percentile returns the linearly interpolated percentile of ascending
// values. p is in [0, 100]; sorted must be non-empty.
func Percentile(sorted []float64, p float64) float64 {
	k := p / 100 * float64(len(sorted)-1)
	f := int(k)
	c := f + 1
	if c >= len(sorted) {
		c = f
	}
	return sorted[f] + (k-float64(f))*(sorted[c]-sorted[f])
}

// Compute builds a snapshot from history records in stored order.
// Zero-cost rows (empty or aborted sessions) are excluded everywhere:
// from counts, averages, percentiles, and breakdowns. Returns nil when
// nothing has a positive cost.
func Compute(records []history.Record, csvPath string) *Snapshot {
	var rows []history.Record
	for _, r := range records {
		if r.TotalCost > 0 {
			rows = append(rows, r)
		}
	}
	if len(rows) == 0 {
		return nil
	}

	costs := make([]float64, len(rows))
	for i, r := range rows {
		costs[i] = r.TotalCost
	}
	sorted := append([]float64(nil), costs...)
	sort.Float64s(sorted)
	n := len(sorted)

	last10 := tail(costs, 10)
	last20 := tail(costs, 20)
	avgOverall := mean(costs)
	avgLast10 := mean(last10)
	avgLast20 := mean(last20)

	p50 := Percentile(sorted, 50)
	p75 := Percentile(sorted, 75)
	p90 := Percentile(sorted, 90)
	p95 := Percentile(sorted, 95)

	warning := math.Max(p75, avgLast20*1.5)
	high := math.Max(p90, avgLast20*2.0)

	outliers := []Outlier{}
	for _, r := range tailRecords(rows, 20) {
		if r.TotalCost < warning {
			continue
		}
		ratio := 0.0
		if avgLast20 > 0 {
			ratio = r.TotalCost / avgLast20
		}
		outliers = append(outliers, Outlier{
			Date:      r.Date,
			SessionID: r.SessionID,
			Cost:      r.TotalCost,
			Ratio:     round1(ratio),
		})
	}

	var trend *float64
	if n >= 20 {
		prev10 := costs[n-20 : n-10]
		avgPrev10 := mean(prev10)
		if avgPrev10 > 0 {
			pct := round1((avgLast10 - avgPrev10) / avgPrev10 * 100)
			trend = &pct
		}
	}

	byModel := make(map[string]ModelStat)
	for _, r := range rows {
		key := r.Models
		if key == "" {
			key = "unknown"
		}
		st := byModel[key]
		st.Count++
		st.TotalCost += r.TotalCost
		byModel[key] = st
	}

	wfCosts := make(map[string][]float64)
	for _, r := range rows {
		wf := strings.TrimSpace(r.Workflow)
		if wf == "" {
			continue
		}
		wfCosts[wf] = append(wfCosts[wf], r.TotalCost)
	}
	byWorkflow := make(map[string]WorkflowStat, len(wfCosts))
	for wf, cs := range wfCosts {
		wfSorted := append([]float64(nil), cs...)
		sort.Float64s(wfSorted)
		byWorkflow[wf] = WorkflowStat{
			Count:     len(cs),
			TotalCost: round2(sum(cs)),
			Avg:       round2(mean(cs)),
			AvgLast10: round2(mean(tail(cs, 10))),
			P50:       round2(Percentile(wfSorted, 50)),
			P75:       round2(Percentile(wfSorted, 75)),
			P90:       round2(Percentile(wfSorted, 90)),
		}
	}

	return &Snapshot{
		Generated:     time.Now().Format(time.RFC3339),
		CSVPath:       csvPath,
		TotalSessions: n,
		TotalCost:     round2(sum(costs)),
		Averages: Averages{
			Overall: round2(avgOverall),
			Last10:  round2(avgLast10),
			Last20:  round2(avgLast20),
		},
		Percentiles: Percentiles{
			P50: round2(p50),
			P75: round2(p75),
			P90: round2(p90),
			P95: round2(p95),
		},
		Thresholds: Thresholds{
			Warning: round2(warning),
			High:    round2(high),
		},
		Trend:          trend,
		RecentOutliers: outliers,
		ByModel:        byModel,
		ByWorkflow:     byWorkflow,
	}
}

// WriteFile writes the snapshot as indented JSON, creating parent
// directories as needed.
func WriteFile(s *Snapshot, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func tail(v []float64, n int) []float64 {
	if len(v) <= n {
		return v
	}
	return v[len(v)-n:]
}

func tailRecords(v []history.Record, n int) []history.Record {
	if len(v) <= n {
		return v
	}
	return v[len(v)-n:]
}

func sum(v []float64) float64 {
	total := 0.0
	for _, x := range v {
		total += x
	}
	return total
}

func mean(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	return sum(v) / float64(len(v))
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round1(v float64) float64 { return math.Round(v*10) / 10 }
