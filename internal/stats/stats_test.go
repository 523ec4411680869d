package stats

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ecclabs/wcost/internal/history"
)

func costRows(costs ...float64) []history.Record {
	rows := make([]history.Record, len(costs))
	for i, c := range costs {
		rows[i] = history.Record{
			Date:      "2025-06-01 10:00",
			SessionID: "session-" + string(rune('a'+i%26)),
			TotalCost: c,
		}
	}
	return rows
}

func TestPercentile(t *testing.T) {
	v := []float64{1, 2, 3, 4, 5}
	tests := []struct {
		p    float64
		want float64
	}{
		{0, 1},
		{50, 3},
		{100, 5},
		{25, 2},
		{90, 4.6},
	}
	for _, tt := range tests {
		if got := Percentile(v, tt.p); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Percentile(%.0f) = %v, want %v", tt.p, got, tt.want)
		}
	}

	// Even-length interpolation.
	if got := Percentile([]float64{1, 2, 3, 4}, 50); got != 2.5 {
		t.Errorf("Percentile(50) of 4 values = %v, want 2.5", got)
	}
	if got := Percentile([]float64{7}, 95); got != 7 {
		t.Errorf("Percentile of single value = %v, want 7", got)
	}
}

func TestCompute_ExcludesZeroCostSessions(t *testing.T) {
	rows := costRows(1.00, 1.00, 0, 1.00, 0, 1.00)
	s := Compute(rows, "/tmp/costs.csv")
	if s == nil {
		t.Fatal("nil snapshot")
	}
	if s.TotalSessions != 4 {
		t.Errorf("TotalSessions = %d, want 4 (zero-cost rows dropped)", s.TotalSessions)
	}
	if s.Averages.Overall != 1.00 {
		t.Errorf("overall average = %.2f, want 1.00 — zero rows must not dilute it", s.Averages.Overall)
	}
}

func TestCompute_EmptyAndAllZero(t *testing.T) {
	if s := Compute(nil, "x"); s != nil {
		t.Error("snapshot for no records should be nil")
	}
	if s := Compute(costRows(0, 0), "x"); s != nil {
		t.Error("snapshot for all-zero records should be nil")
	}
}

func TestCompute_OutliersAndTrend(t *testing.T) {
	// 19 sessions at $1.00 and one at $5.00: last-20 average is $1.20,
	// warning = max(P75, 1.5*1.20) = 1.80, high = max(P90, 2.4) = 2.40.
	costs := make([]float64, 20)
	for i := range costs {
		costs[i] = 1.00
	}
	costs[19] = 5.00
	s := Compute(costRows(costs...), "x")
	if s == nil {
		t.Fatal("nil snapshot")
	}

	if s.Averages.Last20 != 1.20 {
		t.Errorf("avg last20 = %.2f, want 1.20", s.Averages.Last20)
	}
	if s.Thresholds.Warning != 1.80 || s.Thresholds.High != 2.40 {
		t.Errorf("thresholds = %.2f/%.2f, want 1.80/2.40", s.Thresholds.Warning, s.Thresholds.High)
	}

	if len(s.RecentOutliers) != 1 {
		t.Fatalf("outliers = %d, want 1", len(s.RecentOutliers))
	}
	o := s.RecentOutliers[0]
	if o.Cost != 5.00 {
		t.Errorf("outlier cost = %.2f, want 5.00", o.Cost)
	}
	if o.Ratio != 4.2 {
		t.Errorf("outlier ratio = %.1f, want 4.2 (5.00/1.20 rounded)", o.Ratio)
	}

	if s.Trend == nil {
		t.Fatal("trend should be set with 20 sessions")
	}
	// Previous 10 average 1.00, last 10 average 1.40: +40%.
	if *s.Trend != 40.0 {
		t.Errorf("trend = %.1f, want 40.0", *s.Trend)
	}
}

func TestCompute_TrendNeedsTwentySessions(t *testing.T) {
	s := Compute(costRows(1, 2, 3, 4, 5, 6, 7, 8, 9, 10), "x")
	if s == nil {
		t.Fatal("nil snapshot")
	}
	if s.Trend != nil {
		t.Errorf("trend = %v, want nil below 20 sessions", *s.Trend)
	}
}

func TestCompute_ByWorkflow(t *testing.T) {
	rows := costRows(2.00, 4.00, 6.00, 1.00)
	rows[0].Workflow = "ecc-dev-story"
	rows[1].Workflow = "ecc-dev-story"
	rows[2].Workflow = "ecc-e2e"
	rows[3].Workflow = "   " // blank after trimming: excluded

	s := Compute(rows, "x")
	if s == nil {
		t.Fatal("nil snapshot")
	}
	if len(s.ByWorkflow) != 2 {
		t.Fatalf("ByWorkflow has %d entries, want 2", len(s.ByWorkflow))
	}
	dev := s.ByWorkflow["ecc-dev-story"]
	if dev.Count != 2 || dev.TotalCost != 6.00 || dev.Avg != 3.00 {
		t.Errorf("dev-story stats = %+v", dev)
	}
	if dev.P50 != 3.00 {
		t.Errorf("dev-story p50 = %.2f, want 3.00", dev.P50)
	}
	e2e := s.ByWorkflow["ecc-e2e"]
	if e2e.Count != 1 || e2e.TotalCost != 6.00 {
		t.Errorf("e2e stats = %+v", e2e)
	}
}

func TestCompute_ByModelKeyedByLabel(t *testing.T) {
	rows := costRows(1.00, 2.00, 3.00)
	rows[0].Models = "opus"
	rows[1].Models = "opus, sonnet"
	rows[2].Models = "opus"

	s := Compute(rows, "x")
	if s == nil {
		t.Fatal("nil snapshot")
	}
	if st := s.ByModel["opus"]; st.Count != 2 || st.TotalCost != 4.00 {
		t.Errorf("opus stat = %+v, want count 2 cost 4.00", st)
	}
	if st := s.ByModel["opus, sonnet"]; st.Count != 1 {
		t.Errorf("combined label stat = %+v", st)
	}
}

func TestWriteFile_ShapeAndNullables(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "workflow-cost-stats.json")

	s := Compute(costRows(1.00, 2.00), "/tmp/costs.csv")
	if s == nil {
		t.Fatal("nil snapshot")
	}
	if err := WriteFile(s, path); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("stats file is not valid JSON: %v", err)
	}
	for _, key := range []string{
		"generated", "csv_path", "total_sessions", "total_cost",
		"averages", "percentiles", "thresholds",
		"trend_last10_vs_prev10_pct", "recent_outliers", "by_model", "by_workflow",
	} {
		if _, ok := doc[key]; !ok {
			t.Errorf("stats JSON missing key %q", key)
		}
	}
	if string(doc["trend_last10_vs_prev10_pct"]) != "null" {
		t.Errorf("trend = %s, want null below 20 sessions", doc["trend_last10_vs_prev10_pct"])
	}
	if got := strings.TrimSpace(string(doc["by_workflow"])); got != "{}" {
		t.Errorf("by_workflow = %s, want {}", got)
	}
	if !strings.Contains(string(data), "\n  \"csv_path\"") {
		t.Error("output should be two-space indented")
	}
}

func TestWriteFile_OutliersNeverNull(t *testing.T) {
	s := Compute(costRows(1.00), "x")
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), `"recent_outliers":null`) {
		t.Error("recent_outliers must marshal as [], not null")
	}
}
