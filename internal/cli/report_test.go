package cli

import (
	"strings"
	"testing"

	"github.com/ecclabs/wcost/internal/history"
	"github.com/ecclabs/wcost/internal/model"
	"github.com/ecclabs/wcost/internal/stats"
)

func sampleSession() *model.SessionResult {
	return &model.SessionResult{
		SessionID: "0a1b2c3d4e5f6a7b8c9d0e1f",
		Parent: &model.SessionLog{
			Tokens: map[string]model.TokenUsage{
				"claude-opus-4-6": {Input: 1000, Output: 200, Cache1h: 1500, CacheRead: 40000, Messages: 2},
			},
			FirstTS:  "2025-06-01T14:30:00Z",
			LastTS:   "2025-06-01T15:07:00Z",
			MsgCount: 2,
		},
		ParentCost: 0.04,
		Subagents: []model.SubagentResult{
			{
				File:     "agent-a1b2c3d4e5f6a7b8c9d0e1f2a3b4.jsonl",
				FirstMsg: "review the storage layer",
				Models:   "sonnet",
				Tokens:   map[string]model.TokenUsage{"claude-sonnet-4-5": {Input: 2000, Output: 1000, Messages: 4}},
				Cost:     0.021,
				MsgCount: 4,
			},
		},
		AllTokens: map[string]model.TokenUsage{
			"claude-opus-4-6":   {Input: 1000, Output: 200, Cache1h: 1500, CacheRead: 40000, Messages: 2},
			"claude-sonnet-4-5": {Input: 2000, Output: 1000, Messages: 4},
		},
		TotalCost: 0.061,
		Duration:  "37min",
	}
}

func TestSessionReport(t *testing.T) {
	out := SessionReport(sampleSession(), "myproject")

	wantLines := []string{
		"  WORKFLOW COST REPORT",
		"  Project: myproject",
		"  Session:   0a1b2c3d4e5f6a7b8c9d...",
		"  Duration:  37min",
		"  Messages:  2 (parent) + 4 (subagents)",
		"  PARENT CONVERSATION",
		"    [opus] 2 msgs | in:1,000 out:200 cache_w:1,500 cache_r:40,000",
		"    Subtotal: $0.04",
		"  SUBAGENTS (1)",
		"    agent-a1b2c3d4e5f6a7b8c9d0e1f2  [sonnet]  $0.02",
		"      review the storage layer",
		"  Total tokens:        45,700",
		"    Input:              3,000",
		"    Output:             1,200",
		"    Cache write:        1,500  (1h)",
		"    Cache read:        40,000",
		"  ESTIMATED COST: $0.06",
	}
	for _, want := range wantLines {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q\n%s", want, out)
		}
	}
	if n := strings.Count(out, strings.Repeat("=", 65)); n != 3 {
		t.Errorf("rule count = %d, want 3", n)
	}
}

func TestSessionReport_CacheTierAnnotation(t *testing.T) {
	r := sampleSession()
	u := r.AllTokens["claude-opus-4-6"]
	u.Cache5m = 500
	r.AllTokens["claude-opus-4-6"] = u

	out := SessionReport(r, "")
	if !strings.Contains(out, "(5m:500 1h:1,500)") {
		t.Errorf("missing tier breakdown:\n%s", out)
	}
	if strings.Contains(out, "  Project:") {
		t.Error("project line should be absent when name is empty")
	}
}

func TestScanReport(t *testing.T) {
	results := []*model.SessionResult{
		{
			SessionID: "s1",
			Parent:    &model.SessionLog{FirstTS: "2025-06-01T09:00:00Z", MsgCount: 3},
			AllTokens: map[string]model.TokenUsage{"claude-opus-4-6": {Messages: 3}},
			TotalCost: 1.0,
			Duration:  "5min",
		},
		{
			SessionID: "s2",
			Parent:    &model.SessionLog{FirstTS: "2025-06-01T10:00:00Z", MsgCount: 7},
			Subagents: []model.SubagentResult{{MsgCount: 2}},
			AllTokens: map[string]model.TokenUsage{"claude-opus-4-6": {Messages: 7}},
			TotalCost: 2.0,
			Duration:  "12min",
		},
	}
	summary := model.ScanSummary{
		Sessions:     2,
		Unreadable:   1,
		ParentMsgs:   10,
		SubagentMsgs: 2,
		TotalCost:    3.0,
		ByModel:      []model.ModelRollup{{Model: "opus", Sessions: 2, Msgs: 10, Cost: 3.0}},
	}

	out := ScanReport(results, summary, "myproject")

	wantLines := []string{
		"  ALL SESSIONS COST REPORT",
		"  Project: myproject",
		"  Sessions: 2 analyzed, 1 unreadable",
		"  Date                 Dur  Msgs  SAs Model         Cost",
		"  2025-06-01 09:00    5min     3    0 opus     $   1.00",
		"  2025-06-01 10:00   12min     7    1 opus     $   2.00",
		"  Model      Sessions   Messages         Cost  Avg/Session",
		"  opus              2         10 $      3.00 $      1.50",
		"  TOTAL: 2 sessions | 10 parent msgs | 2 subagent msgs",
		"  TOTAL ESTIMATED COST: $3.00",
	}
	for _, want := range wantLines {
		if !strings.Contains(out, want) {
			t.Errorf("scan report missing %q\n%s", want, out)
		}
	}
}

func TestTrackingSummary(t *testing.T) {
	records := []history.Record{
		{Date: "2025-06-01 09:00", Workflow: "ecc-dev-story", Story: "ST-1", Duration: "30min", TotalCost: 2.0},
		{Date: "2025-06-02 09:00", Workflow: "ecc-dev-story", Story: "ST-2", Duration: "50min", TotalCost: 4.0},
		{Date: "2025-06-03 09:00", Workflow: "ecc-e2e", Story: "", Duration: "?", TotalCost: 1.0},
	}

	out := TrackingSummary(records, "/tmp/workflow-costs.csv")

	wantLines := []string{
		"  WORKFLOW COST TRACKING SUMMARY",
		"  Source: /tmp/workflow-costs.csv",
		"  Total sessions tracked: 3",
		"  Total cost: $7.00",
		"  Workflow                   Count      Total        Avg   Avg Time",
		"  ecc-dev-story                  2 $    6.00 $    3.00      40min",
		"  ecc-e2e                        1 $    1.00 $    1.00          ?",
		"  Recent sessions:",
		"    2025-06-02 09:00   ecc-dev-story        ST-2            $    4.00  50min",
	}
	for _, want := range wantLines {
		if !strings.Contains(out, want) {
			t.Errorf("tracking summary missing %q\n%s", want, out)
		}
	}
}

func TestTrackingSummary_RecentCapsAtTen(t *testing.T) {
	var records []history.Record
	for i := 0; i < 15; i++ {
		records = append(records, history.Record{
			Date: "2025-06-01 09:00", Workflow: "w", Duration: "1min", TotalCost: 1,
		})
	}
	out := TrackingSummary(records, "x.csv")
	if n := strings.Count(out, "2025-06-01 09:00   w"); n != 10 {
		t.Errorf("recent rows = %d, want 10", n)
	}
}

func TestStatsSummary(t *testing.T) {
	trend := 40.0
	snap := &stats.Snapshot{
		TotalSessions: 30,
		TotalCost:     90,
		Averages:      stats.Averages{Overall: 3, Last10: 2.5, Last20: 2.8},
		Percentiles:   stats.Percentiles{P50: 2.4, P75: 3.1, P90: 4.9, P95: 6.2},
		Thresholds:    stats.Thresholds{Warning: 4.2, High: 5.6},
		Trend:         &trend,
		RecentOutliers: []stats.Outlier{
			{Date: "2025-06-03 11:00", SessionID: "abcdef123456", Cost: 5.0, Ratio: 1.8},
		},
		ByWorkflow: map[string]stats.WorkflowStat{
			"ecc-dev-story":   {Count: 12, Avg: 4, AvgLast10: 3.5, P50: 3.8, P75: 4.4, P90: 5.1},
			"ecc-code-review": {Count: 18, Avg: 2, AvgLast10: 1.5, P50: 1.8, P75: 2.4, P90: 3.1},
		},
	}

	out := StatsSummary(snap)

	wantLines := []string{
		"  WORKFLOW COST STATISTICS",
		"  Sessions analyzed: 30",
		"  Total cost: $90.00",
		"    Overall:       $    3.00",
		"    P95:           $    6.20",
		"    Warning (>):   $    4.20",
		"  Cost Trend (last 10 vs prev 10): +40.0%",
		"  Recent Outliers (1):",
		"    2025-06-03 11:00    $    5.00  (1.8x avg)  [abcdef123456]",
		"  Per-Workflow Breakdown:",
	}
	for _, want := range wantLines {
		if !strings.Contains(out, want) {
			t.Errorf("stats summary missing %q\n%s", want, out)
		}
	}

	// Busiest workflow first.
	review := strings.Index(out, "ecc-code-review")
	dev := strings.Index(out, "ecc-dev-story")
	if review == -1 || dev == -1 || review > dev {
		t.Errorf("workflow rows out of order (review at %d, dev at %d)", review, dev)
	}
}

func TestStatsSummary_Nil(t *testing.T) {
	out := StatsSummary(nil)
	if !strings.Contains(out, "No stats available") {
		t.Errorf("nil summary = %q", out)
	}
}

func TestStatsSummary_NoTrendLine(t *testing.T) {
	snap := &stats.Snapshot{TotalSessions: 5}
	out := StatsSummary(snap)
	if strings.Contains(out, "Cost Trend") {
		t.Error("trend line should be absent when trend is nil")
	}
	if strings.Contains(out, "Recent Outliers") {
		t.Error("outlier section should be absent when empty")
	}
}
