package cli

import (
	"strings"
	"testing"

	"github.com/ecclabs/wcost/internal/stats"
)

func noticeSnapshot() *stats.Snapshot {
	return &stats.Snapshot{
		TotalSessions: 30,
		Averages:      stats.Averages{Overall: 3, Last10: 2.5, Last20: 2.8},
		Percentiles:   stats.Percentiles{P50: 2.4, P75: 3.1, P90: 4.9, P95: 6.2},
		Thresholds:    stats.Thresholds{Warning: 4.2, High: 5.6},
		ByWorkflow: map[string]stats.WorkflowStat{
			"ecc-dev-story": {Count: 12, Avg: 4, AvgLast10: 3.5, P50: 3.8, P75: 4.4, P90: 5.1},
		},
	}
}

func TestCostNotice_NoHistory(t *testing.T) {
	got := CostNotice(1.23, nil, "")
	want := "\n  Session Cost: $1.23\n  (No historical data for comparison)\n\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCostNotice_OK(t *testing.T) {
	out := CostNotice(1.0, noticeSnapshot(), "")

	wantLines := []string{
		"|  COST NOTICE",
		"|     Session Cost: $    1.00",
		"|     All sessions avg (10): $    2.50",
		"|     All sessions avg:      $    3.00  (30 total)",
	}
	for _, want := range wantLines {
		if !strings.Contains(out, want) {
			t.Errorf("notice missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "!!") || strings.Contains(out, "P90 threshold") {
		t.Errorf("OK notice carries warning content:\n%s", out)
	}
}

func TestCostNotice_WarnShowsThreshold(t *testing.T) {
	out := CostNotice(4.5, noticeSnapshot(), "")

	if !strings.Contains(out, "|  !  Session Cost: $    4.50  (1.8x avg)") {
		t.Errorf("missing warn cost line:\n%s", out)
	}
	if !strings.Contains(out, "|     P90 threshold: $    4.90") {
		t.Errorf("missing P90 threshold line:\n%s", out)
	}
}

func TestCostNotice_HighWithWorkflow(t *testing.T) {
	out := CostNotice(6.0, noticeSnapshot(), "ecc-dev-story")

	wantLines := []string{
		"|  COST NOTICE  [ecc-dev-story]",
		"|  !! Session Cost: $    6.00  (2.4x avg)",
		"|     ecc-dev-story avg (10): $    3.50",
		"|     ecc-dev-story avg:      $    4.00  (12 runs)",
		"|     ecc-dev-story P90:      $    5.10",
		"|     !! Above P90 for this workflow",
	}
	for _, want := range wantLines {
		if !strings.Contains(out, want) {
			t.Errorf("notice missing %q\n%s", want, out)
		}
	}
	// Workflow stats replace the generic threshold line.
	if strings.Contains(out, "P90 threshold") {
		t.Errorf("generic threshold shown despite workflow stats:\n%s", out)
	}

	// Every box line closes at the same column.
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if n := len([]rune(line)); n != 57 {
			t.Errorf("line width %d: %q", n, line)
		}
	}
}

func TestCostNotice_BelowWorkflowP90(t *testing.T) {
	out := CostNotice(4.5, noticeSnapshot(), "ecc-dev-story")
	if strings.Contains(out, "Above P90 for this workflow") {
		t.Errorf("flagged below-P90 session:\n%s", out)
	}
}

func TestCostNotice_TrendLine(t *testing.T) {
	snap := noticeSnapshot()
	trend := -12.5
	snap.Trend = &trend

	out := CostNotice(1.0, snap, "")
	if !strings.Contains(out, "|     Cost trend (10 vs prev 10): -12.5%") {
		t.Errorf("missing trend line:\n%s", out)
	}
}

func TestCostNotice_UnknownWorkflowOmitsBlock(t *testing.T) {
	out := CostNotice(1.0, noticeSnapshot(), "never-seen")
	if !strings.Contains(out, "|  COST NOTICE  [never-seen]") {
		t.Errorf("title missing workflow tag:\n%s", out)
	}
	if strings.Contains(out, "never-seen avg") {
		t.Errorf("stats block rendered for unknown workflow:\n%s", out)
	}
}
