package components

import (
	"strings"
	"testing"

	"github.com/ecclabs/wcost/internal/tui/theme"
)

func TestCostBarClampsAboveCeiling(t *testing.T) {
	theme.SetActive("flexoki-dark")

	out := CostBar("Latest", 4.50, 3.00, 8, 20)
	if !strings.Contains(out, "100%") {
		t.Errorf("over-ceiling bar should cap at 100%%, got %q", out)
	}
	if !strings.Contains(out, "$4.50 / $3.00") {
		t.Errorf("amounts missing from bar output: %q", out)
	}
}

func TestCostBarZeroCeiling(t *testing.T) {
	theme.SetActive("flexoki-dark")

	// No threshold yet: the bar stays empty instead of dividing by zero.
	out := CostBar("Latest", 1.25, 0, 8, 20)
	if !strings.Contains(out, "  0%") {
		t.Errorf("zero ceiling should render 0%%, got %q", out)
	}
}

func TestColorForPctBands(t *testing.T) {
	theme.SetActive("flexoki-dark")
	tt := theme.Active

	cases := []struct {
		pct  float64
		want string
	}{
		{0.10, string(tt.Green)},
		{0.60, string(tt.Yellow)},
		{0.80, string(tt.Orange)},
		{0.95, string(tt.Red)},
	}
	for _, tc := range cases {
		if got := ColorForPct(tc.pct); got != tc.want {
			t.Errorf("ColorForPct(%.2f) = %s, want %s", tc.pct, got, tc.want)
		}
	}
}
