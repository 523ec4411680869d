package cli

import (
	"fmt"
	"strings"

	"github.com/ecclabs/wcost/internal/stats"
)

// boxLine pads a content line to the notice box width and closes it.
// Padding counts runes so the heavy separator row lines up.
func boxLine(s string) string {
	pad := 56 - len([]rune(s))
	if pad < 0 {
		pad = 0
	}
	return s + strings.Repeat(" ", pad) + "|"
}

// CostNotice renders the compact end-of-workflow box comparing the
// session cost against overall and per-workflow history. A nil
// snapshot degrades to a bare cost line.
func CostNotice(sessionCost float64, snap *stats.Snapshot, workflow string) string {
	if snap == nil {
		return fmt.Sprintf("\n  Session Cost: $%.2f\n  (No historical data for comparison)\n\n", sessionCost)
	}

	avg10 := snap.Averages.Last10
	warning := snap.Thresholds.Warning
	high := snap.Thresholds.High

	var wfStats *stats.WorkflowStat
	if workflow != "" {
		if ws, ok := snap.ByWorkflow[workflow]; ok {
			wfStats = &ws
		}
	}

	// Status reads against the overall thresholds; the per-workflow
	// P90 gets its own line below.
	ok := true
	icon := "  "
	switch {
	case sessionCost >= high:
		ok, icon = false, "!!"
	case sessionCost >= warning:
		ok, icon = false, "! "
	}

	ratio := 0.0
	if avg10 > 0 {
		ratio = sessionCost / avg10
	}

	var b strings.Builder
	border := "+" + strings.Repeat("-", 55) + "+"

	b.WriteString("\n" + border + "\n")
	title := "|  COST NOTICE"
	if workflow != "" {
		title += fmt.Sprintf("  [%s]", workflow)
	}
	b.WriteString(boxLine(title) + "\n")
	b.WriteString(border + "\n")

	if !ok {
		b.WriteString(boxLine(fmt.Sprintf("|  %s Session Cost: $%8.2f  (%.1fx avg)", icon, sessionCost, ratio)) + "\n")
	} else {
		b.WriteString(boxLine(fmt.Sprintf("|     Session Cost: $%8.2f", sessionCost)) + "\n")
	}

	b.WriteString(boxLine(fmt.Sprintf("|     All sessions avg (10): $%8.2f", avg10)) + "\n")
	b.WriteString(boxLine(fmt.Sprintf("|     All sessions avg:      $%8.2f  (%d total)", snap.Averages.Overall, snap.TotalSessions)) + "\n")

	if wfStats != nil {
		b.WriteString(boxLine("|  "+strings.Repeat("─", 52)) + "\n")
		b.WriteString(boxLine(fmt.Sprintf("|     %s avg (10): $%8.2f", workflow, wfStats.AvgLast10)) + "\n")
		b.WriteString(boxLine(fmt.Sprintf("|     %s avg:      $%8.2f  (%d runs)", workflow, wfStats.Avg, wfStats.Count)) + "\n")
		b.WriteString(boxLine(fmt.Sprintf("|     %s P90:      $%8.2f", workflow, wfStats.P90)) + "\n")
		if sessionCost > wfStats.P90 {
			b.WriteString(boxLine("|     !! Above P90 for this workflow") + "\n")
		}
	}

	if snap.Trend != nil {
		b.WriteString(boxLine(fmt.Sprintf("|     Cost trend (10 vs prev 10): %s", FormatTrend(*snap.Trend))) + "\n")
	}

	if !ok && wfStats == nil {
		b.WriteString(boxLine(fmt.Sprintf("|     P90 threshold: $%8.2f", snap.Percentiles.P90)) + "\n")
	}

	b.WriteString(border + "\n\n")
	return b.String()
}
