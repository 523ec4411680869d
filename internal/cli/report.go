package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ecclabs/wcost/internal/history"
	"github.com/ecclabs/wcost/internal/model"
	"github.com/ecclabs/wcost/internal/stats"
)

// SessionReport renders the single-session cost report.
func SessionReport(r *model.SessionResult, projectName string) string {
	var b strings.Builder
	rule := strings.Repeat("=", 65)

	fmt.Fprintf(&b, "\n%s\n", rule)
	b.WriteString("  WORKFLOW COST REPORT\n")
	if projectName != "" {
		fmt.Fprintf(&b, "  Project: %s\n", projectName)
	}
	fmt.Fprintf(&b, "%s\n\n", rule)

	fmt.Fprintf(&b, "  Session:   %s...\n", clip(r.SessionID, 20))
	fmt.Fprintf(&b, "  Duration:  %s\n", r.Duration)
	fmt.Fprintf(&b, "  Messages:  %d (parent) + %d (subagents)\n\n", r.Parent.MsgCount, r.SubagentMsgs())

	b.WriteString("  PARENT CONVERSATION\n")
	for _, name := range sortedModels(r.Parent.Tokens) {
		u := r.Parent.Tokens[name]
		fmt.Fprintf(&b, "    [%s] %d msgs | in:%s out:%s cache_w:%s cache_r:%s\n",
			model.ShortName(name), u.Messages,
			FormatNumber(u.Input), FormatNumber(u.Output),
			FormatNumber(u.Cache5m+u.Cache1h), FormatNumber(u.CacheRead))
	}
	fmt.Fprintf(&b, "    Subtotal: $%.2f\n\n", r.ParentCost)

	if len(r.Subagents) > 0 {
		fmt.Fprintf(&b, "  SUBAGENTS (%d)\n", len(r.Subagents))
		for _, sa := range r.Subagents {
			label := sa.FirstMsg
			if label == "" {
				label = "?"
			}
			fmt.Fprintf(&b, "    %s  [%s]  $%.2f\n", clip(sa.File, 30), sa.Models, sa.Cost)
			fmt.Fprintf(&b, "      %s\n", clip(label, 60))
		}
		fmt.Fprintf(&b, "    Subtotal: $%.2f\n\n", r.SubagentCost())
	}

	b.WriteString(strings.Repeat("-", 65) + "\n")

	t := model.SumTokens(r.AllTokens)
	fmt.Fprintf(&b, "  Total tokens:  %12s\n", FormatNumber(t.All()))
	fmt.Fprintf(&b, "    Input:       %12s\n", FormatNumber(t.Input))
	fmt.Fprintf(&b, "    Output:      %12s\n", FormatNumber(t.Output))
	fmt.Fprintf(&b, "    Cache write: %12s", FormatNumber(t.CacheWrite()))
	if t.Cache5m > 0 {
		fmt.Fprintf(&b, "  (5m:%s 1h:%s)\n", FormatNumber(t.Cache5m), FormatNumber(t.Cache1h))
	} else {
		b.WriteString("  (1h)\n")
	}
	fmt.Fprintf(&b, "    Cache read:  %12s\n\n", FormatNumber(t.CacheRead))

	fmt.Fprintf(&b, "  ESTIMATED COST: $%.2f\n%s\n\n", r.TotalCost, rule)
	return b.String()
}

// ScanReport renders the all-sessions cost history: one row per
// session in chronological order, then a per-model breakdown.
func ScanReport(results []*model.SessionResult, summary model.ScanSummary, projectName string) string {
	var b strings.Builder
	rule := strings.Repeat("=", 90)

	fmt.Fprintf(&b, "\n%s\n", rule)
	b.WriteString("  ALL SESSIONS COST REPORT\n")
	if projectName != "" {
		fmt.Fprintf(&b, "  Project: %s\n", projectName)
	}
	fmt.Fprintf(&b, "  Sessions: %d analyzed", len(results))
	if summary.Unreadable > 0 {
		fmt.Fprintf(&b, ", %d unreadable", summary.Unreadable)
	}
	fmt.Fprintf(&b, "\n%s\n\n", rule)

	fmt.Fprintf(&b, "  %-18s %5s %5s %4s %-8s %9s\n", "Date", "Dur", "Msgs", "SAs", "Model", "Cost")
	fmt.Fprintf(&b, "  %s %s %s %s %s %s\n",
		strings.Repeat("-", 18), strings.Repeat("-", 5), strings.Repeat("-", 5),
		strings.Repeat("-", 4), strings.Repeat("-", 8), strings.Repeat("-", 9))

	for _, r := range results {
		date := ""
		if t, ok := model.ParseLogTime(r.Parent.FirstTS); ok {
			date = t.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(&b, "  %-18s %5s %5d %4d %-8s $%7.2f\n",
			date, r.Duration, r.Parent.MsgCount, len(r.Subagents),
			model.ModelsLabel(r.AllTokens), r.TotalCost)
	}

	fmt.Fprintf(&b, "\n%s\n\n", strings.Repeat("-", 90))

	fmt.Fprintf(&b, "  %-10s %8s %10s %12s %12s\n", "Model", "Sessions", "Messages", "Cost", "Avg/Session")
	fmt.Fprintf(&b, "  %s %s %s %s %s\n",
		strings.Repeat("-", 10), strings.Repeat("-", 8), strings.Repeat("-", 10),
		strings.Repeat("-", 12), strings.Repeat("-", 12))
	for _, m := range summary.ByModel {
		avg := 0.0
		if m.Sessions > 0 {
			avg = m.Cost / float64(m.Sessions)
		}
		fmt.Fprintf(&b, "  %-10s %8d %10s $%10.2f $%10.2f\n",
			m.Model, m.Sessions, FormatNumber(int64(m.Msgs)), m.Cost, avg)
	}

	fmt.Fprintf(&b, "\n  TOTAL: %d sessions | %s parent msgs | %s subagent msgs\n",
		len(results), FormatNumber(int64(summary.ParentMsgs)), FormatNumber(int64(summary.SubagentMsgs)))
	fmt.Fprintf(&b, "  TOTAL ESTIMATED COST: $%.2f\n%s\n\n", summary.TotalCost, rule)
	return b.String()
}

// TrackingSummary renders the cumulative history report: per-workflow
// aggregates plus the ten most recent sessions.
func TrackingSummary(records []history.Record, csvPath string) string {
	var b strings.Builder
	rule := strings.Repeat("=", 70)

	fmt.Fprintf(&b, "\n%s\n", rule)
	b.WriteString("  WORKFLOW COST TRACKING SUMMARY\n")
	fmt.Fprintf(&b, "  Source: %s\n%s\n\n", csvPath, rule)

	fmt.Fprintf(&b, "  Total sessions tracked: %d\n", len(records))

	totalCost := 0.0
	for _, r := range records {
		totalCost += r.TotalCost
	}
	fmt.Fprintf(&b, "  Total cost: $%.2f\n\n", totalCost)

	type wfAgg struct {
		count     int
		cost      float64
		durations []float64
	}
	byWorkflow := make(map[string]*wfAgg)
	for _, r := range records {
		agg, ok := byWorkflow[r.Workflow]
		if !ok {
			agg = &wfAgg{}
			byWorkflow[r.Workflow] = agg
		}
		agg.count++
		agg.cost += r.TotalCost
		if strings.HasSuffix(r.Duration, "min") {
			if mins, err := strconv.ParseFloat(strings.TrimSuffix(r.Duration, "min"), 64); err == nil {
				agg.durations = append(agg.durations, mins)
			}
		}
	}

	names := make([]string, 0, len(byWorkflow))
	for wf := range byWorkflow {
		names = append(names, wf)
	}
	sort.Strings(names)

	fmt.Fprintf(&b, "  %-25s %6s %10s %10s %10s\n", "Workflow", "Count", "Total", "Avg", "Avg Time")
	fmt.Fprintf(&b, "  %s %s %s %s %s\n",
		strings.Repeat("-", 25), strings.Repeat("-", 6), strings.Repeat("-", 10),
		strings.Repeat("-", 10), strings.Repeat("-", 10))
	for _, wf := range names {
		agg := byWorkflow[wf]
		avgCost := 0.0
		if agg.count > 0 {
			avgCost = agg.cost / float64(agg.count)
		}
		avgDur := "?"
		if len(agg.durations) > 0 {
			sum := 0.0
			for _, d := range agg.durations {
				sum += d
			}
			avgDur = fmt.Sprintf("%.0fmin", sum/float64(len(agg.durations)))
		}
		fmt.Fprintf(&b, "  %-25s %6d $%8.2f $%8.2f %10s\n", wf, agg.count, agg.cost, avgCost, avgDur)
	}

	b.WriteString("\n  Recent sessions:\n")
	recent := records
	if len(recent) > 10 {
		recent = recent[len(recent)-10:]
	}
	for _, r := range recent {
		fmt.Fprintf(&b, "    %-18s %-20s %-15s $%8.2f  %s\n",
			r.Date, r.Workflow, r.Story, r.TotalCost, r.Duration)
	}

	fmt.Fprintf(&b, "\n%s\n\n", rule)
	return b.String()
}

// StatsSummary renders the full statistics report.
func StatsSummary(snap *stats.Snapshot) string {
	if snap == nil {
		return "No stats available. Run with --csv first to build tracking data.\n"
	}

	var b strings.Builder
	rule := strings.Repeat("=", 65)

	fmt.Fprintf(&b, "\n%s\n  WORKFLOW COST STATISTICS\n%s\n\n", rule, rule)

	fmt.Fprintf(&b, "  Sessions analyzed: %d\n", snap.TotalSessions)
	fmt.Fprintf(&b, "  Total cost: $%.2f\n\n", snap.TotalCost)

	b.WriteString("  Averages:\n")
	fmt.Fprintf(&b, "    Overall:       $%8.2f\n", snap.Averages.Overall)
	fmt.Fprintf(&b, "    Last 10:       $%8.2f\n", snap.Averages.Last10)
	fmt.Fprintf(&b, "    Last 20:       $%8.2f\n\n", snap.Averages.Last20)

	b.WriteString("  Percentiles:\n")
	fmt.Fprintf(&b, "    P50 (median):  $%8.2f\n", snap.Percentiles.P50)
	fmt.Fprintf(&b, "    P75:           $%8.2f\n", snap.Percentiles.P75)
	fmt.Fprintf(&b, "    P90:           $%8.2f\n", snap.Percentiles.P90)
	fmt.Fprintf(&b, "    P95:           $%8.2f\n\n", snap.Percentiles.P95)

	b.WriteString("  Outlier Thresholds:\n")
	fmt.Fprintf(&b, "    Warning (>):   $%8.2f\n", snap.Thresholds.Warning)
	fmt.Fprintf(&b, "    High (>):      $%8.2f\n\n", snap.Thresholds.High)

	if snap.Trend != nil {
		fmt.Fprintf(&b, "  Cost Trend (last 10 vs prev 10): %s\n\n", FormatTrend(*snap.Trend))
	}

	if len(snap.RecentOutliers) > 0 {
		fmt.Fprintf(&b, "  Recent Outliers (%d):\n", len(snap.RecentOutliers))
		for _, o := range snap.RecentOutliers {
			fmt.Fprintf(&b, "    %-18s  $%8.2f  (%.1fx avg)  [%s]\n", o.Date, o.Cost, o.Ratio, o.SessionID)
		}
		b.WriteString("\n")
	}

	if len(snap.ByWorkflow) > 0 {
		b.WriteString("  Per-Workflow Breakdown:\n")
		fmt.Fprintf(&b, "    %-25s %5s %8s %8s %8s %8s %8s\n",
			"Workflow", "Runs", "Avg", "Avg(10)", "P50", "P75", "P90")
		fmt.Fprintf(&b, "    %s %s %s %s %s %s %s\n",
			strings.Repeat("-", 25), strings.Repeat("-", 5), strings.Repeat("-", 8),
			strings.Repeat("-", 8), strings.Repeat("-", 8), strings.Repeat("-", 8),
			strings.Repeat("-", 8))
		for _, wf := range workflowsByRuns(snap.ByWorkflow) {
			ws := snap.ByWorkflow[wf]
			fmt.Fprintf(&b, "    %-25s %5d $%6.2f $%6.2f $%6.2f $%6.2f $%6.2f\n",
				wf, ws.Count, ws.Avg, ws.AvgLast10, ws.P50, ws.P75, ws.P90)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "%s\n\n", rule)
	return b.String()
}

// sortedModels returns the model names of an aggregate in stable order.
func sortedModels(tokens map[string]model.TokenUsage) []string {
	names := make([]string, 0, len(tokens))
	for name := range tokens {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// workflowsByRuns orders workflow names by run count, busiest first.
func workflowsByRuns(byWorkflow map[string]stats.WorkflowStat) []string {
	names := make([]string, 0, len(byWorkflow))
	for wf := range byWorkflow {
		names = append(names, wf)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := byWorkflow[names[i]], byWorkflow[names[j]]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return names[i] < names[j]
	})
	return names
}
