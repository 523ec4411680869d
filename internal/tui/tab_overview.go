package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ecclabs/wcost/internal/cli"
	"github.com/ecclabs/wcost/internal/tui/components"
	"github.com/ecclabs/wcost/internal/tui/theme"
)

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	snap := a.snapshot
	var b strings.Builder

	// Row 1: Metric cards
	sessDelta := fmt.Sprintf("%s msgs", cli.FormatNumber(int64(a.summary.ParentMsgs+a.summary.SubagentMsgs)))

	costDelta := ""
	if a.summary.Sessions > 0 {
		costDelta = fmt.Sprintf("avg %s/session", cli.FormatCost(a.summary.TotalCost/float64(a.summary.Sessions)))
	}

	avg10Val, avg10Delta := "—", "no tracking data"
	threshVal, threshDelta := "—", "run with --csv"
	if snap != nil {
		avg10Val = cli.FormatCost(snap.Averages.Last10)
		if snap.Trend != nil {
			avg10Delta = cli.FormatTrend(*snap.Trend) + " vs prev 10"
		} else {
			avg10Delta = fmt.Sprintf("%d tracked runs", snap.TotalSessions)
		}
		threshVal = cli.FormatCost(snap.Thresholds.Warning)
		threshDelta = "high " + cli.FormatCost(snap.Thresholds.High)
	}

	cards := []struct{ Label, Value, Delta string }{
		{"Sessions", cli.FormatNumber(int64(a.summary.Sessions)), sessDelta},
		{"Total Cost", cli.FormatCost(a.summary.TotalCost), costDelta},
		{"Avg Last 10", avg10Val, avg10Delta},
		{"Warn At", threshVal, threshDelta},
	}
	b.WriteString(components.MetricCardRow(cards, cw))
	b.WriteString("\n")

	// Row 2: Per-session cost chart, oldest left, capped at the last 30
	if len(a.results) > 0 {
		tail := a.results
		if len(tail) > 30 {
			tail = tail[len(tail)-30:]
		}
		chartVals := make([]float64, len(tail))
		for i, r := range tail {
			chartVals[i] = r.TotalCost
		}
		chartInnerW := components.CardInnerWidth(cw)
		b.WriteString(components.ContentCard(
			fmt.Sprintf("Session Cost (last %d)", len(tail)),
			components.BarChart(chartVals, chartDateLabels(tail), t.Blue, chartInnerW, 10),
			cw,
		))
		b.WriteString("\n")
	}

	// Row 3: Model Split + Recent Outliers
	halves := components.LayoutRow(cw, 2)
	innerW := components.CardInnerWidth(halves[0])

	nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)
	barStyle := lipgloss.NewStyle().Foreground(t.Accent)
	pctStyle := lipgloss.NewStyle().Foreground(t.TextDim)

	var modelBody strings.Builder
	models := a.summary.ByModel
	limit := 5
	if len(models) < limit {
		limit = len(models)
	}
	maxCost := 0.0
	for _, ms := range models[:limit] {
		if ms.Cost > maxCost {
			maxCost = ms.Cost
		}
	}
	nameW := innerW / 3
	if nameW < 10 {
		nameW = 10
	}
	barMaxLen := innerW - nameW - 10
	if barMaxLen < 1 {
		barMaxLen = 1
	}
	for _, ms := range models[:limit] {
		barLen := 0
		if maxCost > 0 {
			barLen = int(ms.Cost / maxCost * float64(barMaxLen))
		}
		share := 0.0
		if a.summary.TotalCost > 0 {
			share = ms.Cost / a.summary.TotalCost * 100
		}
		fmt.Fprintf(&modelBody, "%s %s %s\n",
			nameStyle.Render(fmt.Sprintf("%-*s", nameW, truncStr(ms.Model, nameW))),
			barStyle.Render(strings.Repeat("█", barLen)),
			pctStyle.Render(fmt.Sprintf("%.0f%%", share)))
	}
	if limit == 0 {
		modelBody.WriteString(pctStyle.Render("No token usage recorded"))
		modelBody.WriteString("\n")
	}

	// Outliers: tracked sessions at or above the warning threshold
	dateStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	costStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)
	warnStyle := lipgloss.NewStyle().Foreground(t.Orange)
	highStyle := lipgloss.NewStyle().Foreground(t.Red)

	var outBody strings.Builder
	if snap != nil && len(snap.RecentOutliers) > 0 {
		for _, o := range snap.RecentOutliers {
			ratioStyle := warnStyle
			if o.Ratio >= 2.0 {
				ratioStyle = highStyle
			}
			fmt.Fprintf(&outBody, "%s %s %s %s\n",
				dateStyle.Render(fmt.Sprintf("%-16s", o.Date)),
				costStyle.Render(fmt.Sprintf("%8s", cli.FormatCost(o.Cost))),
				ratioStyle.Render(fmt.Sprintf("%.1fx avg", o.Ratio)),
				dateStyle.Render(shortID(o.SessionID)))
		}
	} else {
		outBody.WriteString(pctStyle.Render("No outliers in recent runs"))
		outBody.WriteString("\n")
	}

	modelCard := components.ContentCard("Model Split", modelBody.String(), halves[0])
	outCard := components.ContentCard("Recent Outliers", outBody.String(), halves[1])
	if a.isCompactLayout() {
		b.WriteString(components.ContentCard("Model Split", modelBody.String(), cw))
		b.WriteString("\n")
		b.WriteString(components.ContentCard("Recent Outliers", outBody.String(), cw))
		b.WriteString("\n")
	} else {
		b.WriteString(components.CardRow([]string{modelCard, outCard}))
		b.WriteString("\n")
	}

	// Row 4: Latest session against the high threshold
	if snap != nil && snap.Thresholds.High > 0 && len(a.rows) > 0 {
		latest := a.rows[0]
		barInnerW := components.CardInnerWidth(cw)
		barW := barInnerW - 40
		if barW < 10 {
			barW = 10
		}
		b.WriteString(components.ContentCard(
			"Latest vs High Threshold",
			components.CostBar("Latest", latest.TotalCost, snap.Thresholds.High, 8, barW)+"\n",
			cw,
		))
	}

	return b.String()
}
