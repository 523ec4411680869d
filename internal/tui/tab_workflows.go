package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ecclabs/wcost/internal/cli"
	"github.com/ecclabs/wcost/internal/history"
	"github.com/ecclabs/wcost/internal/tui/components"
	"github.com/ecclabs/wcost/internal/tui/theme"
)

// workflowsState holds the workflows tab state.
type workflowsState struct {
	cursor int
}

func (a App) renderWorkflowsTab(cw int) string {
	t := theme.Active
	snap := a.snapshot

	if snap == nil || len(snap.ByWorkflow) == 0 {
		msg := "No tracking data yet.\nRun workflows with --csv to start tracking."
		return components.ContentCard("Workflows", lipgloss.NewStyle().Foreground(t.TextMuted).Render(msg), cw)
	}

	names := a.workflowNames()
	cursor := a.wfState.cursor
	if cursor >= len(names) {
		cursor = len(names) - 1
	}

	innerW := components.CardInnerWidth(cw)

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	costStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)

	// Workflow colors for visual interest - pre-compute styles to avoid allocation in loops
	wfColors := []lipgloss.Color{t.BlueBright, t.Cyan, t.Magenta, t.Yellow, t.Green}
	nameStyles := make([]lipgloss.Style, len(wfColors))
	for i, color := range wfColors {
		nameStyles[i] = lipgloss.NewStyle().Foreground(color).Background(t.Surface)
	}

	var tableBody strings.Builder
	if a.isCompactLayout() {
		fixedCols := 6 + 10 + 8 // Runs, Total, Avg
		gaps := 3
		nameW := innerW - fixedCols - gaps - 2
		if nameW < 12 {
			nameW = 12
		}
		tableBody.WriteString(headerStyle.Render(fmt.Sprintf("  %-*s %6s %10s %8s", nameW, "Workflow", "Runs", "Total", "Avg")))
		tableBody.WriteString("\n")
		tableBody.WriteString(mutedStyle.Render(strings.Repeat("─", nameW+fixedCols+gaps+2)))
		tableBody.WriteString("\n")

		for i, name := range names {
			ws := snap.ByWorkflow[name]
			marker, nameStyle := "  ", nameStyles[i%len(wfColors)]
			if i == cursor {
				marker, nameStyle = "▸ ", selectedStyle
			}
			tableBody.WriteString(rowStyle.Render(marker))
			tableBody.WriteString(nameStyle.Render(fmt.Sprintf("%-*s", nameW, truncStr(name, nameW))))
			tableBody.WriteString(rowStyle.Render(fmt.Sprintf(" %6d", ws.Count)))
			tableBody.WriteString(costStyle.Render(fmt.Sprintf(" %10s", cli.FormatCost(ws.TotalCost))))
			tableBody.WriteString(rowStyle.Render(fmt.Sprintf(" %8s", cli.FormatCost(ws.Avg))))
			tableBody.WriteString("\n")
		}
	} else {
		fixedCols := 6 + 10 + 8 + 8 + 8 + 8 + 8 // Runs, Total, Avg, Avg10, P50, P75, P90
		gaps := 7
		nameW := innerW - fixedCols - gaps - 2
		if nameW < 14 {
			nameW = 14
		}
		tableBody.WriteString(headerStyle.Render(fmt.Sprintf("  %-*s %6s %10s %8s %8s %8s %8s %8s",
			nameW, "Workflow", "Runs", "Total", "Avg", "Avg10", "P50", "P75", "P90")))
		tableBody.WriteString("\n")
		tableBody.WriteString(mutedStyle.Render(strings.Repeat("─", innerW)))
		tableBody.WriteString("\n")

		for i, name := range names {
			ws := snap.ByWorkflow[name]
			marker, nameStyle := "  ", nameStyles[i%len(wfColors)]
			if i == cursor {
				marker, nameStyle = "▸ ", selectedStyle
			}
			tableBody.WriteString(rowStyle.Render(marker))
			tableBody.WriteString(nameStyle.Render(fmt.Sprintf("%-*s", nameW, truncStr(name, nameW))))
			tableBody.WriteString(rowStyle.Render(fmt.Sprintf(" %6d", ws.Count)))
			tableBody.WriteString(costStyle.Render(fmt.Sprintf(" %10s", cli.FormatCost(ws.TotalCost))))
			tableBody.WriteString(rowStyle.Render(fmt.Sprintf(" %8s %8s %8s %8s %8s",
				cli.FormatCost(ws.Avg),
				cli.FormatCost(ws.AvgLast10),
				cli.FormatCost(ws.P50),
				cli.FormatCost(ws.P75),
				cli.FormatCost(ws.P90))))
			tableBody.WriteString("\n")
		}
	}
	tableBody.WriteString("\n")
	tableBody.WriteString(mutedStyle.Render("[j/k] select workflow"))
	tableBody.WriteString("\n")

	var b strings.Builder
	b.WriteString(components.ContentCard("Workflows", tableBody.String(), cw))
	b.WriteString("\n")

	// Selected workflow: run-cost sparkline + tracking info
	var selName string
	if cursor >= 0 && cursor < len(names) {
		selName = names[cursor]
	}

	sparkBody := a.renderWorkflowSpark(selName)
	infoBody := a.renderTrackingInfo()

	if a.isCompactLayout() {
		b.WriteString(components.ContentCard(fmt.Sprintf("Run Costs (%s)", selName), sparkBody, cw))
		b.WriteString("\n")
		b.WriteString(components.ContentCard("Tracking", infoBody, cw))
	} else {
		halves := components.LayoutRow(cw, 2)
		sparkCard := components.ContentCard(fmt.Sprintf("Run Costs (%s)", selName), sparkBody, halves[0])
		infoCard := components.ContentCard("Tracking", infoBody, halves[1])
		b.WriteString(components.CardRow([]string{sparkCard, infoCard}))
	}

	return b.String()
}

// renderWorkflowSpark charts the selected workflow's recent run costs from
// the tracking CSV, oldest left.
func (a App) renderWorkflowSpark(workflow string) string {
	t := theme.Active

	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)

	var runs []history.Record
	for _, r := range a.records {
		if r.Workflow == workflow && r.TotalCost > 0 {
			runs = append(runs, r)
		}
	}
	if len(runs) > 30 {
		runs = runs[len(runs)-30:]
	}
	if len(runs) == 0 {
		return mutedStyle.Render("No runs recorded in the CSV") + "\n"
	}

	values := make([]float64, len(runs))
	last, maxCost := 0.0, 0.0
	sum := 0.0
	for i, r := range runs {
		values[i] = r.TotalCost
		sum += r.TotalCost
		if r.TotalCost > maxCost {
			maxCost = r.TotalCost
		}
		last = r.TotalCost
	}

	var b strings.Builder
	b.WriteString(components.Sparkline(values, t.Accent))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("last "))
	b.WriteString(valueStyle.Render(cli.FormatCost(last)))
	b.WriteString(mutedStyle.Render("   avg "))
	b.WriteString(valueStyle.Render(cli.FormatCost(sum / float64(len(runs)))))
	b.WriteString(mutedStyle.Render("   max "))
	b.WriteString(valueStyle.Render(cli.FormatCost(maxCost)))
	b.WriteString(mutedStyle.Render(fmt.Sprintf("   (%d runs)", len(runs))))
	b.WriteString("\n")
	return b.String()
}

// renderTrackingInfo summarizes the stats snapshot backing this tab.
func (a App) renderTrackingInfo() string {
	t := theme.Active
	snap := a.snapshot

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)
	warnStyle := lipgloss.NewStyle().Foreground(t.Orange)
	highStyle := lipgloss.NewStyle().Foreground(t.Red)

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n",
		labelStyle.Render("Tracked runs:"),
		valueStyle.Render(fmt.Sprintf("%d (%d rows)", snap.TotalSessions, len(a.records))))
	fmt.Fprintf(&b, "%s %s\n",
		labelStyle.Render("Total cost:  "),
		valueStyle.Render(cli.FormatCost(snap.TotalCost)))
	fmt.Fprintf(&b, "%s %s %s %s\n",
		labelStyle.Render("Percentiles: "),
		valueStyle.Render("P50 "+cli.FormatCost(snap.Percentiles.P50)),
		valueStyle.Render("P75 "+cli.FormatCost(snap.Percentiles.P75)),
		valueStyle.Render("P90 "+cli.FormatCost(snap.Percentiles.P90)))
	fmt.Fprintf(&b, "%s %s %s\n",
		labelStyle.Render("Thresholds:  "),
		warnStyle.Render("warn "+cli.FormatCost(snap.Thresholds.Warning)),
		highStyle.Render("high "+cli.FormatCost(snap.Thresholds.High)))
	fmt.Fprintf(&b, "%s %s\n",
		labelStyle.Render("CSV:         "),
		valueStyle.Render(truncStr(a.csvPath, 40)))
	return b.String()
}
