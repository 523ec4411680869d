package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ecclabs/wcost/internal/cli"
	"github.com/ecclabs/wcost/internal/config"
	"github.com/ecclabs/wcost/internal/model"
	"github.com/ecclabs/wcost/internal/tui/components"
	"github.com/ecclabs/wcost/internal/tui/theme"
)

// Sessions view modes. Split is iota (0) so it's the default zero value.
const (
	sessViewSplit  = iota // List + full detail side by side (default)
	sessViewDetail        // Full-screen detail
)

// sessionsState holds the sessions tab state.
type sessionsState struct {
	cursor       int
	viewMode     int
	offset       int // scroll offset for the list
	detailScroll int // lines scrolled off the top of the detail pane
}

func (a App) renderSessionsContent(cw, h int) string {
	t := theme.Active

	if len(a.rows) == 0 {
		return components.ContentCard("Sessions", lipgloss.NewStyle().Foreground(t.TextMuted).Render("No sessions found"), cw)
	}

	switch a.sessState.viewMode {
	case sessViewDetail:
		return a.renderSessionDetail(cw, h)
	default:
		return a.renderSessionsSplit(cw, h)
	}
}

func (a App) renderSessionsSplit(cw, h int) string {
	t := theme.Active
	ss := a.sessState

	if ss.cursor >= len(a.rows) {
		return ""
	}

	leftW := cw / 3
	if leftW < 30 {
		leftW = 30
	}
	rightW := cw - leftW

	// Left pane: condensed session list, newest first
	leftInner := components.CardInnerWidth(leftW)

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	wfStyle := lipgloss.NewStyle().Foreground(t.Cyan)

	var leftBody strings.Builder
	visible := h - 6 // card border (2) + header row (2) + footer hint (2)
	if visible < 5 {
		visible = 5
	}

	offset := ss.offset
	if ss.cursor < offset {
		offset = ss.cursor
	}
	if ss.cursor >= offset+visible {
		offset = ss.cursor - visible + 1
	}

	end := offset + visible
	if end > len(a.rows) {
		end = len(a.rows)
	}

	for i := offset; i < end; i++ {
		r := a.rows[i]
		startStr := ""
		if ts, ok := r.StartTime(); ok {
			startStr = ts.Local().Format("Jan 02 15:04")
		}

		line := fmt.Sprintf("%-13s %8s", startStr, cli.FormatCost(r.TotalCost))
		wf := r.Parent.Workflow
		if room := leftInner - len(line) - 1; wf != "" && room > 3 {
			line += " " + truncStr(wf, room)
		}
		line = truncStr(line, leftInner)

		switch {
		case i == ss.cursor:
			leftBody.WriteString(selectedStyle.Render(line))
		case r.Parent.Workflow != "":
			leftBody.WriteString(wfStyle.Render(line))
		default:
			leftBody.WriteString(rowStyle.Render(line))
		}
		leftBody.WriteString("\n")
	}

	leftCard := components.ContentCard(fmt.Sprintf("Sessions (%d)", len(a.rows)), leftBody.String(), leftW)

	// Right pane: full session detail
	sel := a.rows[ss.cursor]
	rightBody := a.renderDetailBody(sel, rightW, headerStyle, mutedStyle)
	rightBody = dropLines(rightBody, ss.detailScroll)

	titleStr := fmt.Sprintf("Session %s", shortID(sel.SessionID))
	rightCard := components.ContentCard(titleStr, rightBody, rightW)

	return components.CardRow([]string{leftCard, rightCard})
}

func (a App) renderSessionDetail(cw, h int) string {
	t := theme.Active
	ss := a.sessState

	if ss.cursor >= len(a.rows) {
		return ""
	}
	sel := a.rows[ss.cursor]

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted)

	body := a.renderDetailBody(sel, cw, headerStyle, mutedStyle)
	body = dropLines(body, ss.detailScroll)

	title := fmt.Sprintf("Session %s", shortID(sel.SessionID))
	return components.ContentCard(title, body, cw)
}

// renderDetailBody generates the full detail content for a session.
// Used by both the split right pane and the full-screen detail view.
func (a App) renderDetailBody(sel *model.SessionResult, w int, headerStyle, mutedStyle lipgloss.Style) string {
	t := theme.Active
	innerW := components.CardInnerWidth(w)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)
	greenStyle := lipgloss.NewStyle().Foreground(t.Green)
	cyanStyle := lipgloss.NewStyle().Foreground(t.Cyan)

	var body strings.Builder
	if sel.Parent.Workflow != "" {
		wfLine := "/" + sel.Parent.Workflow
		if sel.Parent.Story != "" {
			wfLine += " " + sel.Parent.Story
		}
		body.WriteString(cyanStyle.Render(truncStr(wfLine, innerW)))
	} else if sel.Parent.FirstUserMsg != "" {
		body.WriteString(mutedStyle.Render(truncStr(sel.Parent.FirstUserMsg, innerW)))
	} else {
		body.WriteString(mutedStyle.Render("(no user prompt recorded)"))
	}
	body.WriteString("\n")
	body.WriteString(mutedStyle.Render(strings.Repeat("─", innerW)))
	body.WriteString("\n\n")

	// Duration line
	if start, ok := sel.StartTime(); ok {
		timeStr := start.Local().Format("15:04:05")
		if end, ok := model.ParseLogTime(sel.Parent.LastTS); ok {
			timeStr += " - " + end.Local().Format("15:04:05")
		}
		timeStr += " " + start.Local().Format("MST")
		body.WriteString(fmt.Sprintf("%s %s (%s)\n",
			labelStyle.Render("Duration:"),
			valueStyle.Render(sel.Duration),
			mutedStyle.Render(timeStr)))
	}

	body.WriteString(fmt.Sprintf("%s %s    %s %s    %s %s\n\n",
		labelStyle.Render("Msgs:"), valueStyle.Render(cli.FormatNumber(int64(sel.Parent.MsgCount))),
		labelStyle.Render("Sub-agents:"), valueStyle.Render(cli.FormatNumber(int64(len(sel.Subagents)))),
		labelStyle.Render("Sub msgs:"), valueStyle.Render(cli.FormatNumber(int64(sel.SubagentMsgs())))))

	// Token breakdown table
	body.WriteString(headerStyle.Render("TOKEN BREAKDOWN"))
	body.WriteString("\n")
	body.WriteString(headerStyle.Render(fmt.Sprintf("%-20s %12s %10s", "Type", "Tokens", "Cost")))
	body.WriteString("\n")
	body.WriteString(mutedStyle.Render(strings.Repeat("─", 44)))
	body.WriteString("\n")

	// Per-type costs aggregated across models
	inputCost := 0.0
	outputCost := 0.0
	cache5mCost := 0.0
	cache1hCost := 0.0
	cacheReadCost := 0.0
	savings := 0.0

	for modelName, u := range sel.AllTokens {
		p := config.LookupPricing(modelName)
		inputCost += float64(u.Input) * p.InputPerMTok / 1e6
		outputCost += float64(u.Output) * p.OutputPerMTok / 1e6
		cache5mCost += float64(u.Cache5m) * p.CacheWrite5mPerMTok / 1e6
		cache1hCost += float64(u.Cache1h) * p.CacheWrite1hPerMTok / 1e6
		cacheReadCost += float64(u.CacheRead) * p.CacheReadPerMTok / 1e6
		savings += config.CalculateCacheSavings(modelName, u.CacheRead)
	}

	tot := model.SumTokens(sel.AllTokens)
	rows := []struct {
		typ    string
		tokens int64
		cost   float64
	}{
		{"Input", tot.Input, inputCost},
		{"Output", tot.Output, outputCost},
		{"Cache Write (5m)", tot.Cache5m, cache5mCost},
		{"Cache Write (1h)", tot.Cache1h, cache1hCost},
		{"Cache Read", tot.CacheRead, cacheReadCost},
	}

	for _, r := range rows {
		if r.tokens == 0 {
			continue
		}
		body.WriteString(valueStyle.Render(fmt.Sprintf("%-20s %12s %10s",
			r.typ,
			cli.FormatTokens(r.tokens),
			cli.FormatCost(r.cost))))
		body.WriteString("\n")
	}

	body.WriteString(mutedStyle.Render(strings.Repeat("─", 44)))
	body.WriteString("\n")
	body.WriteString(fmt.Sprintf("%-20s %12s %10s\n",
		valueStyle.Render("Total Cost"),
		"",
		greenStyle.Render(cli.FormatCost(sel.TotalCost))))
	body.WriteString(fmt.Sprintf("%-20s %12s %10s\n",
		labelStyle.Render("Cache Savings"),
		"",
		greenStyle.Render(cli.FormatCost(savings))))

	// Model breakdown
	if len(sel.AllTokens) > 0 {
		body.WriteString("\n")
		body.WriteString(headerStyle.Render("USAGE BY MODEL"))
		body.WriteString("\n")
		body.WriteString(headerStyle.Render(fmt.Sprintf("%-14s %6s %10s %10s %8s", "Model", "Msgs", "Input", "Output", "Cost")))
		body.WriteString("\n")
		body.WriteString(mutedStyle.Render(strings.Repeat("─", 52)))
		body.WriteString("\n")

		modelNames := make([]string, 0, len(sel.AllTokens))
		for name := range sel.AllTokens {
			modelNames = append(modelNames, name)
		}
		sort.Strings(modelNames)

		for _, modelName := range modelNames {
			u := sel.AllTokens[modelName]
			body.WriteString(valueStyle.Render(fmt.Sprintf("%-14s %6s %10s %10s %8s",
				model.ShortName(modelName),
				cli.FormatNumber(int64(u.Messages)),
				cli.FormatTokens(u.Input),
				cli.FormatTokens(u.Output),
				cli.FormatCost(config.CalculateModelCost(modelName, u)))))
			body.WriteString("\n")
		}
	}

	// Sub-agent breakdown
	if len(sel.Subagents) > 0 {
		body.WriteString("\n")
		body.WriteString(headerStyle.Render(fmt.Sprintf("SUB-AGENTS (%d)", len(sel.Subagents))))
		body.WriteString("\n")
		body.WriteString(headerStyle.Render(fmt.Sprintf("%-24s %6s %8s", "Agent", "Msgs", "Cost")))
		body.WriteString("\n")
		body.WriteString(mutedStyle.Render(strings.Repeat("─", 40)))
		body.WriteString("\n")

		for _, sa := range sel.Subagents {
			name := subagentLabel(sa)
			body.WriteString(valueStyle.Render(fmt.Sprintf("%-24s %6s %8s",
				truncStr(name, 24),
				cli.FormatNumber(int64(sa.MsgCount)),
				cli.FormatCost(sa.Cost))))
			body.WriteString("\n")
		}
		body.WriteString(fmt.Sprintf("%-24s %6s %8s\n",
			labelStyle.Render("Parent"),
			"",
			valueStyle.Render(cli.FormatCost(sel.ParentCost))))
	}

	body.WriteString("\n")
	body.WriteString(mutedStyle.Render("[Enter] expand  [j/k] navigate  [J/K] scroll  [q] quit"))

	return body.String()
}

// subagentLabel names a sub-agent row: the agent file's base name plus
// its model label when one was recorded.
func subagentLabel(sa model.SubagentResult) string {
	name := sa.File
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSuffix(name, ".jsonl")
	if sa.Models != "" {
		name += " (" + sa.Models + ")"
	}
	return name
}

// dropLines removes the first n lines of s for detail-pane scrolling.
// The final line always survives so the scroll never blanks the pane.
func dropLines(s string, n int) string {
	if n <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	if n >= len(lines) {
		n = len(lines) - 1
	}
	return strings.Join(lines[n:], "\n")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
