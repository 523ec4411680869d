// Package tui provides the interactive Bubble Tea dashboard for wcost.
package tui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/ecclabs/wcost/internal/cli"
	"github.com/ecclabs/wcost/internal/config"
	"github.com/ecclabs/wcost/internal/history"
	"github.com/ecclabs/wcost/internal/model"
	"github.com/ecclabs/wcost/internal/pipeline"
	"github.com/ecclabs/wcost/internal/stats"
	"github.com/ecclabs/wcost/internal/store"
	"github.com/ecclabs/wcost/internal/tui/components"
	"github.com/ecclabs/wcost/internal/tui/theme"
)

// ScanDoneMsg is sent when the session scan finishes.
type ScanDoneMsg struct {
	Results  []*model.SessionResult
	Summary  model.ScanSummary
	Records  []history.Record
	Snapshot *stats.Snapshot
	LoadTime time.Duration
}

// ProgressMsg reports session parsing progress.
type ProgressMsg struct {
	Current int
	Total   int
}

// RescanDoneMsg is sent when a manual rescan completes.
type RescanDoneMsg struct {
	Results  []*model.SessionResult
	Summary  model.ScanSummary
	Records  []history.Record
	Snapshot *stats.Snapshot
	LoadTime time.Duration
}

// App is the root Bubble Tea model.
type App struct {
	// Invocation context
	cfg        config.Config
	projectDir string
	csvPath    string

	// Data
	results  []*model.SessionResult // oldest first, as scanned
	rows     []*model.SessionResult // newest first, for list displays
	summary  model.ScanSummary
	records  []history.Record
	snapshot *stats.Snapshot // nil until tracking data exists
	loaded   bool
	loadTime time.Duration

	refreshing bool

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool

	// Per-tab state
	sessState sessionsState
	wfState   workflowsState
	settings  settingsState

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals setupValues
	needSetup bool

	// Loading — channel-based progress subscription
	spinner     spinner.Model
	progress    int
	progressMax int
	loadSub     chan tea.Msg // progress + completion messages from scanner goroutine
}

const (
	minTerminalWidth = 80
	compactWidth     = 110
	maxContentWidth  = 170

	// Scroll navigation
	scrollOverhead    = 8 // approximate header + status bar height for half-page calc
	minHalfPageScroll = 1 // minimum lines for half-page scroll
	minContentHeight  = 5 // minimum content area height
)

// NewApp creates a new TUI app model.
func NewApp(cfg config.Config, projectDir, csvPath string) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	return App{
		cfg:        cfg,
		projectDir: projectDir,
		csvPath:    csvPath,
		needSetup:  !config.Exists(),
		spinner:    sp,
		loadSub:    make(chan tea.Msg, 1),
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		scanCmd(a.projectDir, a.csvPath, a.cfg, a.loadSub),
		a.spinner.Tick,
	)
}

func (a *App) recompute() {
	// Newest first for list displays; results stay oldest first for charts.
	a.rows = make([]*model.SessionResult, len(a.results))
	for i, r := range a.results {
		a.rows[len(a.results)-1-i] = r
	}

	if a.sessState.cursor >= len(a.rows) {
		a.sessState.cursor = len(a.rows) - 1
	}
	if a.sessState.cursor < 0 {
		a.sessState.cursor = 0
	}
	a.sessState.detailScroll = 0

	names := a.workflowNames()
	if a.wfState.cursor >= len(names) {
		a.wfState.cursor = len(names) - 1
	}
	if a.wfState.cursor < 0 {
		a.wfState.cursor = 0
	}
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Forward to setup form if active
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || (a.needSetup && a.setupForm != nil) {
			return a, nil
		}

		switch msg.Button {
		case tea.MouseButtonWheelUp:
			if a.activeTab == 1 && a.sessState.cursor > 0 {
				a.sessState.cursor--
				a.sessState.detailScroll = 0
			}
			return a, nil

		case tea.MouseButtonWheelDown:
			if a.activeTab == 1 && a.sessState.cursor < len(a.rows)-1 {
				a.sessState.cursor++
				a.sessState.detailScroll = 0
			}
			return a, nil

		case tea.MouseButtonLeft:
			// The tab bar occupies the first line
			if msg.Y == 0 {
				if tab := a.tabAtX(msg.X); tab >= 0 && tab < len(components.Tabs) {
					a.activeTab = tab
				}
			}
			return a, nil
		}
		return a, nil

	case tea.KeyMsg:
		key := msg.String()

		// Global: quit
		if key == "ctrl+c" {
			return a, tea.Quit
		}

		if !a.loaded {
			return a, nil
		}

		// First-run setup wizard intercepts all keys
		if a.needSetup && a.setupForm != nil {
			return a.updateSetupForm(msg)
		}

		// Settings tab has its own keybindings (text input)
		if a.activeTab == 3 && a.settings.editing {
			return a.updateSettingsInput(msg)
		}

		// Help toggle
		if key == "?" {
			a.showHelp = !a.showHelp
			return a, nil
		}

		// Dismiss help
		if a.showHelp {
			a.showHelp = false
			return a, nil
		}

		// Sessions tab has its own keybindings
		if a.activeTab == 1 {
			compact := a.isCompactLayout()

			switch key {
			case "q":
				if !compact && a.sessState.viewMode == sessViewDetail {
					a.sessState.viewMode = sessViewSplit
					return a, nil
				}
				return a, tea.Quit
			case "enter", "f":
				if compact {
					return a, nil
				}
				if a.sessState.viewMode == sessViewSplit {
					a.sessState.viewMode = sessViewDetail
				}
				return a, nil
			case "esc":
				if compact {
					return a, nil
				}
				if a.sessState.viewMode == sessViewDetail {
					a.sessState.viewMode = sessViewSplit
				}
				return a, nil
			case "j", "down":
				if a.sessState.cursor < len(a.rows)-1 {
					a.sessState.cursor++
					a.sessState.detailScroll = 0
				}
				return a, nil
			case "k", "up":
				if a.sessState.cursor > 0 {
					a.sessState.cursor--
					a.sessState.detailScroll = 0
				}
				return a, nil
			case "g":
				a.sessState.cursor = 0
				a.sessState.offset = 0
				a.sessState.detailScroll = 0
				return a, nil
			case "G":
				a.sessState.cursor = len(a.rows) - 1
				if a.sessState.cursor < 0 {
					a.sessState.cursor = 0
				}
				a.sessState.detailScroll = 0
				return a, nil
			case "J":
				a.sessState.detailScroll++
				return a, nil
			case "K":
				if a.sessState.detailScroll > 0 {
					a.sessState.detailScroll--
				}
				return a, nil
			case "ctrl+d":
				halfPage := (a.height - scrollOverhead) / 2
				if halfPage < minHalfPageScroll {
					halfPage = minHalfPageScroll
				}
				a.sessState.detailScroll += halfPage
				return a, nil
			case "ctrl+u":
				halfPage := (a.height - scrollOverhead) / 2
				if halfPage < minHalfPageScroll {
					halfPage = minHalfPageScroll
				}
				a.sessState.detailScroll -= halfPage
				if a.sessState.detailScroll < 0 {
					a.sessState.detailScroll = 0
				}
				return a, nil
			}
		}

		// Workflows tab cursor
		if a.activeTab == 2 {
			names := a.workflowNames()
			switch key {
			case "j", "down":
				if a.wfState.cursor < len(names)-1 {
					a.wfState.cursor++
				}
				return a, nil
			case "k", "up":
				if a.wfState.cursor > 0 {
					a.wfState.cursor--
				}
				return a, nil
			}
		}

		// Settings tab navigation (non-editing mode)
		if a.activeTab == 3 {
			switch key {
			case "j", "down":
				if a.settings.cursor < settingsFieldCount-1 {
					a.settings.cursor++
				}
				return a, nil
			case "k", "up":
				if a.settings.cursor > 0 {
					a.settings.cursor--
				}
				return a, nil
			case "enter":
				return a.settingsStartEdit()
			}
		}

		// Global quit from non-sessions tabs
		if key == "q" {
			return a, tea.Quit
		}

		// Manual rescan
		if key == "r" && !a.refreshing {
			a.refreshing = true
			return a, rescanCmd(a.projectDir, a.csvPath, a.cfg)
		}

		// Tab navigation
		switch key {
		case "left":
			a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		case "right":
			a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		default:
			if len(key) == 1 {
				if idx := components.TabIdxByKey(rune(key[0])); idx >= 0 {
					a.activeTab = idx
				}
			}
		}
		return a, nil

	case ScanDoneMsg:
		a.results = msg.Results
		a.summary = msg.Summary
		a.records = msg.Records
		a.snapshot = msg.Snapshot
		a.loaded = true
		a.loadTime = msg.LoadTime
		a.recompute()

		// Activate first-run setup after data loads
		if a.needSetup {
			a.setupForm = newSetupForm(len(a.results), a.projectDir, &a.setupVals)
			if a.width > 0 {
				a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
			}
			return a, a.setupForm.Init()
		}

		return a, nil

	case ProgressMsg:
		a.progress = msg.Current
		a.progressMax = msg.Total
		return a, waitForScanMsg(a.loadSub)

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case RescanDoneMsg:
		a.refreshing = false
		if msg.Results != nil {
			a.results = msg.Results
			a.summary = msg.Summary
			a.records = msg.Records
			a.snapshot = msg.Snapshot
			a.loadTime = msg.LoadTime
			a.recompute()
		}
		return a, nil
	}

	// Forward unhandled messages to the setup form (cursor blinks, etc.)
	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}

	return a, nil
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	if a.setupForm.State == huh.StateCompleted {
		_ = a.saveSetupConfig()
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}

	if a.setupForm.State == huh.StateAborted {
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}

	return a, cmd
}

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}

	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}

	if !a.loaded {
		return a.viewLoading()
	}

	// First-run setup wizard
	if a.needSetup && a.setupForm != nil {
		return a.setupForm.View()
	}

	if a.showHelp {
		return a.viewHelp()
	}

	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := a.height
	if h < 5 {
		h = 5
	}

	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  wcost needs at least %d columns.\n  Current width: %d\n",
		a.width,
		minTerminalWidth,
		a.width,
	)

	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active
	w := a.width
	h := a.height

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)

	logoStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.Surface).
		Bold(true)

	subtitleStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface)

	spinnerStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(t.Surface)

	countStyle := lipgloss.NewStyle().
		Foreground(t.TextPrimary).
		Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ wcost"))
	b.WriteString(subtitleStyle.Render(" · Workflow Cost Analyzer"))
	b.WriteString("\n\n")

	if a.progressMax > 0 {
		barW := 40
		if barW > w-30 {
			barW = w - 30
		}
		if barW < 20 {
			barW = 20
		}
		pct := float64(a.progress) / float64(a.progressMax)
		b.WriteString(spinnerStyle.Render(a.spinner.View()))
		b.WriteString(subtitleStyle.Render(" Parsing sessions\n\n"))
		b.WriteString(components.ProgressBar(pct, barW))
		b.WriteString("\n")
		b.WriteString(countStyle.Render(cli.FormatNumber(int64(a.progress))))
		b.WriteString(subtitleStyle.Render(" / "))
		b.WriteString(countStyle.Render(cli.FormatNumber(int64(a.progressMax))))
	} else {
		b.WriteString(spinnerStyle.Render(a.spinner.View()))
		b.WriteString(subtitleStyle.Render(" Discovering sessions..."))
	}

	card := cardStyle.Render(b.String())

	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active
	h := a.height
	w := a.width

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.Surface).
		Bold(true)

	sectionStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(t.Surface).
		Bold(true)

	keyStyle := lipgloss.NewStyle().
		Foreground(t.Cyan).
		Background(t.Surface).
		Bold(true)

	descStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface)

	dimStyle := lipgloss.NewStyle().
		Foreground(t.TextDim).
		Background(t.Surface)

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("Navigation"))
	b.WriteString("\n")
	navBindings := []struct{ key, desc string }{
		{"o s w x", "Jump to tab"},
		{"← →", "Previous / Next tab"},
		{"j k", "Navigate lists"},
		{"J K", "Scroll detail pane"},
		{"^d ^u", "Half-page scroll"},
	}
	for _, bind := range navBindings {
		fmt.Fprintf(&b, "  %s  %s\n",
			keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
			descStyle.Render(bind.desc))
	}

	b.WriteString("\n")
	b.WriteString(sectionStyle.Render("Actions"))
	b.WriteString("\n")
	actionBindings := []struct{ key, desc string }{
		{"Enter", "Expand / Confirm"},
		{"Esc", "Back / Cancel"},
		{"r", "Rescan sessions"},
		{"?", "Toggle help"},
		{"q", "Quit"},
	}
	for _, bind := range actionBindings {
		fmt.Fprintf(&b, "  %s  %s\n",
			keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
			descStyle.Render(bind.desc))
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	card := cardStyle.Render(b.String())

	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	// 1. Render header (tab bar + project pill)
	pillStyle := lipgloss.NewStyle().
		Foreground(t.TextDim).
		Background(t.Surface)

	pillAccentStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(t.Surface).
		Bold(true)

	pillStr := pillStyle.Render(" ") +
		pillAccentStyle.Render(projectLabel(a.projectDir)) +
		pillStyle.Render(" │ ") +
		pillAccentStyle.Render(fmt.Sprintf("%d sessions", len(a.rows)))
	if a.summary.Unreadable > 0 {
		pillStr += pillStyle.Render(" │ ") +
			pillAccentStyle.Render(fmt.Sprintf("%d unreadable", a.summary.Unreadable))
	}
	pillStr += pillStyle.Render(" ")

	pillRowStyle := lipgloss.NewStyle().
		Background(t.Surface).
		Width(w)

	header := components.RenderTabBar(a.activeTab, w) + "\n" +
		pillRowStyle.Render(pillStr)

	// 2. Render status bar
	scanAge := fmt.Sprintf("%.1fs", a.loadTime.Seconds())
	statusBar := components.RenderStatusBar(w, scanAge, a.refreshing)

	// 3. Calculate content zone height
	headerH := lipgloss.Height(header)
	statusH := lipgloss.Height(statusBar)
	contentH := h - headerH - statusH
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	// 4. Render tab content
	var content string
	switch a.activeTab {
	case 0:
		content = a.renderOverviewTab(cw)
	case 1:
		content = a.renderSessionsContent(cw, contentH)
	case 2:
		content = a.renderWorkflowsTab(cw)
	case 3:
		content = a.renderSettingsTab(cw)
	}

	// 5. Truncate + pad to exactly contentH lines
	content = padHeight(truncateHeight(content, contentH), contentH)

	// 6. Fill each line to full width with background (fixes gaps between cards)
	content = fillLinesWithBackground(content, cw, t.Background)

	// 7. Place content with background fill (handles centering when w > cw)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	// 8. Stack vertically
	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)

	// 9. Ensure entire terminal is filled with background
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Data loading ───────────────────────────────────────────────

// scanProject runs the full scan plus tracking reload. Shared between the
// initial load and manual rescans.
func scanProject(projectDir, csvPath string, cfg config.Config, progressFn pipeline.ProgressFunc) ([]*model.SessionResult, model.ScanSummary, []history.Record, *stats.Snapshot) {
	opts := pipeline.ScanOptions{Progress: progressFn}

	cache, err := store.Open(pipeline.CachePath())
	if err == nil {
		defer cache.Close()
		opts.Cache = cache
	}

	scan, err := pipeline.ScanAll(projectDir, cfg.TrackedWorkflows(), opts)
	if err != nil {
		return nil, model.ScanSummary{}, nil, nil
	}

	var records []history.Record
	var snap *stats.Snapshot
	if recs, err := history.NewStore(csvPath).ReadAll(); err == nil {
		records = recs
		snap = stats.Compute(recs, csvPath)
	}

	return scan.Results, pipeline.Summarize(scan), records, snap
}

// scanCmd starts the scan pipeline in a background goroutine. It streams
// ProgressMsg updates and a final ScanDoneMsg through sub.
func scanCmd(projectDir, csvPath string, cfg config.Config, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go func() {
			start := time.Now()

			// Progress callback: non-blocking send so workers aren't stalled.
			// If the channel is full, we skip this update — the next one catches up.
			progressFn := func(current, total int) {
				select {
				case sub <- ProgressMsg{Current: current, Total: total}:
				default:
				}
			}

			results, summary, records, snap := scanProject(projectDir, csvPath, cfg, progressFn)
			sub <- ScanDoneMsg{
				Results:  results,
				Summary:  summary,
				Records:  records,
				Snapshot: snap,
				LoadTime: time.Since(start),
			}
		}()

		// Block until the first message (either ProgressMsg or ScanDoneMsg)
		return <-sub
	}
}

// waitForScanMsg blocks until the next message arrives from the scanner goroutine.
func waitForScanMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}

// rescanCmd rescans in the background (no progress UI).
func rescanCmd(projectDir, csvPath string, cfg config.Config) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		results, summary, records, snap := scanProject(projectDir, csvPath, cfg, nil)
		return RescanDoneMsg{
			Results:  results,
			Summary:  summary,
			Records:  records,
			Snapshot: snap,
			LoadTime: time.Since(start),
		}
	}
}

// ─── Helpers ────────────────────────────────────────────────────

// workflowNames returns tracked workflow names from the stats snapshot,
// most-run first, ties alphabetical.
func (a App) workflowNames() []string {
	if a.snapshot == nil {
		return nil
	}
	byWorkflow := a.snapshot.ByWorkflow
	names := make([]string, 0, len(byWorkflow))
	for name := range byWorkflow {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		wi, wj := byWorkflow[names[i]], byWorkflow[names[j]]
		if wi.Count != wj.Count {
			return wi.Count > wj.Count
		}
		return names[i] < names[j]
	})
	return names
}

// projectLabel trims the encoded project directory name for display.
func projectLabel(projectDir string) string {
	name := projectDir
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	return truncStr(name, 40)
}

// chartDateLabels builds compact X-axis labels for a chronological session
// series. First label and month boundaries: month abbreviation ("Jan").
// Everything else: the day number. Sessions without a usable timestamp get
// a blank label.
func chartDateLabels(sessions []*model.SessionResult) []string {
	labels := make([]string, len(sessions))
	prevMonth := time.Month(0)
	for i, r := range sessions {
		ts, ok := r.StartTime()
		if !ok {
			labels[i] = ""
			continue
		}
		m := ts.Month()
		switch {
		case i == 0, m != prevMonth:
			labels[i] = ts.Format("Jan")
		default:
			labels[i] = strconv.Itoa(ts.Day())
		}
		prevMonth = m
	}
	return labels
}

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	padding := strings.Repeat("\n", h-len(lines))
	return s + padding
}

// fillLinesWithBackground pads each line to width w with background color.
// This ensures gaps between cards and empty lines have proper background fill.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		placed := lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
		result.WriteString(placed)
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}

// ─── Mouse Support ──────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes are derived from the same width rules used by RenderTabBar:
// one leading space, two spaces between tabs.
func (a App) tabAtX(x int) int {
	pos := 1
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)

		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW

		if i < len(components.Tabs)-1 {
			pos += 2
		}
	}
	return -1
}
