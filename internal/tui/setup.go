package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/ecclabs/wcost/internal/config"
	"github.com/ecclabs/wcost/internal/tui/theme"
)

// setupValues collects first-run wizard answers before they are parsed
// into a Config.
type setupValues struct {
	theme     string
	workflows string
	claudeDir string
}

// newSetupForm builds the first-run wizard shown when no config file
// exists yet. Answers land in vals; saveSetupConfig turns them into a
// saved Config.
func newSetupForm(sessionCount int, projectDir string, vals *setupValues) *huh.Form {
	vals.theme = "flexoki-dark"
	vals.workflows = strings.Join(config.DefaultWorkflows, ", ")
	vals.claudeDir = ""

	welcome := fmt.Sprintf("Found %d sessions for %s.", sessionCount, projectLabel(projectDir))
	if sessionCount == 0 {
		welcome = "No sessions found for this project yet."
	}

	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themeOpts = append(themeOpts, huh.NewOption(t.Name, t.Name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("◈ Welcome to wcost").
				Description(welcome+"\nA few questions to set up your config. Esc keeps the defaults."),

			huh.NewSelect[string]().
				Title("Theme").
				Description("Color theme for the dashboard").
				Options(themeOpts...).
				Value(&vals.theme),

			huh.NewInput().
				Title("Tracked workflows").
				Description("Comma-separated command names that count as workflow runs").
				Value(&vals.workflows),

			huh.NewInput().
				Title("Claude directory").
				Description("Where Claude Code keeps its projects (blank = ~/.claude)").
				Placeholder("~/.claude").
				Value(&vals.claudeDir),
		),
	)
}

// saveSetupConfig parses the wizard answers into the app config and
// writes the config file. The in-memory config updates even when the
// write fails, so the running dashboard reflects the choices.
func (a *App) saveSetupConfig() error {
	a.cfg.Appearance.Theme = a.setupVals.theme

	var workflows []string
	for _, w := range strings.Split(a.setupVals.workflows, ",") {
		if w = strings.TrimSpace(w); w != "" {
			workflows = append(workflows, w)
		}
	}
	if len(workflows) > 0 {
		a.cfg.Tracking.Workflows = workflows
	}

	if dir := strings.TrimSpace(a.setupVals.claudeDir); dir != "" {
		a.cfg.General.ClaudeDir = dir
	}

	theme.SetActive(a.cfg.Appearance.Theme)

	return config.Save(a.cfg)
}
