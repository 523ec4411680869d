package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ecclabs/wcost/internal/config"
	"github.com/ecclabs/wcost/internal/source"
	"github.com/ecclabs/wcost/internal/workspace"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	reader := bufio.NewReader(os.Stdin)

	// Load existing config or defaults
	cfg, _ := config.Load()

	fmt.Println()
	fmt.Println("  Welcome to wcost!")
	fmt.Println()
	if projectDir, err := workspace.ResolveProjectDir(cfg, flagProject); err == nil {
		if files, err := source.SessionFiles(projectDir); err == nil {
			fmt.Printf("  Found %d sessions for this project in %s\n\n", len(files), projectDir)
		}
	}

	// 1. Claude directory
	fmt.Println("  1. Claude directory")
	fmt.Println("     Where Claude Code keeps its projects/ logs. Blank for ~/.claude.")
	if cfg.General.ClaudeDir != "" {
		fmt.Printf("     Current: %s\n", cfg.General.ClaudeDir)
	}
	fmt.Print("     > ")
	claudeDir, _ := reader.ReadString('\n')
	claudeDir = strings.TrimSpace(claudeDir)
	if claudeDir != "" {
		cfg.General.ClaudeDir = claudeDir
	}
	fmt.Println()

	// 2. Tracked workflows
	fmt.Println("  2. Tracked workflows")
	fmt.Println("     Comma-separated slash-command names to auto-detect. Blank keeps:")
	fmt.Printf("     %s\n", strings.Join(cfg.Tracking.Workflows, ", "))
	fmt.Print("     > ")
	wfLine, _ := reader.ReadString('\n')
	wfLine = strings.TrimSpace(wfLine)
	if wfLine != "" {
		var workflows []string
		for _, w := range strings.Split(wfLine, ",") {
			if w = strings.TrimSpace(w); w != "" {
				workflows = append(workflows, w)
			}
		}
		if len(workflows) > 0 {
			cfg.Tracking.Workflows = workflows
		}
	}
	fmt.Println()

	// 3. Theme
	fmt.Println("  3. Color theme")
	fmt.Println("     (1) Flexoki Dark [default]")
	fmt.Println("     (2) Catppuccin Mocha")
	fmt.Println("     (3) Tokyo Night")
	fmt.Println("     (4) Terminal (ANSI 16)")
	fmt.Print("     > ")
	themeChoice, _ := reader.ReadString('\n')
	themeChoice = strings.TrimSpace(themeChoice)
	switch themeChoice {
	case "2":
		cfg.Appearance.Theme = "catppuccin-mocha"
	case "3":
		cfg.Appearance.Theme = "tokyo-night"
	case "4":
		cfg.Appearance.Theme = "terminal"
	default:
		cfg.Appearance.Theme = "flexoki-dark"
	}

	// Save
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	fmt.Println("  Run `wcost setup` anytime to reconfigure.")
	fmt.Println()

	return nil
}
