package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ecclabs/wcost/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	if cfg.General.ClaudeDir != "" {
		fmt.Printf("    Claude directory: %s\n", cfg.General.ClaudeDir)
	} else {
		fmt.Println("    Claude directory: ~/.claude (default)")
	}
	if cfg.General.CSVPath != "" {
		fmt.Printf("    CSV path:         %s\n", cfg.General.CSVPath)
	} else {
		fmt.Println("    CSV path:         per-project (default)")
	}
	if cfg.General.StatsPath != "" {
		fmt.Printf("    Stats path:       %s\n", cfg.General.StatsPath)
	} else {
		fmt.Println("    Stats path:       next to CSV (default)")
	}
	fmt.Printf("    Quiet:            %v\n", cfg.General.Quiet)
	fmt.Println()

	fmt.Println("  [Tracking]")
	fmt.Printf("    Workflows: %s\n", strings.Join(cfg.Tracking.Workflows, ", "))
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Pricing]")
	if n := len(cfg.Pricing.Overrides); n > 0 {
		fmt.Printf("    Overrides: %d model(s)\n", n)
		names := make([]string, 0, n)
		for name := range cfg.Pricing.Overrides {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("      %s\n", name)
		}
	} else {
		fmt.Println("    Overrides: none (built-in table)")
	}
	fmt.Println()

	fmt.Println("  Run `wcost setup` to reconfigure.")
	return nil
}
