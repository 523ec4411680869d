package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ecclabs/wcost/internal/cli"
	"github.com/ecclabs/wcost/internal/history"
	"github.com/ecclabs/wcost/internal/stats"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Recompute cost statistics from the tracking CSV",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(_ *cobra.Command, _ []string) error {
	e, err := resolveEnv()
	if err != nil {
		return err
	}

	var snap *stats.Snapshot
	if records, err := history.NewStore(e.csvPath).ReadAll(); err == nil {
		snap = stats.Compute(records, e.csvPath)
	}
	if snap == nil {
		fmt.Println("No tracking data yet. Run with --csv first to build tracking data.")
		return nil
	}

	if err := stats.WriteFile(snap, e.statsPath); err != nil {
		return err
	}
	fmt.Printf("  Stats written to %s\n", e.statsPath)
	fmt.Print(cli.StatsSummary(snap))
	return nil
}
