package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ecclabs/wcost/internal/cli"
	"github.com/ecclabs/wcost/internal/history"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize the tracking CSV by workflow",
	RunE:  runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

func runReport(_ *cobra.Command, _ []string) error {
	e, err := resolveEnv()
	if err != nil {
		return err
	}

	records, err := history.NewStore(e.csvPath).ReadAll()
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("No tracking data yet. Run workflows with --csv to start tracking.")
			return nil
		}
		return err
	}
	if len(records) == 0 {
		fmt.Println("CSV exists but has no data rows.")
		return nil
	}

	fmt.Print(cli.TrackingSummary(records, e.csvPath))
	return nil
}
