package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ecclabs/wcost/internal/cli"
	"github.com/ecclabs/wcost/internal/history"
	"github.com/ecclabs/wcost/internal/pipeline"
	"github.com/ecclabs/wcost/internal/source"
	"github.com/ecclabs/wcost/internal/stats"
	"github.com/ecclabs/wcost/internal/store"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Analyze every session of the project",
	Long: `Scan all session logs of the project, oldest first, and print a
cost table with per-model totals. Use --csv to rebuild the tracking
CSV from the full scan.`,
	RunE: runScan,
}

var scanLimit int

func init() {
	scanCmd.Flags().IntVarP(&scanLimit, "last", "l", 0, "Only the N most recent sessions (0 = all)")
	rootCmd.AddCommand(scanCmd)
}

func runScan(_ *cobra.Command, _ []string) error {
	e, err := resolveEnv()
	if err != nil {
		return err
	}

	opts := pipeline.ScanOptions{Limit: scanLimit}

	// Try the SQLite cache unless --no-cache; a broken cache just means
	// a full reparse, never a failed scan.
	if !flagNoCache {
		cache, err := store.Open(pipeline.CachePath())
		if err != nil {
			if !e.quiet() {
				fmt.Fprintf(os.Stderr, "  Cache unavailable, doing full parse\n")
			}
		} else {
			defer cache.Close()
			opts.Cache = cache
		}
	}

	if !e.quiet() {
		opts.Progress = func(current, total int) {
			if current%10 == 0 || current == total {
				fmt.Fprintf(os.Stderr, "\r  Parsing [%d/%d]", current, total)
			}
		}
	}

	scan, err := pipeline.ScanAll(e.projectDir, e.cfg.TrackedWorkflows(), opts)
	if err != nil {
		if errors.Is(err, source.ErrNoSessions) {
			fmt.Fprintln(os.Stderr, "No session files found.")
			return errReported
		}
		return err
	}

	if !e.quiet() && len(scan.Results) > 0 {
		if scan.CacheHits > 0 {
			fmt.Fprintf(os.Stderr, "\r  %d cached + %d reparsed    \n", scan.CacheHits, scan.Reparsed)
		} else {
			fmt.Fprintf(os.Stderr, "\r  Parsed %d sessions    \n", scan.Reparsed)
		}
	}

	summary := pipeline.Summarize(scan)
	fmt.Print(cli.ScanReport(scan.Results, summary, filepath.Base(e.projectDir)))

	if flagCSV {
		records := make([]history.Record, 0, len(scan.Results))
		for _, r := range scan.Results {
			records = append(records, history.BuildRecord(r, "", ""))
		}
		if err := history.NewStore(e.csvPath).Rebuild(records); err != nil {
			return err
		}
		fmt.Printf("  Exported to %s\n\n", e.csvPath)
	}

	if flagStats {
		records, err := history.NewStore(e.csvPath).ReadAll()
		if err != nil {
			return nil
		}
		if snap := stats.Compute(records, e.csvPath); snap != nil {
			if err := stats.WriteFile(snap, e.statsPath); err != nil {
				return err
			}
			fmt.Printf("  Stats written to %s\n", e.statsPath)
			fmt.Print(cli.StatsSummary(snap))
		}
	}
	return nil
}
