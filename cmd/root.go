// Package cmd implements the wcost CLI commands.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ecclabs/wcost/internal/cli"
	"github.com/ecclabs/wcost/internal/config"
	"github.com/ecclabs/wcost/internal/history"
	"github.com/ecclabs/wcost/internal/pipeline"
	"github.com/ecclabs/wcost/internal/source"
	"github.com/ecclabs/wcost/internal/stats"
	"github.com/ecclabs/wcost/internal/workspace"
)

var (
	flagProject  string
	flagSession  string
	flagWorkflow string
	flagStory    string
	flagCSV      bool
	flagStats    bool
	flagNoCache  bool
	flagQuiet    bool
)

// errReported signals that RunE already wrote its message to stderr and
// Execute should exit nonzero without printing anything further.
var errReported = errors.New("error already reported")

var rootCmd = &cobra.Command{
	Use:   "wcost",
	Short: "Claude Code workflow cost analyzer",
	Long: `Analyze Claude Code session logs and estimate token spend.

Without arguments, wcost analyzes the latest session of the current
project (git root or working directory) and prints a cost report.
Use --csv and --stats to build per-workflow tracking history.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runAnalyze,
}

// Execute is the main entry point called from main.go. It maps known
// failures onto the stderr shapes users script against.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var notFound *workspace.ProjectNotFoundError
		var noSession *pipeline.SessionNotFoundError
		switch {
		case errors.Is(err, errReported):
			// message already on stderr
		case errors.As(err, &notFound):
			fmt.Fprintf(os.Stderr, "ERROR: No Claude Code sessions found for project: %s\n", notFound.ProjectRoot)
			fmt.Fprintf(os.Stderr, "  Expected: %s\n", notFound.Expected)
			if len(notFound.Available) > 0 {
				fmt.Fprintln(os.Stderr, "  Available projects:")
				for _, p := range notFound.Available {
					fmt.Fprintf(os.Stderr, "    %s\n", p)
				}
			}
		case errors.As(err, &noSession):
			fmt.Fprintf(os.Stderr, "ERROR: Session file not found: %s\n", noSession.Path)
		case errors.Is(err, source.ErrNoSessions):
			fmt.Fprintln(os.Stderr, "ERROR: No session JSONL files found")
		default:
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagProject, "project", "p", "", "Explicit project path (default: git root or cwd)")
	pf.StringVarP(&flagSession, "session", "s", "", "Session ID to analyze (default: latest)")
	pf.StringVar(&flagWorkflow, "workflow", "", "Workflow name for CSV tracking (auto-detected if omitted)")
	pf.StringVar(&flagStory, "story", "", "Story or ticket ID to record in the CSV")
	pf.BoolVar(&flagCSV, "csv", false, "Append the result to the tracking CSV")
	pf.BoolVar(&flagStats, "stats", false, "Recompute stats and print a cost notice")
	pf.BoolVar(&flagNoCache, "no-cache", false, "Skip SQLite cache, reparse everything")
	pf.BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
}

// env carries the per-invocation paths every command starts from.
type env struct {
	cfg        config.Config
	projectDir string
	csvPath    string
	statsPath  string
}

func resolveEnv() (env, error) {
	cfg, err := config.Load()
	if err != nil {
		return env{}, err
	}
	config.ApplyOverrides(cfg.Pricing)

	projectDir, err := workspace.ResolveProjectDir(cfg, flagProject)
	if err != nil {
		return env{}, err
	}
	csvPath := workspace.CSVPath(cfg, projectDir)
	return env{
		cfg:        cfg,
		projectDir: projectDir,
		csvPath:    csvPath,
		statsPath:  workspace.StatsPath(cfg, csvPath),
	}, nil
}

func (e env) quiet() bool {
	return flagQuiet || e.cfg.General.Quiet
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	// --stats alone recomputes from the CSV without touching any session.
	if flagStats && !flagCSV && flagSession == "" {
		return runStats(cmd, args)
	}

	e, err := resolveEnv()
	if err != nil {
		return err
	}

	sessionID := flagSession
	if sessionID == "" {
		sessionID, err = source.LatestSession(e.projectDir)
		if err != nil {
			return err
		}
	}

	result, err := pipeline.AnalyzeSession(e.projectDir, sessionID, e.cfg.TrackedWorkflows())
	if err != nil {
		return err
	}

	fmt.Print(cli.SessionReport(result, filepath.Base(e.projectDir)))

	if flagCSV {
		st := history.NewStore(e.csvPath)
		if err := st.Append(history.BuildRecord(result, flagWorkflow, flagStory)); err != nil {
			return err
		}
		fmt.Printf("  Appended to %s\n", e.csvPath)
	}

	if flagStats {
		wfName := flagWorkflow
		if wfName == "" {
			wfName = result.Parent.Workflow
		}
		var snap *stats.Snapshot
		if records, err := history.NewStore(e.csvPath).ReadAll(); err == nil {
			snap = stats.Compute(records, e.csvPath)
		}
		if snap != nil {
			if err := stats.WriteFile(snap, e.statsPath); err != nil {
				return err
			}
			fmt.Printf("  Stats written to %s\n", e.statsPath)
		}
		fmt.Print(cli.CostNotice(result.TotalCost, snap, wfName))
	}
	return nil
}
