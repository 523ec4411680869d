package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ecclabs/wcost/internal/hook"
)

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Edit-guard hooks for Claude Code",
	Long: `Read a Claude Code tool-use payload from stdin and warn about code
anti-patterns. Wire these as PreToolUse / PostToolUse hooks; a nonzero
exit surfaces the warnings in the session.`,
}

var hookPreEditCmd = &cobra.Command{
	Use:   "pre-edit",
	Short: "Check an Edit/Write payload before it lands",
	Run: func(_ *cobra.Command, _ []string) {
		runHook(hook.PreEdit)
	},
}

var hookPostEditCmd = &cobra.Command{
	Use:   "post-edit",
	Short: "Check the written file after an edit",
	Run: func(_ *cobra.Command, _ []string) {
		runHook(hook.PostEdit)
	},
}

func init() {
	hookCmd.AddCommand(hookPreEditCmd)
	hookCmd.AddCommand(hookPostEditCmd)
	rootCmd.AddCommand(hookCmd)
}

// runHook never fails loudly: hooks must not break the session they
// guard, so undecodable input exits clean.
func runHook(check func(hook.Input) []string) {
	in, ok := hook.Decode(os.Stdin)
	if !ok {
		return
	}
	if hook.Report(os.Stderr, check(in)) {
		os.Exit(1)
	}
}
