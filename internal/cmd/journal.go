package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/harrison/padcount/internal/journal"
	"github.com/harrison/padcount/internal/logger"
	"github.com/spf13/cobra"
)

// openExistingJournal opens a journal that must already exist; history and
// undo never create one.
func openExistingJournal(path string) (*journal.Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("journal %s: %w", path, err)
	}
	store, err := journal.NewStore(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	return store, nil
}

// NewHistoryCommand creates the history command
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List runs recorded in a rename journal",
		Long: `List the runs recorded in a rename journal, newest first.

Each line shows the run ID, start time, root directory, width and how many
renames succeeded, failed or were undone.

Examples:
  padcount history --journal renames.db
  padcount history --journal renames.db --limit 5`,
		Args: cobra.NoArgs,
		RunE: runHistory,
	}

	cmd.Flags().String("journal", "", "Path to the SQLite rename journal")
	cmd.Flags().Int("limit", 0, "Show at most this many runs (0 = all)")
	cmd.MarkFlagRequired("journal")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("journal")
	limit, _ := cmd.Flags().GetInt("limit")

	store, err := openExistingJournal(path)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded.")
		return nil
	}
	for _, run := range runs {
		fmt.Fprintln(out, formatRun(run))
	}
	return nil
}

// formatRun renders one history line.
// Format: "<id>  <started>  <root>  width=<n> renamed=<n> failed=<n> undone=<n>"
func formatRun(run *journal.Run) string {
	line := fmt.Sprintf("%s  %s  %s  width=%d renamed=%d failed=%d undone=%d",
		run.ID, run.StartedAt.Local().Format(time.RFC3339), run.Root,
		run.Width, run.Renamed, run.Failed, run.Undone)
	if run.FinishedAt.IsZero() {
		line += " (unfinished)"
	}
	return line
}

// NewUndoCommand creates the undo command
func NewUndoCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "undo",
		Short: "Reverse the renames of a recorded run",
		Long: `Move the files renamed by one recorded run back to their old names.

Renames are reversed newest first. A file whose old name is taken again is
reported and left in place; undo can be repeated once the conflict is gone.

Examples:
  padcount undo --journal renames.db              # latest run
  padcount undo --journal renames.db --run <id>   # specific run
  padcount undo --journal renames.db --dry-run    # preview`,
		Args: cobra.NoArgs,
		RunE: runUndo,
	}

	cmd.Flags().String("journal", "", "Path to the SQLite rename journal")
	cmd.Flags().String("run", "", "Run ID to undo (default: latest run)")
	cmd.Flags().Bool("dry-run", false, "Print the reversals without performing them")
	cmd.Flags().String("log-level", "", "Diagnostic verbosity: trace, debug, info, warn, error (default warn)")
	cmd.MarkFlagRequired("journal")

	return cmd
}

func runUndo(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("journal")
	runID, _ := cmd.Flags().GetString("run")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	logLevel, _ := cmd.Flags().GetString("log-level")

	if !logger.ValidLevel(logLevel) {
		return fmt.Errorf("invalid log level %q", logLevel)
	}

	store, err := openExistingJournal(path)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	var run *journal.Run
	if runID == "" {
		run, err = store.LatestRun(ctx)
	} else {
		run, err = store.GetRun(ctx, runID)
	}
	if err != nil {
		return err
	}

	log := logger.NewConsoleLogger(cmd.OutOrStdout(), cmd.ErrOrStderr(), logLevel)
	log.LogDebug(fmt.Sprintf("undoing run %s over %s", run.ID, run.Root))

	start := time.Now()
	result, err := store.Undo(ctx, run.ID, dryRun, log)
	if err != nil {
		return err
	}
	log.LogInfo(fmt.Sprintf("undid %d rename(s), %d failed", result.Undone, result.Failed))
	log.LogSummary(time.Since(start))
	return nil
}
