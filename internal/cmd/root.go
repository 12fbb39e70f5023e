package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for padcount.
// The root command itself performs the rename run; history and undo are
// subcommands working on a rename journal.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "padcount <dir>",
		Short: "Zero-pad the numeric counter in file names",
		Long: `Padcount walks a directory tree and renames every file whose name
contains a number so that the first run of digits has a fixed width.

  img7.jpg      -> img00007.jpg   (default --width 5)
  track004.mp3  -> track0004.mp3  (--width 4)

Only the first digit run of a name is considered. Counters that are longer
than the width keep all of their digits. Files whose counter already has the
requested width are left alone, so running padcount twice is harmless.

Examples:
  padcount photos/                     # pad to 5 digits
  padcount --width 3 scans/            # pad to 3 digits
  padcount --dry-run --width 3 scans/  # show what would change
  padcount --journal renames.db music/ # record renames for undo
  padcount --watch inbox/              # keep padding files as they arrive
  padcount undo --journal renames.db   # reverse the latest recorded run`,
		Version: Version,
		Args:    cobra.ExactArgs(1),
		RunE:    runRename,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
		// main prints the error
		SilenceErrors: true,
	}

	addRenameFlags(cmd)

	cmd.AddCommand(NewHistoryCommand())
	cmd.AddCommand(NewUndoCommand())

	return cmd
}
