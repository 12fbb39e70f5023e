package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/harrison/padcount/internal/config"
	"github.com/harrison/padcount/internal/filelock"
	"github.com/harrison/padcount/internal/fileutil"
	"github.com/harrison/padcount/internal/journal"
	"github.com/harrison/padcount/internal/logger"
	"github.com/harrison/padcount/internal/renamer"
	"github.com/spf13/cobra"
)

// addRenameFlags registers the flags of a rename run.
func addRenameFlags(cmd *cobra.Command) {
	cmd.Flags().Uint("width", config.DefaultWidth, "Number of digits to pad the counter to")
	cmd.Flags().Bool("dry-run", false, "Print the renames without performing them")
	cmd.Flags().String("config", "", "Path to a YAML config file (none is read by default)")
	cmd.Flags().String("log-level", "", "Diagnostic verbosity: trace, debug, info, warn, error (default warn)")
	cmd.Flags().Bool("verbose", false, "Show diagnostics and a summary (same as --log-level debug)")
	cmd.Flags().String("journal", "", "Record renames in this SQLite journal for history and undo")
	cmd.Flags().Bool("lock", false, "Refuse to run while another padcount run holds the same directory")
	cmd.Flags().Bool("lock-wait", false, "With --lock, wait for the other run to finish instead of refusing")
	cmd.Flags().StringSlice("exclude", nil, "Directory names to skip (repeatable)")
	cmd.Flags().Int("max-depth", 0, "Maximum directory depth to descend (0 = unlimited, 1 = top level only)")
	cmd.Flags().Bool("skip-hidden", false, "Skip directories whose names start with a dot")
	cmd.Flags().Bool("watch", false, "After the pass, keep padding new files until interrupted")
	cmd.Flags().Duration("settle", fileutil.DefaultSettleDelay, "In watch mode, how long a file must stay unchanged before it is renamed")
}

// loadRunConfig builds the effective configuration: defaults, then the
// config file if --config was given, then any flags set on the command line.
func loadRunConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	configPath, _ := cmd.Flags().GetString("config")
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("width") {
		width, _ := flags.GetUint("width")
		cfg.Width = int(width)
	}
	if flags.Changed("dry-run") {
		cfg.DryRun, _ = flags.GetBool("dry-run")
	}
	if flags.Changed("log-level") {
		level, _ := flags.GetString("log-level")
		cfg.LogLevel = config.NormalizeLogLevel(level)
	}
	if verbose, _ := flags.GetBool("verbose"); verbose && !flags.Changed("log-level") {
		cfg.LogLevel = "debug"
	}
	if flags.Changed("journal") {
		cfg.Journal, _ = flags.GetString("journal")
	}
	if flags.Changed("lock") {
		cfg.Lock, _ = flags.GetBool("lock")
	}
	if flags.Changed("lock-wait") {
		cfg.LockWait, _ = flags.GetBool("lock-wait")
	}
	if flags.Changed("exclude") {
		cfg.ExcludeDirs, _ = flags.GetStringSlice("exclude")
	}
	if flags.Changed("max-depth") {
		cfg.MaxDepth, _ = flags.GetInt("max-depth")
	}
	if flags.Changed("skip-hidden") {
		cfg.SkipHidden, _ = flags.GetBool("skip-hidden")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// renameSession holds what one invocation of the root command sets up:
// logger, optional lock and journal, and the renamer itself.
type renameSession struct {
	root     string
	cfg      *config.Config
	log      *logger.ConsoleLogger
	renamer  *renamer.Renamer
	recorder *journal.RunRecorder
	// skip holds absolute paths that are never renamed (the journal's files).
	skip    map[string]bool
	closers []func()
}

func newRenameSession(ctx context.Context, cmd *cobra.Command, cfg *config.Config, root string) (*renameSession, error) {
	s := &renameSession{
		root: root,
		cfg:  cfg,
		log:  logger.NewConsoleLogger(cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg.LogLevel),
		skip: map[string]bool{},
	}

	if cfg.Lock {
		acquire := filelock.AcquireRunLock
		if cfg.LockWait {
			acquire = filelock.WaitRunLock
			s.log.LogDebug(fmt.Sprintf("waiting for run lock on %s", root))
		}
		lock, err := acquire("", root)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, func() { lock.Unlock() })
		s.log.LogDebug(fmt.Sprintf("holding run lock %s", lock.Path()))
	}

	opts := renamer.Options{
		Width:    cfg.Width,
		DryRun:   cfg.DryRun,
		Reporter: s.log,
	}

	if cfg.Journal != "" && !cfg.DryRun {
		store, err := journal.NewStore(cfg.Journal)
		if err != nil {
			s.close(ctx)
			return nil, fmt.Errorf("failed to open journal: %w", err)
		}
		s.closers = append(s.closers, func() { store.Close() })

		absRoot, err := filepath.Abs(root)
		if err != nil {
			s.close(ctx)
			return nil, fmt.Errorf("failed to resolve %s: %w", root, err)
		}
		s.recorder, err = journal.NewRunRecorder(ctx, store, absRoot, cfg.Width)
		if err != nil {
			s.close(ctx)
			return nil, fmt.Errorf("failed to start journal run: %w", err)
		}
		opts.Recorder = s.recorder

		// The journal may live inside the tree; never rename its files.
		if absJournal, err := filepath.Abs(cfg.Journal); err == nil {
			for _, suffix := range []string{"", "-wal", "-shm", "-journal"} {
				s.skip[absJournal+suffix] = true
			}
		}
	}

	s.renamer = renamer.New(renamer.NewMatcher(), opts)
	return s, nil
}

func (s *renameSession) walkOptions() fileutil.WalkOptions {
	return fileutil.WalkOptions{
		ExcludeDirs: s.cfg.ExcludeDirs,
		MaxDepth:    s.cfg.MaxDepth,
		SkipHidden:  s.cfg.SkipHidden,
	}
}

// visit renames one file, reporting a failure without stopping.
func (s *renameSession) visit(ctx context.Context, path string) {
	if len(s.skip) > 0 {
		if abs, err := filepath.Abs(path); err == nil && s.skip[abs] {
			s.log.LogDebug(fmt.Sprintf("skipping journal file %s", path))
			return
		}
	}
	if err := s.renamer.RenameIfNeeded(ctx, path); err != nil {
		s.log.LogFileError(err, path)
	}
}

// close finishes the journal run and releases the journal and lock, in
// reverse order of acquisition.
func (s *renameSession) close(ctx context.Context) {
	if s.recorder != nil {
		if err := s.recorder.Finish(ctx); err != nil {
			s.log.LogWarn(fmt.Sprintf("failed to finish journal run: %v", err))
		}
		s.log.LogInfo(fmt.Sprintf("journal run %s", s.recorder.RunID()))
		s.recorder = nil
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

// runRename implements the root command: one pass over the tree, then,
// with --watch, padding of new files until interrupted.
func runRename(cmd *cobra.Command, args []string) error {
	cfg, err := loadRunConfig(cmd)
	if err != nil {
		return err
	}
	root := args[0]

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := newRenameSession(ctx, cmd, cfg, root)
	if err != nil {
		return err
	}
	// Watch mode ends with ctx cancelled; the journal run must still finish.
	defer s.close(context.WithoutCancel(ctx))

	s.log.LogDebug(fmt.Sprintf("padding counters under %s to %d digits (log level %s)", root, s.renamer.Width(), s.log.Level()))

	start := time.Now()
	err = fileutil.WalkFiles(root, s.walkOptions(), func(path string) {
		s.visit(ctx, path)
	})
	if err != nil {
		return err
	}

	if watch, _ := cmd.Flags().GetBool("watch"); watch {
		settle, _ := cmd.Flags().GetDuration("settle")
		if err := watchTree(ctx, s, settle); err != nil {
			return err
		}
	}

	s.log.LogSummary(time.Since(start))
	return nil
}

// watchTree pads files as they appear under the session root until ctx is
// cancelled or the process is interrupted.
func watchTree(ctx context.Context, s *renameSession, settle time.Duration) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	w, err := fileutil.NewWatcher(s.root, s.walkOptions())
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", s.root, err)
	}
	defer w.Close()
	w.SetSettleDelay(settle)

	s.log.LogInfo(fmt.Sprintf("watching %s, press Ctrl+C to stop", w.Root()))

	for {
		select {
		case <-ctx.Done():
			s.log.LogDebug("watch stopped")
			return nil
		case path := <-w.Files():
			// Renamed or removed while settling.
			if !fileutil.IsRegularFile(path) {
				continue
			}
			s.visit(ctx, path)
		case err := <-w.Errors():
			s.log.LogWarn(fmt.Sprintf("watch error: %v", err))
		}
	}
}
