package renamer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"
)

// Reporter receives the renamer's observable output.
type Reporter interface {
	// LogRename announces a rename before it is attempted.
	LogRename(oldPath, newPath string, dryRun bool)
	// LogDebug writes a diagnostic line.
	LogDebug(message string)
	// LogWarn writes a non-fatal problem that is not a per-file error.
	LogWarn(message string)
}

// Recorder persists attempted renames, for example to a journal.
type Recorder interface {
	RecordRename(ctx context.Context, oldPath, newPath string, renamed bool) error
}

// Options configures a Renamer.
type Options struct {
	// Width is the number of digits the counter is padded to.
	Width int
	// DryRun announces renames without performing them.
	DryRun bool
	// Reporter receives output; nil discards it.
	Reporter Reporter
	// Recorder, if set, is told about every attempted rename.
	Recorder Recorder
}

// Renamer pads the counter of individual files.
type Renamer struct {
	matcher  *Matcher
	width    int
	dryRun   bool
	reporter Reporter
	recorder Recorder
}

// New returns a Renamer that uses m to locate counters.
func New(m *Matcher, opts Options) *Renamer {
	reporter := opts.Reporter
	if reporter == nil {
		reporter = discardReporter{}
	}
	return &Renamer{
		matcher:  m,
		width:    opts.Width,
		dryRun:   opts.DryRun,
		reporter: reporter,
		recorder: opts.Recorder,
	}
}

// Width returns the configured counter width.
func (r *Renamer) Width() int {
	return r.width
}

// NewName computes the padded name for a base name. The boolean is false
// only when the count already has the configured width. A longer count is
// re-rendered and may come back unchanged; it still counts as a rename.
func (r *Renamer) NewName(name string) (string, bool, error) {
	m, ok := r.matcher.Match(name)
	if !ok {
		return "", false, ErrPatternMismatch
	}

	count, changed, err := Pad(m.Count, r.width)
	if err != nil {
		return "", false, ErrCountParseFailure
	}
	if !changed {
		return name, false, nil
	}

	return m.Name(count), true, nil
}

// RenameIfNeeded renames path so that its counter has the configured width.
// Files that already have the right width are left alone without output.
// The progress line is written before the rename is attempted, so it
// appears even when the rename then fails.
func (r *Renamer) RenameIfNeeded(ctx context.Context, path string) error {
	name, ok := baseName(path)
	if !ok {
		return newError(KindNoFilename, path)
	}
	if !utf8.ValidString(name) {
		return newError(KindInvalidEncoding, path)
	}

	newName, changed, err := r.NewName(name)
	if err != nil {
		if kind, ok := kindFromSentinel(err); ok {
			return newError(kind, path)
		}
		return err
	}
	if !changed {
		r.reporter.LogDebug(fmt.Sprintf("already %d digits: %s", r.width, path))
		return nil
	}

	dir, ok := parentDir(path)
	if !ok {
		return newError(KindNoParentDirectory, path)
	}
	newPath := filepath.Join(dir, newName)

	r.reporter.LogRename(path, newPath, r.dryRun)
	if r.dryRun {
		return nil
	}
	// A count longer than the width renders to the same name.
	if filepath.Join(dir, filepath.Base(path)) == newPath {
		return nil
	}

	renameErr := Move(path, newPath)
	if renameErr != nil {
		r.reporter.LogDebug(fmt.Sprintf("rename %s: %v", path, renameErr))
	}
	if r.recorder != nil {
		if err := r.recorder.RecordRename(ctx, path, newPath, renameErr == nil); err != nil {
			r.reporter.LogWarn(fmt.Sprintf("failed to record rename of %s: %v", path, err))
		}
	}
	if renameErr != nil {
		return newError(KindRenameFailed, path)
	}
	return nil
}

// Move renames oldPath to newPath, refusing to replace an existing entry.
func Move(oldPath, newPath string) error {
	if _, err := os.Lstat(newPath); err == nil {
		return fmt.Errorf("target %s already exists", newPath)
	}
	return os.Rename(oldPath, newPath)
}

// baseName returns the final path component, if the path has one.
func baseName(path string) (string, bool) {
	if path == "" {
		return "", false
	}
	name := filepath.Base(path)
	switch name {
	case string(filepath.Separator), ".", "..":
		return "", false
	}
	return name, true
}

// parentDir returns the directory containing path. A path that is its own
// parent (a filesystem root) has none.
func parentDir(path string) (string, bool) {
	dir := filepath.Dir(path)
	if dir == filepath.Clean(path) {
		return "", false
	}
	return dir, true
}

func kindFromSentinel(err error) (Kind, bool) {
	switch err {
	case ErrPatternMismatch:
		return KindPatternMismatch, true
	case ErrCountParseFailure:
		return KindCountParseFailure, true
	}
	return 0, false
}

type discardReporter struct{}

func (discardReporter) LogRename(string, string, bool) {}
func (discardReporter) LogDebug(string)                {}
func (discardReporter) LogWarn(string)                 {}
