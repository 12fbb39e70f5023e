package journal

import (
	"context"
	"fmt"

	"github.com/harrison/padcount/internal/renamer"
)

// UndoReporter receives the output of an undo.
type UndoReporter interface {
	LogRename(oldPath, newPath string, dryRun bool)
	LogFileError(err error, path string)
}

// UndoResult summarises an undo.
type UndoResult struct {
	Undone int
	Failed int
}

// Undo moves every file renamed by runID back to its old name, newest rename
// first. Each reversal is announced before it is attempted. A reversal that
// fails is reported and skipped; its entry keeps the renamed status so the
// undo can be retried.
func (s *Store) Undo(ctx context.Context, runID string, dryRun bool, log UndoReporter) (UndoResult, error) {
	var result UndoResult

	entries, err := s.Entries(ctx, runID)
	if err != nil {
		return result, err
	}

	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if e.Status != StatusRenamed {
			continue
		}

		log.LogRename(e.NewPath, e.OldPath, dryRun)
		if dryRun {
			continue
		}

		if err := renamer.Move(e.NewPath, e.OldPath); err != nil {
			log.LogFileError(renamer.ErrRenameFailed, e.NewPath)
			result.Failed++
			continue
		}
		if err := s.SetStatus(ctx, e.ID, StatusUndone); err != nil {
			return result, fmt.Errorf("undo %s: %w", e.NewPath, err)
		}
		result.Undone++
	}

	return result, nil
}
