package journal

import (
	"context"
	"path/filepath"

	"github.com/harrison/padcount/internal/renamer"
)

// RunRecorder records the renames of one run. It satisfies renamer.Recorder.
type RunRecorder struct {
	store *Store
	runID string
}

// NewRunRecorder starts a run in the store and returns a recorder for it.
func NewRunRecorder(ctx context.Context, store *Store, root string, width int) (*RunRecorder, error) {
	id, err := store.BeginRun(ctx, root, width)
	if err != nil {
		return nil, err
	}
	return &RunRecorder{store: store, runID: id}, nil
}

// RunID returns the ID of the run being recorded.
func (r *RunRecorder) RunID() string {
	return r.runID
}

// RecordRename implements renamer.Recorder. Paths are stored absolute so an
// undo works from any working directory.
func (r *RunRecorder) RecordRename(ctx context.Context, oldPath, newPath string, renamed bool) error {
	if abs, err := filepath.Abs(oldPath); err == nil {
		oldPath = abs
	}
	if abs, err := filepath.Abs(newPath); err == nil {
		newPath = abs
	}
	status := StatusRenamed
	if !renamed {
		status = StatusFailed
	}
	_, err := r.store.RecordEntry(ctx, r.runID, oldPath, newPath, status)
	return err
}

// Finish marks the run as finished.
func (r *RunRecorder) Finish(ctx context.Context) error {
	return r.store.FinishRun(ctx, r.runID)
}

var _ renamer.Recorder = (*RunRecorder)(nil)
