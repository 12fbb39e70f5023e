package fileutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultSettleDelay is how long a file must stay quiet before it is reported.
const DefaultSettleDelay = 200 * time.Millisecond

// Watcher reports regular files (and symlinks to them) that appear or change
// under a directory tree. Directories created after the watcher starts are watched too.
type Watcher struct {
	watcher *fsnotify.Watcher
	files   chan string
	errors  chan error
	done    chan struct{}
	root    string
	opts    WalkOptions
	exclude map[string]bool

	mu          sync.Mutex
	settleDelay time.Duration
	pending     map[string]*time.Timer
	closed      bool
}

// NewWatcher starts watching root and every directory below it that
// WalkFiles would descend into with the same options.
func NewWatcher(root string, opts WalkOptions) (*Watcher, error) {
	root = filepath.Clean(root)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:     watcher,
		files:       make(chan string, 100),
		errors:      make(chan error, 10),
		done:        make(chan struct{}),
		root:        root,
		opts:        opts,
		exclude:     make(map[string]bool),
		settleDelay: DefaultSettleDelay,
		pending:     make(map[string]*time.Timer),
	}
	for _, dir := range opts.ExcludeDirs {
		w.exclude[dir] = true
	}

	if err := w.addRecursive(root, false); err != nil {
		watcher.Close()
		return nil, err
	}

	go w.processEvents()

	return w, nil
}

// inScope reports whether dir is a directory WalkFiles would descend into.
func (w *Watcher) inScope(dir string) bool {
	if dir == w.root {
		return true
	}
	name := filepath.Base(dir)
	if w.exclude[name] || (w.opts.SkipHidden && strings.HasPrefix(name, ".")) {
		return false
	}
	return w.opts.MaxDepth == 0 || depth(w.root, dir) < w.opts.MaxDepth
}

// addRecursive watches dir and its in-scope subdirectories. With report set,
// regular files already present are reported as well; a directory moved
// into the tree arrives with its contents.
func (w *Watcher) addRecursive(dir string, report bool) error {
	start := dir
	if dir == w.root {
		if info, err := os.Lstat(dir); err == nil && info.Mode()&fs.ModeSymlink != 0 {
			start += string(filepath.Separator)
		}
	}

	return filepath.WalkDir(start, func(path string, d fs.DirEntry, err error) error {
		if path == start {
			path = dir
		}
		if err != nil {
			// Gone before we got to it.
			if os.IsNotExist(err) && path != w.root {
				return nil
			}
			return err
		}

		if d.IsDir() {
			if !w.inScope(path) {
				return filepath.SkipDir
			}
			if err := w.watcher.Add(path); err != nil {
				if os.IsPermission(err) {
					return filepath.SkipDir
				}
				return err
			}
			return nil
		}

		if report && isRegularFile(path, d.Type()) {
			w.schedule(path)
		}
		return nil
	})
}

func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.reportError(err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	// Removals, renames away and chmods leave nothing to pad.
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}

	path := event.Name
	info, err := os.Lstat(path)
	if err != nil {
		return
	}

	switch {
	case info.IsDir():
		if event.Has(fsnotify.Create) && w.inScope(path) {
			if err := w.addRecursive(path, true); err != nil {
				w.reportError(err)
			}
		}
	case isRegularFile(path, info.Mode().Type()):
		w.schedule(path)
	}
}

// schedule reports path once it has been quiet for the settle delay. Every
// new event for the same path restarts the clock.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}

	if timer, exists := w.pending[path]; exists {
		timer.Stop()
	}

	w.pending[path] = time.AfterFunc(w.settleDelay, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		select {
		case w.files <- path:
		case <-w.done:
		}
	})
}

func (w *Watcher) reportError(err error) {
	select {
	case w.errors <- err:
	default:
		// Error channel full, drop the error
	}
}

// Files returns the channel of settled file paths.
func (w *Watcher) Files() <-chan string {
	return w.files
}

// Errors returns the channel of watch errors. None of them are fatal.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Root returns the watched root directory.
func (w *Watcher) Root() string {
	return w.root
}

// SetSettleDelay sets how long a file must stay quiet before it is reported.
// Call it before any files appear.
func (w *Watcher) SetSettleDelay(delay time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.settleDelay = delay
}

// Close stops the watcher. Pending files are dropped.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true

	for _, timer := range w.pending {
		timer.Stop()
	}
	w.pending = nil
	w.mu.Unlock()

	close(w.done)

	return w.watcher.Close()
}
