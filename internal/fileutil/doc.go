// Package fileutil walks directory trees for padcount.
//
// [WalkFiles] visits every regular file under a root, the root included when
// it is itself a regular file. Directories, symlinks and special files are
// skipped without comment. Any error reported by the walk itself, such as an
// unreadable directory, stops the walk and is returned; errors returned by
// the visit function are the caller's business and never stop it.
//
// # Usage
//
//	err := fileutil.WalkFiles(root, fileutil.WalkOptions{}, func(path string) {
//	    if err := r.RenameIfNeeded(ctx, path); err != nil {
//	        log.LogFileError(err, path)
//	    }
//	})
//
// Directory entries are read in full before any of them is visited, so the
// visit function may rename files in the directory being walked.
//
// # Options
//
// The zero [WalkOptions] visits everything. ExcludeDirs prunes directories by
// base name, MaxDepth limits recursion (1 = the root directory only) and
// SkipHidden prunes directories whose names start with ".".
//
// # Watching
//
// [Watcher] follows the same options with fsnotify and reports regular files
// that are created or written once they have been quiet for a settle delay.
package fileutil
