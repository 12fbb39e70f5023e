package fileutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// WalkOptions configures WalkFiles
type WalkOptions struct {
	// ExcludeDirs is a list of directory names to prune (e.g., ".git")
	ExcludeDirs []string
	// MaxDepth limits recursion depth (0 = unlimited, 1 = root directory only)
	MaxDepth int
	// SkipHidden prunes directories whose names start with "."
	SkipHidden bool
}

// WalkFiles calls visit for every regular file under root.
func WalkFiles(root string, opts WalkOptions, visit func(path string)) error {
	// A symlinked root is followed; nothing below it is.
	if info, err := os.Lstat(root); err == nil && info.Mode()&fs.ModeSymlink != 0 {
		if target, err := os.Stat(root); err == nil && target.IsDir() {
			root += string(filepath.Separator)
		}
	}

	excludeMap := make(map[string]bool)
	for _, dir := range opts.ExcludeDirs {
		excludeMap[dir] = true
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			name := d.Name()
			if excludeMap[name] || (opts.SkipHidden && strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			if opts.MaxDepth > 0 && depth(root, path) >= opts.MaxDepth {
				return filepath.SkipDir
			}
			return nil
		}

		if !isRegularFile(path, d.Type()) {
			return nil
		}

		visit(path)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk directory: %w", err)
	}
	return nil
}

// isRegularFile reports whether an entry of the given type is a regular
// file, following a symlink to its target. Links to directories, dangling
// links and special files are not.
func isRegularFile(path string, typ fs.FileMode) bool {
	if typ.IsRegular() {
		return true
	}
	if typ&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// IsRegularFile reports whether path is a regular file or a symlink to one.
func IsRegularFile(path string) bool {
	info, err := os.Lstat(path)
	return err == nil && isRegularFile(path, info.Mode().Type())
}

// depth returns how many directories deep path is below root.
func depth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}
