// File: pkg/tree/scan.go
package tree

import (
	"os"
	"path/filepath"

	"ctxpack/pkg/ignore"
	"ctxpack/pkg/rules"

	"go.uber.org/zap"
)

// CategoryDirs are the directories under the base path scanned by default.
var CategoryDirs = []string{
	"apps", "package", "crate", "libs", "tools",
	"services", "src", "src-tauri", "scripts", "docker",
}

// DefaultRoots returns the category directories that exist under base,
// followed by the custom roots that exist.
func DefaultRoots(base string, custom []string) []string {
	var roots []string
	for _, c := range CategoryDirs {
		p := filepath.Join(base, c)
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			roots = append(roots, p)
		}
	}
	for _, c := range custom {
		if _, err := os.Stat(c); err == nil {
			roots = append(roots, c)
		}
	}
	return roots
}

type scanner struct {
	forest    *Forest
	filter    *ignore.Filter
	selection map[string]bool
	logger    *zap.Logger
	active    map[string]bool // Resolved directories on the current recursion path.
}

// Scan builds a Forest from roots. Entries rejected by filter never become
// nodes; selection restores each node's flag by path.
func Scan(roots []string, filter *ignore.Filter, selection map[string]bool, logger *zap.Logger) *Forest {
	if logger == nil {
		logger = zap.NewNop()
	}
	if filter == nil {
		filter = ignore.Default(nil)
	}
	s := &scanner{
		forest:    newForest(),
		filter:    filter,
		selection: selection,
		logger:    logger,
		active:    make(map[string]bool),
	}

	seen := make(map[string]bool, len(roots))
	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			logger.Warn("Failed to resolve root", zap.String("root", root), zap.Error(err))
			continue
		}
		if seen[abs] {
			continue
		}
		seen[abs] = true

		if filter.Skip(abs) {
			logger.Debug("Skipping filtered root", zap.String("root", abs))
			continue
		}
		info, err := os.Stat(abs)
		if err != nil {
			logger.Warn("Root does not exist or cannot be accessed", zap.String("root", abs), zap.Error(err))
			continue
		}
		if info.IsDir() {
			s.scanDir(NoParent, abs)
		} else {
			s.addFile(NoParent, abs)
		}
	}

	logger.Debug("Completed tree scan", zap.Int("roots", len(s.forest.roots)), zap.Int("nodes", s.forest.Len()))
	return s.forest
}

func (s *scanner) scanDir(parent NodeID, dir string) {
	if s.seen(dir) {
		return
	}
	id := s.forest.add(parent, dir, filepath.Base(dir), Dir, s.selection[dir])

	real, err := filepath.EvalSymlinks(dir)
	if err != nil {
		real = dir
	}
	if s.active[real] {
		s.logger.Debug("Skipping symlink cycle", zap.String("directory", dir))
		return
	}
	s.active[real] = true
	defer delete(s.active, real)

	entries, err := os.ReadDir(dir)
	if err != nil {
		s.logger.Warn("Failed to read directory, skipping subtree", zap.String("directory", dir), zap.Error(err))
		return
	}

	// os.ReadDir returns entries sorted by name; partitioning keeps that order.
	var dirs, files []string
	for _, e := range entries {
		full := filepath.Join(dir, e.Name())
		if s.filter.Skip(full) {
			continue
		}
		if isDir(full) {
			dirs = append(dirs, full)
		} else {
			files = append(files, full)
		}
	}

	for _, d := range dirs {
		s.scanDir(id, d)
	}
	for _, f := range files {
		s.addFile(id, f)
	}
}

func (s *scanner) addFile(parent NodeID, path string) {
	name := filepath.Base(path)
	if rules.Key(name) == rules.BundleSuffix || s.seen(path) {
		return
	}
	s.forest.add(parent, path, name, File, s.selection[path])
}

// seen reports whether path already has a node. A root nested inside an
// earlier root keeps the node of the first scan, so a path never carries
// two selection flags.
func (s *scanner) seen(path string) bool {
	if _, ok := s.forest.Lookup(path); ok {
		s.logger.Debug("Skipping path already in tree", zap.String("path", path))
		return true
	}
	return false
}

// isDir follows symlinks; a dangling link counts as a file.
func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
