// Package ignore decides which filesystem entries are hidden from the path tree.
//
// Two mechanisms apply: a static, name-based deny-list that is always on, and a
// user-curated block-set of absolute paths that is persisted with the workspace.
package ignore

import (
	"path/filepath"
	"sort"
	"strings"
)

// HiddenPrefix marks entries that are never shown.
const HiddenPrefix = "."

// DefaultNames is the built-in deny-list of basenames.
var DefaultNames = []string{
	".git", "node_modules", "dist", "build", "target",
	".vscode", ".idea", "coverage", "__pycache__",
	"package-lock.json", "yarn.lock", "pnpm-lock.yaml",
	".DS_Store", ".env", ".env.local", "bin", "obj",
	".next", ".nuxt",
}

// Filter combines the deny-list and the block-set.
type Filter struct {
	names   map[string]struct{} // Denied basenames.
	blocked map[string]struct{} // Blocked absolute paths, cleaned.
}

// New builds a Filter from basenames to deny and paths to block.
func New(names []string, blocked []string) *Filter {
	f := &Filter{
		names:   make(map[string]struct{}, len(names)),
		blocked: make(map[string]struct{}, len(blocked)),
	}
	for _, n := range names {
		f.names[n] = struct{}{}
	}
	for _, p := range blocked {
		f.Block(p)
	}
	return f
}

// Default returns a Filter using DefaultNames.
func Default(blocked []string) *Filter {
	return New(DefaultNames, blocked)
}

// DeniedName reports whether a basename is on the deny-list or hidden.
func (f *Filter) DeniedName(name string) bool {
	if strings.HasPrefix(name, HiddenPrefix) {
		return true
	}
	_, ok := f.names[name]
	return ok
}

// Blocked reports whether path is in the block-set.
func (f *Filter) Blocked(path string) bool {
	if len(f.blocked) == 0 {
		return false
	}
	_, ok := f.blocked[normalize(path)]
	return ok
}

// Skip reports whether the entry at path must not appear in the tree.
func (f *Filter) Skip(path string) bool {
	return f.DeniedName(filepath.Base(path)) || f.Blocked(path)
}

// Block adds path to the block-set.
func (f *Filter) Block(path string) {
	if path == "" {
		return
	}
	f.blocked[normalize(path)] = struct{}{}
}

// BlockedPaths returns the block-set in sorted order.
func (f *Filter) BlockedPaths() []string {
	out := make([]string, 0, len(f.blocked))
	for p := range f.blocked {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func normalize(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
