// Package rules decides, per file, whether it is exported and whether the
// bundling suffix is appended to its output name.
package rules

import (
	"errors"
	"strings"
)

// BundleSuffix is the extension of everything the exporter itself produces.
const BundleSuffix = ".txt"

// SpecialNames are basenames that act as their own rule key.
var SpecialNames = map[string]struct{}{
	"Dockerfile":  {},
	"Makefile":    {},
	"Gemfile":     {},
	"LICENSE":     {},
	".gitignore":  {},
	".gitmodules": {},
}

// ErrEmptyKey is returned when a rule key is blank.
var ErrEmptyKey = errors.New("empty rule key")

// RuleMap maps a rule key to its "append suffix" flag.
// Presence of the key is what lets a file through; the value never does.
type RuleMap map[string]bool

// DefaultGlobal returns the built-in global rule map.
func DefaultGlobal() RuleMap {
	return RuleMap{
		".css": false, ".js": false, ".ts": false, ".jsx": false, ".tsx": false,
		".html": false, ".json": false, ".py": false, ".md": false,
		".go": true, ".rs": true, ".vue": true, ".cpp": true, ".c": true,
		".cs": true, ".yml": true, ".yaml": true, ".bat": true, ".sh": true,
		".java": true, ".proto": true, ".gitignore": true, ".gitmodules": true,
		"Dockerfile": true, "Makefile": true,
	}
}

// Clone returns a copy of m. A nil map clones to nil.
func (m RuleMap) Clone() RuleMap {
	if m == nil {
		return nil
	}
	out := make(RuleMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Extension returns the extension of a basename, including the leading dot.
// Leading dots are part of the stem, so ".bashrc" has no extension.
func Extension(name string) string {
	stem := strings.TrimLeft(name, ".")
	i := strings.LastIndexByte(stem, '.')
	if i < 0 {
		return ""
	}
	return stem[i:]
}

// Key returns the rule key for a basename.
func Key(name string) string {
	if _, ok := SpecialNames[name]; ok {
		return name
	}
	return Extension(name)
}

// NormalizeKey turns user input into a rule key. "rb" becomes ".rb";
// special names and names that already contain a dot are kept as given.
func NormalizeKey(input string) (string, error) {
	key := strings.TrimSpace(input)
	if key == "" {
		return "", ErrEmptyKey
	}
	if strings.HasPrefix(key, ".") || strings.Contains(key, ".") {
		return key, nil
	}
	if _, ok := SpecialNames[key]; ok {
		return key, nil
	}
	return "." + key, nil
}

// Overrides are the explicit per-path include and exclude lists.
type Overrides struct {
	Includes []string // Absolute file paths exported regardless of rule maps.
	Excludes []string // Paths relative to the base (or absolute); veto everything.
}
