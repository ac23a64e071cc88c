// Package workspace holds the mutable selection and rule state of a project
// and is the only place that state is serialized.
package workspace

import (
	"path/filepath"
	"sort"

	"ctxpack/pkg/export"
	"ctxpack/pkg/ignore"
	"ctxpack/pkg/rules"
	"ctxpack/pkg/tree"

	"go.uber.org/zap"
)

// State is everything the tree, the resolver and the exporter read.
type State struct {
	BasePath    string
	CustomRoots []string
	Blocked     map[string]struct{}
	Overrides   rules.Overrides
	Global      rules.RuleMap
	Scopes      map[string]rules.RuleMap
	Selection   map[string]bool
	Export      export.Config
}

// New returns the default state for base.
func New(base string) *State {
	return FromDocument(base, DefaultDocument())
}

// FromDocument builds a State from a decoded document.
func FromDocument(base string, d Document) *State {
	d.fillDefaults()
	s := &State{
		BasePath:    absPath(base),
		CustomRoots: append([]string{}, d.CustomRoots...),
		Blocked:     make(map[string]struct{}, len(d.BlockedPaths)),
		Overrides: rules.Overrides{
			Includes: append([]string{}, d.ForcedIncludes...),
			Excludes: append([]string{}, d.ForcedExcludes...),
		},
		Global:    d.GlobalRules.Clone(),
		Scopes:    make(map[string]rules.RuleMap, len(d.ScopeRules)),
		Selection: make(map[string]bool, len(d.Selection)),
		Export: export.Config{
			Merge:           d.MergeMode,
			Flatten:         d.FlattenPaths,
			StripComments:   d.RemoveComments,
			StripBlankLines: d.RemoveEmptyLines,
			TrimTrailing:    d.TrimTrailing,
		},
	}
	for _, p := range d.BlockedPaths {
		s.Blocked[absPath(p)] = struct{}{}
	}
	for dir, m := range d.ScopeRules {
		s.Scopes[absPath(dir)] = m.Clone()
	}
	for p, v := range d.Selection {
		s.Selection[p] = v
	}
	return s
}

// Document returns the persisted form of s.
func (s *State) Document() Document {
	d := Document{
		CustomRoots:      append([]string{}, s.CustomRoots...),
		ForcedIncludes:   append([]string{}, s.Overrides.Includes...),
		ForcedExcludes:   append([]string{}, s.Overrides.Excludes...),
		GlobalRules:      s.Global.Clone(),
		ScopeRules:       make(map[string]rules.RuleMap, len(s.Scopes)),
		Selection:        make(map[string]bool, len(s.Selection)),
		MergeMode:        s.Export.Merge,
		FlattenPaths:     s.Export.Flatten,
		RemoveComments:   s.Export.StripComments,
		RemoveEmptyLines: s.Export.StripBlankLines,
		TrimTrailing:     s.Export.TrimTrailing,
	}
	if d.GlobalRules == nil {
		d.GlobalRules = rules.RuleMap{}
	}
	for p := range s.Blocked {
		d.BlockedPaths = append(d.BlockedPaths, p)
	}
	sort.Strings(d.BlockedPaths)
	for dir, m := range s.Scopes {
		if m == nil {
			m = rules.RuleMap{}
		}
		d.ScopeRules[dir] = m.Clone()
	}
	for p, v := range s.Selection {
		d.Selection[p] = v
	}
	return d
}

// Roots returns the directories a scan starts from.
func (s *State) Roots() []string {
	return tree.DefaultRoots(s.BasePath, s.CustomRoots)
}

// Filter returns the deny-list filter with the current block-set.
func (s *State) Filter() *ignore.Filter {
	blocked := make([]string, 0, len(s.Blocked))
	for p := range s.Blocked {
		blocked = append(blocked, p)
	}
	return ignore.Default(blocked)
}

// Scan builds the tree for the current roots, block-set and selection.
func (s *State) Scan(logger *zap.Logger) *tree.Forest {
	return tree.Scan(s.Roots(), s.Filter(), s.Selection, logger)
}

// Resolver snapshots the rule state for one export run.
func (s *State) Resolver() (*rules.Resolver, error) {
	return rules.NewResolver(s.BasePath, s.Global, s.Scopes, s.Overrides)
}

// CaptureSelection replaces the persisted selection with the flags of the
// nodes currently in f. Paths no longer in the tree are dropped.
func (s *State) CaptureSelection(f *tree.Forest) {
	s.Selection = f.Selection()
}

// AddRoot appends a custom root. It reports false if already present.
func (s *State) AddRoot(path string) bool {
	path = absPath(path)
	if contains(s.CustomRoots, path) {
		return false
	}
	s.CustomRoots = append(s.CustomRoots, path)
	return true
}

// RemoveRoot removes a custom root.
func (s *State) RemoveRoot(path string) bool {
	var ok bool
	s.CustomRoots, ok = remove(s.CustomRoots, absPath(path))
	return ok
}

// Block hides path from every future scan.
func (s *State) Block(path string) {
	s.Blocked[absPath(path)] = struct{}{}
}

// Unblock removes path from the block-set.
func (s *State) Unblock(path string) bool {
	path = absPath(path)
	_, ok := s.Blocked[path]
	delete(s.Blocked, path)
	return ok
}

// AddInclude forces a file into every export.
func (s *State) AddInclude(path string) bool {
	path = absPath(path)
	if contains(s.Overrides.Includes, path) {
		return false
	}
	s.Overrides.Includes = append(s.Overrides.Includes, path)
	return true
}

// RemoveInclude drops a forced include.
func (s *State) RemoveInclude(path string) bool {
	var ok bool
	s.Overrides.Includes, ok = remove(s.Overrides.Includes, absPath(path))
	return ok
}

// AddExclude vetoes a file or directory. The entry is stored relative to the
// base path when one can be computed.
func (s *State) AddExclude(path string) bool {
	entry := s.excludeEntry(path)
	if contains(s.Overrides.Excludes, entry) {
		return false
	}
	s.Overrides.Excludes = append(s.Overrides.Excludes, entry)
	return true
}

// RemoveExclude drops a forced exclude given either its stored or its
// filesystem form.
func (s *State) RemoveExclude(path string) bool {
	var ok bool
	if s.Overrides.Excludes, ok = remove(s.Overrides.Excludes, path); ok {
		return true
	}
	s.Overrides.Excludes, ok = remove(s.Overrides.Excludes, s.excludeEntry(path))
	return ok
}

func (s *State) excludeEntry(path string) string {
	abs := absPath(path)
	if rel, err := filepath.Rel(s.BasePath, abs); err == nil {
		return rel
	}
	return path
}

// RulesFor returns the rule map of scope, or the global map when scope is
// empty. The second result reports whether scope has its own map.
func (s *State) RulesFor(scope string) (rules.RuleMap, bool) {
	if scope == "" {
		return s.Global, false
	}
	m, ok := s.Scopes[absPath(scope)]
	if !ok {
		return s.Global, false
	}
	return m, true
}

// SetRule adds or updates key in scope's map (the global map when scope is
// empty). A scope without a map starts from a copy of the global map.
func (s *State) SetRule(scope, key string, appendSuffix bool) {
	s.editable(scope)[key] = appendSuffix
}

// RemoveRule deletes key from scope's map. It reports whether it was present.
func (s *State) RemoveRule(scope, key string) bool {
	m := s.editable(scope)
	_, ok := m[key]
	delete(m, key)
	return ok
}

// SaveScope stores m as the rule map of dir. An empty map is a valid
// override that admits nothing.
func (s *State) SaveScope(dir string, m rules.RuleMap) {
	if m == nil {
		m = rules.RuleMap{}
	}
	s.Scopes[absPath(dir)] = m.Clone()
}

// RevertScope removes dir's own map so the global map applies again.
func (s *State) RevertScope(dir string) bool {
	dir = absPath(dir)
	_, ok := s.Scopes[dir]
	delete(s.Scopes, dir)
	return ok
}

func (s *State) editable(scope string) rules.RuleMap {
	if scope == "" {
		if s.Global == nil {
			s.Global = rules.RuleMap{}
		}
		return s.Global
	}
	dir := absPath(scope)
	m, ok := s.Scopes[dir]
	if !ok {
		m = s.Global.Clone()
		if m == nil {
			m = rules.RuleMap{}
		}
		s.Scopes[dir] = m
	}
	return m
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func remove(list []string, v string) ([]string, bool) {
	for i, x := range list {
		if x == v {
			return append(list[:i:i], list[i+1:]...), true
		}
	}
	return list, false
}
