package rules

import (
	"fmt"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

const scopeCacheSize = 1024

// Reason explains a Decision.
type Reason int

const (
	ReasonRule Reason = iota
	ReasonForced
	ReasonExcluded
	ReasonBundleSuffix
	ReasonNoRule
)

func (r Reason) String() string {
	switch r {
	case ReasonRule:
		return "rule"
	case ReasonForced:
		return "forced"
	case ReasonExcluded:
		return "excluded"
	case ReasonBundleSuffix:
		return "bundle-suffix"
	case ReasonNoRule:
		return "no-rule"
	default:
		return fmt.Sprintf("reason(%d)", int(r))
	}
}

// Decision is the outcome of resolving one file.
type Decision struct {
	Include      bool
	AppendSuffix bool
	Forced       bool
	Key          string // Rule key derived from the basename.
	Scope        string // Directory whose map applied; empty for the global map.
	Reason       Reason
}

type scopeHit struct {
	rules RuleMap
	dir   string
}

// Resolver is a snapshot of the rule state used for one export run.
// It is safe for concurrent use.
type Resolver struct {
	base     string
	global   RuleMap
	scopes   map[string]RuleMap
	includes map[string]struct{}
	excludes []string
	cache    *lru.Cache[string, scopeHit]
}

// NewResolver normalizes every path it is given to absolute form.
// Relative exclude entries are joined with base.
func NewResolver(base string, global RuleMap, scopes map[string]RuleMap, ov Overrides) (*Resolver, error) {
	absBase, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base path: %w", err)
	}
	cache, err := lru.New[string, scopeHit](scopeCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create scope cache: %w", err)
	}

	r := &Resolver{
		base:     absBase,
		global:   global.Clone(),
		scopes:   make(map[string]RuleMap, len(scopes)),
		includes: make(map[string]struct{}, len(ov.Includes)),
		cache:    cache,
	}
	if r.global == nil {
		r.global = RuleMap{}
	}
	for dir, m := range scopes {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve scope %q: %w", dir, err)
		}
		m = m.Clone()
		if m == nil {
			m = RuleMap{}
		}
		r.scopes[abs] = m
	}
	for _, p := range ov.Includes {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve include %q: %w", p, err)
		}
		r.includes[abs] = struct{}{}
	}
	for _, e := range ov.Excludes {
		if strings.TrimSpace(e) == "" {
			continue
		}
		if !filepath.IsAbs(e) {
			e = filepath.Join(absBase, e)
		}
		r.excludes = append(r.excludes, filepath.Clean(e))
	}
	return r, nil
}

// Base returns the absolute base path.
func (r *Resolver) Base() string {
	return r.base
}

// Resolve decides whether path is exported.
func (r *Resolver) Resolve(path string) Decision {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	d := Decision{Key: Key(filepath.Base(abs))}

	if r.Excluded(abs) {
		d.Reason = ReasonExcluded
		return d
	}

	active, scope := r.ActiveMap(filepath.Dir(abs))
	d.Scope = scope

	if _, ok := r.includes[abs]; ok {
		d.Include = true
		d.AppendSuffix = true
		d.Forced = true
		d.Reason = ReasonForced
		return d
	}

	if d.Key == BundleSuffix {
		d.Reason = ReasonBundleSuffix
		return d
	}
	suffix, ok := active[d.Key]
	if !ok {
		d.Reason = ReasonNoRule
		return d
	}
	d.Include = true
	d.AppendSuffix = suffix
	d.Reason = ReasonRule
	return d
}

// Excluded reports whether path is, or lies inside, a forced-exclude entry.
func (r *Resolver) Excluded(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	for _, ex := range r.excludes {
		if abs == ex || strings.HasPrefix(abs, ex+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// ActiveMap returns the rule map that governs files directly inside dir,
// and the scope directory it came from ("" when the global map applies).
//
// The nearest ancestor with a scope map wins, even when that map is empty.
// The walk stops once the candidate is shorter than the base path.
func (r *Resolver) ActiveMap(dir string) (RuleMap, string) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = filepath.Clean(dir)
	}
	if hit, ok := r.cache.Get(abs); ok {
		return hit.rules, hit.dir
	}

	hit := scopeHit{rules: r.global}
	for curr := abs; len(curr) >= len(r.base); {
		if m, ok := r.scopes[curr]; ok {
			hit = scopeHit{rules: m, dir: curr}
			break
		}
		parent := filepath.Dir(curr)
		if parent == curr {
			break
		}
		curr = parent
	}
	r.cache.Add(abs, hit)
	return hit.rules, hit.dir
}
