package rules

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResolver(t *testing.T, base string, global RuleMap, scopes map[string]RuleMap, ov Overrides) *Resolver {
	t.Helper()
	r, err := NewResolver(base, global, scopes, ov)
	require.NoError(t, err)
	return r
}

func TestEmptyScopeOverridesGlobal(t *testing.T) {
	proj := t.TempDir()
	r := newResolver(t, proj,
		RuleMap{".py": false},
		map[string]RuleMap{filepath.Join(proj, "lib"): {}},
		Overrides{},
	)

	d := r.Resolve(filepath.Join(proj, "lib", "x.py"))
	assert.False(t, d.Include)
	assert.Equal(t, ReasonNoRule, d.Reason)
	assert.Equal(t, filepath.Join(proj, "lib"), d.Scope)

	d = r.Resolve(filepath.Join(proj, "other", "x.py"))
	assert.True(t, d.Include)
	assert.False(t, d.AppendSuffix)
	assert.Empty(t, d.Scope)
}

func TestNearestScopeWins(t *testing.T) {
	proj := t.TempDir()
	r := newResolver(t, proj,
		RuleMap{".go": true, ".md": true},
		map[string]RuleMap{
			filepath.Join(proj, "a"):      {".go": true},
			filepath.Join(proj, "a", "b"): {".go": false},
		},
		Overrides{},
	)

	d := r.Resolve(filepath.Join(proj, "a", "b", "c", "main.go"))
	require.True(t, d.Include)
	assert.False(t, d.AppendSuffix, "nearest scope value, not the global one")
	assert.Equal(t, filepath.Join(proj, "a", "b"), d.Scope)

	d = r.Resolve(filepath.Join(proj, "a", "main.go"))
	require.True(t, d.Include)
	assert.True(t, d.AppendSuffix)

	// Scopes replace the global map instead of merging with it.
	d = r.Resolve(filepath.Join(proj, "a", "README.md"))
	assert.False(t, d.Include)
}

func TestScopeAtBase(t *testing.T) {
	proj := t.TempDir()
	r := newResolver(t, proj, RuleMap{".go": true}, map[string]RuleMap{proj: {".rs": false}}, Overrides{})

	assert.False(t, r.Resolve(filepath.Join(proj, "main.go")).Include)
	d := r.Resolve(filepath.Join(proj, "deep", "lib.rs"))
	assert.True(t, d.Include)
	assert.Equal(t, proj, d.Scope)
}

func TestScopeAboveBaseIgnored(t *testing.T) {
	parent := t.TempDir()
	proj := filepath.Join(parent, "project")
	r := newResolver(t, proj, RuleMap{".go": true}, map[string]RuleMap{parent: {}}, Overrides{})

	d := r.Resolve(filepath.Join(proj, "src", "main.go"))
	assert.True(t, d.Include)
	assert.Empty(t, d.Scope)
}

func TestExcludeBeatsInclude(t *testing.T) {
	proj := t.TempDir()
	forced := filepath.Join(proj, "secret", "keys.go")
	r := newResolver(t, proj, DefaultGlobal(), nil, Overrides{
		Includes: []string{forced},
		Excludes: []string{"secret"},
	})

	d := r.Resolve(forced)
	assert.False(t, d.Include)
	assert.Equal(t, ReasonExcluded, d.Reason)

	assert.True(t, r.Excluded(filepath.Join(proj, "secret")))
	assert.False(t, r.Excluded(filepath.Join(proj, "secretive", "a.go")), "prefix match needs a separator")
	assert.True(t, r.Resolve(filepath.Join(proj, "secretive", "a.go")).Include)
}

func TestExcludeExactFileAndAbsolute(t *testing.T) {
	proj := t.TempDir()
	other := t.TempDir()
	r := newResolver(t, proj, DefaultGlobal(), nil, Overrides{
		Excludes: []string{filepath.Join("src", "gen.go"), other, ""},
	})

	assert.False(t, r.Resolve(filepath.Join(proj, "src", "gen.go")).Include)
	assert.True(t, r.Resolve(filepath.Join(proj, "src", "main.go")).Include)
	assert.False(t, r.Resolve(filepath.Join(other, "x.go")).Include)
}

func TestForcedIncludeAlwaysSuffixed(t *testing.T) {
	proj := t.TempDir()
	data := filepath.Join(proj, "data.bin")
	notes := filepath.Join(proj, "notes.txt")
	r := newResolver(t, proj, RuleMap{".go": false}, nil, Overrides{Includes: []string{data, notes}})

	d := r.Resolve(data)
	assert.True(t, d.Include)
	assert.True(t, d.AppendSuffix)
	assert.True(t, d.Forced)
	assert.Equal(t, ReasonForced, d.Reason)

	// The bundle-suffix rejection only applies to files that are not forced.
	assert.True(t, r.Resolve(notes).Include)
}

func TestBundleSuffixRejected(t *testing.T) {
	proj := t.TempDir()
	r := newResolver(t, proj, RuleMap{".txt": true}, nil, Overrides{})

	d := r.Resolve(filepath.Join(proj, "out.txt"))
	assert.False(t, d.Include)
	assert.Equal(t, ReasonBundleSuffix, d.Reason)
}

func TestSpecialNames(t *testing.T) {
	proj := t.TempDir()
	r := newResolver(t, proj, DefaultGlobal(), nil, Overrides{})

	d := r.Resolve(filepath.Join(proj, "docker", "Dockerfile"))
	assert.True(t, d.Include)
	assert.True(t, d.AppendSuffix)
	assert.Equal(t, "Dockerfile", d.Key)

	assert.False(t, r.Resolve(filepath.Join(proj, "README")).Include)
}

func TestActiveMapCached(t *testing.T) {
	proj := t.TempDir()
	lib := filepath.Join(proj, "lib")
	r := newResolver(t, proj, RuleMap{".go": true}, map[string]RuleMap{lib: {".go": false}}, Overrides{})

	m1, s1 := r.ActiveMap(filepath.Join(lib, "x"))
	m2, s2 := r.ActiveMap(filepath.Join(lib, "x"))
	assert.Equal(t, lib, s1)
	assert.Equal(t, s1, s2)
	assert.Equal(t, m1, m2)
	assert.Equal(t, 1, r.cache.Len())
}

func TestResolverSnapshotsInput(t *testing.T) {
	proj := t.TempDir()
	global := RuleMap{".go": true}
	r := newResolver(t, proj, global, nil, Overrides{})
	delete(global, ".go")

	assert.True(t, r.Resolve(filepath.Join(proj, "main.go")).Include)
}

func TestReasonString(t *testing.T) {
	assert.Equal(t, "excluded", ReasonExcluded.String())
	assert.Equal(t, "reason(42)", Reason(42).String())
}
