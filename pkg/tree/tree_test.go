package tree

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"ctxpack/pkg/ignore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustWrite(t *testing.T, root, rel string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("dummy"), 0o644))
	return path
}

func names(f *Forest) []string {
	var out []string
	f.Walk(func(n *Node, depth int) bool {
		out = append(out, strings.Repeat("  ", depth)+n.Name)
		return true
	})
	return out
}

func TestScanOrderDirectoriesFirst(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	mustWrite(t, src, "b.go")
	mustWrite(t, src, "a.go")
	mustWrite(t, src, "zeta/z.go")
	mustWrite(t, src, "alpha/x.rs")
	mustWrite(t, src, "alpha/inner/y.go")
	mustWrite(t, src, "Makefile")

	f := Scan([]string{src}, ignore.Default(nil), nil, nil)

	assert.Equal(t, []string{
		"src",
		"  alpha",
		"    inner",
		"      y.go",
		"    x.rs",
		"  zeta",
		"    z.go",
		"  Makefile",
		"  a.go",
		"  b.go",
	}, names(f))
}

func TestScanFilters(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, root, "keep.go")
	mustWrite(t, root, "export.txt")
	mustWrite(t, root, ".env")
	mustWrite(t, root, ".hidden/a.go")
	mustWrite(t, root, "node_modules/lib/index.js")
	mustWrite(t, root, "package-lock.json")
	blocked := filepath.Join(root, "private")
	mustWrite(t, root, "private/secret.go")
	mustWrite(t, root, "public/ok.go")

	f := Scan([]string{root}, ignore.Default([]string{blocked}), nil, nil)

	assert.Equal(t, []string{
		filepath.Base(root),
		"  public",
		"    ok.go",
		"  keep.go",
	}, names(f))
	_, ok := f.Lookup(blocked)
	assert.False(t, ok)
}

func TestScanSkipsBlockedAndMissingRoots(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a")
	b := filepath.Join(root, "b")
	mustWrite(t, a, "x.go")
	mustWrite(t, b, "y.go")

	f := Scan([]string{a, b, a, filepath.Join(root, "missing")}, ignore.Default([]string{b}), nil, nil)

	require.Len(t, f.Roots(), 1)
	assert.Equal(t, a, f.Node(f.Roots()[0]).Path)
	assert.Equal(t, 2, f.Len())
}

func TestScanFileRoot(t *testing.T) {
	root := t.TempDir()
	file := mustWrite(t, root, "single.go")

	f := Scan([]string{file}, nil, map[string]bool{file: true}, nil)

	require.Equal(t, 1, f.Len())
	n := f.Node(f.Roots()[0])
	assert.Equal(t, File, n.Kind)
	assert.Equal(t, NoParent, n.Parent)
	assert.Equal(t, []string{file}, f.SelectedFiles())
}

func TestScanRestoresSelection(t *testing.T) {
	root := t.TempDir()
	a := mustWrite(t, root, "a.go")
	b := mustWrite(t, root, "sub/b.go")

	f := Scan([]string{root}, nil, map[string]bool{a: true, b: false, "/gone": true}, nil)

	assert.Equal(t, []string{a}, f.SelectedFiles())
	sel := f.Selection()
	assert.Len(t, sel, 4)
	assert.False(t, sel[root])
	assert.NotContains(t, sel, "/gone")
}

func TestTogglePropagates(t *testing.T) {
	root := t.TempDir()
	a := mustWrite(t, root, "pkg/a.go")
	b := mustWrite(t, root, "pkg/deep/b.go")
	c := mustWrite(t, root, "c.go")

	f := Scan([]string{root}, nil, nil, nil)
	pkg, ok := f.Lookup(filepath.Join(root, "pkg"))
	require.True(t, ok)

	assert.True(t, f.Toggle(pkg))
	assert.Equal(t, []string{b, a}, f.SelectedFiles())
	deep, _ := f.Lookup(filepath.Join(root, "pkg", "deep"))
	assert.True(t, f.Node(deep).Selected)

	// A later toggle on one descendant only touches that descendant.
	bID, _ := f.Lookup(b)
	assert.False(t, f.Toggle(bID))
	assert.Equal(t, []string{a}, f.SelectedFiles())
	assert.True(t, f.Node(deep).Selected)
	assert.True(t, f.Node(pkg).Selected)

	rootID := f.Roots()[0]
	f.Toggle(rootID)
	assert.Equal(t, []string{b, a, c}, f.SelectedFiles())
	f.Toggle(rootID)
	assert.Empty(t, f.SelectedFiles())
}

func TestScanNestedRootKeepsSelection(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "src")
	lib := filepath.Join(src, "lib")
	a := mustWrite(t, lib, "a.go")
	b := mustWrite(t, src, "b.go")

	roots := DefaultRoots(base, []string{lib})
	require.Equal(t, []string{src, lib}, roots)

	f := Scan(roots, nil, nil, nil)
	require.Len(t, f.Roots(), 1)
	assert.Equal(t, 4, f.Len())

	srcID, ok := f.Lookup(src)
	require.True(t, ok)
	f.Set(srcID, true)
	assert.Equal(t, []string{a, b}, f.SelectedFiles())

	sel := f.Selection()
	assert.True(t, sel[a])
	assert.True(t, sel[lib])

	rescanned := Scan(roots, nil, sel, nil)
	assert.Equal(t, []string{a, b}, rescanned.SelectedFiles())
}

func TestScanRootContainingEarlierRoot(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "src")
	a := mustWrite(t, src, "a.go")
	c := mustWrite(t, base, "c.go")

	f := Scan([]string{src, base}, nil, map[string]bool{a: true, c: true}, nil)

	require.Len(t, f.Roots(), 2)
	assert.Equal(t, []string{a, c}, f.SelectedFiles())
	baseID, _ := f.Lookup(base)
	assert.Len(t, f.Node(baseID).Children, 1)
}

func TestScanUnreadableDirectory(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced")
	}
	root := t.TempDir()
	mustWrite(t, root, "locked/hidden.go")
	ok := mustWrite(t, root, "open/ok.go")
	top := mustWrite(t, root, "top.go")
	locked := filepath.Join(root, "locked")
	require.NoError(t, os.Chmod(locked, 0))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	f := Scan([]string{root}, nil, nil, nil)

	id, found := f.Lookup(locked)
	require.True(t, found)
	assert.Equal(t, Dir, f.Node(id).Kind)
	assert.Empty(t, f.Node(id).Children)

	_, found = f.Lookup(ok)
	assert.True(t, found)
	_, found = f.Lookup(top)
	assert.True(t, found)
	assert.Equal(t, []string{
		filepath.Base(root),
		"  locked",
		"  open",
		"    ok.go",
		"  top.go",
	}, names(f))
}

func TestNodeOutOfRange(t *testing.T) {
	f := newForest()
	assert.Nil(t, f.Node(3))
	assert.Nil(t, f.Node(NoParent))
	assert.False(t, f.Toggle(0))
}

func TestScanSymlinkCycle(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, root, "a/x.go")
	if err := os.Symlink(root, filepath.Join(root, "a", "loop")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	f := Scan([]string{root}, nil, nil, nil)

	loop, ok := f.Lookup(filepath.Join(root, "a", "loop"))
	require.True(t, ok)
	assert.Equal(t, Dir, f.Node(loop).Kind)
	assert.Empty(t, f.Node(loop).Children)
}

func TestDefaultRoots(t *testing.T) {
	base := t.TempDir()
	mustWrite(t, base, "src/main.go")
	mustWrite(t, base, "scripts/run.sh")
	mustWrite(t, base, "docs/readme.md")
	custom := t.TempDir()

	roots := DefaultRoots(base, []string{custom, filepath.Join(base, "nope")})

	assert.Equal(t, []string{filepath.Join(base, "src"), filepath.Join(base, "scripts"), custom}, roots)
}

func TestRender(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	a := mustWrite(t, src, "lib/a.go")
	mustWrite(t, src, "main.go")

	f := Scan([]string{src}, nil, map[string]bool{a: true}, nil)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, f))
	want := "[ ] " + src + "/\n" +
		"├── [ ] lib/\n" +
		"│   └── [x] a.go\n" +
		"└── [ ] main.go\n"
	assert.Equal(t, want, buf.String())
}
