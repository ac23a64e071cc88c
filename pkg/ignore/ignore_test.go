package ignore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeniedName(t *testing.T) {
	f := Default(nil)

	for _, name := range []string{"node_modules", ".git", "package-lock.json", ".hidden", "bin"} {
		assert.True(t, f.DeniedName(name), name)
	}
	for _, name := range []string{"src", "main.go", "Dockerfile", "binary"} {
		assert.False(t, f.DeniedName(name), name)
	}
}

func TestBlockedNormalizesPaths(t *testing.T) {
	root := t.TempDir()
	blocked := filepath.Join(root, "vendor")
	f := Default([]string{blocked + string(filepath.Separator)})

	assert.True(t, f.Blocked(blocked))
	assert.True(t, f.Blocked(filepath.Join(root, "x", "..", "vendor")))
	assert.False(t, f.Blocked(filepath.Join(blocked, "pkg")), "block-set is exact, not prefix")
	assert.True(t, f.Skip(blocked))
	assert.True(t, f.Skip(filepath.Join(root, "dist")))
}

func TestBlockedPathsSorted(t *testing.T) {
	root := t.TempDir()
	f := New(nil, nil)
	f.Block(filepath.Join(root, "b"))
	f.Block(filepath.Join(root, "a"))
	f.Block("")

	assert.Equal(t, []string{filepath.Join(root, "a"), filepath.Join(root, "b")}, f.BlockedPaths())
}
