package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"ctxpack/pkg/export"
	"ctxpack/pkg/workspace"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, base string, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&out)
	RootCmd.SetArgs(append([]string{"--base", base}, args...))
	require.NoError(t, RootCmd.Execute(), out.String())
	return out.String()
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", firstNonEmpty("", "b", "c"))
	assert.Equal(t, "", firstNonEmpty("", ""))
}

func TestSelectRulesAndExport(t *testing.T) {
	t.Setenv(envOutput, "")
	t.Setenv(envConfig, "")
	base := t.TempDir()
	src := filepath.Join(base, "src")
	writeFile(t, filepath.Join(src, "main.go"), "package main\n")
	writeFile(t, filepath.Join(src, "notes.xyz"), "ignored\n")

	out := run(t, base, "select", src)
	assert.Contains(t, out, "2 files selected")

	out = run(t, base, "tree")
	assert.Contains(t, out, "[x] main.go")

	out = run(t, base, "rules", "explain", filepath.Join(src, "notes.xyz"))
	assert.Contains(t, out, filepath.Join("src", "notes.xyz")+": skip (reason: no-rule")

	run(t, base, "rules", "set", "xyz")
	out = run(t, base, "rules", "explain", filepath.Join(src, "notes.xyz"))
	assert.Contains(t, out, "export (reason: rule")

	run(t, base, "export", "--merge")
	data, err := os.ReadFile(filepath.Join(base, export.DefaultDirName, export.MergedFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "package main")
	assert.Contains(t, string(data), "ignored")

	st, err := workspace.NewStore(base, nil).Load(base)
	require.NoError(t, err)
	assert.True(t, st.Export.Merge)
	assert.Contains(t, st.Global, ".xyz")
	assert.True(t, st.Selection[filepath.Join(src, "main.go")])
}

func TestRootsListMarksCategoryDirs(t *testing.T) {
	t.Setenv(envConfig, "")
	base := t.TempDir()
	src := filepath.Join(base, "src")
	writeFile(t, filepath.Join(src, "main.go"), "package main\n")
	extra := filepath.Join(base, "extra")
	writeFile(t, filepath.Join(extra, "x.go"), "package x\n")

	run(t, base, "roots", "add", extra)
	out := run(t, base, "roots", "list")

	assert.Equal(t, src+" (category)\n"+extra+"\n", out)
}
