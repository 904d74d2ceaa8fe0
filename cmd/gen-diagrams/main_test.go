package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	files, err := generate()
	require.NoError(t, err)

	require.Len(t, files, len(samples)+1)
	login := string(files["login.md"])
	assert.True(t, strings.HasPrefix(login, "## Login\n\n```mermaid\nsequenceDiagram\n    autonumber\n"))
	assert.Contains(t, login, "    user->>+api: POST /login\n")
	assert.Contains(t, login, "    else credentials invalid\n")
	assert.Contains(t, string(files["retry.md"]), "    rect rgb(255, 255, 0, 0.5)\n")
	assert.Contains(t, string(files["fanout.md"]), "    and\n")
	assert.Equal(t, len(samples), strings.Count(string(files[sumsFile]), "\n"))
}

func TestWriteThenCheck(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "assets")
	files, err := generate()
	require.NoError(t, err)

	assert.Error(t, checkAssets(dir, files), "nothing written yet")

	require.NoError(t, writeAssets(dir, files))
	assert.NoError(t, checkAssets(dir, files))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "retry.md"), []byte("edited"), 0o644))
	err = checkAssets(dir, files)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retry.md")
	assert.NotContains(t, err.Error(), "login.md")
}

func TestRootCommand(t *testing.T) {
	dir := t.TempDir()

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--dir", dir})
	cmd.SetOut(&strings.Builder{})
	require.NoError(t, cmd.Execute())

	cmd = newRootCmd()
	cmd.SetArgs([]string{"--dir", dir, "--check"})
	assert.NoError(t, cmd.Execute())
}
