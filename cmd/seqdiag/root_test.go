package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rendis/seqdiag/internal/diagram"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const loginDoc = `title: Login
vars:
  user: alice
elements:
  - type: participants
    actors: ["${{ vars.user }}", api]
  - type: arrow
    from: "${{ vars.user }}"
    to: api
    message: POST /login
    activate: true
  - type: arrow
    from: api
    to: "${{ vars.user }}"
    message: "200 OK"
    stroke: dotted
    deactivate: true
`

type cliResult struct {
	stdout, stderr string
	err            error
}

func runCLI(t *testing.T, stdin string, args ...string) cliResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cfg := defaultConfig()
	cfg.LogLevel = "error"
	cfg.LogPretty = false

	root := newRootCmd(newApp(strings.NewReader(stdin), &stdout, &stderr, cfg))
	root.SetArgs(args)
	err := root.Execute()
	return cliResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func writeDoc(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRenderFile(t *testing.T) {
	path := writeDoc(t, "login.yaml", loginDoc)

	res := runCLI(t, "", "render", path, "--var", "user=bob")
	require.NoError(t, res.err, res.stderr)
	assert.Equal(t, strings.Join([]string{
		"sequenceDiagram",
		"    participants bob, api",
		"    bob->>+api: POST /login",
		"    api-->>-bob: 200 OK",
	}, "\n")+"\n", res.stdout)
}

func TestRenderStdinJSON(t *testing.T) {
	res := runCLI(t, `{"elements": [{"type": "autonumber"}]}`, "render")
	require.NoError(t, res.err, res.stderr)
	assert.Equal(t, "sequenceDiagram\n    autonumber\n", res.stdout)
}

func TestRenderInputFormatAndQuery(t *testing.T) {
	toml := `
[diagrams.ping]
title = "Ping"

[[diagrams.ping.elements]]
type = "arrow"
from = "a"
to = "b"
message = "ping"
`
	res := runCLI(t, toml, "render", "-", "--input-format", "toml", "--query", ".diagrams.ping")
	require.NoError(t, res.err, res.stderr)
	assert.Equal(t, "sequenceDiagram\n    a->>b: ping\n", res.stdout)
}

func TestRenderMarkdownToFile(t *testing.T) {
	path := writeDoc(t, "login.yaml", loginDoc)
	out := filepath.Join(t.TempDir(), "login.md")

	res := runCLI(t, "", "render", path, "--format", "markdown", "-o", out)
	require.NoError(t, res.err, res.stderr)
	assert.Empty(t, res.stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "```mermaid\nsequenceDiagram\n")
	assert.True(t, strings.HasPrefix(string(data), "## Login\n\n"))
	assert.True(t, strings.HasSuffix(string(data), "```\n"))
}

func TestRenderInvalidDocument(t *testing.T) {
	path := writeDoc(t, "bad.json", `{"elements": [{"type": "arrow", "from": "a", "to": "b", "activate": true, "deactivate": true}]}`)

	res := runCLI(t, "", "render", path)
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "bad.json")
	assert.Contains(t, res.stderr, "INVALID_ARROW")
	assert.Empty(t, res.stdout)
}

func TestRenderBadFlags(t *testing.T) {
	path := writeDoc(t, "login.yaml", loginDoc)

	assert.Error(t, runCLI(t, "", "render", path, "--format", "svg").err)
	assert.Error(t, runCLI(t, "", "render", path, "--var", "novalue").err)
	assert.Error(t, runCLI(t, "", "render", path, "--input-format", "xml").err)
	assert.Error(t, runCLI(t, "", "render", filepath.Join(t.TempDir(), "missing.yaml")).err)
	assert.Error(t, runCLI(t, "", "render", path, "--engine", "cel").err)
}

func TestValidateCommand(t *testing.T) {
	res := runCLI(t, "", "validate", writeDoc(t, "login.yaml", loginDoc))
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "is valid")

	res = runCLI(t, `{"elements": [{"type": "rect", "color": "teal"}]}`, "validate")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "elements[0].color")
	assert.Contains(t, res.stdout, "1 warning(s)")

	res = runCLI(t, `{"elements": [{"type": "note", "placement": "left", "actor": "a", "when": "vars.x >"}]}`, "validate")
	require.Error(t, res.err)
	assert.Contains(t, res.stdout, "elements[0].when")
	assert.Contains(t, res.err.Error(), "stdin is invalid")
}

func TestColorsCommand(t *testing.T) {
	res := runCLI(t, "", "colors")
	require.NoError(t, res.err)
	for _, name := range []string{"blue", "gray", "green", "red", "yellow"} {
		assert.Contains(t, res.stdout, name)
	}
	assert.Contains(t, res.stdout, "rgb(255, 255, 0, 0.5)")

	res = runCLI(t, "", "colors", "--json")
	require.NoError(t, res.err)
	var colors map[string]string
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &colors))
	assert.Equal(t, "rgb(0, 0, 255, 0.1)", colors["blue"])
}

func TestSchemaAndVersionCommands(t *testing.T) {
	res := runCLI(t, "", "schema")
	require.NoError(t, res.err)
	assert.True(t, json.Valid([]byte(res.stdout)))

	res = runCLI(t, "", "version")
	require.NoError(t, res.err)
	assert.Equal(t, "dev\n", res.stdout)

	res = runCLI(t, "", "--version")
	require.NoError(t, res.err)
	assert.Equal(t, "seqdiag dev\n", res.stdout)
}

func TestParseVars(t *testing.T) {
	vars, err := parseVars([]string{"n=3", "ok=true", "name=bob", "list=[1, 2]", "empty=", "msg=hello world"})
	require.NoError(t, err)
	assert.Equal(t, 3, vars["n"])
	assert.Equal(t, true, vars["ok"])
	assert.Equal(t, "bob", vars["name"])
	assert.Equal(t, []any{1, 2}, vars["list"])
	assert.Equal(t, "", vars["empty"])
	assert.Equal(t, "hello world", vars["msg"])

	vars, err = parseVars(nil)
	require.NoError(t, err)
	assert.Nil(t, vars)

	_, err = parseVars([]string{"=x"})
	assert.Error(t, err)
}

func TestSwatchHex(t *testing.T) {
	tests := map[string]string{
		"red":    "#ffcccc",
		"gray":   "#e6e6e6",
		"yellow": "#ffff80",
		"nope":   "#ffffff",
	}
	for name, want := range tests {
		assert.Equal(t, want, swatchHex(diagram.ColorOf(name)), name)
	}
}
