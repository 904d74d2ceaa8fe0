package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rendis/seqdiag/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildRequest(toolName string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      toolName,
			Arguments: args,
		},
	}
}

func extractText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	return mcp.GetTextFromContent(result.Content[0])
}

func unmarshalResult(t *testing.T, result *mcp.CallToolResult, target any) {
	t.Helper()
	text := extractText(t, result)
	require.NoError(t, json.Unmarshal([]byte(text), target))
}

var pingDocument = map[string]any{
	"title": "Ping",
	"vars":  map[string]any{"peer": "bob"},
	"elements": []any{
		map[string]any{"type": "arrow", "from": "alice", "to": "${{ vars.peer }}", "message": "ping"},
	},
}

func TestRenderTool(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleRender(context.Background(), buildRequest("seqdiag.render", map[string]any{
		"document": pingDocument,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, extractText(t, result))

	var out map[string]any
	unmarshalResult(t, result, &out)
	assert.Equal(t, "sequenceDiagram\n    alice->>bob: ping", out["mermaid"])
	assert.Equal(t, out["mermaid"], out["output"])
	assert.Equal(t, "Ping", out["title"])
	assert.NotEmpty(t, out["render_id"])
}

func TestRenderToolMarkdownWithVars(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleRender(context.Background(), buildRequest("seqdiag.render", map[string]any{
		"document": pingDocument,
		"vars":     map[string]any{"peer": "carol"},
		"format":   "markdown",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var out map[string]any
	unmarshalResult(t, result, &out)
	assert.Equal(t, "## Ping\n\n```mermaid\nsequenceDiagram\n    alice->>carol: ping\n```\n", out["output"])
}

func TestRenderToolSource(t *testing.T) {
	s := newTestServer(t)

	source := `
diagrams:
  main:
    elements:
      - type: note
        placement: over
        actors: [a, b]
        text: hello
`
	result, err := s.handleRender(context.Background(), buildRequest("seqdiag.render", map[string]any{
		"source":        source,
		"source_format": "yaml",
		"query":         ".diagrams.main",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, extractText(t, result))

	var out map[string]any
	unmarshalResult(t, result, &out)
	assert.Equal(t, "sequenceDiagram\n    Note over a,b: hello", out["mermaid"])
}

func TestRenderToolErrors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		args map[string]any
		msg  string
	}{
		{"no input", map[string]any{}, "one of document or source is required"},
		{"bad format", map[string]any{"source": "{}", "source_format": "ini"}, "unknown document format"},
		{"bad source", map[string]any{"source": "{"}, "DECODE_ERROR"},
		{"invalid arrow", map[string]any{"document": map[string]any{"elements": []any{
			map[string]any{"type": "arrow", "from": "a", "to": "b", "activate": true, "deactivate": true},
		}}}, "INVALID_ARROW"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := s.handleRender(context.Background(), buildRequest("seqdiag.render", tc.args))
			require.NoError(t, err)
			assert.True(t, result.IsError)
			assert.Contains(t, extractText(t, result), tc.msg)
		})
	}
}

func TestValidateTool(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleValidate(context.Background(), buildRequest("seqdiag.validate", map[string]any{
		"document": pingDocument,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var ok validateResponse
	unmarshalResult(t, result, &ok)
	assert.True(t, ok.Valid)
	assert.Empty(t, ok.Errors)

	result, err = s.handleValidate(context.Background(), buildRequest("seqdiag.validate", map[string]any{
		"document": map[string]any{"elements": []any{
			map[string]any{"type": "rect", "color": "pink"},
			map[string]any{"type": "else"},
		}},
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var bad validateResponse
	unmarshalResult(t, result, &bad)
	assert.False(t, bad.Valid)
	require.NotEmpty(t, bad.Errors)
	assert.Equal(t, "VALIDATION_ERROR", bad.Errors[0].Code)
}

func TestColorsTool(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleColors(context.Background(), buildRequest("seqdiag.colors", nil))
	require.NoError(t, err)

	var entries []colorEntry
	unmarshalResult(t, result, &entries)
	require.Len(t, entries, 5)
	assert.Equal(t, colorEntry{Name: "blue", RGBA: "rgb(0, 0, 255, 0.1)"}, entries[0])
	assert.Equal(t, colorEntry{Name: "yellow", RGBA: "rgb(255, 255, 0, 0.5)"}, entries[4])
}

func TestSchemaTool(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleSchema(context.Background(), buildRequest("seqdiag.schema", nil))
	require.NoError(t, err)
	assert.Equal(t, validation.DocumentSchemaJSON, extractText(t, result))
}
