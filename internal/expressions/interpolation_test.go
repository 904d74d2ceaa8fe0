package expressions

import (
	"context"
	"testing"

	"github.com/rendis/seqdiag/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterpolate(t *testing.T) {
	interp := NewInterpolator(nil)
	vars := map[string]any{
		"user":  "alice",
		"count": 3.0,
		"ratio": 1.5,
		"ok":    true,
		"ids":   []any{1.0, 2.0},
	}

	tests := []struct {
		text string
		want string
	}{
		{"plain text", "plain text"},
		{"hello ${{ vars.user }}", "hello alice"},
		{"${{vars.user}} -> ${{ upper(vars.user) }}", "alice -> ALICE"},
		{"n=${{ vars.count }}", "n=3"},
		{"r=${{ vars.ratio }}", "r=1.5"},
		{"ok=${{ vars.ok }}", "ok=true"},
		{"ids=${{ vars.ids }}", "ids=[1,2]"},
		{"${{ vars.count + 1 }} items", "4 items"},
		{"braces }} stay", "braces }} stay"},
	}
	for _, tc := range tests {
		t.Run(tc.text, func(t *testing.T) {
			got, err := interp.Interpolate(context.Background(), tc.text, vars)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestInterpolate_Errors(t *testing.T) {
	interp := NewInterpolator(NewExprEngine())
	vars := map[string]any{"user": "alice"}

	tests := []struct {
		name string
		text string
		msg  string
	}{
		{"unclosed", "hi ${{ vars.user", "unclosed"},
		{"nested", "${{ ${{ vars.user }}", "nested"},
		{"empty", "${{   }}", "empty"},
		{"null", "${{ vars.ghost }}", "resolved to null"},
		{"compile", "${{ vars.user + }}", "cannot resolve"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := interp.Interpolate(context.Background(), tc.text, vars)
			require.Error(t, err)
			assert.True(t, schema.HasCode(err, schema.ErrCodeInterpolation))
			assert.Contains(t, err.Error(), tc.msg)
		})
	}
}

func TestInterpolate_NullListsAvailableVars(t *testing.T) {
	interp := NewInterpolator(nil)
	_, err := interp.Interpolate(context.Background(), "${{ vars.x }}", map[string]any{"b": 1, "a": 2})
	require.Error(t, err)

	se := err.(*schema.Error)
	assert.Equal(t, []string{"a", "b"}, se.Details["available_vars"])
}

func TestInterpolate_JQEngine(t *testing.T) {
	interp := NewInterpolator(NewGoJQEngine())
	assert.Equal(t, "jq", interp.Engine().Name())

	got, err := interp.Interpolate(context.Background(), "to ${{ .vars.team | ascii_upcase }}", map[string]any{"team": "ops"})
	require.NoError(t, err)
	assert.Equal(t, "to OPS", got)
}

func TestNewScopeCopiesVars(t *testing.T) {
	vars := map[string]any{"nested": map[string]any{"k": "v"}}
	scope := NewScope(vars)

	scope["vars"].(map[string]any)["nested"].(map[string]any)["k"] = "changed"
	assert.Equal(t, "v", vars["nested"].(map[string]any)["k"])

	assert.Equal(t, map[string]any{"vars": map[string]any{}}, NewScope(nil))
}

func TestExpressions(t *testing.T) {
	got, err := Expressions("${{ vars.a }} calls ${{vars.b}}")
	require.NoError(t, err)
	assert.Equal(t, []string{"vars.a", "vars.b"}, got)

	got, err = Expressions("plain text")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = Expressions("broken ${{ vars.a")
	assert.True(t, schema.HasCode(err, schema.ErrCodeInterpolation))
}
