package validation

import (
	"testing"

	"github.com/rendis/seqdiag/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func el(fields ...any) map[string]any {
	m := map[string]any{}
	for i := 0; i+1 < len(fields); i += 2 {
		m[fields[i].(string)] = fields[i+1]
	}
	return m
}

func doc(elements ...any) map[string]any {
	if elements == nil {
		elements = []any{}
	}
	return map[string]any{"elements": elements}
}

func newJSONSchemaValidator(t *testing.T) *JSONSchemaValidator {
	t.Helper()
	v, err := NewJSONSchemaValidator()
	require.NoError(t, err)
	return v
}

func TestNewJSONSchemaValidator(t *testing.T) {
	v := newJSONSchemaValidator(t)
	assert.NotNil(t, v.documentSchema)
}

func TestValidateValue_Valid(t *testing.T) {
	v := newJSONSchemaValidator(t)

	full := map[string]any{
		"title": "Checkout",
		"vars":  map[string]any{"retries": 3},
		"elements": []any{
			el("type", "autonumber"),
			el("type", "participants", "actors", []any{"alice", "bob"}),
			el("type", "activate", "actor", "bob"),
			el("type", "arrow", "from", "alice", "to", "bob", "message", "hi", "stroke", "dotted", "head", "cross", "activate", true),
			el("type", "note", "placement", "over", "actors", []any{"alice", "bob"}, "text", "both"),
			el("type", "note", "placement", "left", "actor", "alice", "text", "left"),
			el("type", "loop", "label", "every minute", "body", []any{
				el("type", "rect", "color", "red", "body", []any{
					el("type", "arrow", "from", "bob", "to", "alice"),
				}),
			}),
			el("type", "alt", "condition", "ok", "when", "vars.retries > 0", "body", []any{
				el("type", "arrow", "from", "alice", "to", "bob"),
				el("type", "else", "condition", "failed", "body", []any{
					el("type", "opt", "description", "maybe"),
				}),
			}),
			el("type", "par", "description", "fan out", "body", []any{
				el("type", "and", "description", "second", "body", []any{}),
			}),
			el("type", "deactivate", "actor", "bob"),
		},
	}
	assert.NoError(t, v.ValidateValue(full))
	assert.NoError(t, v.ValidateValue(doc()))
}

func TestValidateValue_Invalid(t *testing.T) {
	v := newJSONSchemaValidator(t)

	tests := []struct {
		name  string
		value any
		path  string
	}{
		{"missing elements", map[string]any{"title": "x"}, "/"},
		{"unknown top-level field", map[string]any{"elements": []any{}, "extra": true}, "/"},
		{"unknown element type", doc(el("type", "box")), "elements[0].type"},
		{"unknown element field", doc(el("type", "autonumber", "colour", "red")), "elements[0]"},
		{"else at top level", doc(el("type", "else")), "elements[0].type"},
		{"and in alt", doc(el("type", "alt", "body", []any{el("type", "and")})), "elements[0].body[0].type"},
		{"else in loop inside alt", doc(el("type", "alt", "body", []any{
			el("type", "loop", "body", []any{el("type", "else")}),
		})), "elements[0].body[0].body[0].type"},
		{"empty participants", doc(el("type", "participants", "actors", []any{})), "elements[0].actors"},
		{"participants without actors", doc(el("type", "participants")), "elements[0]"},
		{"arrow without to", doc(el("type", "arrow", "from", "a")), "elements[0]"},
		{"empty actor name", doc(el("type", "activate", "actor", "")), "elements[0].actor"},
		{"bad stroke", doc(el("type", "arrow", "from", "a", "to", "b", "stroke", "dashed")), "elements[0].stroke"},
		{"note over three actors", doc(el("type", "note", "placement", "over", "actors", []any{"a", "b", "c"}, "text", "x")), "elements[0].actors"},
		{"note left without actor", doc(el("type", "note", "placement", "left", "text", "x")), "elements[0]"},
		{"note without placement", doc(el("type", "note", "actor", "a")), "elements[0]"},
		{"else with label", doc(el("type", "alt", "body", []any{el("type", "else", "label", "x")})), "elements[0].body[0]"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := v.ValidateValue(tc.value)
			require.Error(t, err)

			se, ok := err.(*schema.Error)
			require.True(t, ok)
			assert.Equal(t, schema.ErrCodeValidation, se.Code)

			violations, ok := se.Details["violations"].([]schema.ValidationIssue)
			require.True(t, ok)
			require.NotEmpty(t, violations)

			var paths []string
			for _, vi := range violations {
				paths = append(paths, vi.Path)
			}
			assert.Contains(t, paths, tc.path)
		})
	}
}

func TestValidateValue_Nil(t *testing.T) {
	v := newJSONSchemaValidator(t)
	assert.True(t, schema.HasCode(v.ValidateValue(nil), schema.ErrCodeValidation))
}

func TestValidateDocument(t *testing.T) {
	v := newJSONSchemaValidator(t)

	assert.NoError(t, v.ValidateDocument(&schema.Document{}))
	assert.Error(t, v.ValidateDocument(nil))

	err := v.ValidateDocument(&schema.Document{Elements: []schema.Element{
		{Type: schema.ElementArrow, From: "a"},
	}})
	assert.True(t, schema.HasCode(err, schema.ErrCodeValidation))
}

func TestInstancePath(t *testing.T) {
	assert.Equal(t, "/", instancePath(nil))
	assert.Equal(t, "elements[0].body[12].from", instancePath([]string{"elements", "0", "body", "12", "from"}))
	assert.Equal(t, "title", instancePath([]string{"title"}))
}
