package schema

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	err := NewError(ErrCodeInvalidArrow, "bad arrow")
	assert.Equal(t, "[INVALID_ARROW] bad arrow", err.Error())

	err.WithPath("elements[3]")
	assert.Equal(t, "[INVALID_ARROW] elements[3]: bad arrow", err.Error())
}

func TestErrorWithPathKeepsInnermost(t *testing.T) {
	err := NewErrorf(ErrCodeValidation, "field %q", "x").WithPath("elements[0].body[1]")
	err.WithPath("elements[0]")
	assert.Equal(t, "elements[0].body[1]", err.Path)
	assert.Equal(t, `field "x"`, err.Message)
}

func TestErrorUnwrapAndHasCode(t *testing.T) {
	cause := errors.New("boom")
	err := NewError(ErrCodeDecode, "decode").WithCause(cause).WithDetails(map[string]any{"format": "yaml"})

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "yaml", err.Details["format"])

	wrapped := fmt.Errorf("outer: %w", err)
	assert.True(t, HasCode(wrapped, ErrCodeDecode))
	assert.False(t, HasCode(wrapped, ErrCodeValidation))
	assert.False(t, HasCode(cause, ErrCodeDecode))
}

func TestElementTypeIsContainer(t *testing.T) {
	for _, et := range []ElementType{ElementLoop, ElementRect, ElementAlt, ElementElse, ElementPar, ElementAnd, ElementOpt} {
		assert.True(t, et.IsContainer(), et)
	}
	for _, et := range []ElementType{ElementAutonumber, ElementParticipants, ElementActivate, ElementDeactivate, ElementArrow, ElementNote} {
		assert.False(t, et.IsContainer(), et)
	}
}

func TestBindDocument(t *testing.T) {
	doc, err := BindDocument(map[string]any{
		"title": "Login",
		"vars":  map[string]any{"n": 2},
		"elements": []any{
			map[string]any{"type": "arrow", "from": "a", "to": "b", "activate": true},
			map[string]any{"type": "loop", "label": "retry", "body": []any{
				map[string]any{"type": "note", "placement": "over", "actors": []any{"a", "b"}, "text": "hi"},
			}},
		},
	})
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, "Login", doc.Title)
	assert.Equal(t, float64(2), doc.Vars["n"])
	assert.Equal(t, ElementArrow, doc.Elements[0].Type)
	assert.True(t, doc.Elements[0].Activate)
	assert.Equal(t, []string{"a", "b"}, doc.Elements[1].Body[0].Actors)

	_, err = BindDocument(map[string]any{"elements": []any{}, "bogus": 1})
	assert.True(t, HasCode(err, ErrCodeDecode))
}

func TestValidationResultToError(t *testing.T) {
	r := &ValidationResult{}
	assert.NoError(t, r.ToError())

	r.AddWarning("elements[0].color", ErrCodeValidation, "unknown color")
	assert.True(t, r.Valid())

	r.AddError("elements[1]", ErrCodeInvalidArrow, "both flags")
	err := r.ToError()
	var se *Error
	if assert.ErrorAs(t, err, &se) {
		assert.Equal(t, ErrCodeInvalidArrow, se.Code)
		assert.Equal(t, "elements[1]", se.Path)
		assert.Equal(t, 1, se.Details["warning_count"])
	}

	r.AddError("elements[2]", ErrCodeGuard, "bad guard")
	assert.Contains(t, r.ToError().Error(), "validation failed with 2 errors")
	assert.Equal(t, "2 error(s), 1 warning(s)", r.String())
}
