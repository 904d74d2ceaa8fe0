package validation

import (
	"fmt"

	"github.com/rendis/seqdiag/internal/diagram"
	"github.com/rendis/seqdiag/internal/expressions"
	"github.com/rendis/seqdiag/pkg/schema"
)

// GuardChecker compiles `when` guards without evaluating them.
type GuardChecker interface {
	Check(expression string) error
}

// validateSemantic performs the checks the schema cannot express: guards
// compile, ${{ }} markers are well formed, arrows do not carry both
// activation flags, alt and par bodies keep their clauses last, and
// highlight colors are known.
func validateSemantic(doc *schema.Document, guards GuardChecker) *schema.ValidationResult {
	result := &schema.ValidationResult{}
	for i := range doc.Elements {
		validateElement(&doc.Elements[i], fmt.Sprintf("elements[%d]", i), guards, result)
	}
	return result
}

func validateElement(el *schema.Element, path string, guards GuardChecker, result *schema.ValidationResult) {
	if el.When != "" && guards != nil {
		if err := guards.Check(el.When); err != nil {
			result.AddError(path+".when", schema.ErrCodeGuard, err.Error())
		}
	}

	for _, f := range textFields(el) {
		if _, err := expressions.Expressions(f.text); err != nil {
			result.AddError(path+"."+f.name, schema.ErrCodeInterpolation, err.Error())
		}
	}

	switch el.Type {
	case schema.ElementArrow:
		if el.Activate && el.Deactivate {
			result.AddError(path, schema.ErrCodeInvalidArrow,
				"an arrow cannot both activate and deactivate its target")
		}
	case schema.ElementRect:
		if !diagram.KnownColor(el.Color) && !interpolated(el.Color) {
			result.AddWarning(path+".color", schema.ErrCodeValidation,
				fmt.Sprintf("unknown color %q renders as transparent; known colors: %v", el.Color, diagram.ColorNames()))
		}
	}

	if len(el.Body) > 0 && !el.Type.IsContainer() {
		result.AddWarning(path+".body", schema.ErrCodeValidation,
			fmt.Sprintf("%s elements have no body; it is ignored", el.Type))
	}

	clause, split := clauseOf(el.Type), false
	for i := range el.Body {
		child, childPath := &el.Body[i], fmt.Sprintf("%s.body[%d]", path, i)
		switch {
		case clause != "" && child.Type == clause:
			split = true
		case split:
			result.AddError(childPath, schema.ErrCodeValidation,
				fmt.Sprintf("%s cannot follow %s inside %s; move it into a clause", child.Type, clause, el.Type))
		}
		validateElement(child, childPath, guards, result)
	}
}

// clauseOf returns the clause type that splits a block, or "" for blocks
// without clauses.
func clauseOf(t schema.ElementType) schema.ElementType {
	switch t {
	case schema.ElementAlt:
		return schema.ElementElse
	case schema.ElementPar:
		return schema.ElementAnd
	}
	return ""
}

type textField struct {
	name, text string
}

// textFields returns the non-empty fields that go through interpolation, in
// declaration order.
func textFields(el *schema.Element) []textField {
	all := []textField{
		{"actor", el.Actor},
		{"from", el.From},
		{"to", el.To},
		{"message", el.Message},
		{"text", el.Text},
		{"label", el.Label},
		{"condition", el.Condition},
		{"description", el.Description},
		{"color", el.Color},
	}
	for i, a := range el.Actors {
		all = append(all, textField{fmt.Sprintf("actors[%d]", i), a})
	}

	fields := all[:0]
	for _, f := range all {
		if f.text != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

func interpolated(text string) bool {
	exprs, err := expressions.Expressions(text)
	return err == nil && len(exprs) > 0
}
