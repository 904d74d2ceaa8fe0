package validation

import (
	"github.com/rendis/seqdiag/internal/expressions"
	"github.com/rendis/seqdiag/pkg/schema"
)

// DocumentValidator orchestrates the two-stage validation pipeline:
// 1. Structural (JSON Schema)
// 2. Semantic (guards, interpolation markers, arrow flags, colors)
type DocumentValidator struct {
	jsonSchema *JSONSchemaValidator
	guards     GuardChecker
}

// NewDocumentValidator creates a DocumentValidator that checks guards with a
// CEL engine.
func NewDocumentValidator() (*DocumentValidator, error) {
	jsv, err := NewJSONSchemaValidator()
	if err != nil {
		return nil, err
	}
	cel, err := expressions.NewCELEngine()
	if err != nil {
		return nil, err
	}
	return &DocumentValidator{jsonSchema: jsv, guards: cel}, nil
}

// Validate runs the pipeline on a decoded document value. Structural errors
// short-circuit the semantic stage.
func (dv *DocumentValidator) Validate(value any) *schema.ValidationResult {
	result := validateStructural(dv.jsonSchema.ValidateValue(value))
	if !result.Valid() {
		return result
	}

	doc, err := schema.BindDocument(value)
	if err != nil {
		result.AddError("/", schema.ErrCodeDecode, err.Error())
		return result
	}

	result.Merge(validateSemantic(doc, dv.guards))
	return result
}

// ValidateDocument runs the pipeline on a typed document.
func (dv *DocumentValidator) ValidateDocument(doc *schema.Document) *schema.ValidationResult {
	result := validateStructural(dv.jsonSchema.ValidateDocument(doc))
	if !result.Valid() {
		return result
	}
	result.Merge(validateSemantic(doc, dv.guards))
	return result
}

// validateStructural converts the schema validator's error output into a
// ValidationResult.
func validateStructural(err error) *schema.ValidationResult {
	result := &schema.ValidationResult{}
	if err == nil {
		return result
	}

	se, ok := err.(*schema.Error)
	if !ok {
		result.AddError("/", schema.ErrCodeValidation, err.Error())
		return result
	}

	if violations, ok := se.Details["violations"].([]schema.ValidationIssue); ok {
		result.Errors = append(result.Errors, violations...)
		return result
	}
	path := se.Path
	if path == "" {
		path = "/"
	}
	result.AddError(path, se.Code, se.Message)
	return result
}
