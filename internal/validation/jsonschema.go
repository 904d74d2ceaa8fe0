package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rendis/seqdiag/pkg/schema"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// DocumentSchemaURL identifies the embedded document schema.
const DocumentSchemaURL = "https://seqdiag.dev/schemas/document.json"

// DocumentSchemaJSON is the JSON Schema (draft 2020-12) for diagram documents.
// `else` items are only accepted in an `alt` body and `and` items only in a
// `par` body.
const DocumentSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://seqdiag.dev/schemas/document.json",
  "type": "object",
  "required": ["elements"],
  "properties": {
    "title": { "type": "string" },
    "vars": { "type": "object" },
    "elements": {
      "type": "array",
      "items": { "$ref": "#/$defs/element" }
    }
  },
  "additionalProperties": false,
  "$defs": {
    "name": { "type": "string", "minLength": 1 },
    "element": {
      "type": "object",
      "required": ["type"],
      "properties": {
        "type": {
          "type": "string",
          "enum": ["autonumber", "participants", "activate", "deactivate", "arrow", "note", "loop", "rect", "alt", "par", "opt"]
        },
        "when": { "type": "string", "minLength": 1 },
        "actor": { "$ref": "#/$defs/name" },
        "actors": {
          "type": "array",
          "items": { "$ref": "#/$defs/name" }
        },
        "from": { "$ref": "#/$defs/name" },
        "to": { "$ref": "#/$defs/name" },
        "message": { "type": "string" },
        "stroke": { "type": "string", "enum": ["solid", "dotted"] },
        "head": { "type": "string", "enum": ["line", "arrow", "cross", "open"] },
        "activate": { "type": "boolean" },
        "deactivate": { "type": "boolean" },
        "placement": { "type": "string", "enum": ["left", "right", "over"] },
        "text": { "type": "string" },
        "label": { "type": "string" },
        "condition": { "type": "string" },
        "description": { "type": "string" },
        "color": { "type": "string" },
        "body": { "type": "array" }
      },
      "additionalProperties": false,
      "allOf": [
        {
          "if": { "properties": { "type": { "const": "participants" } } },
          "then": {
            "required": ["actors"],
            "properties": { "actors": { "minItems": 1 } }
          }
        },
        {
          "if": { "properties": { "type": { "enum": ["activate", "deactivate"] } } },
          "then": { "required": ["actor"] }
        },
        {
          "if": { "properties": { "type": { "const": "arrow" } } },
          "then": { "required": ["from", "to"] }
        },
        {
          "if": { "properties": { "type": { "const": "note" } } },
          "then": {
            "required": ["placement"],
            "if": {
              "required": ["placement"],
              "properties": { "placement": { "const": "over" } }
            },
            "then": {
              "required": ["actors"],
              "properties": { "actors": { "minItems": 1, "maxItems": 2 } }
            },
            "else": { "required": ["actor"] }
          }
        },
        {
          "if": { "properties": { "type": { "enum": ["loop", "rect", "opt"] } } },
          "then": { "properties": { "body": { "items": { "$ref": "#/$defs/element" } } } }
        },
        {
          "if": { "properties": { "type": { "const": "alt" } } },
          "then": { "properties": { "body": { "items": { "$ref": "#/$defs/altItem" } } } }
        },
        {
          "if": { "properties": { "type": { "const": "par" } } },
          "then": { "properties": { "body": { "items": { "$ref": "#/$defs/parItem" } } } }
        }
      ]
    },
    "altItem": {
      "if": {
        "type": "object",
        "required": ["type"],
        "properties": { "type": { "const": "else" } }
      },
      "then": { "$ref": "#/$defs/else" },
      "else": { "$ref": "#/$defs/element" }
    },
    "parItem": {
      "if": {
        "type": "object",
        "required": ["type"],
        "properties": { "type": { "const": "and" } }
      },
      "then": { "$ref": "#/$defs/and" },
      "else": { "$ref": "#/$defs/element" }
    },
    "else": {
      "type": "object",
      "required": ["type"],
      "properties": {
        "type": { "const": "else" },
        "when": { "type": "string", "minLength": 1 },
        "condition": { "type": "string" },
        "body": { "type": "array", "items": { "$ref": "#/$defs/element" } }
      },
      "additionalProperties": false
    },
    "and": {
      "type": "object",
      "required": ["type"],
      "properties": {
        "type": { "const": "and" },
        "when": { "type": "string", "minLength": 1 },
        "description": { "type": "string" },
        "body": { "type": "array", "items": { "$ref": "#/$defs/element" } }
      },
      "additionalProperties": false
    }
  }
}`

// JSONSchemaValidator checks documents against DocumentSchemaJSON.
// It is safe for concurrent use.
type JSONSchemaValidator struct {
	documentSchema *jsonschema.Schema
}

// NewJSONSchemaValidator compiles the embedded document schema.
func NewJSONSchemaValidator() (*JSONSchemaValidator, error) {
	c := jsonschema.NewCompiler()
	c.AssertFormat()

	schemaDoc, err := jsonschema.UnmarshalJSON(strings.NewReader(DocumentSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("unmarshal document schema: %w", err)
	}
	if err := c.AddResource(DocumentSchemaURL, schemaDoc); err != nil {
		return nil, fmt.Errorf("add document schema resource: %w", err)
	}

	compiled, err := c.Compile(DocumentSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile document schema: %w", err)
	}

	return &JSONSchemaValidator{documentSchema: compiled}, nil
}

// ValidateValue validates a decoded document (maps, slices and scalars as
// produced by any of the supported decoders).
func (v *JSONSchemaValidator) ValidateValue(value any) error {
	if value == nil {
		return schema.NewError(schema.ErrCodeValidation, "document is empty")
	}

	doc, err := toJSONValue(value)
	if err != nil {
		return schema.NewError(schema.ErrCodeValidation, "failed to serialize document").WithCause(err)
	}

	if err := v.documentSchema.Validate(doc); err != nil {
		return toSchemaError(err)
	}
	return nil
}

// ValidateDocument validates a typed document.
func (v *JSONSchemaValidator) ValidateDocument(doc *schema.Document) error {
	if doc == nil {
		return schema.NewError(schema.ErrCodeValidation, "document is nil")
	}
	if doc.Elements == nil {
		cp := *doc
		cp.Elements = []schema.Element{}
		doc = &cp
	}
	return v.ValidateValue(doc)
}

// toJSONValue round-trips a Go value through JSON encoding/decoding so that
// numeric values become json.Number (required by the jsonschema library).
func toJSONValue(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return jsonschema.UnmarshalJSON(strings.NewReader(string(b)))
}

// toSchemaError converts a jsonschema.ValidationError into a *schema.Error
// whose details carry one ValidationIssue per violated leaf.
func toSchemaError(err error) *schema.Error {
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return schema.NewError(schema.ErrCodeValidation, err.Error())
	}

	violations := collectViolations(verr)
	if len(violations) == 0 {
		return schema.NewError(schema.ErrCodeValidation, verr.Error())
	}

	if len(violations) == 1 {
		return schema.NewError(schema.ErrCodeValidation, violations[0].Message).
			WithPath(violations[0].Path).
			WithDetails(map[string]any{"violations": violations})
	}

	return schema.NewErrorf(schema.ErrCodeValidation, "validation failed with %d errors", len(violations)).
		WithDetails(map[string]any{"violations": violations})
}

// collectViolations walks a ValidationError tree and collects the leaves,
// located by element path.
func collectViolations(verr *jsonschema.ValidationError) []schema.ValidationIssue {
	if len(verr.Causes) == 0 {
		return []schema.ValidationIssue{{
			Path:     instancePath(verr.InstanceLocation),
			Code:     schema.ErrCodeValidation,
			Message:  verr.Error(),
			Severity: schema.SeverityError,
		}}
	}

	var violations []schema.ValidationIssue
	for _, cause := range verr.Causes {
		violations = append(violations, collectViolations(cause)...)
	}
	return violations
}

// instancePath renders a JSON pointer location as an element path:
// ["elements", "0", "body", "1"] becomes "elements[0].body[1]".
func instancePath(loc []string) string {
	if len(loc) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, tok := range loc {
		if _, err := strconv.Atoi(tok); err == nil {
			b.WriteString("[" + tok + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(tok)
	}
	return b.String()
}
