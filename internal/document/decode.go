package document

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/rendis/seqdiag/internal/expressions"
	"github.com/rendis/seqdiag/pkg/schema"
	ctyjson "github.com/zclconf/go-cty/cty/json"
	"gopkg.in/yaml.v3"
)

// Format names a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatHCL  Format = "hcl"
)

// Formats lists the supported encodings.
var Formats = []Format{FormatJSON, FormatYAML, FormatTOML, FormatHCL}

// ParseFormat resolves a format name. "yml" is accepted for YAML.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	case "hcl":
		return FormatHCL, nil
	default:
		return "", schema.NewErrorf(schema.ErrCodeDecode, "unknown document format %q; supported: %v", name, Formats)
	}
}

// FormatFromPath infers the format from a file extension. Unknown
// extensions, and stdin ("" or "-"), are read as JSON.
func FormatFromPath(path string) Format {
	f, err := ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return FormatJSON
	}
	return f
}

// Decode parses data into a generic document value: map[string]any with
// []any, string, float64, bool and nil leaves, whatever the source format.
func Decode(data []byte, format Format) (any, error) {
	var (
		raw any
		err error
	)

	switch format {
	case FormatJSON, "":
		err = json.Unmarshal(data, &raw)
	case FormatYAML:
		err = yaml.Unmarshal(data, &raw)
	case FormatTOML:
		var table map[string]any
		err = toml.Unmarshal(data, &table)
		raw = table
	case FormatHCL:
		raw, err = decodeHCL(data)
	default:
		_, err = ParseFormat(string(format))
		return nil, err
	}
	if err != nil {
		return nil, decodeErr(format, err)
	}

	value, err := normalize(raw)
	if err != nil {
		return nil, decodeErr(format, err)
	}
	return value, nil
}

// decodeHCL reads a body made only of attributes (title, vars, elements)
// whose values are HCL object and tuple expressions.
func decodeHCL(data []byte) (map[string]any, error) {
	file, diags := hclparse.NewParser().ParseHCL(data, "document.hcl")
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse: %s", diags.Error())
	}

	attrs, diags := file.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("attributes: %s", diags.Error())
	}

	out := make(map[string]any, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("attribute %q: %s", name, diags.Error())
		}
		b, err := ctyjson.Marshal(val, val.Type())
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", name, err)
		}
		var v any
		if err := json.Unmarshal(b, &v); err != nil {
			return nil, fmt.Errorf("attribute %q: %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}

// normalize round-trips v through JSON so that every decoder yields the same
// value shapes.
func normalize(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Select narrows a decoded value to the document produced by a jq query,
// e.g. `.diagrams.login`. An empty query returns value unchanged.
func Select(ctx context.Context, jq *expressions.GoJQEngine, value any, query string) (any, error) {
	if query == "" {
		return value, nil
	}
	if jq == nil {
		jq = expressions.NewGoJQEngine()
	}

	out, err := jq.Query(ctx, query, value)
	if err != nil {
		return nil, err
	}
	if _, ok := out.(map[string]any); !ok {
		return nil, schema.NewErrorf(schema.ErrCodeDecode,
			"query %q must select exactly one document object, got %T", query, out).
			WithDetails(map[string]any{"query": query})
	}
	return out, nil
}

func decodeErr(format Format, err error) *schema.Error {
	return schema.NewErrorf(schema.ErrCodeDecode, "cannot decode %s document: %s", format, err.Error()).
		WithCause(err).
		WithDetails(map[string]any{"format": string(format)})
}
