package expressions

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/rendis/seqdiag/pkg/schema"
)

const (
	openMarker  = "${{"
	closeMarker = "}}"
)

// Interpolator resolves ${{ expression }} references inside document text
// (messages, labels, conditions, notes). Each expression is evaluated by the
// configured engine against {"vars": <document vars>}.
type Interpolator struct {
	engine Engine
}

// NewInterpolator creates an Interpolator backed by engine. A nil engine
// selects the expr engine.
func NewInterpolator(engine Engine) *Interpolator {
	if engine == nil {
		engine = NewExprEngine()
	}
	return &Interpolator{engine: engine}
}

// Engine returns the engine used for ${{ }} expressions.
func (interp *Interpolator) Engine() Engine {
	return interp.engine
}

// Interpolate replaces every ${{ ... }} token in text with its stringified
// value. Text without markers is returned unchanged.
func (interp *Interpolator) Interpolate(ctx context.Context, text string, vars map[string]any) (string, error) {
	if !strings.Contains(text, openMarker) {
		return text, nil
	}

	segments, err := scan(text)
	if err != nil {
		return "", err
	}

	data := NewScope(vars)

	var result strings.Builder
	result.Grow(len(text))

	for _, seg := range segments {
		if !seg.expr {
			result.WriteString(seg.text)
			continue
		}

		val, err := interp.engine.Evaluate(ctx, seg.text, data)
		if err != nil {
			return "", schema.NewErrorf(schema.ErrCodeInterpolation,
				"cannot resolve ${{ %s }}: %s", seg.text, err.Error()).
				WithCause(err).
				WithDetails(map[string]any{"expression": seg.text, "engine": interp.engine.Name()})
		}
		if val == nil {
			return "", schema.NewErrorf(schema.ErrCodeInterpolation,
				"${{ %s }} resolved to null; available vars: [%s]", seg.text, strings.Join(mapKeys(vars), ", ")).
				WithDetails(map[string]any{"expression": seg.text, "available_vars": mapKeys(vars)})
		}
		result.WriteString(formatValue(val))
	}

	return result.String(), nil
}

// Expressions returns the trimmed ${{ }} expressions found in text, in order,
// without evaluating them. Malformed markers are reported the same way
// Interpolate reports them.
func Expressions(text string) ([]string, error) {
	if !strings.Contains(text, openMarker) {
		return nil, nil
	}
	segments, err := scan(text)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, seg := range segments {
		if seg.expr {
			out = append(out, seg.text)
		}
	}
	return out, nil
}

type segment struct {
	text string
	expr bool
}

// scan splits text into literal and expression segments.
func scan(text string) ([]segment, error) {
	var segments []segment

	i := 0
	for i < len(text) {
		idx := strings.Index(text[i:], openMarker)
		if idx == -1 {
			segments = append(segments, segment{text: text[i:]})
			break
		}
		if idx > 0 {
			segments = append(segments, segment{text: text[i : i+idx]})
		}
		start := i + idx + len(openMarker)

		end := strings.Index(text[start:], closeMarker)
		if end == -1 {
			return nil, schema.NewError(schema.ErrCodeInterpolation, "unclosed ${{ expression").
				WithDetails(map[string]any{"text": text})
		}
		end += start

		expression := strings.TrimSpace(text[start:end])
		if strings.Contains(expression, openMarker) {
			return nil, schema.NewError(schema.ErrCodeInterpolation,
				"nested interpolation not allowed: ${{...}} cannot contain ${{")
		}
		if expression == "" {
			return nil, schema.NewError(schema.ErrCodeInterpolation, "empty variable reference: ${{  }}")
		}

		segments = append(segments, segment{text: expression, expr: true})
		i = end + len(closeMarker)
	}

	return segments, nil
}

// formatValue converts an evaluated value into diagram text. Scalars are
// printed plainly; maps and slices are JSON-encoded.
func formatValue(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}
