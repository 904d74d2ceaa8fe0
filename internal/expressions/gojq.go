package expressions

import (
	"context"

	"github.com/itchyny/gojq"
)

// GoJQEngine evaluates jq programs. It selects one diagram document out of a
// larger input file and can serve as the ${{ }} engine (`.vars.user`).
type GoJQEngine struct {
	cache *programCache[*gojq.Code]
}

// NewGoJQEngine creates a new GoJQ expression engine.
func NewGoJQEngine() *GoJQEngine {
	return &GoJQEngine{cache: newProgramCache[*gojq.Code]()}
}

// Name returns the engine identifier.
func (e *GoJQEngine) Name() string {
	return "jq"
}

// Evaluate runs a jq program with data as its input object. A single output
// is returned as is, several are collected into []any, none yields nil.
func (e *GoJQEngine) Evaluate(ctx context.Context, expression string, data map[string]any) (any, error) {
	input := map[string]any{}
	for k, v := range data {
		input[k] = v
	}
	return e.Query(ctx, expression, input)
}

// Query is like Evaluate but accepts any JSON-compatible input value.
func (e *GoJQEngine) Query(ctx context.Context, expression string, input any) (any, error) {
	if expression == "" {
		return nil, emptyErr("jq")
	}

	code, err := e.cache.get(expression, compileJQ)
	if err != nil {
		return nil, err
	}

	iter := code.RunWithContext(ctx, normalizeForJQ(input))

	var results []any
	for {
		val, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := val.(error); isErr {
			return nil, evalErr("jq", expression, err)
		}
		results = append(results, val)
	}

	switch len(results) {
	case 0:
		return nil, nil
	case 1:
		return results[0], nil
	default:
		return results, nil
	}
}

func compileJQ(expression string) (*gojq.Code, error) {
	query, err := gojq.Parse(expression)
	if err != nil {
		return nil, compileErr("jq", expression, err)
	}

	code, err := gojq.Compile(query,
		// Sandbox: return empty env to block $ENV and env access.
		gojq.WithEnvironLoader(func() []string { return nil }),
	)
	if err != nil {
		return nil, compileErr("jq", expression, err)
	}
	return code, nil
}

// normalizeForJQ converts Go native types to jq-compatible types.
// jq only understands int, float64, string, bool, nil, []any and map[string]any.
func normalizeForJQ(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, v := range val {
			out[k] = normalizeForJQ(v)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, v := range val {
			out[i] = normalizeForJQ(v)
		}
		return out
	case int64:
		return float64(val)
	case int32:
		return float64(val)
	case float32:
		return float64(val)
	case uint64:
		return float64(val)
	default:
		return v
	}
}

var _ Engine = (*GoJQEngine)(nil)
