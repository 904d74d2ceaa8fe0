package expressions

import (
	"context"
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/rendis/seqdiag/pkg/schema"
)

// CELEngine evaluates Common Expression Language expressions. Documents use
// it for `when` guards, e.g. `vars.env == "prod"` or `has(vars.debug)`.
//
// The environment exposes a single variable:
//   - vars: map(string, dyn), the document variables
type CELEngine struct {
	env   *cel.Env
	cache *programCache[cel.Program]
}

// NewCELEngine creates a new CEL expression engine with a sandboxed environment.
func NewCELEngine() (*CELEngine, error) {
	env, err := cel.NewEnv(
		cel.Variable("vars", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("create CEL environment: %w", err)
	}

	return &CELEngine{
		env:   env,
		cache: newProgramCache[cel.Program](),
	}, nil
}

// Name returns the engine identifier.
func (e *CELEngine) Name() string {
	return "cel"
}

// Evaluate compiles (or retrieves from cache) a CEL expression and evaluates
// it. A missing "vars" key in data is treated as an empty map.
func (e *CELEngine) Evaluate(_ context.Context, expression string, data map[string]any) (any, error) {
	if expression == "" {
		return nil, emptyErr("CEL")
	}

	prg, err := e.cache.get(expression, e.compile)
	if err != nil {
		return nil, err
	}

	vars, _ := data["vars"].(map[string]any)
	if vars == nil {
		vars = map[string]any{}
	}

	out, _, err := prg.Eval(map[string]any{"vars": vars})
	if err != nil {
		return nil, evalErr("CEL", expression, err)
	}
	return out.Value(), nil
}

// EvaluateBool evaluates a guard expression that must yield a bool.
func (e *CELEngine) EvaluateBool(ctx context.Context, expression string, data map[string]any) (bool, error) {
	out, err := e.Evaluate(ctx, expression, data)
	if err != nil {
		return false, err
	}
	b, ok := out.(bool)
	if !ok {
		return false, schema.NewErrorf(schema.ErrCodeGuard,
			"guard %q must evaluate to a bool, got %T", expression, out).
			WithDetails(map[string]any{"expression": expression})
	}
	return b, nil
}

// Check compiles expression without evaluating it, so documents can be
// validated before any variables are bound.
func (e *CELEngine) Check(expression string) error {
	if expression == "" {
		return emptyErr("CEL")
	}
	_, err := e.cache.get(expression, e.compile)
	return err
}

func (e *CELEngine) compile(expression string) (cel.Program, error) {
	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, compileErr("CEL", expression, issues.Err())
	}

	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, compileErr("CEL", expression, err)
	}
	return prg, nil
}

var _ Engine = (*CELEngine)(nil)
