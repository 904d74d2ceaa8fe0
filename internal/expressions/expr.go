package expressions

import (
	"context"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// ExprEngine evaluates expr-lang/expr expressions. It is the default engine
// for ${{ }} text interpolation: string concatenation, nil coalescing (??),
// ternaries and builtins such as upper or join are available.
//
// Programs are compiled against a dynamic environment, so the same compiled
// program serves every document.
type ExprEngine struct {
	cache *programCache[*vm.Program]
}

// NewExprEngine creates a new Expr expression engine.
func NewExprEngine() *ExprEngine {
	return &ExprEngine{cache: newProgramCache[*vm.Program]()}
}

// Name returns the engine identifier.
func (e *ExprEngine) Name() string {
	return "expr"
}

// Evaluate runs expression with the keys of data as top-level variables.
// Undefined variables evaluate to nil.
func (e *ExprEngine) Evaluate(_ context.Context, expression string, data map[string]any) (any, error) {
	if expression == "" {
		return nil, emptyErr("expr")
	}

	prg, err := e.cache.get(expression, func(src string) (*vm.Program, error) {
		p, err := expr.Compile(src, expr.AllowUndefinedVariables())
		if err != nil {
			return nil, compileErr("expr", src, err)
		}
		return p, nil
	})
	if err != nil {
		return nil, err
	}

	env := data
	if env == nil {
		env = map[string]any{}
	}
	out, err := vm.Run(prg, env)
	if err != nil {
		return nil, evalErr("expr", expression, err)
	}
	return out, nil
}

var _ Engine = (*ExprEngine)(nil)
