package expressions

import "context"

// Engine evaluates expressions embedded in diagram documents.
// Three implementations: Expr (text interpolation), CEL (when guards),
// GoJQ (document selection and jq-style interpolation).
type Engine interface {
	Name() string
	Evaluate(ctx context.Context, expression string, data map[string]any) (any, error)
}

// New returns the engine registered under name: "expr", "cel" or "jq".
func New(name string) (Engine, error) {
	switch name {
	case "", "expr":
		return NewExprEngine(), nil
	case "cel":
		return NewCELEngine()
	case "jq":
		return NewGoJQEngine(), nil
	default:
		return nil, unknownEngineErr(name)
	}
}
