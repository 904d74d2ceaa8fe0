package expressions

import (
	"fmt"
	"sync"

	"github.com/rendis/seqdiag/pkg/schema"
)

// programCache memoizes compiled programs by expression text.
// Safe for concurrent use; compile runs at most once per expression.
type programCache[P any] struct {
	mu    sync.RWMutex
	progs map[string]P
}

func newProgramCache[P any]() *programCache[P] {
	return &programCache[P]{progs: make(map[string]P)}
}

func (c *programCache[P]) get(expression string, compile func(string) (P, error)) (P, error) {
	c.mu.RLock()
	if p, ok := c.progs[expression]; ok {
		c.mu.RUnlock()
		return p, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if p, ok := c.progs[expression]; ok {
		return p, nil
	}
	p, err := compile(expression)
	if err != nil {
		return p, err
	}
	c.progs[expression] = p
	return p, nil
}

func (c *programCache[P]) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.progs)
}

func compileErr(engine, expression string, err error) *schema.Error {
	return schema.NewErrorf(schema.ErrCodeValidation,
		"%s compile error in %q: %s", engine, expression, err.Error()).
		WithCause(err).
		WithDetails(map[string]any{"expression": expression})
}

func evalErr(engine, expression string, err error) *schema.Error {
	return schema.NewErrorf(schema.ErrCodeExecution,
		"%s evaluation failed for %q: %s", engine, expression, err.Error()).
		WithCause(err).
		WithDetails(map[string]any{"expression": expression})
}

func emptyErr(engine string) *schema.Error {
	return schema.NewError(schema.ErrCodeValidation, fmt.Sprintf("empty %s expression", engine))
}

func unknownEngineErr(name string) *schema.Error {
	return schema.NewErrorf(schema.ErrCodeValidation,
		"unknown expression engine %q; available: expr, cel, jq", name)
}
