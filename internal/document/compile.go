package document

import (
	"context"
	"fmt"

	"github.com/rendis/seqdiag/internal/diagram"
	"github.com/rendis/seqdiag/internal/expressions"
	"github.com/rendis/seqdiag/pkg/schema"
)

// Compiler turns a Document into a diagram tree by driving the builder.
// Each element's `when` guard is evaluated first; text fields then go
// through ${{ }} interpolation.
type Compiler struct {
	guards *expressions.CELEngine
	interp *expressions.Interpolator
}

// NewCompiler creates a Compiler. A nil interpolator uses the expr engine.
func NewCompiler(interp *expressions.Interpolator) (*Compiler, error) {
	guards, err := expressions.NewCELEngine()
	if err != nil {
		return nil, err
	}
	if interp == nil {
		interp = expressions.NewInterpolator(nil)
	}
	return &Compiler{guards: guards, interp: interp}, nil
}

// compilation is the state of one Compile call. The builder cannot be
// aborted from outside, so after the first error the remaining elements are
// skipped and the partial tree is discarded.
type compilation struct {
	ctx     context.Context
	c       *Compiler
	vars    map[string]any
	scope   map[string]any
	current string
	err     error
}

// Compile builds the tree for doc. vars overrides doc.Vars key by key.
func (c *Compiler) Compile(ctx context.Context, doc *schema.Document, vars map[string]any) (*diagram.SequenceDiagram, error) {
	if doc == nil {
		return nil, schema.NewError(schema.ErrCodeValidation, "document is nil")
	}

	merged := make(map[string]any, len(doc.Vars)+len(vars))
	for k, v := range doc.Vars {
		merged[k] = v
	}
	for k, v := range vars {
		merged[k] = v
	}

	st := &compilation{ctx: ctx, c: c, vars: merged, scope: expressions.NewScope(merged)}
	d, err := diagram.Build(func(h *diagram.Handle) {
		st.elements(h, doc.Elements, "elements")
	})
	if err != nil {
		// Builder errors carry the diagram path; add the document path.
		if se, ok := err.(*schema.Error); ok && st.current != "" {
			details := map[string]any{"element": st.current}
			for k, v := range se.Details {
				details[k] = v
			}
			se.Details = details
		}
		return nil, err
	}
	if st.err != nil {
		return nil, st.err
	}
	return d, nil
}

func (st *compilation) elements(h *diagram.Handle, elements []schema.Element, base string) {
	for i := range elements {
		if st.err != nil {
			return
		}
		st.element(h, &elements[i], fmt.Sprintf("%s[%d]", base, i))
	}
}

func (st *compilation) element(h *diagram.Handle, el *schema.Element, path string) {
	if !st.guard(el, path) {
		return
	}
	st.current = path

	switch el.Type {
	case schema.ElementAutonumber:
		h.Autonumber()

	case schema.ElementParticipants:
		actors := make([]diagram.Actor, 0, len(el.Actors))
		for i, name := range el.Actors {
			actors = append(actors, st.actor(name, fmt.Sprintf("%s.actors[%d]", path, i)))
		}
		if st.err == nil {
			h.Participants(actors...)
		}

	case schema.ElementActivate:
		if a := st.actor(el.Actor, path+".actor"); st.err == nil {
			h.Activate(a)
		}

	case schema.ElementDeactivate:
		if a := st.actor(el.Actor, path+".actor"); st.err == nil {
			h.Deactivate(a)
		}

	case schema.ElementArrow:
		from := st.actor(el.From, path+".from")
		to := st.actor(el.To, path+".to")
		msg := st.text(el.Message, path+".message")
		kind, err := ArrowKindOf(el.Stroke, el.Head)
		if err != nil {
			st.fail(err, path)
		}
		if st.err == nil {
			h.Message(kind, from, to, msg, diagram.WithActivation(el.Activate, el.Deactivate))
		}

	case schema.ElementNote:
		st.note(h, el, path)

	case schema.ElementLoop:
		label := st.text(el.Label, path+".label")
		if st.err == nil {
			h.Loop(label, func(h *diagram.Handle) { st.elements(h, el.Body, path+".body") })
		}

	case schema.ElementRect:
		color := st.text(el.Color, path+".color")
		if st.err == nil {
			h.Highlight(color, func(h *diagram.Handle) { st.elements(h, el.Body, path+".body") })
		}

	case schema.ElementOpt:
		desc := st.text(el.Description, path+".description")
		if st.err == nil {
			h.Optional(desc, func(h *diagram.Handle) { st.elements(h, el.Body, path+".body") })
		}

	case schema.ElementAlt:
		cond := st.text(el.Condition, path+".condition")
		if st.err == nil {
			h.Alternative(cond, func(a *diagram.AltHandle) { st.altBody(a, el.Body, path+".body") })
		}

	case schema.ElementPar:
		desc := st.text(el.Description, path+".description")
		if st.err == nil {
			h.Parallel(desc, func(p *diagram.ParHandle) { st.parBody(p, el.Body, path+".body") })
		}

	case schema.ElementElse, schema.ElementAnd:
		st.fail(schema.NewErrorf(schema.ErrCodeValidation,
			"%s is only valid directly inside %s", el.Type, clauseParent(el.Type)), path)

	default:
		st.fail(schema.NewErrorf(schema.ErrCodeValidation, "unknown element type %q", el.Type), path)
	}
}

func (st *compilation) altBody(a *diagram.AltHandle, body []schema.Element, base string) {
	split := false
	for i := range body {
		if st.err != nil {
			return
		}
		el, path := &body[i], fmt.Sprintf("%s[%d]", base, i)
		if el.Type != schema.ElementElse {
			if split {
				st.fail(clauseOrderError(el.Type, schema.ElementElse), path)
				return
			}
			st.element(&a.Handle, el, path)
			continue
		}
		split = true
		if !st.guard(el, path) {
			continue
		}
		st.current = path
		cond := st.text(el.Condition, path+".condition")
		if st.err == nil {
			a.ElseClause(cond, func(h *diagram.Handle) { st.elements(h, el.Body, path+".body") })
		}
	}
}

func (st *compilation) parBody(p *diagram.ParHandle, body []schema.Element, base string) {
	split := false
	for i := range body {
		if st.err != nil {
			return
		}
		el, path := &body[i], fmt.Sprintf("%s[%d]", base, i)
		if el.Type != schema.ElementAnd {
			if split {
				st.fail(clauseOrderError(el.Type, schema.ElementAnd), path)
				return
			}
			st.element(&p.Handle, el, path)
			continue
		}
		split = true
		if !st.guard(el, path) {
			continue
		}
		st.current = path
		desc := st.text(el.Description, path+".description")
		if st.err == nil {
			p.AndClause(desc, func(h *diagram.Handle) { st.elements(h, el.Body, path+".body") })
		}
	}
}

func (st *compilation) note(h *diagram.Handle, el *schema.Element, path string) {
	text := st.text(el.Text, path+".text")

	switch el.Placement {
	case schema.PlacementLeft, schema.PlacementRight:
		a := st.actor(el.Actor, path+".actor")
		if st.err != nil {
			return
		}
		if el.Placement == schema.PlacementLeft {
			h.NoteLeft(a, text)
		} else {
			h.NoteRight(a, text)
		}

	case schema.PlacementOver:
		if len(el.Actors) < 1 || len(el.Actors) > 2 {
			st.fail(schema.NewErrorf(schema.ErrCodeValidation,
				"note over takes one or two actors, got %d", len(el.Actors)), path)
			return
		}
		first := st.actor(el.Actors[0], path+".actors[0]")
		if len(el.Actors) == 1 {
			if st.err == nil {
				h.NoteOver(first, text)
			}
			return
		}
		second := st.actor(el.Actors[1], path+".actors[1]")
		if st.err == nil {
			h.NoteOverPair(first, second, text)
		}

	default:
		st.fail(schema.NewErrorf(schema.ErrCodeValidation, "unknown note placement %q", el.Placement), path)
	}
}

// guard reports whether el should be emitted.
func (st *compilation) guard(el *schema.Element, path string) bool {
	if st.err != nil {
		return false
	}
	if el.When == "" {
		return true
	}
	ok, err := st.c.guards.EvaluateBool(st.ctx, el.When, st.scope)
	if err != nil {
		st.fail(err, path+".when")
		return false
	}
	return ok
}

func (st *compilation) text(s, path string) string {
	if st.err != nil {
		return ""
	}
	out, err := st.c.interp.Interpolate(st.ctx, s, st.vars)
	if err != nil {
		st.fail(err, path)
		return ""
	}
	return out
}

func (st *compilation) actor(name, path string) diagram.Actor {
	return diagram.NewActor(st.text(name, path))
}

// fail records the first error, located at path.
func (st *compilation) fail(err error, path string) {
	if st.err != nil {
		return
	}
	if se, ok := err.(*schema.Error); ok {
		err = se.WithPath(path)
	}
	st.err = err
}

func clauseParent(t schema.ElementType) schema.ElementType {
	if t == schema.ElementElse {
		return schema.ElementAlt
	}
	return schema.ElementPar
}

// clauseOrderError reports an ordinary element placed after a clause.
// Mermaid would draw it inside the last clause.
func clauseOrderError(t, clause schema.ElementType) *schema.Error {
	return schema.NewErrorf(schema.ErrCodeValidation,
		"%s cannot follow %s inside %s; move it into a clause", t, clause, clauseParent(clause))
}

// ArrowKindOf maps a document stroke and head to an arrow kind. Empty values
// default to a solid line with an arrow head.
func ArrowKindOf(stroke schema.StrokeType, head schema.HeadType) (diagram.ArrowKind, error) {
	dotted := false
	switch stroke {
	case "", schema.StrokeSolid:
	case schema.StrokeDotted:
		dotted = true
	default:
		return 0, schema.NewErrorf(schema.ErrCodeValidation, "unknown stroke %q", stroke)
	}

	var kind diagram.ArrowKind
	switch head {
	case schema.HeadLine:
		kind = diagram.ArrowSolidLine
	case "", schema.HeadArrow:
		kind = diagram.ArrowSolidArrow
	case schema.HeadCross:
		kind = diagram.ArrowSolidCross
	case schema.HeadOpen:
		kind = diagram.ArrowSolidOpen
	default:
		return 0, schema.NewErrorf(schema.ErrCodeValidation, "unknown arrow head %q", head)
	}
	if dotted {
		kind += diagram.ArrowDottedLine - diagram.ArrowSolidLine
	}
	return kind, nil
}
