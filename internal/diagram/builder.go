package diagram

import (
	"fmt"

	"github.com/rendis/seqdiag/pkg/schema"
)

// Handle is the active construction scope of one container. Every builder
// method constructs a node and appends it to that container. A Handle is
// sealed once the function it was passed to returns, and suspended while a
// nested block it opened is being built. Using it in either state is a
// construction error.
type Handle struct {
	path      string
	children  *[]Node
	sealed    bool
	suspended bool
	// split is set once an else or and clause has been added. Only further
	// clauses may follow.
	split bool
}

// AltHandle is the scope of an alt block. It adds ElseClause.
type AltHandle struct {
	Handle
}

// ParHandle is the scope of a par block. It adds AndClause.
type ParHandle struct {
	Handle
}

// constructionFailure carries a construction error up to Build.
type constructionFailure struct {
	err *schema.Error
}

func (f constructionFailure) Error() string { return f.err.Error() }

// Build runs fn against the root scope and returns the finished tree.
// A construction error aborts the whole build; no partial tree is returned.
func Build(fn func(*Handle)) (d *SequenceDiagram, err error) {
	root := &SequenceDiagram{}
	h := &Handle{path: "sequenceDiagram", children: &root.children}

	defer func() {
		if r := recover(); r != nil {
			f, ok := r.(constructionFailure)
			if !ok {
				panic(r)
			}
			d, err = nil, f.err
		}
	}()

	if fn != nil {
		fn(h)
	}
	h.sealed = true
	return root, nil
}

// Render builds a tree with fn and returns its Mermaid text.
func Render(fn func(*Handle)) (string, error) {
	d, err := Build(fn)
	if err != nil {
		return "", err
	}
	return d.String(), nil
}

// MustRender is like Render but panics on a construction error.
func MustRender(fn func(*Handle)) string {
	out, err := Render(fn)
	if err != nil {
		panic(err)
	}
	return out
}

// --- Leaves ---

// Autonumber appends an autonumber directive.
func (h *Handle) Autonumber() *Autonumber {
	h.ensureOpen()
	n := &Autonumber{}
	h.attach(n)
	return n
}

// Participants declares actors in order. At least one actor is required.
func (h *Handle) Participants(actors ...Actor) *Participants {
	h.ensureOpen()
	if len(actors) == 0 {
		h.fail(schema.NewError(schema.ErrCodeValidation, "participants requires at least one actor"), "participants")
	}
	n := &Participants{actors: append([]Actor(nil), actors...)}
	h.attach(n)
	return n
}

// Activate appends an activation of actor.
func (h *Handle) Activate(actor Actor) *Activate {
	h.ensureOpen()
	n := &Activate{actor: actor}
	h.attach(n)
	return n
}

// Deactivate appends a deactivation of actor.
func (h *Handle) Deactivate(actor Actor) *Deactivate {
	h.ensureOpen()
	n := &Deactivate{actor: actor}
	h.attach(n)
	return n
}

// SolidLine appends "from->to: message".
func (h *Handle) SolidLine(from, to Actor, message string, opts ...ArrowOption) *Arrow {
	return h.arrow(ArrowSolidLine, from, to, message, opts)
}

// SolidArrow appends "from->>to: message".
func (h *Handle) SolidArrow(from, to Actor, message string, opts ...ArrowOption) *Arrow {
	return h.arrow(ArrowSolidArrow, from, to, message, opts)
}

// SolidCross appends "from-xto: message".
func (h *Handle) SolidCross(from, to Actor, message string, opts ...ArrowOption) *Arrow {
	return h.arrow(ArrowSolidCross, from, to, message, opts)
}

// SolidOpen appends "from-)to: message".
func (h *Handle) SolidOpen(from, to Actor, message string, opts ...ArrowOption) *Arrow {
	return h.arrow(ArrowSolidOpen, from, to, message, opts)
}

// DottedLine appends "from-->to: message".
func (h *Handle) DottedLine(from, to Actor, message string, opts ...ArrowOption) *Arrow {
	return h.arrow(ArrowDottedLine, from, to, message, opts)
}

// DottedArrow appends "from-->>to: message".
func (h *Handle) DottedArrow(from, to Actor, message string, opts ...ArrowOption) *Arrow {
	return h.arrow(ArrowDottedArrow, from, to, message, opts)
}

// DottedCross appends "from--xto: message".
func (h *Handle) DottedCross(from, to Actor, message string, opts ...ArrowOption) *Arrow {
	return h.arrow(ArrowDottedCross, from, to, message, opts)
}

// DottedOpen appends "from--)to: message".
func (h *Handle) DottedOpen(from, to Actor, message string, opts ...ArrowOption) *Arrow {
	return h.arrow(ArrowDottedOpen, from, to, message, opts)
}

// Message appends an arrow of the given kind. A kind outside the eight
// defined ones is a construction error.
func (h *Handle) Message(kind ArrowKind, from, to Actor, message string, opts ...ArrowOption) *Arrow {
	return h.arrow(kind, from, to, message, opts)
}

func (h *Handle) arrow(kind ArrowKind, from, to Actor, message string, opts []ArrowOption) *Arrow {
	h.ensureOpen()
	details := map[string]any{"from": from.Name, "to": to.Name, "kind": kind.String()}
	if !kind.valid() {
		h.fail(schema.NewErrorf(schema.ErrCodeInvalidArrow, "unknown arrow kind %d", int(kind)).
			WithDetails(details), "arrow")
	}

	n := &Arrow{kind: kind, from: from, to: to, message: message}
	for _, opt := range opts {
		opt(&n.flags)
	}
	marker, err := activationMarker(n.flags.activate, n.flags.deactivate)
	if err != nil {
		h.fail(err.(*schema.Error).WithDetails(details), "arrow")
	}
	n.flags.marker = marker
	h.attach(n)
	return n
}

// NoteLeft appends a note left of actor.
func (h *Handle) NoteLeft(actor Actor, note string) *NoteLeft {
	h.ensureOpen()
	n := &NoteLeft{actor: actor, note: note}
	h.attach(n)
	return n
}

// NoteRight appends a note right of actor.
func (h *Handle) NoteRight(actor Actor, note string) *NoteRight {
	h.ensureOpen()
	n := &NoteRight{actor: actor, note: note}
	h.attach(n)
	return n
}

// NoteOver appends a note over a single actor.
func (h *Handle) NoteOver(actor Actor, note string) *NoteOver {
	h.ensureOpen()
	n := &NoteOver{actor1: actor, note: note}
	h.attach(n)
	return n
}

// NoteOverPair appends a note spanning two actors.
func (h *Handle) NoteOverPair(actor1, actor2 Actor, note string) *NoteOver {
	h.ensureOpen()
	n := &NoteOver{actor1: actor1, actor2: &actor2, note: note}
	h.attach(n)
	return n
}

// --- Containers ---

// Loop appends a loop block whose children are built by fn.
func (h *Handle) Loop(label string, fn func(*Handle)) *Loop {
	h.ensureOpen()
	n := &Loop{label: label}
	h.scope(&Handle{path: h.childPath("loop"), children: &n.children}, fn)
	h.attach(n)
	return n
}

// Highlight appends a rect block colored by name. Unknown names give a
// transparent rect.
func (h *Handle) Highlight(colorName string, fn func(*Handle)) *Rect {
	h.ensureOpen()
	n := &Rect{color: ColorOf(colorName)}
	h.scope(&Handle{path: h.childPath("rect"), children: &n.children}, fn)
	h.attach(n)
	return n
}

// Alternative appends an alt block. Its scope can add else clauses.
func (h *Handle) Alternative(condition string, fn func(*AltHandle)) *Alternative {
	h.ensureOpen()
	n := &Alternative{condition: condition}
	alt := &AltHandle{Handle: Handle{path: h.childPath("alt"), children: &n.children}}
	h.nest(&alt.Handle, func() {
		if fn != nil {
			fn(alt)
		}
	})
	h.attach(n)
	return n
}

// Parallel appends a par block. Its scope can add and clauses.
func (h *Handle) Parallel(description string, fn func(*ParHandle)) *Parallel {
	h.ensureOpen()
	n := &Parallel{description: description}
	par := &ParHandle{Handle: Handle{path: h.childPath("par"), children: &n.children}}
	h.nest(&par.Handle, func() {
		if fn != nil {
			fn(par)
		}
	})
	h.attach(n)
	return n
}

// Optional appends an opt block.
func (h *Handle) Optional(description string, fn func(*Handle)) *Optional {
	h.ensureOpen()
	n := &Optional{description: description}
	h.scope(&Handle{path: h.childPath("opt"), children: &n.children}, fn)
	h.attach(n)
	return n
}

// ElseClause appends a further branch to the alt block. After the first
// else, the alt scope accepts only further else clauses.
func (a *AltHandle) ElseClause(condition string, fn func(*Handle)) *ElseClause {
	a.ensureActive()
	n := &ElseClause{condition: condition}
	a.scope(&Handle{path: a.childPath("else"), children: &n.children}, fn)
	a.attach(n)
	a.split = true
	return n
}

// AndClause appends a further section to the par block. After the first
// and, the par scope accepts only further and clauses.
func (p *ParHandle) AndClause(description string, fn func(*Handle)) *AndClause {
	p.ensureActive()
	n := &AndClause{description: description}
	p.scope(&Handle{path: p.childPath("and"), children: &n.children}, fn)
	p.attach(n)
	p.split = true
	return n
}

// --- Scope bookkeeping ---

// Path identifies the container this handle builds, e.g.
// "sequenceDiagram/loop[0]/alt[2]".
func (h *Handle) Path() string {
	return h.path
}

func (h *Handle) scope(child *Handle, fn func(*Handle)) {
	h.nest(child, func() {
		if fn != nil {
			fn(child)
		}
	})
}

// nest runs body with h suspended, so nothing can be attached to h before
// the block being built. child is sealed afterwards.
func (h *Handle) nest(child *Handle, body func()) {
	h.suspended = true
	body()
	h.suspended = false
	child.sealed = true
}

func (h *Handle) attach(n Node) {
	*h.children = append(*h.children, n)
}

func (h *Handle) childPath(kind string) string {
	return fmt.Sprintf("%s/%s[%d]", h.path, kind, len(*h.children))
}

func (h *Handle) ensureOpen() {
	h.ensureActive()
	if h.split {
		h.fail(schema.NewError(schema.ErrCodeValidation,
			"only clauses may follow the first clause of a block"), "")
	}
}

func (h *Handle) ensureActive() {
	switch {
	case h.sealed:
		h.fail(schema.NewError(schema.ErrCodeScopeClosed,
			"builder used after its construction function returned"), "")
	case h.suspended:
		h.fail(schema.NewError(schema.ErrCodeScopeClosed,
			"builder used while one of its nested blocks is being built"), "")
	}
}

func (h *Handle) fail(err *schema.Error, kind string) {
	path := h.path
	if kind != "" {
		path = h.childPath(kind)
	}
	panic(constructionFailure{err: err.WithPath(path)})
}
