package diagram

import (
	"fmt"
	"strings"
)

// Node is a single element of a sequence diagram tree.
// The set of implementations is closed; render switches over all of them.
type Node interface {
	node()
}

// Actor names a diagram participant. The name is emitted verbatim.
type Actor struct {
	Name string
}

// NewActor returns an Actor with the given name.
func NewActor(name string) Actor {
	return Actor{Name: name}
}

// --- Leaf nodes ---
//
// Nodes are immutable once constructed: their fields are only set by the
// builder and read through accessors.

// Autonumber turns on sequence numbers for all following messages.
type Autonumber struct{}

// Participants declares actors in display order.
type Participants struct {
	actors []Actor
}

// Actors returns a copy of the declared actors.
func (p *Participants) Actors() []Actor {
	return append([]Actor(nil), p.actors...)
}

// Activate starts an activation bar on an actor.
type Activate struct {
	actor Actor
}

func (a *Activate) Actor() Actor { return a.actor }

// Deactivate ends an activation bar on an actor.
type Deactivate struct {
	actor Actor
}

func (d *Deactivate) Actor() Actor { return d.actor }

// Arrow is a message between two actors. The receiver flags are never both
// set on a constructed arrow.
type Arrow struct {
	kind     ArrowKind
	from, to Actor
	message  string
	flags    arrowFlags
}

func (a *Arrow) Kind() ArrowKind   { return a.kind }
func (a *Arrow) From() Actor       { return a.from }
func (a *Arrow) To() Actor         { return a.to }
func (a *Arrow) Message() string   { return a.message }
func (a *Arrow) Activates() bool   { return a.flags.activate }
func (a *Arrow) Deactivates() bool { return a.flags.deactivate }

// NoteLeft is a note placed left of an actor.
type NoteLeft struct {
	actor Actor
	note  string
}

func (n *NoteLeft) Actor() Actor { return n.actor }
func (n *NoteLeft) Note() string { return n.note }

// NoteRight is a note placed right of an actor.
type NoteRight struct {
	actor Actor
	note  string
}

func (n *NoteRight) Actor() Actor { return n.actor }
func (n *NoteRight) Note() string { return n.note }

// NoteOver is a note spanning one actor, or two.
type NoteOver struct {
	actor1 Actor
	actor2 *Actor
	note   string
}

// Actors returns the spanned actors. ok is false for a single-actor note.
func (n *NoteOver) Actors() (first, second Actor, ok bool) {
	if n.actor2 == nil {
		return n.actor1, Actor{}, false
	}
	return n.actor1, *n.actor2, true
}

func (n *NoteOver) Note() string { return n.note }

func (*Autonumber) node()   {}
func (*Participants) node() {}
func (*Activate) node()     {}
func (*Deactivate) node()   {}
func (*Arrow) node()        {}
func (*NoteLeft) node()     {}
func (*NoteRight) node()    {}
func (*NoteOver) node()     {}

func (*Autonumber) text() string {
	return "autonumber"
}

func (p *Participants) text() string {
	names := make([]string, len(p.actors))
	for i, a := range p.actors {
		names[i] = a.Name
	}
	return "participants " + strings.Join(names, ", ")
}

func (a *Activate) text() string {
	return "activate " + a.actor.Name
}

func (d *Deactivate) text() string {
	return "deactivate " + d.actor.Name
}

func (a *Arrow) text() string {
	return fmt.Sprintf("%s%s%s%s: %s", a.from.Name, a.kind.Token(), a.flags.marker, a.to.Name, a.message)
}

func (n *NoteLeft) text() string {
	return fmt.Sprintf("Note left of %s: %s", n.actor.Name, n.note)
}

func (n *NoteRight) text() string {
	return fmt.Sprintf("Note right of %s: %s", n.actor.Name, n.note)
}

func (n *NoteOver) text() string {
	if n.actor2 != nil {
		return fmt.Sprintf("Note over %s,%s: %s", n.actor1.Name, n.actor2.Name, n.note)
	}
	return fmt.Sprintf("Note over %s: %s", n.actor1.Name, n.note)
}

// --- Container nodes ---

// SequenceDiagram is the root of every tree. It is produced only by Build.
type SequenceDiagram struct {
	children []Node
}

// Loop repeats its children while its label holds.
type Loop struct {
	label    string
	children []Node
}

func (l *Loop) Label() string { return l.label }

// Rect highlights its children with a background color.
type Rect struct {
	color    Color
	children []Node
}

func (r *Rect) Color() Color { return r.color }

// Alternative is an alt block. ElseClause children split it into branches.
type Alternative struct {
	condition string
	children  []Node
}

func (a *Alternative) Condition() string { return a.condition }

// ElseClause is one further branch of an Alternative.
type ElseClause struct {
	condition string
	children  []Node
}

func (e *ElseClause) Condition() string { return e.condition }

// Parallel is a par block. AndClause children add concurrent sections.
type Parallel struct {
	description string
	children    []Node
}

func (p *Parallel) Description() string { return p.description }

// AndClause is one further section of a Parallel.
type AndClause struct {
	description string
	children    []Node
}

func (a *AndClause) Description() string { return a.description }

// Optional is an opt block.
type Optional struct {
	description string
	children    []Node
}

func (o *Optional) Description() string { return o.description }

func (*SequenceDiagram) node() {}
func (*Loop) node()            {}
func (*Rect) node()            {}
func (*Alternative) node()     {}
func (*ElseClause) node()      {}
func (*Parallel) node()        {}
func (*AndClause) node()       {}
func (*Optional) node()        {}

// Children returns a copy of the container's children in insertion order.
func (d *SequenceDiagram) Children() []Node { return cloneNodes(d.children) }
func (l *Loop) Children() []Node            { return cloneNodes(l.children) }
func (r *Rect) Children() []Node            { return cloneNodes(r.children) }
func (a *Alternative) Children() []Node     { return cloneNodes(a.children) }
func (e *ElseClause) Children() []Node      { return cloneNodes(e.children) }
func (p *Parallel) Children() []Node        { return cloneNodes(p.children) }
func (a *AndClause) Children() []Node       { return cloneNodes(a.children) }
func (o *Optional) Children() []Node        { return cloneNodes(o.children) }

func cloneNodes(nodes []Node) []Node {
	return append([]Node(nil), nodes...)
}
