package schema

import (
	"bytes"
	"encoding/json"
)

// Document is the declarative, serializable form of a sequence diagram.
// Agents and CLI users provide it as JSON, YAML or TOML.
type Document struct {
	Title    string         `json:"title,omitempty"`
	Vars     map[string]any `json:"vars,omitempty"`     // values visible to ${{ }} and when guards
	Elements []Element      `json:"elements"`
}

// BindDocument converts a decoded generic value into a Document. Unknown
// fields are rejected; run the document schema first for located messages.
func BindDocument(v any) (*Document, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, NewError(ErrCodeDecode, "document is not serializable").WithCause(err)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, NewError(ErrCodeDecode, "cannot bind document: "+err.Error()).WithCause(err)
	}
	return &doc, nil
}

// Element describes one diagram element. Which fields apply depends on Type.
type Element struct {
	Type ElementType `json:"type"`
	When string      `json:"when,omitempty"` // CEL guard; element is skipped when false

	Actor  string   `json:"actor,omitempty"`  // activate, deactivate, note left/right
	Actors []string `json:"actors,omitempty"` // participants, note over (1 or 2)

	From       string     `json:"from,omitempty"`
	To         string     `json:"to,omitempty"`
	Message    string     `json:"message,omitempty"`
	Stroke     StrokeType `json:"stroke,omitempty"` // solid | dotted (default: solid)
	Head       HeadType   `json:"head,omitempty"`   // line | arrow | cross | open (default: arrow)
	Activate   bool       `json:"activate,omitempty"`
	Deactivate bool       `json:"deactivate,omitempty"`

	Placement NotePlacement `json:"placement,omitempty"` // left | right | over
	Text      string        `json:"text,omitempty"`

	Label       string `json:"label,omitempty"`       // loop
	Condition   string `json:"condition,omitempty"`   // alt, else
	Description string `json:"description,omitempty"` // par, and, opt
	Color       string `json:"color,omitempty"`       // rect

	Body []Element `json:"body,omitempty"` // container children
}

// ElementType enumerates the element kinds of a document.
type ElementType string

const (
	ElementAutonumber   ElementType = "autonumber"
	ElementParticipants ElementType = "participants"
	ElementActivate     ElementType = "activate"
	ElementDeactivate   ElementType = "deactivate"
	ElementArrow        ElementType = "arrow"
	ElementNote         ElementType = "note"
	ElementLoop         ElementType = "loop"
	ElementRect         ElementType = "rect"
	ElementAlt          ElementType = "alt"
	ElementElse         ElementType = "else"
	ElementPar          ElementType = "par"
	ElementAnd          ElementType = "and"
	ElementOpt          ElementType = "opt"
)

// IsContainer reports whether elements of this type carry a body.
func (t ElementType) IsContainer() bool {
	switch t {
	case ElementLoop, ElementRect, ElementAlt, ElementElse, ElementPar, ElementAnd, ElementOpt:
		return true
	}
	return false
}

// StrokeType selects a solid or dotted arrow line.
type StrokeType string

const (
	StrokeSolid  StrokeType = "solid"
	StrokeDotted StrokeType = "dotted"
)

// HeadType selects the arrow head.
type HeadType string

const (
	HeadLine  HeadType = "line"
	HeadArrow HeadType = "arrow"
	HeadCross HeadType = "cross"
	HeadOpen  HeadType = "open"
)

// NotePlacement positions a note relative to its actor(s).
type NotePlacement string

const (
	PlacementLeft  NotePlacement = "left"
	PlacementRight NotePlacement = "right"
	PlacementOver  NotePlacement = "over"
)
