package diagram

import (
	"fmt"

	"github.com/rendis/seqdiag/pkg/schema"
)

// ArrowKind is one of the eight Mermaid message shapes: a solid or dotted
// line crossed with a plain, arrow, cross or open (async) head.
type ArrowKind int

const (
	ArrowSolidLine ArrowKind = iota
	ArrowSolidArrow
	ArrowSolidCross
	ArrowSolidOpen
	ArrowDottedLine
	ArrowDottedArrow
	ArrowDottedCross
	ArrowDottedOpen
)

var arrowTokens = [...]string{
	ArrowSolidLine:   "->",
	ArrowSolidArrow:  "->>",
	ArrowSolidCross:  "-x",
	ArrowSolidOpen:   "-)",
	ArrowDottedLine:  "-->",
	ArrowDottedArrow: "-->>",
	ArrowDottedCross: "--x",
	ArrowDottedOpen:  "--)",
}

var arrowNames = [...]string{
	ArrowSolidLine:   "solid line",
	ArrowSolidArrow:  "solid arrow",
	ArrowSolidCross:  "solid cross",
	ArrowSolidOpen:   "solid open",
	ArrowDottedLine:  "dotted line",
	ArrowDottedArrow: "dotted arrow",
	ArrowDottedCross: "dotted cross",
	ArrowDottedOpen:  "dotted open",
}

// valid reports whether k is one of the eight arrow kinds.
func (k ArrowKind) valid() bool {
	return k >= 0 && int(k) < len(arrowTokens)
}

// Token returns the Mermaid arrow token, e.g. "->>" or "--x". It is empty
// for an invalid kind.
func (k ArrowKind) Token() string {
	if !k.valid() {
		return ""
	}
	return arrowTokens[k]
}

func (k ArrowKind) String() string {
	if !k.valid() {
		return fmt.Sprintf("ArrowKind(%d)", int(k))
	}
	return arrowNames[k]
}

// arrowFlags holds the receiver activation of an arrow. marker is resolved
// once, when the arrow is constructed.
type arrowFlags struct {
	activate, deactivate bool
	marker               string
}

// ArrowOption configures the receiver-side activation of an arrow.
type ArrowOption func(*arrowFlags)

// Activating activates the receiver ("+" after the arrow token).
func Activating() ArrowOption {
	return func(f *arrowFlags) { f.activate = true }
}

// Deactivating deactivates the receiver ("-" after the arrow token).
func Deactivating() ArrowOption {
	return func(f *arrowFlags) { f.deactivate = true }
}

// WithActivation sets both receiver flags at once. Setting both is rejected
// when the arrow is constructed.
func WithActivation(activate, deactivate bool) ArrowOption {
	return func(f *arrowFlags) {
		f.activate = activate
		f.deactivate = deactivate
	}
}
// activationMarker maps the two receiver flags to the marker appended after
// the arrow token. The case analysis covers all four combinations.
func activationMarker(activate, deactivate bool) (string, error) {
	switch {
	case activate && deactivate:
		return "", schema.NewError(schema.ErrCodeInvalidArrow,
			"arrow cannot both activate and deactivate its receiver")
	case activate && !deactivate:
		return "+", nil
	case !activate && deactivate:
		return "-", nil
	case !activate && !deactivate:
		return "", nil
	}
	return "", schema.NewErrorf(schema.ErrCodeUnreachable,
		"unhandled activation state activate=%t deactivate=%t", activate, deactivate)
}
