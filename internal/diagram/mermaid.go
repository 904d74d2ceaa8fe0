package diagram

import (
	"fmt"
	"strings"
)

// indentUnit is the indentation added per nesting level.
const indentUnit = "    "

// String renders the diagram as Mermaid text.
func (d *SequenceDiagram) String() string {
	return RenderMermaid(d)
}

// RenderMermaid renders a tree as Mermaid sequence-diagram text. Lines are
// separated by "\n" with no trailing newline. The output depends only on
// the tree.
func RenderMermaid(d *SequenceDiagram) string {
	if d == nil {
		return ""
	}
	return strings.Join(render(nil, d, ""), "\n")
}

// RenderMarkdown wraps Mermaid text in a fenced block, preceded by a heading
// when title is set.
func RenderMarkdown(title, mermaid string) string {
	var b strings.Builder
	if title != "" {
		b.WriteString(fmt.Sprintf("## %s\n\n", title))
	}
	b.WriteString("```mermaid\n")
	b.WriteString(mermaid)
	b.WriteString("\n```\n")
	return b.String()
}

// render appends the lines of n, and of its subtree, at the given indent.
func render(lines []string, n Node, indent string) []string {
	switch n := n.(type) {
	case *SequenceDiagram:
		lines = append(lines, indent+"sequenceDiagram")
		for _, c := range n.children {
			lines = render(lines, c, indent+indentUnit)
		}
		return lines

	case *Loop:
		return renderBlock(lines, header("loop", n.label), n.children, indent)
	case *Rect:
		return renderBlock(lines, header("rect", n.color.String()), n.children, indent)
	case *Alternative:
		return renderBlock(lines, header("alt", n.condition), n.children, indent)
	case *Parallel:
		return renderBlock(lines, header("par", n.description), n.children, indent)
	case *Optional:
		return renderBlock(lines, header("opt", n.description), n.children, indent)

	case *ElseClause:
		return renderClause(lines, header("else", n.condition), n.children, indent)
	case *AndClause:
		return renderClause(lines, header("and", n.description), n.children, indent)

	case *Autonumber:
		return append(lines, indent+n.text())
	case *Participants:
		return append(lines, indent+n.text())
	case *Activate:
		return append(lines, indent+n.text())
	case *Deactivate:
		return append(lines, indent+n.text())
	case *Arrow:
		return append(lines, indent+n.text())
	case *NoteLeft:
		return append(lines, indent+n.text())
	case *NoteRight:
		return append(lines, indent+n.text())
	case *NoteOver:
		return append(lines, indent+n.text())

	default:
		panic(fmt.Sprintf("diagram: unhandled node type %T", n))
	}
}

// renderBlock emits header, children one level deeper, and the closing end.
// Clause children (else, and) split the block and sit at its own level.
func renderBlock(lines []string, head string, children []Node, indent string) []string {
	lines = append(lines, indent+head)
	for _, c := range children {
		switch c.(type) {
		case *ElseClause, *AndClause:
			lines = render(lines, c, indent)
		default:
			lines = render(lines, c, indent+indentUnit)
		}
	}
	return append(lines, indent+"end")
}

// renderClause emits a clause header at the enclosing block's level. The
// enclosing block closes it, so there is no end line.
func renderClause(lines []string, head string, children []Node, indent string) []string {
	lines = append(lines, indent+head)
	for _, c := range children {
		lines = render(lines, c, indent+indentUnit)
	}
	return lines
}

// header joins a block keyword with its text, dropping the separator when
// the text is empty.
func header(keyword, text string) string {
	if text == "" {
		return keyword
	}
	return keyword + " " + text
}
