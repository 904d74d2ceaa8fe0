package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/rendis/seqdiag/internal/diagram"
	"github.com/rendis/seqdiag/pkg/schema"
)

var (
	colorCyan   = lipgloss.Color("36")  // primary
	colorGreen  = lipgloss.Color("35")  // success
	colorYellow = lipgloss.Color("220") // warnings
	colorRed    = lipgloss.Color("167") // errors
	colorDim    = lipgloss.Color("240") // muted
)

var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
)

// printIssues prints one line per issue: icon, path, code, message.
func printIssues(w io.Writer, issues []schema.ValidationIssue) {
	for _, issue := range issues {
		icon := styleIconError.Render("✗")
		if issue.Severity == schema.SeverityWarning {
			icon = StyleWarning.Render("!")
		}
		fmt.Fprintf(w, "%s %s %s %s\n", icon,
			StyleHighlight.Render(issue.Path),
			StyleDim.Render("["+issue.Code+"]"),
			issue.Message)
	}
}

// swatchHex flattens a translucent highlight color onto a white background,
// which is how it looks in a rendered diagram.
func swatchHex(c diagram.Color) string {
	r, g, b, a := c.RGBA()
	blend := func(ch uint8) uint8 {
		return uint8(float64(ch)*a + 255*(1-a) + 0.5)
	}
	return fmt.Sprintf("#%02x%02x%02x", blend(r), blend(g), blend(b))
}

// swatch renders a small block of the color.
func swatch(c diagram.Color) string {
	return lipgloss.NewStyle().Background(lipgloss.Color(swatchHex(c))).Render("    ")
}
