package ui

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// NewRenderer returns a lipgloss renderer for w. The color profile is
// detected from w unless color is off or NO_COLOR is set, in which case
// output is plain ASCII.
func NewRenderer(w io.Writer, color bool, env map[string]string) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(w)
	if !color || env["NO_COLOR"] != "" {
		r.SetColorProfile(termenv.Ascii)
	}
	return r
}
