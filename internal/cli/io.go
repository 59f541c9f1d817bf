package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/tim/internal/ui"
	"github.com/tgienger/tim/internal/ui/styles"
)

// IO handles command output. Styles are bound to each writer separately so
// piping stdout never leaks escape codes into a file while stderr stays
// colored, and the other way round.
type IO struct {
	out      io.Writer
	errOut   io.Writer
	S        *styles.Styles // for out
	errS     *styles.Styles // for errOut
	warnings []string
}

// NewIO creates a new IO instance with colors enabled where the writers support them.
func NewIO(out, errOut io.Writer, env map[string]string) *IO {
	o := &IO{out: out, errOut: errOut}
	o.SetColor(true, env)
	return o
}

// SetColor rebuilds the styles. Without color, or with NO_COLOR set, all
// output is plain text.
func (o *IO) SetColor(color bool, env map[string]string) {
	o.S = styles.NewStylesFor(ui.NewRenderer(o.out, color, env))
	o.errS = styles.NewStylesFor(ui.NewRenderer(o.errOut, color, env))
}

// Warn queues a warning, printed to stderr by Finish.
func (o *IO) Warn(msg string) {
	o.warnings = append(o.warnings, msg)
}

// Println writes to stdout.
func (o *IO) Println(a ...any) {
	_, _ = fmt.Fprintln(o.out, a...)
}

// Printf writes formatted output to stdout.
func (o *IO) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(o.out, format, a...)
}

// ErrPrintln writes to stderr.
func (o *IO) ErrPrintln(a ...any) {
	_, _ = fmt.Fprintln(o.errOut, a...)
}

// Error prints a titled error panel to stderr.
func (o *IO) Error(title, msg string) {
	o.ErrPrintln(o.errS.Error.Render("error: " + title))
	o.ErrPrintln(o.errS.ErrorPanel.Render(msg))
}

// Fail reports err and returns the exit code for it.
func (o *IO) Fail(err error) int {
	title, hint := describe(err)

	msg := err.Error()
	if hint != "" {
		msg += "\n" + hint
	}

	o.Error(title, msg)
	return exitCode(err)
}

// Finish prints queued warnings.
func (o *IO) Finish() {
	for _, w := range o.warnings {
		o.ErrPrintln(o.errS.Warning.Render("warning: " + w))
	}
	o.warnings = nil
}

func (o *IO) label(s string) string {
	return o.S.Label.Render(fmt.Sprintf("%12s", s))
}

// field prints an aligned "label  value" line
func (o *IO) field(label, value string) {
	o.Printf("%s  %s\n", o.label(label), value)
}

func (o *IO) tags(tags string, style lipgloss.Style) string {
	if tags == "" {
		return o.S.Warning.Render("(no tags)")
	}
	return style.Render(tags)
}
