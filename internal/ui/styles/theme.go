package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme represents a color scheme for the application
type Theme struct {
	Name string

	// Base colors
	Foreground    lipgloss.Color
	ForegroundDim lipgloss.Color

	// Accent colors
	Primary lipgloss.Color
	Accent  lipgloss.Color

	// Semantic colors
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color

	// Record flags
	Billed   lipgloss.Color
	Amended  lipgloss.Color
	Tracking lipgloss.Color

	// UI element colors
	Border      lipgloss.Color
	BorderFocus lipgloss.Color
	Selection   lipgloss.Color
}

// TokyoNight is the default color theme
var TokyoNight = Theme{
	Name: "Tokyo Night",

	Foreground:    lipgloss.Color("#c0caf5"),
	ForegroundDim: lipgloss.Color("#565f89"),

	Primary: lipgloss.Color("#7aa2f7"),
	Accent:  lipgloss.Color("#7dcfff"),

	Success: lipgloss.Color("#9ece6a"),
	Warning: lipgloss.Color("#e0af68"),
	Error:   lipgloss.Color("#f7768e"),

	Billed:   lipgloss.Color("#9ece6a"),
	Amended:  lipgloss.Color("#f7768e"),
	Tracking: lipgloss.Color("#73daca"),

	Border:      lipgloss.Color("#3b4261"),
	BorderFocus: lipgloss.Color("#7aa2f7"),
	Selection:   lipgloss.Color("#33467c"),
}

// Current holds the active theme
var Current = TokyoNight

// MaxWidth is the maximum content width for the app (classic terminal width)
const MaxWidth = 80

// ContentWidth returns the actual content width to use (min of terminal width and MaxWidth)
func ContentWidth(terminalWidth int) int {
	if terminalWidth > MaxWidth {
		return MaxWidth
	}
	return terminalWidth
}

// CenterView wraps content and centers it horizontally if terminal is wider than MaxWidth
func CenterView(content string, terminalWidth, terminalHeight int) string {
	if terminalWidth <= MaxWidth {
		return content
	}
	return lipgloss.Place(terminalWidth, terminalHeight,
		lipgloss.Center, lipgloss.Top,
		content,
	)
}

// Styles holds all the pre-computed styles for the UI
type Styles struct {
	// Titles
	Title      lipgloss.Style
	TitleMuted lipgloss.Style

	// Lists
	ListItem     lipgloss.Style
	ListSelected lipgloss.Style

	// Panels and dialogs
	Panel         lipgloss.Style
	ErrorPanel    lipgloss.Style
	Button        lipgloss.Style
	ButtonPrimary lipgloss.Style

	// Input fields
	Input        lipgloss.Style
	InputFocused lipgloss.Style

	// Help text
	Help     lipgloss.Style
	HelpKey  lipgloss.Style
	HelpDesc lipgloss.Style

	// Status bar
	StatusBar lipgloss.Style

	// Command output
	OK      lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Tags    lipgloss.Style
	Header  lipgloss.Style
	Elapsed lipgloss.Style

	// Log flags
	FlagBilled   lipgloss.Style
	FlagUnbilled lipgloss.Style
	FlagAmended  lipgloss.Style
	FlagOpen     lipgloss.Style
}

// NewStyles creates styles based on the current theme for the default renderer
func NewStyles() *Styles {
	return NewStylesFor(lipgloss.DefaultRenderer())
}

// NewStylesFor creates styles bound to r, so color output follows the
// profile of the writer r was made for.
func NewStylesFor(r *lipgloss.Renderer) *Styles {
	t := Current

	return &Styles{
		Title: r.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		TitleMuted: r.NewStyle().
			Foreground(t.ForegroundDim),

		ListItem: r.NewStyle().
			Foreground(t.Foreground).
			Padding(0, 2),

		ListSelected: r.NewStyle().
			Foreground(t.Primary).
			Background(t.Selection).
			Padding(0, 2).
			Bold(true),

		Panel: r.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border),

		ErrorPanel: r.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Error),

		Button: r.NewStyle().
			Foreground(t.Foreground).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 2),

		ButtonPrimary: r.NewStyle().
			Foreground(t.Selection).
			Background(t.Primary).
			Padding(0, 2).
			Bold(true),

		Input: r.NewStyle().
			Foreground(t.Foreground).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1),

		InputFocused: r.NewStyle().
			Foreground(t.Foreground).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.BorderFocus).
			Padding(0, 1),

		Help: r.NewStyle().
			Foreground(t.ForegroundDim).
			Padding(1, 2),

		HelpKey: r.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		HelpDesc: r.NewStyle().
			Foreground(t.ForegroundDim),

		StatusBar: r.NewStyle().
			Foreground(t.ForegroundDim).
			Padding(0, 1),

		OK: r.NewStyle().
			Foreground(t.Success).
			Bold(true),

		Error: r.NewStyle().
			Foreground(t.Error).
			Bold(true),

		Warning: r.NewStyle().
			Foreground(t.Warning),

		Label: r.NewStyle().
			Foreground(t.ForegroundDim),

		Value: r.NewStyle().
			Foreground(t.Foreground).
			Bold(true),

		Tags: r.NewStyle().
			Foreground(t.Accent),

		Header: r.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		Elapsed: r.NewStyle().
			Foreground(t.Tracking).
			Bold(true),

		FlagBilled: r.NewStyle().
			Foreground(t.Billed),

		FlagUnbilled: r.NewStyle().
			Foreground(t.Warning),

		FlagAmended: r.NewStyle().
			Foreground(t.Amended),

		FlagOpen: r.NewStyle().
			Foreground(t.Tracking).
			Bold(true),
	}
}
