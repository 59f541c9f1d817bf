// Package keys defines the key bindings of the interactive tracker.
package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds every binding used by the views
type KeyMap struct {
	Quit  key.Binding
	Back  key.Binding
	Enter key.Binding
	Up    key.Binding
	Down  key.Binding

	// tracker
	Start    key.Binding
	Stop     key.Binding
	Continue key.Binding
	Log      key.Binding

	// log
	Delete    key.Binding
	Filter    key.Binding
	Partial   key.Binding
	NextRange key.Binding
	PrevRange key.Binding
	Refresh   key.Binding
}

// DefaultKeyMap returns the default bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("↵", "confirm"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Start: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "start"),
		),
		Stop: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "stop"),
		),
		Continue: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "continue last"),
		),
		Log: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "log"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter tags"),
		),
		Partial: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "partial match"),
		),
		NextRange: key.NewBinding(
			key.WithKeys("]", "right"),
			key.WithHelp("]", "longer range"),
		),
		PrevRange: key.NewBinding(
			key.WithKeys("[", "left"),
			key.WithHelp("[", "shorter range"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
	}
}
