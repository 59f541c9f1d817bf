package views

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/tim/internal/db"
	"github.com/tgienger/tim/internal/models"
	"github.com/tgienger/tim/internal/ui/format"
	"github.com/tgienger/tim/internal/ui/keys"
	"github.com/tgienger/tim/internal/ui/styles"
)

// ErrNoTags is reported when starting without tags while empty tags are disallowed
var ErrNoTags = errors.New("no tags given, and empty tags are disallowed")

// ShowLog signals to switch to the log view
type ShowLog struct{}

// StatusView shows what is being tracked and starts or stops tracking
type StatusView struct {
	ctx         context.Context
	db          *db.DB
	styles      *styles.Styles
	keys        keys.KeyMap
	allowNoTags bool

	width  int
	height int

	current *models.WorkRecord
	elapsed time.Duration
	loaded  bool
	err     error

	spinner  spinner.Model
	tagInput textinput.Model
	starting bool
}

// NewStatusView creates a new status view
func NewStatusView(ctx context.Context, database *db.DB, allowNoTags bool) *StatusView {
	s := styles.NewStyles()

	input := textinput.New()
	input.Placeholder = "tags, space separated"
	input.CharLimit = 200

	return &StatusView{
		ctx:         ctx,
		db:          database,
		styles:      s,
		keys:        keys.DefaultKeyMap(),
		allowNoTags: allowNoTags,
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(s.FlagOpen)),
		tagInput:    input,
	}
}

type currentLoadedMsg struct {
	current *models.WorkRecord
	elapsed time.Duration
}

type tickMsg time.Time

type statusErrMsg struct {
	err error
}

// Init initializes the view
func (v *StatusView) Init() tea.Cmd {
	return tea.Batch(v.Reload, v.spinner.Tick, tick())
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Reload reads the tracking state again
func (v *StatusView) Reload() tea.Msg {
	rec, elapsed, err := v.db.Current(v.ctx)
	if errors.Is(err, db.ErrNotTracking) {
		return currentLoadedMsg{}
	}
	if err != nil {
		return statusErrMsg{err}
	}
	return currentLoadedMsg{current: rec, elapsed: elapsed}
}

// IsStatusMsg reports whether msg belongs to the status view even while
// another view is shown
func IsStatusMsg(msg tea.Msg) bool {
	switch msg.(type) {
	case tickMsg, spinner.TickMsg, currentLoadedMsg, statusErrMsg:
		return true
	}
	return false
}

func (v *StatusView) start(tags string) tea.Cmd {
	return func() tea.Msg {
		if _, err := v.db.Start(v.ctx, tags, true); err != nil {
			return statusErrMsg{err}
		}
		return v.Reload()
	}
}

func (v *StatusView) stop() tea.Msg {
	if _, err := v.db.Stop(v.ctx); err != nil {
		return statusErrMsg{err}
	}
	return v.Reload()
}

func (v *StatusView) continueLast() tea.Msg {
	last, err := v.db.LastClosed(v.ctx)
	if err != nil {
		return statusErrMsg{err}
	}
	if last.Tags == "" && !v.allowNoTags {
		return statusErrMsg{ErrNoTags}
	}
	return v.start(last.Tags)()
}

// Update handles messages
func (v *StatusView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case currentLoadedMsg:
		v.current = msg.current
		v.elapsed = msg.elapsed
		v.loaded = true
		return v, nil

	case statusErrMsg:
		v.err = msg.err
		return v, nil

	case tickMsg:
		if v.current != nil {
			v.elapsed = v.current.Duration(v.db.Now())
		}
		return v, tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case tea.KeyMsg:
		if v.starting {
			return v.updateStarting(msg)
		}
		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *StatusView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Start):
		v.err = nil
		v.starting = true
		v.tagInput.Reset()
		return v, v.tagInput.Focus()

	case key.Matches(msg, v.keys.Stop):
		v.err = nil
		return v, v.stop

	case key.Matches(msg, v.keys.Continue):
		v.err = nil
		return v, v.continueLast

	case key.Matches(msg, v.keys.Log):
		return v, func() tea.Msg { return ShowLog{} }
	}

	return v, nil
}

func (v *StatusView) updateStarting(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.starting = false
		v.tagInput.Blur()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		tags := strings.Join(strings.Fields(v.tagInput.Value()), " ")
		if tags == "" && !v.allowNoTags {
			v.err = ErrNoTags
			return v, nil
		}
		v.starting = false
		v.tagInput.Blur()
		return v, v.start(tags)
	}

	var cmd tea.Cmd
	v.tagInput, cmd = v.tagInput.Update(msg)
	return v, cmd
}

// View renders the view
func (v *StatusView) View() string {
	s := v.styles

	var b strings.Builder
	b.WriteString(s.Title.Render("tim"))
	b.WriteString("\n\n")

	switch {
	case !v.loaded:
		b.WriteString(s.TitleMuted.Render("loading..."))
	case v.current == nil:
		b.WriteString(s.Error.Render("⯀ not tracking"))
	default:
		tags := s.Value.Render(v.current.Tags)
		if v.current.Tags == "" {
			tags = s.Warning.Render(format.NoTags)
		}
		b.WriteString(lipgloss.JoinVertical(lipgloss.Left,
			v.spinner.View()+" "+s.FlagOpen.Render("tracking"),
			"",
			fmt.Sprintf("%s  %s", s.Label.Render("working on"), tags),
			fmt.Sprintf("%s  %s", s.Label.Render("     since"), format.Absolute(v.current.Start)),
			fmt.Sprintf("%s  %s", s.Label.Render("       for"), s.Elapsed.Render(format.Relative(v.elapsed))),
		))
	}
	b.WriteString("\n")

	if v.starting {
		b.WriteString("\n")
		b.WriteString(s.InputFocused.Render(v.tagInput.View()))
		b.WriteString("\n")
	}

	if v.err != nil {
		b.WriteString("\n")
		b.WriteString(s.ErrorPanel.Render(s.Error.Render("error: ") + v.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString(v.renderHelp())

	return styles.CenterView(s.Panel.Render(b.String()), v.width, v.height)
}

func (v *StatusView) renderHelp() string {
	s := v.styles
	if v.starting {
		return s.Help.Render(fmt.Sprintf("%s start • %s cancel",
			s.HelpKey.Render("↵"),
			s.HelpKey.Render("esc"),
		))
	}

	return s.Help.Render(fmt.Sprintf("%s start • %s stop • %s continue • %s log • %s quit",
		s.HelpKey.Render("s"),
		s.HelpKey.Render("x"),
		s.HelpKey.Render("c"),
		s.HelpKey.Render("l"),
		s.HelpKey.Render("q"),
	))
}
