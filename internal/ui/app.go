package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tgienger/tim/internal/db"
	"github.com/tgienger/tim/internal/ui/views"
)

// Currently active view
type View int

const (
	ViewStatus View = iota
	ViewLog
)

type App struct {
	ctx         context.Context
	db          *db.DB
	currentView View
	status      *views.StatusView
	log         *views.LogView
	width       int
	height      int
}

// Creates a new application showing the tracking status
func NewApp(ctx context.Context, database *db.DB, allowNoTags bool) *App {
	return &App{
		ctx:         ctx,
		db:          database,
		currentView: ViewStatus,
		status:      views.NewStatusView(ctx, database, allowNoTags),
	}
}

// Current returns the active view
func (a *App) Current() View {
	return a.currentView
}

func (a *App) Init() tea.Cmd {
	return a.status.Init()
}

func (a *App) resize() tea.Msg {
	return tea.WindowSizeMsg{Width: a.width, Height: a.height}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// The status view keeps ticking in the background, keep its size current
		a.status.Update(msg)

	case views.ShowLog:
		a.currentView = ViewLog
		a.log = views.NewLogView(a.ctx, a.db)
		return a, tea.Batch(a.log.Init(), a.resize)

	case views.BackToStatus:
		a.currentView = ViewStatus
		a.log = nil
		return a, tea.Sequence(a.status.Reload, a.resize)
	}

	var cmd tea.Cmd
	switch a.currentView {
	case ViewStatus:
		_, cmd = a.status.Update(msg)
	case ViewLog:
		// ticks must keep reaching the status view or its clock stops
		if views.IsStatusMsg(msg) {
			_, cmd = a.status.Update(msg)
			return a, cmd
		}
		_, cmd = a.log.Update(msg)
	}

	return a, cmd
}

func (a *App) View() string {
	switch a.currentView {
	case ViewLog:
		if a.log != nil {
			return a.log.View()
		}
	}
	return a.status.View()
}
