package views

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/tim/internal/db"
	"github.com/tgienger/tim/internal/models"
	"github.com/tgienger/tim/internal/ui/format"
	"github.com/tgienger/tim/internal/ui/keys"
	"github.com/tgienger/tim/internal/ui/styles"
)

// BackToStatus signals to go back to the status view
type BackToStatus struct{}

// LogView browses the work log of a range, filtering tags in memory
type LogView struct {
	ctx    context.Context
	db     *db.DB
	styles *styles.Styles
	keys   keys.KeyMap

	width  int
	height int

	rangeIdx int
	log      models.Log
	visible  []models.WorkRecord
	err      error

	table     table.Model
	filter    textinput.Model
	filtering bool
	partial   bool

	// Delete confirmation
	confirmingDelete bool
	deleteTargetID   int64
}

// NewLogView creates a new log view showing the last week
func NewLogView(ctx context.Context, database *db.DB) *LogView {
	s := styles.NewStyles()

	filter := textinput.New()
	filter.Placeholder = "Filter tags..."
	filter.CharLimit = 100

	t := table.New(
		table.WithColumns(logColumns(styles.MaxWidth)),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Current.Border).
		BorderBottom(true).
		Foreground(styles.Current.Primary).
		Bold(true)
	ts.Selected = ts.Selected.
		Foreground(styles.Current.Primary).
		Background(styles.Current.Selection).
		Bold(true)
	t.SetStyles(ts)

	rangeIdx := 0
	for i, r := range db.Ranges {
		if r == db.RangeWeek {
			rangeIdx = i
		}
	}

	return &LogView{
		ctx:      ctx,
		db:       database,
		styles:   s,
		keys:     keys.DefaultKeyMap(),
		rangeIdx: rangeIdx,
		table:    t,
		filter:   filter,
	}
}

func logColumns(width int) []table.Column {
	const fixed = 5 + 23 + 10 + 12 + 3
	tagsWidth := max(width-fixed-12, 10)
	return []table.Column{
		{Title: "id", Width: 5},
		{Title: "start", Width: 23},
		{Title: "end", Width: 10},
		{Title: "duration", Width: 12},
		{Title: "f", Width: 3},
		{Title: "tags", Width: tagsWidth},
	}
}

// Range returns the range being shown
func (v *LogView) Range() db.Range {
	return db.Ranges[v.rangeIdx]
}

// Filter returns the in-memory tag filter
func (v *LogView) Filter() db.TagFilter {
	return db.NewTagFilter(strings.Fields(v.filter.Value()), v.partial)
}

// Visible returns the records that pass the filter
func (v *LogView) Visible() []models.WorkRecord {
	return v.visible
}

type logLoadedMsg struct {
	log models.Log
}

type logErrMsg struct {
	err error
}

// Init initializes the view
func (v *LogView) Init() tea.Cmd {
	return v.loadLog
}

func (v *LogView) loadLog() tea.Msg {
	log, err := v.db.List(v.ctx, db.LogQuery{Range: v.Range()})
	if err != nil {
		return logErrMsg{err}
	}
	return logLoadedMsg{log: log}
}

// applyFilter recomputes the visible records and table rows
func (v *LogView) applyFilter() {
	f := v.Filter()

	v.visible = v.visible[:0]
	rows := make([]table.Row, 0, len(v.log.Records))
	for _, r := range v.log.Records {
		if !f.Match(r.Tags) {
			continue
		}
		v.visible = append(v.visible, r)
		rows = append(rows, v.row(r))
	}

	v.table.SetRows(rows)
	if v.table.Cursor() >= len(rows) {
		v.table.SetCursor(max(0, len(rows)-1))
	}
}

func (v *LogView) row(r models.WorkRecord) table.Row {
	end := "--"
	if r.End != nil {
		end = r.End.Local().Format("15:04:05")
	}

	flags := []byte("b  ")
	if r.Billed() {
		flags[0] = 'B'
	}
	if r.Amended {
		flags[1] = 'A'
	}
	f := string(flags)
	if r.Open() {
		f = f[:2] + "⯈"
	}

	return table.Row{
		strconv.FormatInt(r.ID, 10),
		r.Start.Local().Format("Mon 2006-01-02 15:04:05"),
		end,
		format.Relative(r.Duration(v.log.At)),
		f,
		format.Tags(r.Tags),
	}
}

// selected returns the record under the cursor
func (v *LogView) selected() (models.WorkRecord, bool) {
	i := v.table.Cursor()
	if i < 0 || i >= len(v.visible) {
		return models.WorkRecord{}, false
	}
	return v.visible[i], true
}

// Update handles messages
func (v *LogView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.table.SetColumns(logColumns(styles.ContentWidth(v.width)))
		v.table.SetHeight(max(v.height-12, 3))
		return v, nil

	case logLoadedMsg:
		v.log = msg.log
		v.err = nil
		v.applyFilter()
		return v, nil

	case logErrMsg:
		v.err = msg.err
		return v, nil

	case tea.KeyMsg:
		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}
		if v.filtering {
			return v.updateFiltering(msg)
		}
		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *LogView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Back):
		return v, func() tea.Msg { return BackToStatus{} }

	case key.Matches(msg, v.keys.NextRange):
		if v.rangeIdx < len(db.Ranges)-1 {
			v.rangeIdx++
			return v, v.loadLog
		}
		return v, nil

	case key.Matches(msg, v.keys.PrevRange):
		if v.rangeIdx > 0 {
			v.rangeIdx--
			return v, v.loadLog
		}
		return v, nil

	case key.Matches(msg, v.keys.Refresh):
		return v, v.loadLog

	case key.Matches(msg, v.keys.Filter):
		v.filtering = true
		return v, v.filter.Focus()

	case key.Matches(msg, v.keys.Partial):
		v.partial = !v.partial
		v.applyFilter()
		return v, nil

	case key.Matches(msg, v.keys.Delete):
		if r, ok := v.selected(); ok {
			v.confirmingDelete = true
			v.deleteTargetID = r.ID
		}
		return v, nil
	}

	var cmd tea.Cmd
	v.table, cmd = v.table.Update(msg)
	return v, cmd
}

func (v *LogView) updateFiltering(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.filter.SetValue("")
		fallthrough
	case key.Matches(msg, v.keys.Enter):
		v.filtering = false
		v.filter.Blur()
		v.applyFilter()
		return v, nil
	}

	var cmd tea.Cmd
	v.filter, cmd = v.filter.Update(msg)
	v.applyFilter()
	return v, cmd
}

func (v *LogView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		id := v.deleteTargetID
		return v, func() tea.Msg {
			if _, err := v.db.Delete(v.ctx, id); err != nil {
				return logErrMsg{err}
			}
			return v.loadLog()
		}
	case "n", "N", "esc":
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

// View renders the view
func (v *LogView) View() string {
	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}

	s := v.styles

	var b strings.Builder
	b.WriteString(s.Title.Render("your log for "+rangeTitle(v.Range())) + "  " +
		s.TitleMuted.Render(fmt.Sprintf("[%s]", v.Range())))
	b.WriteString("\n\n")

	filterStyle := s.Input
	if v.filtering {
		filterStyle = s.InputFocused
	}
	mode := "whole tags"
	if v.partial {
		mode = "partial"
	}
	b.WriteString(filterStyle.Render(v.filter.View()) + " " + s.TitleMuted.Render(mode))
	b.WriteString("\n")

	if len(v.visible) == 0 {
		b.WriteString(s.ListItem.Render("no tracked work to show!"))
		b.WriteString("\n")
	} else {
		b.WriteString(v.table.View())
		b.WriteString("\n")
	}

	var total models.Log
	total.At = v.log.At
	total.Records = v.visible
	b.WriteString(s.StatusBar.Render(fmt.Sprintf("%d entries • %s", len(v.visible), format.Relative(total.Total()))))
	b.WriteString("\n")

	if v.err != nil {
		b.WriteString(s.ErrorPanel.Render(s.Error.Render("error: ") + v.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString(v.renderHelp())

	return styles.CenterView(b.String(), v.width, v.height)
}

func rangeTitle(r db.Range) string {
	switch r {
	case db.RangeToday:
		return "today"
	case db.RangeAll:
		return "all time"
	default:
		return "the last " + string(r)
	}
}

func (v *LogView) renderHelp() string {
	s := v.styles
	if v.filtering {
		return s.Help.Render(fmt.Sprintf("%s apply • %s clear",
			s.HelpKey.Render("↵"),
			s.HelpKey.Render("esc"),
		))
	}

	return s.Help.Render(fmt.Sprintf("%s/%s range • %s filter • %s partial • %s del • %s refresh • %s back • %s quit",
		s.HelpKey.Render("["),
		s.HelpKey.Render("]"),
		s.HelpKey.Render("/"),
		s.HelpKey.Render("p"),
		s.HelpKey.Render("d"),
		s.HelpKey.Render("r"),
		s.HelpKey.Render("esc"),
		s.HelpKey.Render("q"),
	))
}

func (v *LogView) renderDeleteConfirm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Delete Work Log?"),
		"",
		s.TitleMuted.Render(fmt.Sprintf("work log #%d will be removed for good", v.deleteTargetID)),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}
