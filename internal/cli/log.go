package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/tgienger/tim/internal/db"
	"github.com/tgienger/tim/internal/models"
	"github.com/tgienger/tim/internal/ui/format"

	flag "github.com/spf13/pflag"
)

const (
	dayLayout   = "Mon 2006-01-02 15:04:05"
	clockLayout = "15:04:05"
)

type logOptions struct {
	partial  bool
	rng      string
	billed   bool
	unbilled bool
	decimal  bool
	long     bool
	rate     float64
}

// LogCmd returns the log command.
func LogCmd(a *app) *Command {
	var opts logOptions

	flags := flag.NewFlagSet("log", flag.ContinueOnError)
	flags.BoolVarP(&opts.partial, "partial", "p", false, "don't require whole tag matches for filtering")
	flags.StringVarP(&opts.rng, "range", "r", string(db.RangeWeek), "the range to view: today, week, month, year or all")
	flags.BoolVarP(&opts.billed, "billed", "B", false, "show billed work only")
	flags.BoolVarP(&opts.unbilled, "unbilled", "b", false, "show unbilled work only")
	flags.BoolVarP(&opts.decimal, "decimal", "d", false, "show durations in decimal hours")
	flags.BoolVarP(&opts.long, "long", "l", false, "show every detail about tracked work")
	flags.Float64VarP(&opts.rate, "rate", "a", 0, "hourly rate; shows the value of the work in the summary")

	return &Command{
		Flags: flags,
		Usage: "log [tags...] [flags]",
		Short: "See your work history",
		Long: "See your work history, optionally filtered by tags.\n\n" +
			"Flags in the f column: b unbilled, B billed, A amended, ⯈ still tracking.\n" +
			"An end time marked ⬧ is on a later day than its start.",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			return a.execLog(ctx, o, args, opts)
		},
	}
}

// logQuery builds the store query shared by log and export
func logQuery(rng string, tags []string, partial, billed, unbilled bool) (db.LogQuery, error) {
	r, err := db.ParseRange(rng)
	if err != nil {
		return db.LogQuery{}, err
	}

	q := db.LogQuery{Range: r, Tags: db.NewTagFilter(tags, partial)}
	switch {
	case billed && unbilled:
		return db.LogQuery{}, ErrBilledFilter
	case billed:
		q.Billed = &billed
	case unbilled:
		no := false
		q.Billed = &no
	}
	return q, nil
}

func (a *app) execLog(ctx context.Context, o *IO, args []string, opts logOptions) error {
	q, err := logQuery(opts.rng, args, opts.partial, opts.billed, opts.unbilled)
	if err != nil {
		return err
	}

	if opts.rate == 0 {
		opts.rate = a.cfg.Display.Rate
	}
	if a.cfg.Display.AlwaysDecimal {
		opts.decimal = true
	}

	store, err := a.store()
	if err != nil {
		return err
	}

	log, err := store.List(ctx, q)
	if err != nil {
		return err
	}

	a.printLogHeader(o, q, opts)

	if len(log.Records) == 0 {
		o.Println(o.S.Value.Render("  no tracked work to show!"))
		o.Println("  try a different time range or filter.")
	} else {
		rendered, rollover := a.logTable(o, log, opts)
		o.Println(rendered)
		if rollover {
			o.Warn("some periods span multiple days (⬧)")
		}
	}

	o.Println()
	o.field("entries", strconv.Itoa(len(log.Records)))
	o.field("time", format.Duration(log.Total(), opts.decimal))
	if opts.rate > 0 {
		o.field("value", fmt.Sprintf("%.2f", log.Total().Hours()*opts.rate))
	}

	if log.Tracking() {
		o.Warn("you are currently tracking work (⯈) - values are not final")
	}
	return nil
}

func (a *app) printLogHeader(o *IO, q db.LogQuery, opts logOptions) {
	switch q.Range {
	case db.RangeToday:
		o.Println("your log for " + o.S.Value.Render("today"))
	case db.RangeAll:
		o.Println("your log for " + o.S.Value.Render("all time"))
	default:
		o.Println("your log for " + o.S.Value.Render("the last "+string(q.Range)))
	}

	if !q.Tags.Empty() {
		o.Printf("  showing only work with tags '%s'\n", q.Tags)
	}
	if q.Billed != nil {
		if *q.Billed {
			o.Println("  showing only billed work (" + o.S.FlagBilled.Render("B") + ")")
		} else {
			o.Println("  showing only unbilled work (" + o.S.FlagUnbilled.Render("b") + ")")
		}
	}
	if opts.rate > 0 {
		o.Printf("  using rate of %.2f/hr\n", opts.rate)
	}
	if opts.decimal {
		o.Println("  using decimal hours")
	}
	if opts.long {
		o.Println("  showing more details")
	}
	o.Println()
}

// logTable renders the records. The second result reports whether any closed
// record ends on a later day than it starts.
func (a *app) logTable(o *IO, log models.Log, opts logOptions) (string, bool) {
	const (
		colDuration = 3
		colTags     = 5
	)

	headers := []string{"id", "start", "end", "duration", "f", "tags"}
	if opts.long {
		headers = append(headers, "billed", "amended")
	}

	var (
		rows     [][]string
		open     = map[int]bool{}
		lastDay  time.Time
		rollover bool
	)

	for i, r := range log.Records {
		start := r.Start.Local()
		day := truncateDay(start)

		startCell := start.Format(clockLayout)
		if !day.Equal(lastDay) {
			startCell = start.Format(dayLayout)
			lastDay = day
		}

		endCell := "--"
		if r.End != nil {
			end := r.End.Local()
			endCell = end.Format(clockLayout)
			if !truncateDay(end).Equal(day) {
				endCell += " " + o.S.Error.Render("⬧")
				rollover = true
			}
		} else {
			open[i] = true
		}

		row := []string{
			strconv.FormatInt(r.ID, 10),
			startCell,
			endCell,
			format.Duration(r.Duration(log.At), opts.decimal),
			a.flags(o, r),
			format.Tags(r.Tags),
		}
		if opts.long {
			row = append(row, a.billedDetail(o, r), a.amendedDetail(o, r))
		}
		rows = append(rows, row)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderHeader(true).
		BorderStyle(o.S.Label).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			var s lipgloss.Style
			switch {
			case row == table.HeaderRow:
				s = o.S.Header
			case open[row] && (col == colDuration || col == colTags):
				s = o.S.Elapsed
			case col == colTags && rows[row][colTags] == format.NoTags:
				s = o.S.Label
			case col == colTags:
				s = o.S.Value
			default:
				s = o.S.Label.UnsetForeground()
			}
			s = s.PaddingRight(3)
			if col == colDuration {
				s = s.Align(lipgloss.Right)
			}
			return s
		})

	return t.Render(), rollover
}

func (a *app) flags(o *IO, r models.WorkRecord) string {
	billed := o.S.FlagUnbilled.Render("b")
	if r.Billed() {
		billed = " "
		if a.cfg.Display.BilledFlag {
			billed = o.S.FlagBilled.Render("B")
		}
	}

	amended := " "
	if r.Amended && a.cfg.Tracking.TrackAmend {
		amended = o.S.FlagAmended.Render("A")
	}

	open := " "
	if r.Open() {
		open = o.S.FlagOpen.Render("⯈")
	}

	return billed + amended + open
}

func (a *app) billedDetail(o *IO, r models.WorkRecord) string {
	if !r.Billed() {
		return o.S.FlagUnbilled.Render("no")
	}
	return o.S.FlagBilled.Render("yes") + fmt.Sprintf(", ref '%s'", *r.Bill)
}

func (a *app) amendedDetail(o *IO, r models.WorkRecord) string {
	switch {
	case !a.cfg.Tracking.TrackAmend:
		return "--"
	case r.Amended:
		return o.S.FlagAmended.Render("yes")
	default:
		return "no"
	}
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
