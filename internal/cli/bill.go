package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/tgienger/tim/internal/db"

	flag "github.com/spf13/pflag"
)

type billOptions struct {
	partial bool
	from    string
	to      string
	all     bool
	ref     string
	unbill  bool
}

// BillCmd returns the bill command.
func BillCmd(a *app) *Command {
	var opts billOptions

	flags := flag.NewFlagSet("bill", flag.ContinueOnError)
	flags.BoolVarP(&opts.partial, "partial", "p", false, "don't require whole tag matches for filtering")
	flags.StringVarP(&opts.from, "from", "f", "", "start of the range to bill (2006-01-02[T15:04[:05]])")
	flags.StringVarP(&opts.to, "to", "t", "", "end of the range to bill (2006-01-02[T15:04[:05]])")
	flags.BoolVarP(&opts.all, "all", "a", false, "mark all matching work instead of a from/to range. dangerous!")
	flags.StringVarP(&opts.ref, "ref", "r", "", "bill reference, like an invoice number")
	flags.BoolVar(&opts.unbill, "unbill", false, "mark as not billed instead of billed. dangerous!")

	return &Command{
		Flags: flags,
		Usage: "bill [tags...] [flags]",
		Short: "Mark work as billed (or not)",
		Long: "Mark work as billed, or not billed with --unbill.\n\n" +
			"Give one or both of --from and --to, or --all, and optionally tags to filter for.\n" +
			"Work is selected when it starts at or after --from and ends at or before --to.",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			return a.execBill(ctx, o, args, opts)
		},
	}
}

func (a *app) execBill(ctx context.Context, o *IO, args []string, opts billOptions) error {
	q := db.BillQuery{
		All:    opts.all,
		Tags:   db.NewTagFilter(args, opts.partial),
		Ref:    opts.ref,
		Unbill: opts.unbill,
	}

	loc := a.now().Location()
	if opts.from != "" {
		from, err := parseTime(opts.from, dateLayouts, loc)
		if err != nil {
			return err
		}
		q.From = &from
	}
	if opts.to != "" {
		to, err := parseTime(opts.to, dateLayouts, loc)
		if err != nil {
			return err
		}
		q.To = &to
	}

	store, err := a.store()
	if err != nil {
		return err
	}

	changed, err := store.MarkBilled(ctx, q)
	if err != nil {
		return err
	}

	o.Println(o.S.OK.Render("✓ ok, marked work"))
	switch {
	case q.All:
		o.Println("  from all time")
	case q.From != nil && q.To != nil:
		o.Printf("  between %s and %s\n", day(*q.From), day(*q.To))
	case q.From != nil:
		o.Printf("  from %s\n", day(*q.From))
	default:
		o.Printf("  to %s\n", day(*q.To))
	}
	if !q.Tags.Empty() {
		o.Printf("  with tags '%s'\n", q.Tags)
	}
	if q.Unbill {
		o.Println("  as " + o.S.FlagUnbilled.Render("not billed"))
	} else {
		ref := q.Ref
		if ref == "" {
			ref = db.DefaultBillRef
		}
		o.Println("  as " + o.S.FlagBilled.Render("billed") + fmt.Sprintf(", ref '%s'", ref))
	}
	o.Printf("  %d work logs changed\n", changed)
	return nil
}

func day(t time.Time) string {
	return t.Format("2006-01-02")
}
