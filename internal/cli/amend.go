package cli

import (
	"context"
	"fmt"

	"github.com/tgienger/tim/internal/models"
	"github.com/tgienger/tim/internal/ui/format"

	flag "github.com/spf13/pflag"
)

const amendTags = "tags"

type amendOptions struct {
	time         string
	tags         []string
	modifyBilled bool
}

// AmendCmd returns the amend command.
func AmendCmd(a *app) *Command {
	var opts amendOptions

	flags := flag.NewFlagSet("amend", flag.ContinueOnError)
	flags.StringVarP(&opts.time, "time", "t", "", "new timestamp to apply (2006-01-02T15:04[:05])")
	flags.StringArrayVarP(&opts.tags, "tags", "a", nil, "new tag to apply, repeat for several")
	flags.BoolVar(&opts.modifyBilled, "modify-billed", false, "allow modifying times of billed work")

	return &Command{
		Flags: flags,
		Usage: "amend <id> start|end|tags [flags]",
		Short: "Amend tracked work",
		Long: "Change the start or end time, or the tags, of tracked work.\n" +
			"Use 0 for the most recent completed work.\n\n" +
			"Changed times mark the work as amended, shown in the log when track_amend is on.\n" +
			"Times of billed work are only changed with --modify-billed.",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			return a.execAmend(ctx, o, args, opts)
		},
	}
}

func (a *app) execAmend(ctx context.Context, o *IO, args []string, opts amendOptions) error {
	switch len(args) {
	case 0:
		return ErrIDRequired
	case 1:
		return ErrFieldRequired
	case 2:
	default:
		return ErrUnexpectedArgs
	}

	raw, err := parseID(args[0])
	if err != nil {
		return err
	}

	field := args[1]
	if field != string(models.WhichStart) && field != string(models.WhichEnd) && field != amendTags {
		return fmt.Errorf("%w: %q", ErrFieldRequired, field)
	}

	store, err := a.store()
	if err != nil {
		return err
	}

	id, err := store.ResolveID(ctx, raw)
	if err != nil {
		return err
	}

	if field == amendTags {
		tags, err := a.tagString(opts.tags)
		if err != nil {
			return err
		}
		if err := store.AmendTags(ctx, id, tags); err != nil {
			return err
		}
	} else {
		if opts.time == "" {
			return ErrTimeRequired
		}
		t, err := parseTime(opts.time, timeLayouts, a.now().Location())
		if err != nil {
			return err
		}
		if err := store.AmendTime(ctx, id, models.Which(field), t, opts.modifyBilled); err != nil {
			return err
		}
	}

	rec, err := store.Get(ctx, id)
	if err != nil {
		return err
	}

	o.Println(o.S.OK.Render(fmt.Sprintf("✓ ok, amended %s of work log #%d", field, id)))
	o.field("worked on", o.tags(rec.Tags, o.S.Value))
	o.field("from", format.Absolute(rec.Start))
	if rec.End != nil {
		o.field("until", format.Absolute(*rec.End))
	}
	o.field("for", format.Relative(rec.Duration(store.Now())))
	return nil
}
