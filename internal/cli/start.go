package cli

import (
	"context"
	"errors"
	"time"

	"github.com/tgienger/tim/internal/db"
	"github.com/tgienger/tim/internal/models"
	"github.com/tgienger/tim/internal/ui/format"

	flag "github.com/spf13/pflag"
)

// StartCmd returns the start command.
func StartCmd(a *app) *Command {
	flags := flag.NewFlagSet("start", flag.ContinueOnError)
	replace := flags.BoolP("replace", "r", false, "stop the current tracking and start the new one instead of failing")

	return &Command{
		Flags: flags,
		Usage: "start [-r] [tags...]",
		Short: "Start tracking time with tags",
		Long: "Start tracking time with tags.\n\n" +
			"Fails if tracking is already running, unless --replace is passed.\n" +
			"If allow_no_tags is false in the config, tags must be provided.",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			return a.execStart(ctx, o, args, *replace)
		},
	}
}

func (a *app) execStart(ctx context.Context, o *IO, tags []string, replace bool) error {
	joined, err := a.tagString(tags)
	if err != nil {
		return err
	}

	store, err := a.store()
	if err != nil {
		return err
	}

	rec, err := store.Start(ctx, joined, replace)
	if errors.Is(err, db.ErrAlreadyTracking) {
		a.showCurrent(ctx, o)
		return err
	}
	if err != nil {
		return err
	}

	o.Println(o.S.OK.Render("✓ ok, started tracking!"))
	o.printTracking(rec, rec.Duration(store.Now()))
	return nil
}

func (a *app) showCurrent(ctx context.Context, o *IO) {
	rec, elapsed, err := a.db.Current(ctx)
	if err != nil {
		return
	}
	o.printTracking(rec, elapsed)
}

func (o *IO) printTracking(rec *models.WorkRecord, elapsed time.Duration) {
	o.field("working on", o.tags(rec.Tags, o.S.Value))
	o.field("since", format.Absolute(rec.Start))
	o.field("for", o.S.Elapsed.Render(format.Relative(elapsed)))
}
