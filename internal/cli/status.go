package cli

import (
	"context"
	"errors"

	"github.com/tgienger/tim/internal/db"
	"github.com/tgienger/tim/internal/ui/format"

	flag "github.com/spf13/pflag"
)

// StatusCmd returns the status command. It is also what tim runs without a command.
func StatusCmd(a *app) *Command {
	flags := flag.NewFlagSet("status", flag.ContinueOnError)
	terse := flags.BoolP("terse", "t", false, "show a one-line summary, good for passive monitoring")

	return &Command{
		Flags: flags,
		Usage: "status [-t]",
		Short: "See the status of your tracking",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) > 0 {
				return ErrUnexpectedArgs
			}
			return a.execStatus(ctx, o, *terse)
		},
	}
}

func (a *app) execStatus(ctx context.Context, o *IO, terse bool) error {
	store, err := a.store()
	if err != nil {
		return err
	}

	rec, elapsed, err := store.Current(ctx)
	if errors.Is(err, db.ErrNotTracking) {
		if terse {
			o.Println("tim " + o.S.Error.Render("⯀ not tracking"))
		} else {
			o.Println("tim is " + o.S.Error.Render("⯀ not tracking") + ".")
		}
		return nil
	}
	if err != nil {
		return err
	}

	if terse {
		o.Println("tim", o.S.FlagOpen.Render("⯈"), o.tags(rec.Tags, o.S.Value), format.Relative(elapsed))
		return nil
	}

	o.Println("tim is " + o.S.FlagOpen.Render("⯈ tracking") + ".")
	o.printTracking(rec, elapsed)
	return nil
}
