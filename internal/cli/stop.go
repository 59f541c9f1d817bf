package cli

import (
	"context"

	"github.com/tgienger/tim/internal/ui/format"

	flag "github.com/spf13/pflag"
)

// StopCmd returns the stop command.
func StopCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("stop", flag.ContinueOnError),
		Usage: "stop",
		Short: "Stop tracking",
		Long:  "Stop tracking and show a summary of the finished work.\n\nFails if nothing is being tracked.",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) > 0 {
				return ErrUnexpectedArgs
			}
			return a.execStop(ctx, o)
		},
	}
}

func (a *app) execStop(ctx context.Context, o *IO) error {
	store, err := a.store()
	if err != nil {
		return err
	}

	rec, err := store.Stop(ctx)
	if err != nil {
		return err
	}

	o.Println(o.S.OK.Render("✓ ok, stopped tracking."))
	o.Println("work summary:")
	o.field("worked on", o.tags(rec.Tags, o.S.Value))
	o.field("from", format.Absolute(rec.Start))
	o.field("until", format.Absolute(*rec.End))
	o.field("for", format.Relative(rec.Duration(store.Now())))
	return nil
}
