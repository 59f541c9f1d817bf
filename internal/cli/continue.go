package cli

import (
	"context"
	"strings"

	flag "github.com/spf13/pflag"
)

// ContinueCmd returns the continue command.
func ContinueCmd(a *app) *Command {
	flags := flag.NewFlagSet("continue", flag.ContinueOnError)
	replace := flags.BoolP("replace", "r", false, "stop the current tracking and start the new one instead of failing")

	return &Command{
		Flags: flags,
		Usage: "continue [-r] [id]",
		Short: "Start tracking again with the tags of earlier work",
		Long: "Start tracking with the tags of the given work, or of the most recent\n" +
			"completed work when the id is 0 or omitted.\n\n" +
			"Fails if tracking is already running, unless --replace is passed.",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			return a.execContinue(ctx, o, args, *replace)
		},
	}
}

func (a *app) execContinue(ctx context.Context, o *IO, args []string, replace bool) error {
	if len(args) > 1 {
		return ErrUnexpectedArgs
	}

	var raw int64
	if len(args) == 1 {
		var err error
		if raw, err = parseID(args[0]); err != nil {
			return err
		}
	}

	store, err := a.store()
	if err != nil {
		return err
	}

	id, err := store.ResolveID(ctx, raw)
	if err != nil {
		return err
	}

	rec, err := store.Get(ctx, id)
	if err != nil {
		return err
	}

	return a.execStart(ctx, o, strings.Fields(rec.Tags), replace)
}
