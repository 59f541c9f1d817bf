package cli

import (
	"context"
	"fmt"

	"github.com/tgienger/tim/internal/db"

	flag "github.com/spf13/pflag"
)

// DeleteCmd returns the delete command.
func DeleteCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("delete", flag.ContinueOnError),
		Usage: "delete <id>",
		Short: "Delete recorded work",
		Long: "Delete recorded work. Use 0 for the most recent completed work.\n\n" +
			"No confirmation is asked for, so be careful!",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			return a.execDelete(ctx, o, args)
		},
	}
}

func (a *app) execDelete(ctx context.Context, o *IO, args []string) error {
	if len(args) == 0 {
		return ErrIDRequired
	}
	if len(args) > 1 {
		return ErrUnexpectedArgs
	}

	raw, err := parseID(args[0])
	if err != nil {
		return err
	}

	store, err := a.store()
	if err != nil {
		return err
	}

	deleted, err := store.Delete(ctx, raw)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: no work record with id %d", db.ErrNotFound, raw)
	}

	if raw == 0 {
		o.Println(o.S.OK.Render("✓ ok, deleted last work log"))
	} else {
		o.Println(o.S.OK.Render(fmt.Sprintf("✓ ok, deleted work log #%d", raw)))
	}
	return nil
}
