package cli

import (
	"context"

	"github.com/tgienger/tim/internal/config"

	flag "github.com/spf13/pflag"
)

// ConfigCmd returns the config command.
func ConfigCmd(a *app) *Command {
	flags := flag.NewFlagSet("config", flag.ContinueOnError)
	initFile := flags.Bool("init", false, "write the default config to the given path, or the default location")
	force := flags.Bool("force", false, "overwrite an existing file with --init")

	return &Command{
		Flags: flags,
		Usage: "config [--init [path]] [--force]",
		Short: "Show the effective configuration",
		Long: "Show the effective configuration and where it was loaded from.\n\n" +
			"With --init, write the default configuration instead.",
		Exec: func(_ context.Context, o *IO, args []string) error {
			if *initFile {
				return a.execConfigInit(o, args, *force)
			}
			if len(args) > 0 {
				return ErrUnexpectedArgs
			}
			return a.execConfigShow(o)
		},
	}
}

func (a *app) execConfigShow(o *IO) error {
	formatted, err := config.Format(a.cfg)
	if err != nil {
		return err
	}

	o.Printf("%s", formatted)
	o.Println()
	o.Println("# source:")
	if a.cfg.Source == "" {
		o.Println("#   (using defaults only)")
	} else {
		o.Println("#   " + a.cfg.Source)
	}
	return nil
}

func (a *app) execConfigInit(o *IO, args []string, force bool) error {
	if len(args) > 1 {
		return ErrUnexpectedArgs
	}

	path := config.Path(a.env)
	if len(args) == 1 {
		path = args[0]
	}

	if err := config.Write(path, config.Default(a.env), force); err != nil {
		return err
	}

	o.Println(o.S.OK.Render("✓ ok, wrote default config"))
	o.field("to", path)
	return nil
}
