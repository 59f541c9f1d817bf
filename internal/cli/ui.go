package cli

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tgienger/tim/internal/ui"

	flag "github.com/spf13/pflag"
)

// UICmd returns the ui command.
func UICmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("ui", flag.ContinueOnError),
		Usage: "ui",
		Short: "Track and browse work interactively",
		Long: "Open the interactive tracker: see the running work tick, start and stop\n" +
			"tracking, and browse, filter and delete logged work.",
		Exec: func(ctx context.Context, _ *IO, args []string) error {
			if len(args) > 0 {
				return ErrUnexpectedArgs
			}
			return a.execUI(ctx)
		},
	}
}

func (a *app) execUI(ctx context.Context) error {
	store, err := a.store()
	if err != nil {
		return err
	}

	opts := []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithOutput(a.out),
	}
	if a.stdin != nil {
		opts = append(opts, tea.WithInput(a.stdin))
	}

	p := tea.NewProgram(ui.NewApp(ctx, store, a.cfg.Tracking.AllowNoTags), opts...)
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("running interface: %w", err)
	}
	return nil
}
