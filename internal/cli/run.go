// Package cli implements the command-line interface for tim.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/tgienger/tim/internal/config"
	"github.com/tgienger/tim/internal/db"
	"github.com/tgienger/tim/internal/logger"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"
)

// Version is reported by --version. Set by main from build flags.
var Version = "dev"

// app is the state shared by all commands of one invocation
type app struct {
	cfg   config.Config
	env   map[string]string
	log   *zap.Logger
	stdin io.Reader
	out   io.Writer
	now   func() time.Time

	db *db.DB
}

// store opens the database on first use. All commands of an invocation share it.
func (a *app) store() (*db.DB, error) {
	if a.db != nil {
		return a.db, nil
	}

	d, err := db.New(a.cfg.Database, db.WithLogger(a.log), db.WithClock(a.now))
	if err != nil {
		return nil, err
	}
	a.db = d
	return d, nil
}

func (a *app) close() {
	if a.db == nil {
		return
	}
	if err := a.db.Close(); err != nil {
		a.log.Warn("closing database", zap.Error(err))
	}
	a.db = nil
}

// Run is the main entry point. Returns the exit code.
func Run(stdin io.Reader, out, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	return run(stdin, out, errOut, args, env, sigCh, time.Now)
}

func run(stdin io.Reader, out, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal, now func() time.Time) int {
	o := NewIO(out, errOut, env)

	globals := flag.NewFlagSet("tim", flag.ContinueOnError)
	globals.SetInterspersed(false)
	globals.SetOutput(io.Discard)

	configPath := globals.StringP("config", "c", "", "use the given config file")
	verbose := globals.BoolP("verbose", "v", false, "show internal details on stderr")
	help := globals.BoolP("help", "h", false, "show this help")
	version := globals.Bool("version", false, "print the version and exit")

	if len(args) > 0 {
		args = args[1:]
	}

	if err := globals.Parse(args); err != nil {
		o.Error("bad arguments", err.Error())
		printUsage(errOut, nil)
		return exitUser
	}

	if *version {
		o.Println("tim", Version)
		return exitOK
	}

	a := &app{env: env, stdin: stdin, out: out, now: now}
	commands := a.commands()

	rest := globals.Args()
	if *help || (len(rest) > 0 && rest[0] == "help") {
		printUsage(out, commands)
		return exitOK
	}

	log := logger.Nop()
	if *verbose {
		log = logger.New(errOut, "debug", true)
	}
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load(*configPath, env)
	if err != nil {
		log.Debug("config load failed", zap.Error(err))
		return o.Fail(err)
	}
	o.SetColor(cfg.Display.Color, env)

	if cfg.Source == "" {
		log.Debug("no config file found, using defaults")
	} else {
		log.Debug("config loaded", zap.String("source", cfg.Source))
	}
	log.Debug("database file", zap.String("path", cfg.Database))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if sigCh != nil {
		go func() {
			select {
			case <-sigCh:
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	a.cfg = cfg
	a.log = log
	defer a.close()

	if len(rest) == 0 {
		rest = []string{"status"}
	}

	for _, cmd := range commands {
		if cmd.Name() == rest[0] {
			code := cmd.Run(ctx, o, rest[1:])
			o.Finish()
			return code
		}
	}

	code := o.Fail(fmt.Errorf("%w: %s", ErrUnknownCommand, rest[0]))
	printUsage(errOut, commands)
	return code
}

func (a *app) commands() []*Command {
	return []*Command{
		StartCmd(a),
		ContinueCmd(a),
		StopCmd(a),
		StatusCmd(a),
		LogCmd(a),
		DeleteCmd(a),
		BillCmd(a),
		AmendCmd(a),
		ExportCmd(a),
		ConfigCmd(a),
		UICmd(a),
	}
}

func printUsage(w io.Writer, commands []*Command) {
	fprintln(w, `tim - a friendly time tracker

Usage: tim [options] <command> [args]

Options:
  -c, --config <file>   Use the given config file
  -v, --verbose         Show internal details on stderr
  -h, --help            Show this help
      --version         Print the version

Without a command, tim shows the tracking status.`)

	if len(commands) == 0 {
		return
	}

	fprintln(w)
	fprintln(w, "Commands:")
	for _, cmd := range commands {
		fprintln(w, cmd.HelpLine())
	}
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}
