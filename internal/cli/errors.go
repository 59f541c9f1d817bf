package cli

import (
	"errors"

	"github.com/tgienger/tim/internal/config"
	"github.com/tgienger/tim/internal/db"
)

const (
	exitOK       = 0
	exitUser     = 1
	exitConfig   = 2
	exitDatabase = 3
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrIDRequired     = errors.New("id is required")
	ErrInvalidID      = errors.New("id must be a non-negative integer")
	ErrNoTags         = errors.New("no tags provided, and you have disallowed empty tags")
	ErrInvalidTime    = errors.New("invalid time")
	ErrTimeRequired   = errors.New("provide a new time value with --time")
	ErrFieldRequired  = errors.New("say what to amend: start, end or tags")
	ErrUnknownFormat  = errors.New("unknown export format")
	ErrUnexpectedArgs = errors.New("unexpected arguments")
	ErrBilledFilter   = errors.New("--billed and --unbilled are mutually exclusive")
)

// exitCode maps an error to the process exit status
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, config.ErrConfigNotFound),
		errors.Is(err, config.ErrConfigRead),
		errors.Is(err, config.ErrConfigInvalid):
		return exitConfig
	case errors.Is(err, db.ErrDatabase):
		return exitDatabase
	default:
		return exitUser
	}
}

// describe returns a panel title and a remediation hint for err
func describe(err error) (title, hint string) {
	switch {
	case errors.Is(err, db.ErrAlreadyTracking):
		return "currently working", "use 'tim stop' to stop the current tracking first, or pass '--replace'"
	case errors.Is(err, db.ErrNotTracking):
		return "not tracking", "use 'tim start' to start tracking"
	case errors.Is(err, db.ErrAlreadyBilled):
		return "already billed", "modifying timestamps would change the bill amount.\n" +
			"if you really want to do this, try again with '--modify-billed'"
	case errors.Is(err, db.ErrNotFound):
		return "id not found", "use 'tim log' to see ids"
	case errors.Is(err, db.ErrNoBillRange):
		return "no range given", "specify at least one of '--from' or '--to', or '--all' to use all"
	case errors.Is(err, db.ErrBillRangeConflict):
		return "from/to used with all", ""
	case errors.Is(err, db.ErrInvalidArgument):
		return "invalid argument", ""
	case errors.Is(err, db.ErrDatabase):
		return "database error", "please check the database file exists and is accessible"
	case errors.Is(err, config.ErrConfigExists):
		return "config exists", "pass '--force' to overwrite it"
	case exitCode(err) == exitConfig:
		return "failed to read config!", "fix the file, or point '--config' at another one"
	case errors.Is(err, ErrNoTags):
		return "no tags", ""
	case errors.Is(err, ErrUnknownCommand):
		return "unknown command", "see 'tim --help'"
	default:
		return "bad arguments", ""
	}
}
