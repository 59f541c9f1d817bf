package db

import (
	"errors"
	"fmt"
)

// Error classes. Callers match these with errors.Is to pick an exit status.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidState    = errors.New("invalid state")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrDatabase        = errors.New("database error")
)

// Specific failures, each wrapping one of the classes above.
var (
	ErrAlreadyTracking   = fmt.Errorf("%w: already tracking", ErrInvalidState)
	ErrNotTracking       = fmt.Errorf("%w: not tracking", ErrInvalidState)
	ErrAlreadyBilled     = fmt.Errorf("%w: work has already been billed", ErrInvalidState)
	ErrNoBillRange       = fmt.Errorf("%w: no range given, need a from/to bound or all", ErrInvalidArgument)
	ErrBillRangeConflict = fmt.Errorf("%w: from/to and all are mutually exclusive", ErrInvalidArgument)
	ErrUnknownRange      = fmt.Errorf("%w: unknown range", ErrInvalidArgument)
	ErrUnknownField      = fmt.Errorf("%w: unknown field", ErrInvalidArgument)
)

func dbErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrDatabase, op, err)
}
