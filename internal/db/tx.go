package db

import (
	"context"
	"database/sql"

	"go.uber.org/zap"
)

// withTx runs fn inside a transaction. The transaction commits when fn returns nil
// and rolls back on every other path, including panics; fn's error is returned as is.
func (db *DB) withTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	log := db.log.With(zap.String("op", op))
	log.Debug("transaction: start")

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return dbErr("begin "+op, err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
			log.Debug("transaction: rolled back")
		}
	}()

	if err := fn(tx); err != nil {
		log.Debug("transaction: failed", zap.Error(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		return dbErr("commit "+op, err)
	}
	committed = true

	log.Debug("transaction: committed")
	return nil
}
