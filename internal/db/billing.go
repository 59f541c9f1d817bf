package db

import (
	"context"
	"database/sql"

	"go.uber.org/zap"
)

// MarkBilled sets the bill reference of every record selected by q, or clears it
// when q.Unbill is set. It returns the number of records changed.
func (db *DB) MarkBilled(ctx context.Context, q BillQuery) (int64, error) {
	p, err := q.predicate()
	if err != nil {
		return 0, err
	}

	where := p.where()

	var (
		stmt string
		args []any
	)
	if q.Unbill {
		stmt = "UPDATE work SET bill = NULL " + where
		args = p.args
	} else {
		ref := q.Ref
		if ref == "" {
			ref = DefaultBillRef
		}
		stmt = "UPDATE work SET bill = ? " + where
		args = append([]any{ref}, p.args...)
	}

	db.log.Debug("bill work filter",
		zap.Bool("unbill", q.Unbill),
		zap.String("where", where),
		zap.Any("args", args),
	)

	var changed int64
	err = db.withTx(ctx, "bill", func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, stmt, args...)
		if err != nil {
			return dbErr("bill work", err)
		}
		changed, err = result.RowsAffected()
		if err != nil {
			return dbErr("bill work", err)
		}
		return nil
	})
	return changed, err
}
