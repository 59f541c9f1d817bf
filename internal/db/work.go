package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tgienger/tim/internal/models"
	"go.uber.org/zap"
)

const recordColumns = `id, COALESCE(tags, ''), start, "end", bill, amended`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(s rowScanner) (models.WorkRecord, error) {
	var (
		r             models.WorkRecord
		start, end    unixTime
		bill, amended sql.NullString
	)
	if err := s.Scan(&r.ID, &r.Tags, &start, &end, &bill, &amended); err != nil {
		return r, err
	}

	r.Start = start.t
	if end.valid {
		e := end.t
		r.End = &e
	}
	if bill.Valid {
		b := bill.String
		r.Bill = &b
	}
	r.Amended = amended.Valid && amended.String != ""
	return r, nil
}

// getRecord loads a record by ID
func getRecord(ctx context.Context, tx *sql.Tx, id int64) (*models.WorkRecord, error) {
	r, err := scanRecord(tx.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM work WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no work record with id %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, dbErr("get record", err)
	}
	return &r, nil
}

// openRecord returns the record being tracked, or nil when there is none
func openRecord(ctx context.Context, tx *sql.Tx) (*models.WorkRecord, error) {
	r, err := scanRecord(tx.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM work WHERE "end" IS NULL LIMIT 1`))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, dbErr("get open record", err)
	}
	return &r, nil
}

// lastClosedID returns the ID of the closed record with the latest end
func lastClosedID(ctx context.Context, tx *sql.Tx) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `
		SELECT id FROM work
		WHERE "end" IS NOT NULL
		ORDER BY "end" DESC, id DESC
		LIMIT 1
	`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: no completed work yet", ErrNotFound)
	}
	if err != nil {
		return 0, dbErr("get last record", err)
	}
	return id, nil
}

func resolveID(ctx context.Context, tx *sql.Tx, raw int64) (int64, error) {
	if raw == 0 {
		return lastClosedID(ctx, tx)
	}

	var count int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM work WHERE id = ?", raw).Scan(&count); err != nil {
		return 0, dbErr("check record", err)
	}
	if count == 0 {
		return 0, fmt.Errorf("%w: no work record with id %d", ErrNotFound, raw)
	}
	return raw, nil
}

// Start opens a new record tagged with tags. If a record is already open it is
// closed first when replace is set, otherwise ErrAlreadyTracking is returned.
// The replaced record ends at the same instant the new one starts.
func (db *DB) Start(ctx context.Context, tags string, replace bool) (*models.WorkRecord, error) {
	now := db.Now()
	db.log.Debug("creating work log", zap.String("tags", tags), zap.Bool("replace", replace))

	var rec *models.WorkRecord
	err := db.withTx(ctx, "start", func(tx *sql.Tx) error {
		open, err := openRecord(ctx, tx)
		if err != nil {
			return err
		}
		if open != nil {
			if !replace {
				return ErrAlreadyTracking
			}
			if _, err := tx.ExecContext(ctx, `UPDATE work SET "end" = ? WHERE "end" IS NULL`, now.Unix()); err != nil {
				return dbErr("stop work", err)
			}
		}

		result, err := tx.ExecContext(ctx, "INSERT INTO work (tags, start) VALUES (?, ?)", tags, now.Unix())
		if err != nil {
			return dbErr("start work", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return dbErr("start work", err)
		}

		rec, err = getRecord(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Stop closes the open record and returns it
func (db *DB) Stop(ctx context.Context) (*models.WorkRecord, error) {
	now := db.Now()
	db.log.Debug("stopping work log")

	var rec *models.WorkRecord
	err := db.withTx(ctx, "stop", func(tx *sql.Tx) error {
		open, err := openRecord(ctx, tx)
		if err != nil {
			return err
		}
		if open == nil {
			return ErrNotTracking
		}

		if _, err := tx.ExecContext(ctx, `UPDATE work SET "end" = ? WHERE id = ?`, now.Unix(), open.ID); err != nil {
			return dbErr("stop work", err)
		}

		rec, err = getRecord(ctx, tx, open.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// IsTracking reports whether a record is open
func (db *DB) IsTracking(ctx context.Context) (bool, error) {
	var count int
	err := db.withTx(ctx, "is tracking", func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM work WHERE "end" IS NULL`).Scan(&count); err != nil {
			return dbErr("check tracking", err)
		}
		return nil
	})
	return count != 0, err
}

// Current returns the open record and how long it has been running
func (db *DB) Current(ctx context.Context) (*models.WorkRecord, time.Duration, error) {
	now := db.Now()

	var rec *models.WorkRecord
	err := db.withTx(ctx, "current", func(tx *sql.Tx) error {
		var err error
		rec, err = openRecord(ctx, tx)
		if err != nil {
			return err
		}
		if rec == nil {
			return ErrNotTracking
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return rec, rec.Duration(now), nil
}

// LastClosed returns the closed record with the latest end
func (db *DB) LastClosed(ctx context.Context) (*models.WorkRecord, error) {
	var rec *models.WorkRecord
	err := db.withTx(ctx, "last closed", func(tx *sql.Tx) error {
		id, err := lastClosedID(ctx, tx)
		if err != nil {
			return err
		}
		rec, err = getRecord(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Get retrieves a record by ID
func (db *DB) Get(ctx context.Context, id int64) (*models.WorkRecord, error) {
	var rec *models.WorkRecord
	err := db.withTx(ctx, "get", func(tx *sql.Tx) error {
		var err error
		rec, err = getRecord(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ResolveID maps a user supplied ID to an existing record. Zero means the most
// recently completed record.
func (db *DB) ResolveID(ctx context.Context, raw int64) (int64, error) {
	var id int64
	err := db.withTx(ctx, "resolve id", func(tx *sql.Tx) error {
		var err error
		id, err = resolveID(ctx, tx, raw)
		return err
	})
	return id, err
}

// Delete removes the record raw resolves to, open or not. It reports false when
// no such record exists.
func (db *DB) Delete(ctx context.Context, raw int64) (bool, error) {
	db.log.Debug("deleting work log", zap.Int64("id", raw))

	deleted := false
	err := db.withTx(ctx, "delete", func(tx *sql.Tx) error {
		id, err := resolveID(ctx, tx, raw)
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM work WHERE id = ?", id); err != nil {
			return dbErr("delete work", err)
		}
		deleted = true
		return nil
	})
	return deleted, err
}

// AmendTags replaces the tags of a record. It does not mark the record amended.
func (db *DB) AmendTags(ctx context.Context, id int64, tags string) error {
	db.log.Debug("amending tags", zap.Int64("id", id), zap.String("tags", tags))

	return db.withTx(ctx, "amend tags", func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, "UPDATE work SET tags = ? WHERE id = ?", tags, id)
		if err != nil {
			return dbErr("amend tags", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return dbErr("amend tags", err)
		}
		if n == 0 {
			return fmt.Errorf("%w: no work record with id %d", ErrNotFound, id)
		}
		return nil
	})
}

// AmendTime overwrites the start or end of a record and marks it amended.
// The new value is not checked against the other timestamp. Billed records are
// refused unless allowBilled is set.
func (db *DB) AmendTime(ctx context.Context, id int64, which models.Which, t time.Time, allowBilled bool) error {
	var column string
	switch which {
	case models.WhichStart:
		column = "start"
	case models.WhichEnd:
		column = `"end"`
	default:
		return fmt.Errorf("%w %q", ErrUnknownField, which)
	}

	db.log.Debug("amending timestamp", zap.Int64("id", id), zap.String("field", string(which)), zap.Time("time", t))

	return db.withTx(ctx, "amend time", func(tx *sql.Tx) error {
		rec, err := getRecord(ctx, tx, id)
		if err != nil {
			return err
		}
		if rec.Billed() && !allowBilled {
			return ErrAlreadyBilled
		}

		_, err = tx.ExecContext(ctx,
			"UPDATE work SET "+column+" = ?, amended = ? WHERE id = ?",
			t.Unix(), amendedMarker, id,
		)
		if err != nil {
			return dbErr("amend time", err)
		}
		return nil
	})
}

// List returns the records selected by q in ascending start order
func (db *DB) List(ctx context.Context, q LogQuery) (models.Log, error) {
	now := db.Now()
	log := models.Log{At: now}

	p, err := q.predicate(now)
	if err != nil {
		return log, err
	}

	where := p.where()
	db.log.Debug("work log filter", zap.String("range", string(q.Range)), zap.String("where", where), zap.Any("args", p.args))

	err = db.withTx(ctx, "list", func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `SELECT `+recordColumns+` FROM work `+where+` ORDER BY start ASC, id ASC`, p.args...)
		if err != nil {
			return dbErr("list work", err)
		}
		defer rows.Close()

		for rows.Next() {
			r, err := scanRecord(rows)
			if err != nil {
				return dbErr("list work", err)
			}
			log.Records = append(log.Records, r)
		}
		if err := rows.Err(); err != nil {
			return dbErr("list work", err)
		}
		return nil
	})
	return log, err
}
