package db

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

//go:embed schema.sql
var schema string

const (
	// DefaultBillRef is stored when work is billed without a reference
	DefaultBillRef = "yes"

	amendedMarker = "yes"
)

// DB wraps the database connection
type DB struct {
	*sql.DB
	now func() time.Time
	log *zap.Logger
}

// Option configures a DB
type Option func(*DB)

// WithClock replaces the wall clock used for "now"
func WithClock(now func() time.Time) Option {
	return func(db *DB) {
		db.now = now
	}
}

// WithLogger attaches a trace logger. Without one the store is silent.
func WithLogger(log *zap.Logger) Option {
	return func(db *DB) {
		if log != nil {
			db.log = log
		}
	}
}

// New opens the database at path, creating its directory and the schema if needed
func New(path string, opts ...Option) (*DB, error) {
	if path == "" {
		return nil, dbErr("open", errors.New("path is empty"))
	}

	db := &DB{now: time.Now, log: zap.NewNop()}
	for _, opt := range opts {
		opt(db)
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, dbErr("create directory", err)
		}
	}

	db.log.Debug("connecting to database", zap.String("path", path))

	conn, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, dbErr("open "+path, err)
	}
	// one interactive invocation at a time; also keeps :memory: on a single connection
	conn.SetMaxOpenConns(1)

	if err := conn.PingContext(context.Background()); err != nil {
		conn.Close()
		return nil, dbErr("open "+path, err)
	}

	db.DB = conn

	err = db.withTx(context.Background(), "init", func(tx *sql.Tx) error {
		if _, err := tx.Exec(schema); err != nil {
			return dbErr("create schema", err)
		}
		return nil
	})
	if err != nil {
		conn.Close()
		return nil, err
	}

	return db, nil
}

// Now returns the store's current instant, truncated to whole seconds
func (db *DB) Now() time.Time {
	n := db.now()
	return time.Unix(n.Unix(), 0).In(n.Location())
}

// unixTime scans a timestamp column. Values may come back as integers or, for
// columns declared TIMESTAMP, already converted to time.Time by the driver.
type unixTime struct {
	t     time.Time
	valid bool
}

func (u *unixTime) Scan(v any) error {
	switch x := v.(type) {
	case nil:
		u.t, u.valid = time.Time{}, false
	case int64:
		u.t, u.valid = time.Unix(x, 0), true
	case float64:
		u.t, u.valid = time.Unix(int64(x), 0), true
	case time.Time:
		u.t, u.valid = time.Unix(x.Unix(), 0), true
	default:
		return fmt.Errorf("unsupported timestamp value %T", v)
	}
	return nil
}
