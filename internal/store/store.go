// Package store is the SQL persistence layer for students, teachers,
// mastery records and assessments. Queries use $n placeholders, which both
// the pgx and modernc sqlite drivers accept.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mind-engage/mindengage-adaptive/internal/db"
	"github.com/mind-engage/mindengage-adaptive/internal/events"
)

var (
	ErrNotFound = errors.New("store: not found")
	// ErrConflict reports a unique-key collision or a stale version.
	ErrConflict = errors.New("store: conflict")
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store runs queries against a *sql.DB, or against a *sql.Tx when obtained
// through WithTx.
type Store struct {
	db     *sql.DB
	q      querier
	driver db.Driver
	inTx   bool
}

func New(h *sql.DB, driver db.Driver) *Store {
	return &Store{db: h, q: h, driver: driver}
}

// WithTx runs fn with a Store bound to one transaction. Nested calls reuse
// the outer transaction.
func (s *Store) WithTx(ctx context.Context, fn func(*Store) error) error {
	if s.inTx {
		return fn(s)
	}
	return db.WithTx(ctx, s.db, nil, func(tx *sql.Tx) error {
		return fn(&Store{db: s.db, q: tx, driver: s.driver, inTx: true})
	})
}

// AppendEvent writes to the event log on the store's connection or transaction.
func (s *Store) AppendEvent(ctx context.Context, typ, key string, data any) error {
	return events.Append(ctx, s.q, typ, key, data)
}

func (s *Store) Events(ctx context.Context, after int64, limit int) ([]events.Event, error) {
	return events.List(ctx, s.q, after, limit)
}

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// oneRow turns an exec result that touched no rows into ErrNotFound.
func oneRow(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return wrap(op, err)
	}
	if n == 0 {
		return wrap(op, sql.ErrNoRows)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var sqErr *sqlite.Error
	if errors.As(err, &sqErr) {
		switch sqErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		case sqlite3.SQLITE_CONSTRAINT:
			return strings.Contains(sqErr.Error(), "UNIQUE")
		}
	}
	return false
}

func ms(t time.Time) int64 { return t.UnixMilli() }

func fromMS(v int64) time.Time { return time.UnixMilli(v).UTC() }

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("%s: %w", op, ErrConflict)
	}
	return fmt.Errorf("%s: %w", op, err)
}
