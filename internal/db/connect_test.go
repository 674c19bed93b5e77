package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMem(t *testing.T) *sql.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	h, err := Open(context.Background(), DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func TestOpenCreatesSchema(t *testing.T) {
	h := openMem(t)
	for _, tbl := range []string{"students", "teachers", "class_assignments", "topic_mastery", "assessments", "exercise_sets", "event_log"} {
		var name string
		err := h.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=$1`, tbl).Scan(&name)
		require.NoError(t, err, tbl)
	}
	// idempotent
	require.NoError(t, EnsureSchema(context.Background(), h, DriverSQLite))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Driver("mysql"), "")
	require.Error(t, err)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	h := openMem(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := WithTx(ctx, h, nil, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO event_log (typ,key,data,created_at) VALUES ('t','k','{}',1)`); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var n int
	require.NoError(t, h.QueryRow(`SELECT COUNT(*) FROM event_log`).Scan(&n))
	assert.Equal(t, 0, n)
}

func TestWithTxCommits(t *testing.T) {
	h := openMem(t)
	ctx := context.Background()

	err := WithTx(ctx, h, nil, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO event_log (typ,key,data,created_at) VALUES ('t','k','{}',1)`)
		return err
	})
	require.NoError(t, err)

	var n int
	require.NoError(t, h.QueryRow(`SELECT COUNT(*) FROM event_log`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestWithTxRollsBackOnPanic(t *testing.T) {
	h := openMem(t)
	ctx := context.Background()

	assert.Panics(t, func() {
		_ = WithTx(ctx, h, nil, func(tx *sql.Tx) error {
			_, _ = tx.ExecContext(ctx, `INSERT INTO event_log (typ,key,data,created_at) VALUES ('t','k','{}',1)`)
			panic("kaboom")
		})
	})

	var n int
	require.NoError(t, h.QueryRow(`SELECT COUNT(*) FROM event_log`).Scan(&n))
	assert.Equal(t, 0, n)
}
