package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockSource(t *testing.T, mode Mode) (*Source, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSource(db, mode, time.Second), mock
}

func TestSource_WithConn_ReleasesConnection(t *testing.T) {
	src, mock := newMockSource(t, ModePooled)

	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"one"}).AddRow(1))

	err := src.WithConn(context.Background(), func(ctx context.Context, conn *sql.Conn) error {
		assert.Equal(t, 1, src.Stats().InUse)
		var one int
		return conn.QueryRowContext(ctx, "SELECT 1").Scan(&one)
	})

	assert.NoError(t, err)
	assert.Equal(t, 0, src.Stats().InUse)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSource_WithConn_ReleasesOnError(t *testing.T) {
	src, _ := newMockSource(t, ModeAdhoc)
	boom := errors.New("boom")

	err := src.WithConn(context.Background(), func(ctx context.Context, conn *sql.Conn) error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, src.Stats().InUse)
}

func TestSource_WithTx(t *testing.T) {
	t.Run("commits on success", func(t *testing.T) {
		src, mock := newMockSource(t, ModePooled)

		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM journal_entries").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := src.WithTx(context.Background(), func(ctx context.Context, tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, "DELETE FROM journal_entries WHERE id = $1", 1)
			return err
		})

		assert.NoError(t, err)
		assert.Equal(t, 0, src.Stats().InUse)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on error", func(t *testing.T) {
		src, mock := newMockSource(t, ModePooled)
		execErr := errors.New("value too long for type character varying(255)")

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO journal_entries").WillReturnError(execErr)
		mock.ExpectRollback()

		err := src.WithTx(context.Background(), func(ctx context.Context, tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, "INSERT INTO journal_entries (title) VALUES ($1)", "x")
			return err
		})

		assert.ErrorIs(t, err, execErr)
		assert.Equal(t, 0, src.Stats().InUse)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("keeps statement error when rollback fails", func(t *testing.T) {
		src, mock := newMockSource(t, ModePooled)
		fnErr := errors.New("statement failed")

		mock.ExpectBegin()
		mock.ExpectRollback().WillReturnError(errors.New("connection reset"))

		err := src.WithTx(context.Background(), func(ctx context.Context, tx *sql.Tx) error {
			return fnErr
		})

		assert.ErrorIs(t, err, fnErr)
		assert.Contains(t, err.Error(), "connection reset")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back and re-panics", func(t *testing.T) {
		src, mock := newMockSource(t, ModePooled)

		mock.ExpectBegin()
		mock.ExpectRollback()

		assert.PanicsWithValue(t, "kaboom", func() {
			_ = src.WithTx(context.Background(), func(ctx context.Context, tx *sql.Tx) error {
				panic("kaboom")
			})
		})

		assert.Equal(t, 0, src.Stats().InUse)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin failure", func(t *testing.T) {
		src, mock := newMockSource(t, ModePooled)

		mock.ExpectBegin().WillReturnError(errors.New("server closed the connection"))

		called := false
		err := src.WithTx(context.Background(), func(ctx context.Context, tx *sql.Tx) error {
			called = true
			return nil
		})

		assert.Error(t, err)
		assert.False(t, called)
		assert.Equal(t, 0, src.Stats().InUse)
	})

	t.Run("commit failure", func(t *testing.T) {
		src, mock := newMockSource(t, ModePooled)

		mock.ExpectBegin()
		mock.ExpectCommit().WillReturnError(errors.New("could not serialize access"))

		err := src.WithTx(context.Background(), func(ctx context.Context, tx *sql.Tx) error {
			return nil
		})

		assert.ErrorContains(t, err, "commit transaction")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSource_AcquireTimeout(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	db.SetMaxOpenConns(1)
	src := NewSource(db, ModePooled, 50*time.Millisecond)

	held, err := db.Conn(context.Background())
	require.NoError(t, err)

	err = src.WithConn(context.Background(), func(ctx context.Context, conn *sql.Conn) error {
		t.Fatal("callback must not run without a connection")
		return nil
	})
	assert.ErrorIs(t, err, ErrAcquireTimeout)

	require.NoError(t, held.Close())

	err = src.WithConn(context.Background(), func(ctx context.Context, conn *sql.Conn) error {
		return nil
	})
	assert.NoError(t, err)
}

func TestSource_AcquireCancelledContext(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	db.SetMaxOpenConns(1)
	src := NewSource(db, ModePooled, time.Second)

	held, err := db.Conn(context.Background())
	require.NoError(t, err)
	defer held.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = src.WithConn(ctx, func(ctx context.Context, conn *sql.Conn) error { return nil })
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrAcquireTimeout)
}

func TestSource_Warm(t *testing.T) {
	src, _ := newMockSource(t, ModePooled)

	require.NoError(t, src.warm(context.Background(), 3))
	assert.Equal(t, 0, src.Stats().InUse)
}
