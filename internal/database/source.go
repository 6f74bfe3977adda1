package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrAcquireTimeout is returned when no connection became available within the
// source's acquire timeout.
var ErrAcquireTimeout = errors.New("timed out waiting for a database connection")

// Mode describes how a Source hands out connections.
type Mode string

const (
	// ModePooled reuses up to MaxConns connections; releasing returns a
	// connection to the pool.
	ModePooled Mode = "pooled"
	// ModeAdhoc dials a new connection for every acquisition and closes it on
	// release.
	ModeAdhoc Mode = "adhoc"
)

// Source hands out scoped database connections. Every connection obtained
// through WithConn or WithTx is released when the callback returns, whichever
// way it returns.
type Source struct {
	db             *sql.DB
	mode           Mode
	acquireTimeout time.Duration
}

// NewSource wraps an already opened *sql.DB. The caller is responsible for
// configuring db according to mode.
func NewSource(db *sql.DB, mode Mode, acquireTimeout time.Duration) *Source {
	return &Source{db: db, mode: mode, acquireTimeout: acquireTimeout}
}

func (s *Source) Mode() Mode { return s.mode }

func (s *Source) Stats() sql.DBStats { return s.db.Stats() }

// Ping checks that the database is reachable.
func (s *Source) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Source) Close() error {
	return s.db.Close()
}

// WithConn acquires one connection, runs fn with it and releases it.
func (s *Source) WithConn(ctx context.Context, fn func(ctx context.Context, conn *sql.Conn) error) error {
	conn, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	return fn(ctx, conn)
}

// WithTx runs fn inside a transaction on a scoped connection. The transaction
// is committed when fn returns nil and rolled back when fn returns an error or
// panics. The connection is released afterwards in every case.
func (s *Source) WithTx(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error {
	return s.WithConn(ctx, func(ctx context.Context, conn *sql.Conn) error {
		tx, err := conn.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}

		defer func() {
			if r := recover(); r != nil {
				_ = tx.Rollback()
				panic(r)
			}
		}()

		if err := fn(ctx, tx); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				return fmt.Errorf("%w (rollback: %v)", err, rbErr)
			}
			return err
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
		return nil
	})
}

func (s *Source) acquire(ctx context.Context) (*sql.Conn, error) {
	actx, cancel := context.WithTimeout(ctx, s.acquireTimeout)
	defer cancel()

	conn, err := s.db.Conn(actx)
	if err != nil {
		// Only our own deadline counts as an acquire timeout; a cancelled
		// request context is reported as is.
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("%w after %s", ErrAcquireTimeout, s.acquireTimeout)
		}
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return conn, nil
}

// warm opens n connections at once and parks them idle in the pool.
func (s *Source) warm(ctx context.Context, n int) error {
	if n <= 0 {
		return s.db.PingContext(ctx)
	}

	conns := make([]*sql.Conn, 0, n)
	defer func() {
		for _, c := range conns {
			c.Close()
		}
	}()

	for i := 0; i < n; i++ {
		c, err := s.acquire(ctx)
		if err != nil {
			return err
		}
		conns = append(conns, c)
		if err := c.PingContext(ctx); err != nil {
			return fmt.Errorf("ping: %w", err)
		}
	}
	return nil
}
