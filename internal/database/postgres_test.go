package database

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dayjournal/backend/internal/config"
)

func unreachableConfig() config.DatabaseConfig {
	return config.DatabaseConfig{
		Variant:        config.VariantPostgres,
		Host:           "127.0.0.1",
		Port:           1,
		User:           "postgres",
		Password:       "postgres",
		Name:           config.DatabaseName,
		SSLMode:        "disable",
		PoolEnabled:    true,
		MinConns:       1,
		MaxConns:       10,
		AcquireTimeout: 2 * time.Second,
	}
}

func TestOpen_FallsBackToAdhoc(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	src, err := Open(context.Background(), unreachableConfig(), logger)
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, ModeAdhoc, src.Mode())
}

func TestOpen_PoolDisabled(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := unreachableConfig()
	cfg.PoolEnabled = false

	src, err := Open(context.Background(), cfg, logger)
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, ModeAdhoc, src.Mode())
}

func TestOpenPooled_Unreachable(t *testing.T) {
	_, err := OpenPooled(context.Background(), unreachableConfig())
	assert.ErrorContains(t, err, "initialize pool")
}

// silentServer accepts TCP connections and never answers the startup message.
func silentServer(t *testing.T) config.DatabaseConfig {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	var (
		mu    sync.Mutex
		conns []net.Conn
	)
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, c)
			mu.Unlock()
		}
	}()
	t.Cleanup(func() {
		ln.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, c := range conns {
			c.Close()
		}
	})

	_, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)

	cfg := unreachableConfig()
	cfg.Port, err = strconv.Atoi(port)
	require.NoError(t, err)
	cfg.AcquireTimeout = 200 * time.Millisecond
	return cfg
}

// within fails the test if fn has not returned after d.
func within(t *testing.T, d time.Duration, fn func() error) error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- fn() }()
	select {
	case err := <-done:
		return err
	case <-time.After(d):
		t.Fatalf("still blocked after %s", d)
		return nil
	}
}

func TestSilentServer(t *testing.T) {
	t.Run("ad-hoc acquire gives up", func(t *testing.T) {
		cfg := silentServer(t)
		src, err := OpenAdhoc(cfg)
		require.NoError(t, err)
		defer src.Close()

		err = within(t, 5*time.Second, func() error {
			return src.WithConn(context.Background(), func(ctx context.Context, conn *sql.Conn) error {
				return nil
			})
		})
		assert.Error(t, err)
	})

	t.Run("pool initialization gives up", func(t *testing.T) {
		cfg := silentServer(t)
		err := within(t, 5*time.Second, func() error {
			src, err := OpenPooled(context.Background(), cfg)
			if err == nil {
				src.Close()
			}
			return err
		})
		assert.ErrorContains(t, err, "initialize pool")
	})

	t.Run("open falls back to ad-hoc", func(t *testing.T) {
		cfg := silentServer(t)
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))

		var src *Source
		err := within(t, 5*time.Second, func() error {
			var err error
			src, err = Open(context.Background(), cfg, logger)
			return err
		})
		require.NoError(t, err)
		defer src.Close()
		assert.Equal(t, ModeAdhoc, src.Mode())
	})
}
