//go:build integration

// Package testhelper starts a throwaway PostgreSQL server for integration tests.
package testhelper

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dayjournal/backend/internal/config"
	"github.com/dayjournal/backend/internal/database"
)

var (
	once      sync.Once
	sharedCfg config.DatabaseConfig
	initErr   error
)

// SetupTestDB starts a shared PostgreSQL container (once per test binary),
// provisions journal_db with its schema and returns a pooled Source on it.
// The source is closed via t.Cleanup; the container lives until the process exits.
func SetupTestDB(t *testing.T) *database.Source {
	t.Helper()

	cfg := Config(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	src, err := database.OpenPooled(ctx, cfg)
	if err != nil {
		t.Fatalf("testhelper: open pool: %v", err)
	}
	t.Cleanup(func() { src.Close() })

	err = src.WithConn(ctx, func(ctx context.Context, conn *sql.Conn) error {
		_, err := conn.ExecContext(ctx, "TRUNCATE journal_entries RESTART IDENTITY")
		return err
	})
	if err != nil {
		t.Fatalf("testhelper: truncate: %v", err)
	}

	return src
}

// Config returns the connection settings of the shared container.
func Config(t *testing.T) config.DatabaseConfig {
	t.Helper()

	once.Do(func() {
		sharedCfg, initErr = startContainerAndProvision()
	})
	if initErr != nil {
		t.Fatalf("testhelper: failed to setup test DB: %v", initErr)
	}
	return sharedCfg
}

// Logger discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startContainerAndProvision() (config.DatabaseConfig, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:17-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_DB":       "postgres",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return config.DatabaseConfig{}, fmt.Errorf("start container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return config.DatabaseConfig{}, fmt.Errorf("get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return config.DatabaseConfig{}, fmt.Errorf("get mapped port: %w", err)
	}
	portNum, err := strconv.Atoi(port.Port())
	if err != nil {
		return config.DatabaseConfig{}, fmt.Errorf("parse mapped port: %w", err)
	}

	cfg := config.DatabaseConfig{
		Variant:         config.VariantPostgres,
		Host:            host,
		Port:            portNum,
		User:            "postgres",
		Password:        "postgres",
		Name:            config.DatabaseName,
		SSLMode:         "disable",
		PoolEnabled:     true,
		MinConns:        1,
		MaxConns:        10,
		AcquireTimeout:  5 * time.Second,
		ConnMaxLifetime: 30 * time.Minute,
	}

	if _, err := database.EnsureDatabase(ctx, cfg); err != nil {
		return config.DatabaseConfig{}, fmt.Errorf("ensure database: %w", err)
	}

	src, err := database.OpenPooled(ctx, cfg)
	if err != nil {
		return config.DatabaseConfig{}, fmt.Errorf("open pool: %w", err)
	}
	defer src.Close()

	if err := database.EnsureSchema(ctx, src); err != nil {
		return config.DatabaseConfig{}, fmt.Errorf("ensure schema: %w", err)
	}

	return cfg, nil
}
