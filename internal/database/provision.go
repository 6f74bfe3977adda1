package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/dayjournal/backend/internal/config"
)

// EnsureDatabase connects to the server's maintenance database and creates
// cfg.Name if it is missing. It reports whether the database was created.
func EnsureDatabase(ctx context.Context, cfg config.DatabaseConfig) (bool, error) {
	db, err := openDB(cfg.WithName(cfg.MaintenanceDatabase()))
	if err != nil {
		return false, err
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return false, fmt.Errorf("error connecting to database: %w", err)
	}

	return createDatabase(ctx, db, cfg.Name)
}

func createDatabase(ctx context.Context, db *sql.DB, name string) (bool, error) {
	var exists int
	err := db.QueryRowContext(ctx, `SELECT 1 FROM pg_database WHERE datname = $1`, name).Scan(&exists)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("check database %s: %w", name, err)
	}

	// CREATE DATABASE takes no bind parameters and cannot run in a transaction.
	if _, err := db.ExecContext(ctx, "CREATE DATABASE "+pq.QuoteIdentifier(name)); err != nil {
		return false, fmt.Errorf("create database %s: %w", name, err)
	}
	return true, nil
}
