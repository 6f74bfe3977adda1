package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/dayjournal/backend/internal/config"
)

// Open returns a pooled Source when pooling is enabled and the pool can be
// initialized. If pool initialization fails the service keeps running on
// ad-hoc connections.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*Source, error) {
	if cfg.PoolEnabled {
		src, err := OpenPooled(ctx, cfg)
		if err == nil {
			logger.Info("connection pool initialized",
				slog.Int("min_conns", cfg.MinConns),
				slog.Int("max_conns", cfg.MaxConns),
				slog.String("variant", string(cfg.Variant)),
			)
			return src, nil
		}
		logger.Warn("could not initialize connection pool, falling back to per-request connections",
			slog.String("error", err.Error()),
		)
	}

	src, err := OpenAdhoc(cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("using per-request database connections", slog.String("variant", string(cfg.Variant)))
	return src, nil
}

// OpenPooled creates a bounded pool of at most cfg.MaxConns connections and
// opens cfg.MinConns of them up front.
func OpenPooled(ctx context.Context, cfg config.DatabaseConfig) (*Source, error) {
	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.MaxConns)
	db.SetMaxIdleConns(cfg.MaxConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	src := NewSource(db, ModePooled, cfg.AcquireTimeout)
	if err := src.warm(ctx, cfg.MinConns); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize pool: %w", err)
	}
	return src, nil
}

// OpenAdhoc returns a Source that never keeps idle connections, so each
// acquisition dials the server and each release hangs up.
func OpenAdhoc(cfg config.DatabaseConfig) (*Source, error) {
	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(0)

	return NewSource(db, ModeAdhoc, cfg.AcquireTimeout), nil
}

func openDB(cfg config.DatabaseConfig) (*sql.DB, error) {
	connector, err := pq.NewConnector(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	return sql.OpenDB(connector), nil
}
