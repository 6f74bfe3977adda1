package database

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/dayjournal/backend/internal/config"
)

// NewRedis connects to Redis. It returns nil when Redis is not configured or
// does not answer, and callers treat a nil client as "run without Redis".
func NewRedis(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) *redis.Client {
	if !cfg.Enabled() {
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis connection failed, continuing without redis", slog.String("error", err.Error()))
		rdb.Close()
		return nil
	}

	logger.Info("redis connection established", slog.String("addr", cfg.Addr))
	return rdb
}
