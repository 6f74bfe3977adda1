package database

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dayjournal/backend/internal/config"
)

func TestNewRedis(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("disabled", func(t *testing.T) {
		assert.Nil(t, NewRedis(context.Background(), config.RedisConfig{}, logger))
	})

	t.Run("unreachable", func(t *testing.T) {
		rdb := NewRedis(context.Background(), config.RedisConfig{Addr: "127.0.0.1:1"}, logger)
		assert.Nil(t, rdb)
	})
}
