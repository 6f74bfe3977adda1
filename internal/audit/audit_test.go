package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(buf *bytes.Buffer) *Logger {
	a := NewLogger(slog.New(slog.NewJSONHandler(buf, nil)))
	a.now = func() time.Time { return time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC) }
	return a
}

func TestLogger_EntryCreated(t *testing.T) {
	var buf bytes.Buffer
	a := newTestLogger(&buf)

	event := a.EntryCreated(context.Background(), 7, "Day 1")

	_, err := uuid.Parse(event.ID)
	assert.NoError(t, err)
	assert.Equal(t, EventEntryCreated, event.EventType)
	assert.Equal(t, int64(7), event.EntryID)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "AUDIT", line["msg"])
	assert.Equal(t, "audit", line["component"])
	assert.Equal(t, "entry.created", line["event_type"])
	assert.Equal(t, float64(7), line["entry_id"])
	assert.Equal(t, "Day 1", line["title"])
	assert.Equal(t, event.ID, line["audit_id"])
}

func TestLogger_EventIDsAreUnique(t *testing.T) {
	var buf bytes.Buffer
	a := newTestLogger(&buf)

	first := a.EntryDeleted(context.Background(), 1)
	second := a.EntryDeleted(context.Background(), 1)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, EventEntryDeleted, first.EventType)
	assert.Nil(t, first.Details)
}

func TestLogger_EntryUpdated(t *testing.T) {
	var buf bytes.Buffer
	a := newTestLogger(&buf)

	event := a.EntryUpdated(context.Background(), 3, "Revised")

	assert.Equal(t, EventEntryUpdated, event.EventType)
	assert.Equal(t, "Revised", event.Details["title"])
	assert.Contains(t, buf.String(), `"event_type":"entry.updated"`)
}
