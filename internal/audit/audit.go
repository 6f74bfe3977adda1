// Package audit records one structured event per committed journal mutation.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const (
	EventEntryCreated = "entry.created"
	EventEntryUpdated = "entry.updated"
	EventEntryDeleted = "entry.deleted"
)

type Event struct {
	ID        string            `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	EventType string            `json:"event_type"`
	EntryID   int64             `json:"entry_id"`
	Status    string            `json:"status"`
	Details   map[string]string `json:"details,omitempty"`
}

type Logger struct {
	logger *slog.Logger
	now    func() time.Time
}

func NewLogger(logger *slog.Logger) *Logger {
	return &Logger{logger: logger.With(slog.String("component", "audit")), now: time.Now}
}

func (a *Logger) EntryCreated(ctx context.Context, entryID int64, title string) Event {
	return a.log(ctx, EventEntryCreated, entryID, map[string]string{"title": title})
}

func (a *Logger) EntryUpdated(ctx context.Context, entryID int64, title string) Event {
	return a.log(ctx, EventEntryUpdated, entryID, map[string]string{"title": title})
}

func (a *Logger) EntryDeleted(ctx context.Context, entryID int64) Event {
	return a.log(ctx, EventEntryDeleted, entryID, nil)
}

func (a *Logger) log(ctx context.Context, eventType string, entryID int64, details map[string]string) Event {
	event := Event{
		ID:        uuid.NewString(),
		Timestamp: a.now().UTC(),
		EventType: eventType,
		EntryID:   entryID,
		Status:    "SUCCESS",
		Details:   details,
	}

	attrs := []any{
		slog.String("audit_id", event.ID),
		slog.String("event_type", event.EventType),
		slog.Int64("entry_id", event.EntryID),
		slog.String("status", event.Status),
		slog.Time("timestamp", event.Timestamp),
	}
	for k, v := range event.Details {
		attrs = append(attrs, slog.String(k, v))
	}

	a.logger.InfoContext(ctx, "AUDIT", attrs...)
	return event
}
