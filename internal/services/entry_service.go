package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/dayjournal/backend/internal/audit"
	"github.com/dayjournal/backend/internal/database"
	"github.com/dayjournal/backend/internal/models"
)

// ErrEntryNotFound is returned when no entry has the requested id.
var ErrEntryNotFound = errors.New("entry not found")

const entriesTable = "journal_entries"

var entryColumns = []string{"id", "title", "content", "created_at", "updated_at"}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type EntryService struct {
	src   *database.Source
	audit *audit.Logger
}

func NewEntryService(src *database.Source, auditLogger *audit.Logger) *EntryService {
	return &EntryService{src: src, audit: auditLogger}
}

// List returns every entry, newest first.
func (s *EntryService) List(ctx context.Context) ([]models.JournalEntry, error) {
	query, args, err := psql.Select(entryColumns...).
		From(entriesTable).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	entries := make([]models.JournalEntry, 0)
	err = s.src.WithConn(ctx, func(ctx context.Context, conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("list entries: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			entry, err := scanEntry(rows)
			if err != nil {
				return fmt.Errorf("scan entry: %w", err)
			}
			entries = append(entries, entry)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Create inserts an entry and returns the stored row. Timestamps come from
// the column defaults.
func (s *EntryService) Create(ctx context.Context, title, content string) (models.JournalEntry, error) {
	query, args, err := psql.Insert(entriesTable).
		Columns("title", "content").
		Values(title, content).
		Suffix("RETURNING " + returningColumns()).
		ToSql()
	if err != nil {
		return models.JournalEntry{}, fmt.Errorf("build insert query: %w", err)
	}

	var entry models.JournalEntry
	err = s.src.WithTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		row, err := scanEntry(tx.QueryRowContext(ctx, query, args...))
		if err != nil {
			return fmt.Errorf("create entry: %w", err)
		}
		entry = row
		return nil
	})
	if err != nil {
		return models.JournalEntry{}, err
	}

	s.audit.EntryCreated(ctx, entry.ID, entry.Title)
	return entry, nil
}

// Update replaces title and content of an existing entry and refreshes
// updated_at.
func (s *EntryService) Update(ctx context.Context, id int64, title, content string) (models.JournalEntry, error) {
	query, args, err := psql.Update(entriesTable).
		Set("title", title).
		Set("content", content).
		Set("updated_at", sq.Expr("CURRENT_TIMESTAMP")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + returningColumns()).
		ToSql()
	if err != nil {
		return models.JournalEntry{}, fmt.Errorf("build update query: %w", err)
	}

	var entry models.JournalEntry
	err = s.src.WithTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		row, err := scanEntry(tx.QueryRowContext(ctx, query, args...))
		if errors.Is(err, sql.ErrNoRows) {
			return ErrEntryNotFound
		}
		if err != nil {
			return fmt.Errorf("update entry %d: %w", id, err)
		}
		entry = row
		return nil
	})
	if err != nil {
		return models.JournalEntry{}, err
	}

	s.audit.EntryUpdated(ctx, entry.ID, entry.Title)
	return entry, nil
}

// Delete removes an entry and returns its id.
func (s *EntryService) Delete(ctx context.Context, id int64) (int64, error) {
	query, args, err := psql.Delete(entriesTable).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete query: %w", err)
	}

	var deletedID int64
	err = s.src.WithTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, query, args...).Scan(&deletedID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrEntryNotFound
		}
		if err != nil {
			return fmt.Errorf("delete entry %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.audit.EntryDeleted(ctx, deletedID)
	return deletedID, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (models.JournalEntry, error) {
	var (
		e         models.JournalEntry
		createdAt sql.NullTime
		updatedAt sql.NullTime
	)
	if err := row.Scan(&e.ID, &e.Title, &e.Content, &createdAt, &updatedAt); err != nil {
		return models.JournalEntry{}, err
	}
	e.CreatedAt = createdAt.Time
	e.UpdatedAt = updatedAt.Time
	return e, nil
}

func returningColumns() string {
	return strings.Join(entryColumns, ", ")
}
