package handlers

import (
	"context"
	"database/sql"

	"github.com/stretchr/testify/mock"

	"github.com/dayjournal/backend/internal/database"
	"github.com/dayjournal/backend/internal/models"
)

type MockEntryStore struct {
	mock.Mock
}

func (m *MockEntryStore) List(ctx context.Context) ([]models.JournalEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.JournalEntry), args.Error(1)
}

func (m *MockEntryStore) Create(ctx context.Context, title, content string) (models.JournalEntry, error) {
	args := m.Called(ctx, title, content)
	return args.Get(0).(models.JournalEntry), args.Error(1)
}

func (m *MockEntryStore) Update(ctx context.Context, id int64, title, content string) (models.JournalEntry, error) {
	args := m.Called(ctx, id, title, content)
	return args.Get(0).(models.JournalEntry), args.Error(1)
}

func (m *MockEntryStore) Delete(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

type MockDB struct {
	mock.Mock
}

func (m *MockDB) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockDB) Mode() database.Mode {
	return database.ModePooled
}

func (m *MockDB) Stats() sql.DBStats {
	return sql.DBStats{OpenConnections: 2, InUse: 1}
}
