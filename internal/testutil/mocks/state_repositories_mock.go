package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/notebot/internal/models"
)

// MockSnapshotRepository is a mock implementation of repository.SnapshotRepository
type MockSnapshotRepository struct {
	mock.Mock
}

func (m *MockSnapshotRepository) GetSnapshot(ctx context.Context, id string) ([]byte, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockSnapshotRepository) SaveSnapshot(ctx context.Context, id string, data []byte) error {
	args := m.Called(ctx, id, data)
	return args.Error(0)
}

// MockNoteRepository is a mock implementation of repository.NoteRepository
type MockNoteRepository struct {
	mock.Mock
}

func (m *MockNoteRepository) Insert(ctx context.Context, note models.Note) (int64, error) {
	args := m.Called(ctx, note)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNoteRepository) UpdateByMessage(ctx context.Context, chatID, messageID int64, data string) (bool, error) {
	args := m.Called(ctx, chatID, messageID, data)
	return args.Bool(0), args.Error(1)
}

// MockReminderRepository is a mock implementation of repository.ReminderRepository
type MockReminderRepository struct {
	mock.Mock
}

func (m *MockReminderRepository) Insert(ctx context.Context, reminder models.Reminder) (int64, error) {
	args := m.Called(ctx, reminder)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReminderRepository) ListByChat(ctx context.Context, chatID int64) ([]models.Reminder, error) {
	args := m.Called(ctx, chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Reminder), args.Error(1)
}
