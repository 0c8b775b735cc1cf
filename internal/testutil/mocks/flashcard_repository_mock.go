package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/notebot/internal/models"
)

// MockFlashcardRepository is a mock implementation of repository.FlashcardRepository
type MockFlashcardRepository struct {
	mock.Mock
}

func (m *MockFlashcardRepository) Get(ctx context.Context, id int64) (*models.Flashcard, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Flashcard), args.Error(1)
}

func (m *MockFlashcardRepository) Upsert(ctx context.Context, card models.Flashcard) (int64, error) {
	args := m.Called(ctx, card)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFlashcardRepository) DueFlashcards(ctx context.Context, chatID int64, now time.Time, limit int) ([]models.Flashcard, error) {
	args := m.Called(ctx, chatID, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Flashcard), args.Error(1)
}

func (m *MockFlashcardRepository) FindByDisplayMessage(ctx context.Context, chatID, messageID int64) (*models.Flashcard, error) {
	args := m.Called(ctx, chatID, messageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Flashcard), args.Error(1)
}

func (m *MockFlashcardRepository) FindBySourceMessage(ctx context.Context, chatID, messageID int64) (*models.Flashcard, error) {
	args := m.Called(ctx, chatID, messageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Flashcard), args.Error(1)
}

func (m *MockFlashcardRepository) SetDisplayMessage(ctx context.Context, id, messageID int64) error {
	args := m.Called(ctx, id, messageID)
	return args.Error(0)
}

func (m *MockFlashcardRepository) RecordReview(ctx context.Context, card models.Flashcard, quality int, reviewedAt time.Time) error {
	args := m.Called(ctx, card, quality, reviewedAt)
	return args.Error(0)
}
