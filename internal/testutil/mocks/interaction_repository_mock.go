package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/notebot/internal/models"
)

// MockInteractionRepository is a mock implementation of repository.InteractionRepository
type MockInteractionRepository struct {
	mock.Mock
}

func (m *MockInteractionRepository) Get(ctx context.Context, chatID int64) (*models.Interaction, error) {
	args := m.Called(ctx, chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Interaction), args.Error(1)
}

func (m *MockInteractionRepository) Create(ctx context.Context, interaction models.Interaction) error {
	args := m.Called(ctx, interaction)
	return args.Error(0)
}

func (m *MockInteractionRepository) Upsert(ctx context.Context, interaction models.Interaction) error {
	args := m.Called(ctx, interaction)
	return args.Error(0)
}

func (m *MockInteractionRepository) Delete(ctx context.Context, chatID int64) error {
	args := m.Called(ctx, chatID)
	return args.Error(0)
}
