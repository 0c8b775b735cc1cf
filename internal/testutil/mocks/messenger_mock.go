package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockMessenger is a mock implementation of telegram.Messenger
type MockMessenger struct {
	mock.Mock
}

func (m *MockMessenger) SendText(ctx context.Context, chatID int64, text string) (int64, error) {
	args := m.Called(ctx, chatID, text)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMessenger) ReplyText(ctx context.Context, chatID, replyTo int64, text string) (int64, error) {
	args := m.Called(ctx, chatID, replyTo, text)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMessenger) SetReaction(ctx context.Context, chatID, messageID int64, emoji string) error {
	args := m.Called(ctx, chatID, messageID, emoji)
	return args.Error(0)
}
