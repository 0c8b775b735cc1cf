package telegram

import "context"

// Messenger defines outbound Bot API operations.
// This interface enables testability by allowing mock implementations.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string) (int64, error)
	ReplyText(ctx context.Context, chatID, replyTo int64, text string) (int64, error)
	SetReaction(ctx context.Context, chatID, messageID int64, emoji string) error
}

// Ensure Client implements the interface
var _ Messenger = (*Client)(nil)
