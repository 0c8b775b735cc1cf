package models

import "time"

// Note is a free-text entry saved from a chat message.
type Note struct {
	ID        int64     `json:"id"`
	ChatID    int64     `json:"chat_id" validate:"required"`
	MessageID int64     `json:"message_id"`
	AuthorID  int64     `json:"author_id"`
	Data      string    `json:"data" validate:"required"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
