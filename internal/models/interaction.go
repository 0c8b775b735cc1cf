package models

import "time"

// InteractionState is the step a flashcard capture conversation is waiting on.
type InteractionState string

const (
	AwaitingFront InteractionState = "awaiting_front"
	AwaitingBack  InteractionState = "awaiting_back"
)

// Interaction tracks an in-progress flashcard capture. There is at most one per chat.
type Interaction struct {
	ChatID          int64            `json:"chat_id" validate:"required"`
	AnchorMessageID int64            `json:"anchor_message_id"`
	State           InteractionState `json:"state" validate:"oneof=awaiting_front awaiting_back"`
	FlashcardID     *int64           `json:"flashcard_id" validate:"required_if=State awaiting_back"`
	CreatedAt       time.Time        `json:"created_at"`
}
