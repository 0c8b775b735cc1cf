package models

import "time"

const (
	DefaultEaseFactor = 2.5
	MinEaseFactor     = 1.3
)

// Flashcard is a spaced-repetition item captured from a chat. Back is nil until
// the second side of the conversation arrives.
type Flashcard struct {
	ID               int64     `json:"id"`
	ChatID           int64     `json:"chat_id" validate:"required"`
	AuthorID         int64     `json:"author_id"`
	Front            string    `json:"front" validate:"required"`
	Back             *string   `json:"back"`
	FrontMessageID   int64     `json:"front_message_id"`
	BackMessageID    *int64    `json:"back_message_id"`
	IntervalDays     int       `json:"interval_days" validate:"gte=0"`
	Repetition       int       `json:"repetition" validate:"gte=0"`
	EaseFactor       float64   `json:"ease_factor" validate:"gt=0"`
	DueAt            time.Time `json:"due_at" validate:"required"`
	DisplayMessageID *int64    `json:"display_message_id"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// NewFlashcard returns a front-only card that is due immediately.
func NewFlashcard(chatID, authorID, frontMessageID int64, front string, now time.Time) Flashcard {
	return Flashcard{
		ChatID:         chatID,
		AuthorID:       authorID,
		Front:          front,
		FrontMessageID: frontMessageID,
		EaseFactor:     DefaultEaseFactor,
		DueAt:          now.UTC(),
	}
}

// Complete reports whether both sides have been captured.
func (c Flashcard) Complete() bool {
	return c.Front != "" && c.Back != nil
}

// ReviewHistory records one quality grade given to a flashcard.
type ReviewHistory struct {
	ID          int64     `json:"id"`
	FlashcardID int64     `json:"flashcard_id" validate:"required"`
	Quality     int       `json:"quality" validate:"gte=0,lte=5"`
	ReviewedAt  time.Time `json:"reviewed_at"`
}
