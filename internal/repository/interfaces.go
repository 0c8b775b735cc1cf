package repository

import (
	"context"
	"errors"
	"time"

	"github.com/vytor/notebot/internal/models"
)

// Lookups that find nothing return a nil pointer and a nil error.

// ErrDuplicate is returned when a create would replace an existing row.
var ErrDuplicate = errors.New("repository: row already exists")

// FlashcardRepository handles flashcard data access
type FlashcardRepository interface {
	Get(ctx context.Context, id int64) (*models.Flashcard, error)
	// Upsert inserts the card when ID is zero and updates it otherwise,
	// returning the card's ID.
	Upsert(ctx context.Context, card models.Flashcard) (int64, error)
	// DueFlashcards returns complete cards of a chat due at or before now,
	// oldest due date first.
	DueFlashcards(ctx context.Context, chatID int64, now time.Time, limit int) ([]models.Flashcard, error)
	// FindByDisplayMessage finds the card last shown to the chat as messageID.
	FindByDisplayMessage(ctx context.Context, chatID, messageID int64) (*models.Flashcard, error)
	// FindBySourceMessage finds the card whose front or back came from messageID.
	FindBySourceMessage(ctx context.Context, chatID, messageID int64) (*models.Flashcard, error)
	// SetDisplayMessage records messageID as the card's display reference and
	// touches no other column.
	SetDisplayMessage(ctx context.Context, id, messageID int64) error
	// RecordReview stores the rescheduled card and its review history entry
	// atomically and clears the display reference, so one display takes one
	// grade. A card whose display reference changed since it was read fails
	// with sql.ErrNoRows.
	RecordReview(ctx context.Context, card models.Flashcard, quality int, reviewedAt time.Time) error
}

// InteractionRepository handles per-chat conversation state
type InteractionRepository interface {
	Get(ctx context.Context, chatID int64) (*models.Interaction, error)
	// Create inserts a new interaction and fails with ErrDuplicate if the chat
	// already has one.
	Create(ctx context.Context, interaction models.Interaction) error
	// Upsert writes a forward transition of an existing interaction.
	Upsert(ctx context.Context, interaction models.Interaction) error
	Delete(ctx context.Context, chatID int64) error
}

// SnapshotRepository stores opaque state machine snapshots keyed by machine ID
type SnapshotRepository interface {
	GetSnapshot(ctx context.Context, id string) ([]byte, error)
	SaveSnapshot(ctx context.Context, id string, data []byte) error
}

// NoteRepository handles free-text notes
type NoteRepository interface {
	Insert(ctx context.Context, note models.Note) (int64, error)
	// UpdateByMessage rewrites the note captured from messageID and reports
	// whether one existed.
	UpdateByMessage(ctx context.Context, chatID, messageID int64, data string) (bool, error)
}

// ReminderRepository handles saved reminders
type ReminderRepository interface {
	Insert(ctx context.Context, reminder models.Reminder) (int64, error)
	ListByChat(ctx context.Context, chatID int64) ([]models.Reminder, error)
}
