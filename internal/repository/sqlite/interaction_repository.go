package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vytor/notebot/internal/logger"
	"github.com/vytor/notebot/internal/models"
	"github.com/vytor/notebot/internal/repository"
)

type interactionRepository struct {
	db *sql.DB
}

// NewInteractionRepository creates a new InteractionRepository implementation
func NewInteractionRepository(db *sql.DB) repository.InteractionRepository {
	return &interactionRepository{db: db}
}

func (r *interactionRepository) Get(ctx context.Context, chatID int64) (*models.Interaction, error) {
	log := logger.FromContext(ctx).WithPrefix("interaction_repo")
	log.Debug("getting interaction: chat_id=%d", chatID)

	var (
		i           models.Interaction
		state       string
		flashcardID sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, `
SELECT chat_id, anchor_message_id, state, flashcard_id, created_at
FROM interactions
WHERE chat_id = ?
`, chatID).Scan(&i.ChatID, &i.AnchorMessageID, &state, &flashcardID, &i.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("no active interaction: chat_id=%d", chatID)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get interaction: %v", err)
		return nil, err
	}
	i.State = models.InteractionState(state)
	i.FlashcardID = nullInt64(flashcardID)

	if err := models.Validate(i); err != nil {
		log.Warn("malformed interaction row: chat_id=%d: %v", chatID, err)
		return nil, fmt.Errorf("malformed interaction for chat %d: %w", chatID, err)
	}
	return &i, nil
}

func (r *interactionRepository) Create(ctx context.Context, i models.Interaction) error {
	log := logger.FromContext(ctx).WithPrefix("interaction_repo")
	log.Debug("creating interaction: chat_id=%d, state=%s", i.ChatID, i.State)

	if err := models.Validate(i); err != nil {
		return fmt.Errorf("invalid interaction: %w", err)
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO interactions (chat_id, anchor_message_id, state, flashcard_id, created_at)
VALUES (?, ?, ?, ?, ?)
`, i.ChatID, i.AnchorMessageID, string(i.State), i.FlashcardID, i.CreatedAt.UTC())
	if isConstraintViolation(err) {
		log.Debug("interaction already exists: chat_id=%d", i.ChatID)
		return fmt.Errorf("interaction for chat %d: %w", i.ChatID, repository.ErrDuplicate)
	}
	if err != nil {
		log.Error("failed to create interaction: %v", err)
	}
	return err
}

func (r *interactionRepository) Upsert(ctx context.Context, i models.Interaction) error {
	log := logger.FromContext(ctx).WithPrefix("interaction_repo")
	log.Debug("upserting interaction: chat_id=%d, state=%s", i.ChatID, i.State)

	if err := models.Validate(i); err != nil {
		return fmt.Errorf("invalid interaction: %w", err)
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO interactions (chat_id, anchor_message_id, state, flashcard_id, created_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (chat_id) DO UPDATE SET
    anchor_message_id = excluded.anchor_message_id,
    state = excluded.state,
    flashcard_id = excluded.flashcard_id
`, i.ChatID, i.AnchorMessageID, string(i.State), i.FlashcardID, i.CreatedAt.UTC())
	if err != nil {
		log.Error("failed to upsert interaction: %v", err)
	}
	return err
}

func (r *interactionRepository) Delete(ctx context.Context, chatID int64) error {
	log := logger.FromContext(ctx).WithPrefix("interaction_repo")
	log.Debug("deleting interaction: chat_id=%d", chatID)

	_, err := r.db.ExecContext(ctx, `DELETE FROM interactions WHERE chat_id = ?`, chatID)
	if err != nil {
		log.Error("failed to delete interaction: %v", err)
	}
	return err
}
