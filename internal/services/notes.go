package services

import (
	"context"

	"github.com/vytor/notebot/internal/errors"
	"github.com/vytor/notebot/internal/logger"
	"github.com/vytor/notebot/internal/telegram"
)

// handleEdit corrects whatever was captured from the edited message: a
// flashcard side first, otherwise a note. Edits of other messages are ignored.
func (s *botService) handleEdit(ctx context.Context, msg *telegram.Message) error {
	log := logger.FromContext(ctx).WithFields(map[string]any{"chat_id": msg.Chat.ID, "message_id": msg.MessageID})
	if msg.Text == "" {
		return nil
	}

	res, err := s.conversation.EditText(ctx, msg.Chat.ID, msg.MessageID, msg.Text)
	if err != nil {
		return s.fail(ctx, msg, err)
	}
	if res.Corrected {
		log.Debug("flashcard %d corrected", res.Flashcard.ID)
		return s.react(ctx, msg.Chat.ID, msg.MessageID, ReactionCorrected)
	}

	updated, err := s.notes.UpdateByMessage(ctx, msg.Chat.ID, msg.MessageID, msg.Text)
	if err != nil {
		return s.fail(ctx, msg, errors.NewStorageError("update note", err))
	}
	if !updated {
		log.Debug("edited message is neither a note nor a flashcard side")
		return nil
	}
	return s.react(ctx, msg.Chat.ID, msg.MessageID, ReactionCorrected)
}
