package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vytor/notebot/internal/errors"
	"github.com/vytor/notebot/internal/flashcard"
	"github.com/vytor/notebot/internal/logger"
	"github.com/vytor/notebot/internal/telegram"
)

// reactionQuality grades a review from the emoji put on a displayed card.
var reactionQuality = map[string]int{
	"💩": 0,
	"👎": 1,
	"😢": 2,
	"🤔": 3,
	"👍": 4,
	"🔥": 5,
}

const notUnderReview = "That message is not a flashcard under review."

// QualityForReaction returns the recall quality an emoji stands for.
func QualityForReaction(emoji string) (int, bool) {
	q, ok := reactionQuality[emoji]
	return q, ok
}

func (s *botService) handleReaction(ctx context.Context, r *telegram.MessageReactionUpdated) error {
	log := logger.FromContext(ctx).WithFields(map[string]any{"chat_id": r.Chat.ID, "message_id": r.MessageID})

	quality, found := -1, false
	for _, emoji := range r.AddedEmojis() {
		if q, ok := QualityForReaction(emoji); ok {
			quality, found = q, true
			break
		}
	}
	if !found {
		log.Debug("reaction carries no grade, ignoring")
		return nil
	}

	card, err := s.flashcards.FindByDisplayMessage(ctx, r.Chat.ID, r.MessageID)
	if err != nil {
		log.Error("failed to find reviewed flashcard: %v", err)
		if rerr := s.reply(ctx, r.Chat.ID, r.MessageID, "Failed to record review."); rerr != nil {
			return rerr
		}
		return errors.NewStorageError("find flashcard by display message", err)
	}
	if card == nil {
		log.Debug("graded message is not a displayed flashcard")
		return s.reply(ctx, r.Chat.ID, r.MessageID, notUnderReview)
	}

	now := s.now()
	updated, err := flashcard.ApplyReview(*card, quality, now)
	if err != nil {
		log.Error("could not schedule flashcard %d: %v", card.ID, err)
		if rerr := s.reply(ctx, r.Chat.ID, r.MessageID, "Failed to record review."); rerr != nil {
			return rerr
		}
		return err
	}
	err = s.flashcards.RecordReview(ctx, updated, quality, now)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("flashcard %d was graded from this message already", card.ID)
		return s.reply(ctx, r.Chat.ID, r.MessageID, notUnderReview)
	}
	if err != nil {
		log.Error("failed to record review of flashcard %d: %v", card.ID, err)
		if rerr := s.reply(ctx, r.Chat.ID, r.MessageID, "Failed to record review."); rerr != nil {
			return rerr
		}
		return errors.NewStorageError("record review", err)
	}

	log.Info("flashcard %d reviewed: quality=%d, next in %d days", card.ID, quality, updated.IntervalDays)
	text := fmt.Sprintf("Next review in %d days.", updated.IntervalDays)
	if updated.IntervalDays == 1 {
		text = "Next review tomorrow."
	}
	if updated.Back != nil {
		text = fmt.Sprintf("%s\n%s", *updated.Back, text)
	}
	return s.reply(ctx, r.Chat.ID, r.MessageID, text)
}
