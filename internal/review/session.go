// Package review runs one review session: it picks a chat's due flashcards,
// shows them concurrently and reports how each one fared.
package review

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vytor/notebot/internal/errors"
	"github.com/vytor/notebot/internal/logger"
	"github.com/vytor/notebot/internal/models"
	"github.com/vytor/notebot/internal/repository"
	"github.com/vytor/notebot/internal/telegram"
	"github.com/vytor/notebot/internal/worker"
)

// UpdateFailedReaction marks a displayed card whose message reference could
// not be stored, so reactions to it will not be graded.
const UpdateFailedReaction = "💔"

type Status string

const (
	StatusNothingDue Status = "nothing_due"
	StatusCompleted  Status = "completed"
	StatusPartial    Status = "partial"
)

type ItemStatus string

const (
	ItemDisplayed     ItemStatus = "displayed"
	ItemDisplayFailed ItemStatus = "display_failed"
	ItemUpdateFailed  ItemStatus = "update_failed"
)

// ErrStorageQueryFailed is wrapped when the due flashcards cannot be selected.
var ErrStorageQueryFailed = errors.New("review: due flashcard query failed")

// ItemOutcome is the result of showing one flashcard.
type ItemOutcome struct {
	FlashcardID int64
	Status      ItemStatus
	MessageID   int64 // zero when the display failed
	Err         error
}

// Result aggregates a session. Items follow the due order of the selection.
type Result struct {
	ID     uuid.UUID
	Status Status
	Items  []ItemOutcome
}

// Failed returns the number of items that were not fully displayed.
func (r Result) Failed() int {
	n := 0
	for _, item := range r.Items {
		if item.Status != ItemDisplayed {
			n++
		}
	}
	return n
}

type Session struct {
	flashcards  repository.FlashcardRepository
	messenger   telegram.Messenger
	concurrency int
	now         func() time.Time
}

func NewSession(flashcards repository.FlashcardRepository, messenger telegram.Messenger, concurrency int) *Session {
	return &Session{
		flashcards:  flashcards,
		messenger:   messenger,
		concurrency: concurrency,
		now:         time.Now,
	}
}

// WithClock returns a copy of s that reads time from now.
func (s *Session) WithClock(now func() time.Time) *Session {
	cp := *s
	cp.now = now
	return &cp
}

// Run reviews up to limit due flashcards of chatID. Only a failed selection is
// returned as an error; item failures are reported in the Result.
func (s *Session) Run(ctx context.Context, chatID int64, limit int) (Result, error) {
	result := Result{ID: uuid.New()}
	log := logger.FromContext(ctx).WithPrefix("review").WithFields(map[string]any{
		"chat_id":    chatID,
		"session_id": result.ID.String(),
	})

	if limit <= 0 {
		return result, errors.NewValidationError("limit", "must be at least 1", nil)
	}

	cards, err := s.flashcards.DueFlashcards(ctx, chatID, s.now(), limit)
	if err != nil {
		log.Error("failed to select due flashcards: %v", err)
		return result, errors.NewStorageError("select due flashcards", fmt.Errorf("%w: %w", ErrStorageQueryFailed, err))
	}
	if len(cards) == 0 {
		log.Debug("nothing due")
		result.Status = StatusNothingDue
		return result, nil
	}

	log.Info("reviewing %d flashcards", len(cards))
	result.Items = make([]ItemOutcome, len(cards))

	// Each job owns one slot of Items, so no locking is needed around writes.
	group := worker.NewGroup(logger.NewContext(ctx, log), s.concurrency)
	for i := range cards {
		job := &displayJob{session: s, card: cards[i], outcome: &result.Items[i]}
		if !group.Go(ctx, job) {
			result.Items[i] = ItemOutcome{FlashcardID: cards[i].ID, Status: ItemDisplayFailed, Err: errors.NewDeliveryError("display flashcard", ctx.Err())}
		}
	}
	group.Wait()

	result.Status = StatusCompleted
	if failed := result.Failed(); failed > 0 {
		result.Status = StatusPartial
		log.Warn("session finished with %d of %d items failed", failed, len(cards))
	} else {
		log.Info("session completed")
	}
	return result, nil
}

// displayJob shows one card and stores the reference of the message used.
type displayJob struct {
	session *Session
	card    models.Flashcard
	outcome *ItemOutcome
}

func (j *displayJob) Name() string {
	return fmt.Sprintf("display-flashcard-%d", j.card.ID)
}

func (j *displayJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx)
	*j.outcome = ItemOutcome{FlashcardID: j.card.ID}

	messageID, err := j.session.messenger.SendText(ctx, j.card.ChatID, j.card.Front)
	if err != nil {
		j.outcome.Status = ItemDisplayFailed
		j.outcome.Err = errors.NewDeliveryError("display flashcard", err)
		return j.outcome.Err
	}
	j.outcome.MessageID = messageID

	if err := j.session.flashcards.SetDisplayMessage(ctx, j.card.ID, messageID); err != nil {
		j.outcome.Status = ItemUpdateFailed
		j.outcome.Err = errors.NewStorageError("store display message", err)
		if rerr := j.session.messenger.SetReaction(ctx, j.card.ChatID, messageID, UpdateFailedReaction); rerr != nil {
			log.Warn("could not mark message %d as failed: %v", messageID, rerr)
		}
		return j.outcome.Err
	}

	j.outcome.Status = ItemDisplayed
	return nil
}
