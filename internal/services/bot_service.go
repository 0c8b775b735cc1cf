package services

import (
	"context"
	"time"

	"github.com/vytor/notebot/internal/conversation"
	"github.com/vytor/notebot/internal/errors"
	"github.com/vytor/notebot/internal/logger"
	"github.com/vytor/notebot/internal/reminder"
	"github.com/vytor/notebot/internal/repository"
	"github.com/vytor/notebot/internal/review"
	"github.com/vytor/notebot/internal/telegram"
)

// Reactions the bot itself sets on user messages.
const (
	ReactionSaved     = "✅"
	ReactionCorrected = "✍"
	ReactionReviewed  = "👀"
)

// MaxReviewLimit caps the card count a /review command may ask for.
const MaxReviewLimit = 20

// BotService routes Telegram updates to the component that owns them
type BotService interface {
	// HandleUpdate answers update with at most one reply or reaction. The
	// returned error is only for logging; the user has already been told.
	HandleUpdate(ctx context.Context, update telegram.Update) error
}

// BotDependencies are the collaborators a BotService is built from
type BotDependencies struct {
	Messenger    telegram.Messenger
	Conversation *conversation.Machine
	Review       *review.Session
	Reminders    *reminder.Service
	Flashcards   repository.FlashcardRepository
	Notes        repository.NoteRepository
	ReviewLimit  int
}

type botService struct {
	messenger    telegram.Messenger
	conversation *conversation.Machine
	review       *review.Session
	reminders    *reminder.Service
	flashcards   repository.FlashcardRepository
	notes        repository.NoteRepository
	reviewLimit  int
	now          func() time.Time
}

// NewBotService creates a new BotService
func NewBotService(deps BotDependencies) BotService {
	return newBotService(deps, time.Now)
}

func newBotService(deps BotDependencies, now func() time.Time) *botService {
	limit := deps.ReviewLimit
	if limit <= 0 {
		limit = 5
	}
	return &botService{
		messenger:    deps.Messenger,
		conversation: deps.Conversation,
		review:       deps.Review,
		reminders:    deps.Reminders,
		flashcards:   deps.Flashcards,
		notes:        deps.Notes,
		reviewLimit:  limit,
		now:          now,
	}
}

func (s *botService) HandleUpdate(ctx context.Context, update telegram.Update) error {
	log := logger.FromContext(ctx).WithField("update_id", update.UpdateID)
	ctx = logger.NewContext(ctx, log)

	switch {
	case update.Message != nil:
		return s.handleMessage(ctx, update.Message)
	case update.EditedMessage != nil:
		return s.handleEdit(ctx, update.EditedMessage)
	case update.MessageReaction != nil:
		return s.handleReaction(ctx, update.MessageReaction)
	default:
		log.Debug("ignoring update without a supported payload")
		return nil
	}
}

func (s *botService) handleMessage(ctx context.Context, msg *telegram.Message) error {
	if msg.From != nil && msg.From.IsBot {
		return nil
	}
	if name, args, ok := msg.Command(); ok {
		return s.handleCommand(ctx, msg, name, args)
	}
	if msg.Text == "" {
		logger.FromContext(ctx).Debug("ignoring message %d without text", msg.MessageID)
		return nil
	}

	res, err := s.conversation.SubmitText(ctx, conversation.Message{
		ChatID:    msg.Chat.ID,
		AuthorID:  msg.AuthorID(),
		MessageID: msg.MessageID,
		Text:      msg.Text,
	})
	if err != nil {
		return s.fail(ctx, msg, err)
	}
	if !res.Handled {
		return s.saveNote(ctx, msg, msg.Text)
	}
	return s.reply(ctx, msg.Chat.ID, msg.MessageID, res.Prompt)
}

func (s *botService) reply(ctx context.Context, chatID, replyTo int64, text string) error {
	if _, err := s.messenger.ReplyText(ctx, chatID, replyTo, text); err != nil {
		logger.FromContext(ctx).Error("failed to reply in chat %d: %v", chatID, err)
		return errors.NewDeliveryError("reply", err)
	}
	return nil
}

func (s *botService) react(ctx context.Context, chatID, messageID int64, emoji string) error {
	if err := s.messenger.SetReaction(ctx, chatID, messageID, emoji); err != nil {
		logger.FromContext(ctx).Error("failed to react in chat %d: %v", chatID, err)
		return errors.NewDeliveryError("react", err)
	}
	return nil
}

// fail tells the user why msg could not be processed and returns cause, or
// the delivery error if even that reply failed.
func (s *botService) fail(ctx context.Context, msg *telegram.Message, cause error) error {
	log := logger.FromContext(ctx)
	if errors.HasCode(cause, errors.ErrCodeValidation) || errors.HasCode(cause, errors.ErrCodeStateConflict) {
		log.Debug("request rejected: %v", cause)
	} else {
		log.Error("request failed: %v", cause)
	}
	if err := s.reply(ctx, msg.Chat.ID, msg.MessageID, failureText(cause)); err != nil {
		return err
	}
	return cause
}

func failureText(err error) string {
	switch {
	case errors.Is(err, conversation.ErrAlreadyActive):
		return "A flashcard is already being captured. Send its remaining side first."
	case errors.Is(err, conversation.ErrEmptyText):
		return "Please send some text."
	case errors.Is(err, conversation.ErrLostFlashcard):
		return "The flashcard being captured was lost. Start again with /flashcard."
	case errors.Is(err, reminder.ErrInvalidTransition):
		return "That reminder step is not expected now."
	}
	switch errors.CodeOf(err) {
	case errors.ErrCodeValidation:
		var appErr *errors.AppError
		if errors.As(err, &appErr) {
			return "Invalid input: " + appErr.Message
		}
		return "Invalid input."
	case errors.ErrCodeStorageFailure:
		return "Something went wrong while saving. Please try again."
	default:
		return "Something went wrong. Please try again."
	}
}
