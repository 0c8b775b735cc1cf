// Package conversation captures a flashcard's two sides from successive chat
// messages. The machine keeps no state of its own: every call loads the chat's
// Interaction, decides one transition and writes it back.
package conversation

import (
	"context"
	"strings"
	"time"

	"github.com/vytor/notebot/internal/errors"
	"github.com/vytor/notebot/internal/logger"
	"github.com/vytor/notebot/internal/models"
	"github.com/vytor/notebot/internal/repository"
)

// StateNone is reported when a chat has no active Interaction.
const StateNone models.InteractionState = "none"

const (
	PromptFront = "Send the front side of the flashcard."
	PromptBack  = "Now send the back side."
	PromptSaved = "Flashcard saved."
)

var (
	ErrAlreadyActive = errors.New("conversation: a flashcard is already being captured")
	ErrEmptyText     = errors.New("conversation: text is empty")
	ErrLostFlashcard = errors.New("conversation: captured flashcard no longer exists")
)

// Message is an inbound text message addressed to the machine.
type Message struct {
	ChatID    int64
	AuthorID  int64
	MessageID int64
	Text      string
}

// Result describes what a call did. Handled is false when the message was not
// part of a conversation and should be routed elsewhere.
type Result struct {
	Handled   bool
	State     models.InteractionState
	Prompt    string
	Flashcard *models.Flashcard
	Corrected bool
}

type Machine struct {
	interactions repository.InteractionRepository
	flashcards   repository.FlashcardRepository
	now          func() time.Time
}

func NewMachine(interactions repository.InteractionRepository, flashcards repository.FlashcardRepository) *Machine {
	return &Machine{
		interactions: interactions,
		flashcards:   flashcards,
		now:          time.Now,
	}
}

// WithClock returns a copy of m that reads time from now.
func (m *Machine) WithClock(now func() time.Time) *Machine {
	cp := *m
	cp.now = now
	return &cp
}

// Start opens a capture conversation anchored on anchorMessageID. A chat with a
// conversation already in progress is rejected rather than overwritten.
func (m *Machine) Start(ctx context.Context, chatID, anchorMessageID int64) (Result, error) {
	log := logger.FromContext(ctx).WithPrefix("conversation").WithField("chat_id", chatID)

	current, err := m.interactions.Get(ctx, chatID)
	if err != nil {
		return Result{}, errors.NewStorageError("get interaction", err)
	}
	if current != nil {
		return m.rejectStart(log, current.State)
	}

	interaction := models.Interaction{
		ChatID:          chatID,
		AnchorMessageID: anchorMessageID,
		State:           models.AwaitingFront,
		CreatedAt:       m.now().UTC(),
	}
	err = m.interactions.Create(ctx, interaction)
	if errors.Is(err, repository.ErrDuplicate) {
		// Another Start for this chat won between the read and the insert.
		state := models.AwaitingFront
		if winner, getErr := m.interactions.Get(ctx, chatID); getErr == nil && winner != nil {
			state = winner.State
		}
		return m.rejectStart(log, state)
	}
	if err != nil {
		return Result{}, errors.NewStorageError("create interaction", err)
	}

	log.Info("flashcard capture started")
	return Result{Handled: true, State: models.AwaitingFront, Prompt: PromptFront}, nil
}

func (m *Machine) rejectStart(log *logger.Logger, state models.InteractionState) (Result, error) {
	log.Debug("start rejected, conversation in state %s", state)
	return Result{Handled: true, State: state}, errors.NewStateConflictError("a flashcard is already being captured", ErrAlreadyActive)
}

// SubmitText feeds a text message into the chat's conversation.
func (m *Machine) SubmitText(ctx context.Context, msg Message) (Result, error) {
	log := logger.FromContext(ctx).WithPrefix("conversation").WithField("chat_id", msg.ChatID)

	current, err := m.interactions.Get(ctx, msg.ChatID)
	if err != nil {
		return Result{}, errors.NewStorageError("get interaction", err)
	}
	if current == nil {
		return Result{Handled: false, State: StateNone}, nil
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return Result{Handled: true, State: current.State}, errors.NewValidationError("text", "must not be empty", ErrEmptyText)
	}

	switch current.State {
	case models.AwaitingFront:
		return m.captureFront(ctx, log, *current, msg, text)
	case models.AwaitingBack:
		return m.captureBack(ctx, log, *current, msg, text)
	default:
		return Result{}, errors.NewStateConflictError("unknown conversation state "+string(current.State), nil)
	}
}

func (m *Machine) captureFront(ctx context.Context, log *logger.Logger, current models.Interaction, msg Message, text string) (Result, error) {
	card := models.NewFlashcard(msg.ChatID, msg.AuthorID, msg.MessageID, text, m.now())
	id, err := m.flashcards.Upsert(ctx, card)
	if err != nil {
		log.Warn("front not stored, conversation stays in %s: %v", current.State, err)
		return Result{Handled: true, State: current.State}, errors.NewStorageError("store flashcard front", err)
	}
	card.ID = id

	next := current
	next.State = models.AwaitingBack
	next.AnchorMessageID = msg.MessageID
	next.FlashcardID = &id
	if err := m.interactions.Upsert(ctx, next); err != nil {
		return Result{Handled: true, State: current.State}, errors.NewStorageError("advance interaction", err)
	}

	log.Debug("front captured: flashcard_id=%d", id)
	return Result{Handled: true, State: models.AwaitingBack, Prompt: PromptBack, Flashcard: &card}, nil
}

func (m *Machine) captureBack(ctx context.Context, log *logger.Logger, current models.Interaction, msg Message, text string) (Result, error) {
	card, err := m.flashcards.Get(ctx, *current.FlashcardID)
	if err != nil {
		return Result{Handled: true, State: current.State}, errors.NewStorageError("load flashcard", err)
	}
	if card == nil {
		// The front is gone, so the conversation cannot complete.
		if err := m.interactions.Delete(ctx, msg.ChatID); err != nil {
			return Result{Handled: true, State: current.State}, errors.NewStorageError("delete interaction", err)
		}
		return Result{Handled: true, State: StateNone}, errors.NewStateConflictError("the flashcard being captured was removed", ErrLostFlashcard)
	}

	card.Back = &text
	card.BackMessageID = &msg.MessageID
	if _, err := m.flashcards.Upsert(ctx, *card); err != nil {
		log.Warn("back not stored, conversation stays in %s: %v", current.State, err)
		return Result{Handled: true, State: current.State}, errors.NewStorageError("store flashcard back", err)
	}

	if err := m.interactions.Delete(ctx, msg.ChatID); err != nil {
		return Result{Handled: true, State: current.State, Flashcard: card}, errors.NewStorageError("delete interaction", err)
	}

	log.Info("flashcard captured: flashcard_id=%d", card.ID)
	return Result{Handled: true, State: StateNone, Prompt: PromptSaved, Flashcard: card}, nil
}

// EditText corrects the flashcard side that was captured from messageID. It does
// not touch the conversation state.
func (m *Machine) EditText(ctx context.Context, chatID, messageID int64, text string) (Result, error) {
	log := logger.FromContext(ctx).WithPrefix("conversation").WithField("chat_id", chatID)

	card, err := m.flashcards.FindBySourceMessage(ctx, chatID, messageID)
	if err != nil {
		return Result{}, errors.NewStorageError("find flashcard by message", err)
	}
	if card == nil {
		return Result{Handled: false}, nil
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return Result{Handled: true}, errors.NewValidationError("text", "must not be empty", ErrEmptyText)
	}

	if card.FrontMessageID == messageID {
		card.Front = text
	} else {
		card.Back = &text
	}
	if _, err := m.flashcards.Upsert(ctx, *card); err != nil {
		return Result{Handled: true}, errors.NewStorageError("correct flashcard", err)
	}

	log.Debug("flashcard corrected: flashcard_id=%d, message_id=%d", card.ID, messageID)
	return Result{Handled: true, Corrected: true, Flashcard: card}, nil
}
