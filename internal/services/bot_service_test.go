package services

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/vytor/notebot/internal/conversation"
	"github.com/vytor/notebot/internal/errors"
	"github.com/vytor/notebot/internal/models"
	"github.com/vytor/notebot/internal/reminder"
	"github.com/vytor/notebot/internal/repository"
	"github.com/vytor/notebot/internal/repository/sqlite"
	"github.com/vytor/notebot/internal/review"
	"github.com/vytor/notebot/internal/telegram"
	"github.com/vytor/notebot/internal/testutil"
	"github.com/vytor/notebot/internal/testutil/mocks"
)

const chatID int64 = 555

var fixedNow = time.Date(2026, 7, 4, 10, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

type BotServiceSuite struct {
	suite.Suite
	db         *sql.DB
	flashcards repository.FlashcardRepository
	messenger  *mocks.MockMessenger
	bot        *botService
	nextID     int64
	seen       int
}

func (s *BotServiceSuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.flashcards = sqlite.NewFlashcardRepository(s.db)
	s.messenger = new(mocks.MockMessenger)
	s.messenger.On("ReplyText", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(int64(9000), nil)
	s.messenger.On("SetReaction", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	s.messenger.On("SendText", mock.Anything, mock.Anything, mock.Anything).Return(int64(7000), nil)
	s.nextID = 0
	s.seen = 0

	interactions := sqlite.NewInteractionRepository(s.db)
	s.bot = newBotService(BotDependencies{
		Messenger:    s.messenger,
		Conversation: conversation.NewMachine(interactions, s.flashcards).WithClock(clock),
		Review:       review.NewSession(s.flashcards, s.messenger, 2).WithClock(clock),
		Reminders:    reminder.NewService(sqlite.NewSnapshotRepository(s.db), sqlite.NewReminderRepository(s.db)),
		Flashcards:   s.flashcards,
		Notes:        sqlite.NewNoteRepository(s.db),
		ReviewLimit:  5,
	}, clock)
}

func (s *BotServiceSuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *BotServiceSuite) message(text string) *telegram.Message {
	s.nextID++
	msg := &telegram.Message{
		MessageID: s.nextID,
		From:      &telegram.User{ID: 1},
		Chat:      telegram.Chat{ID: chatID, Type: "private"},
		Text:      text,
	}
	if len(text) > 0 && text[0] == '/' {
		length := len(text)
		for i, r := range text {
			if r == ' ' {
				length = i
				break
			}
		}
		msg.Entities = []telegram.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}}
	}
	return msg
}

func (s *BotServiceSuite) send(text string) *telegram.Message {
	msg := s.message(text)
	s.Require().NoError(s.bot.HandleUpdate(context.Background(), telegram.Update{Message: msg}))
	return msg
}

// response asserts exactly one reply or reaction was produced since the last
// call and returns it.
func (s *BotServiceSuite) response() mock.Call {
	var out []mock.Call
	for _, c := range s.messenger.Calls[s.seen:] {
		if c.Method == "ReplyText" || c.Method == "SetReaction" {
			out = append(out, c)
		}
	}
	s.seen = len(s.messenger.Calls)
	s.Require().Len(out, 1, "exactly one response per update")
	return out[0]
}

func (s *BotServiceSuite) noResponse() {
	for _, c := range s.messenger.Calls[s.seen:] {
		s.Assert().NotEqual("ReplyText", c.Method)
		s.Assert().NotEqual("SetReaction", c.Method)
	}
	s.seen = len(s.messenger.Calls)
}

func (s *BotServiceSuite) assertReply(want string) {
	c := s.response()
	s.Require().Equal("ReplyText", c.Method)
	s.Assert().Equal(want, c.Arguments.String(3))
}

func (s *BotServiceSuite) assertReaction(messageID int64, emoji string) {
	c := s.response()
	s.Require().Equal("SetReaction", c.Method)
	s.Assert().Equal(messageID, c.Arguments.Get(2).(int64))
	s.Assert().Equal(emoji, c.Arguments.String(3))
}

func (s *BotServiceSuite) count(query string) int {
	var n int
	s.Require().NoError(s.db.QueryRow(query).Scan(&n))
	return n
}

func (s *BotServiceSuite) TestFlashcardCapture() {
	s.send("/flashcard")
	s.assertReply(conversation.PromptFront)

	s.send("Mitochondria")
	s.assertReply(conversation.PromptBack)

	s.send("Powerhouse of the cell")
	s.assertReply(conversation.PromptSaved)

	s.Assert().Equal(1, s.count(`SELECT COUNT(*) FROM flashcards WHERE back IS NOT NULL`))
	s.Assert().Zero(s.count(`SELECT COUNT(*) FROM interactions`))
	s.Assert().Zero(s.count(`SELECT COUNT(*) FROM notes`), "conversation text is not saved as notes")
}

func (s *BotServiceSuite) TestSecondStartIsRejected() {
	s.send("/flashcard")
	s.response()
	s.send("/flashcard")
	s.assertReply(failureText(conversation.ErrAlreadyActive))
}

func (s *BotServiceSuite) TestPlainTextBecomesNote() {
	msg := s.send("buy milk")
	s.assertReaction(msg.MessageID, ReactionSaved)
	s.Assert().Equal(1, s.count(`SELECT COUNT(*) FROM notes WHERE data = 'buy milk'`))
	s.Assert().Zero(s.count(`SELECT COUNT(*) FROM flashcards`))
}

func (s *BotServiceSuite) TestAddCommand() {
	s.send("/add")
	s.assertReply("Usage: /add <text>")

	msg := s.send("/add read chapter 3")
	s.assertReaction(msg.MessageID, ReactionSaved)
	s.Assert().Equal(1, s.count(`SELECT COUNT(*) FROM notes WHERE data = 'read chapter 3'`))
}

func (s *BotServiceSuite) TestPing() {
	s.send("/ping")
	c := s.response()
	s.Assert().Contains(c.Arguments.String(3), "Pong!")
}

func (s *BotServiceSuite) TestReviewNothingDue() {
	s.send("/review")
	s.assertReply("No flashcards due for review.")
}

func (s *BotServiceSuite) TestReviewBadCount() {
	s.send("/review lots")
	s.assertReply("Usage: /review [count]")
}

func (s *BotServiceSuite) seedCard(front, back string, rep, interval int, due time.Time) int64 {
	card := models.NewFlashcard(chatID, 1, 0, front, due)
	card.Back = &back
	card.Repetition = rep
	card.IntervalDays = interval
	id, err := s.flashcards.Upsert(context.Background(), card)
	s.Require().NoError(err)
	return id
}

func (s *BotServiceSuite) react(messageID int64, emoji string) {
	update := telegram.Update{MessageReaction: &telegram.MessageReactionUpdated{
		Chat:        telegram.Chat{ID: chatID},
		MessageID:   messageID,
		NewReaction: []telegram.ReactionType{{Type: "emoji", Emoji: emoji}},
	}}
	s.Require().NoError(s.bot.HandleUpdate(context.Background(), update))
}

func (s *BotServiceSuite) TestReviewThenGrade() {
	id := s.seedCard("Capital of Japan?", "Tokyo", 1, 1, fixedNow.AddDate(0, 0, -1))

	cmd := s.send("/review")
	s.assertReaction(cmd.MessageID, ReactionReviewed)
	s.messenger.AssertCalled(s.T(), "SendText", mock.Anything, chatID, "Capital of Japan?")

	s.react(7000, "🔥")
	s.assertReply("Tokyo\nNext review in 6 days.")

	card, err := s.flashcards.Get(context.Background(), id)
	s.Require().NoError(err)
	s.Assert().Equal(2, card.Repetition)
	s.Assert().GreaterOrEqual(card.IntervalDays, 6)
	s.Assert().True(card.DueAt.After(fixedNow))
	s.Assert().Equal(1, s.count(`SELECT COUNT(*) FROM review_history WHERE quality = 5`))
}

func (s *BotServiceSuite) TestChangedReactionGradesOnce() {
	id := s.seedCard("Capital of Japan?", "Tokyo", 1, 1, fixedNow.AddDate(0, 0, -1))
	s.send("/review")
	s.response()

	s.react(7000, "👍")
	s.assertReply("Tokyo\nNext review in 6 days.")

	changed := telegram.Update{MessageReaction: &telegram.MessageReactionUpdated{
		Chat:        telegram.Chat{ID: chatID},
		MessageID:   7000,
		OldReaction: []telegram.ReactionType{{Type: "emoji", Emoji: "👍"}},
		NewReaction: []telegram.ReactionType{{Type: "emoji", Emoji: "🔥"}},
	}}
	s.Require().NoError(s.bot.HandleUpdate(context.Background(), changed))
	s.assertReply("That message is not a flashcard under review.")

	card, err := s.flashcards.Get(context.Background(), id)
	s.Require().NoError(err)
	s.Assert().Equal(2, card.Repetition)
	s.Assert().Equal(6, card.IntervalDays)
	s.Assert().Equal(1, s.count(`SELECT COUNT(*) FROM review_history`))
}

func (s *BotServiceSuite) TestReactionOnUnknownMessage() {
	s.react(123456, "👍")
	s.assertReply("That message is not a flashcard under review.")
}

func (s *BotServiceSuite) TestUngradedReactionIsIgnored() {
	s.seedCard("q", "a", 0, 0, fixedNow)
	s.send("/review")
	s.response()

	s.react(7000, "🎉")
	s.noResponse()
	s.Assert().Zero(s.count(`SELECT COUNT(*) FROM review_history`))
}

func (s *BotServiceSuite) TestEditCorrections() {
	s.send("/flashcard")
	s.response()
	front := s.send("Photosythesis")
	s.response()

	edit := *front
	edit.Text = "Photosynthesis"
	s.Require().NoError(s.bot.HandleUpdate(context.Background(), telegram.Update{EditedMessage: &edit}))
	s.assertReaction(front.MessageID, ReactionCorrected)
	s.Assert().Equal(1, s.count(`SELECT COUNT(*) FROM flashcards WHERE front = 'Photosynthesis'`))

	s.send("light to sugar")
	s.response()
	note := s.send("call the bank")
	s.response()

	noteEdit := *note
	noteEdit.Text = "call the bank at 9"
	s.Require().NoError(s.bot.HandleUpdate(context.Background(), telegram.Update{EditedMessage: &noteEdit}))
	s.assertReaction(note.MessageID, ReactionCorrected)
	s.Assert().Equal(1, s.count(`SELECT COUNT(*) FROM notes WHERE data = 'call the bank at 9'`))

	stray := s.message("never captured")
	s.Require().NoError(s.bot.HandleUpdate(context.Background(), telegram.Update{EditedMessage: stray}))
	s.noResponse()
}

func (s *BotServiceSuite) TestReminderFlow() {
	s.send("/reminder")
	s.assertReply(reminderHint(reminder.StateCreating))

	s.send("/reminder time 2026-07-05T08:00:00Z")
	s.assertReply("Not now. " + reminderHint(reminder.StateCreating))

	s.send("/reminder name Water plants")
	s.assertReply(reminderHint(reminder.StateNameSet))
	s.send("/reminder time 2026-07-05T08:00:00Z")
	s.assertReply(reminderHint(reminder.StateTimeSet))
	s.send("/reminder repeat daily")
	s.assertReply(reminderHint(reminder.StateRecurrenceSet))

	s.send("/reminder save")
	c := s.response()
	s.Assert().Contains(c.Arguments.String(3), `Reminder "Water plants" saved`)
	s.Assert().Equal(1, s.count(`SELECT COUNT(*) FROM reminders WHERE name = 'Water plants' AND recurrence = 'daily'`))
}

func (s *BotServiceSuite) TestListReminders() {
	s.send("/reminders")
	s.assertReply("No reminders saved.")

	for _, cmd := range []string{
		"/reminder",
		"/reminder name Water plants",
		"/reminder time 2026-07-05T08:00:00Z",
		"/reminder repeat daily",
		"/reminder save",
		"/reminder",
		"/reminder name Call mum",
		"/reminder time 2026-07-04T18:30:00Z",
		"/reminder repeat",
		"/reminder save",
	} {
		s.send(cmd)
		s.response()
	}

	s.send("/reminders")
	s.assertReply("Reminders:\nSat, 04 Jul 2026 18:30:00 UTC: Call mum\nSun, 05 Jul 2026 08:00:00 UTC: Water plants (daily)")
}

func (s *BotServiceSuite) TestBotMessagesAreIgnored() {
	msg := s.message("echo")
	msg.From.IsBot = true
	s.Require().NoError(s.bot.HandleUpdate(context.Background(), telegram.Update{Message: msg}))
	s.noResponse()
}

func TestBotServiceSuite(t *testing.T) {
	suite.Run(t, new(BotServiceSuite))
}

func TestHandleUpdate_StorageFailureGetsOneNotice(t *testing.T) {
	ctx := context.Background()
	interactions := new(mocks.MockInteractionRepository)
	flashcards := new(mocks.MockFlashcardRepository)
	messenger := new(mocks.MockMessenger)

	interactions.On("Get", mock.Anything, chatID).Return(nil, errors.New("database is locked"))
	messenger.On("ReplyText", mock.Anything, chatID, int64(1), failureText(errors.NewStorageError("x", nil))).Return(int64(2), nil).Once()

	bot := newBotService(BotDependencies{
		Messenger:    messenger,
		Conversation: conversation.NewMachine(interactions, flashcards),
		Flashcards:   flashcards,
		Notes:        new(mocks.MockNoteRepository),
	}, clock)

	err := bot.HandleUpdate(ctx, telegram.Update{Message: &telegram.Message{
		MessageID: 1,
		Chat:      telegram.Chat{ID: chatID},
		Text:      "hello",
	}})
	assert.True(t, errors.HasCode(err, errors.ErrCodeStorageFailure))
	messenger.AssertExpectations(t)
	messenger.AssertNumberOfCalls(t, "ReplyText", 1)
	flashcards.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestHandleUpdate_DeliveryFailureIsReported(t *testing.T) {
	notes := new(mocks.MockNoteRepository)
	messenger := new(mocks.MockMessenger)
	interactions := new(mocks.MockInteractionRepository)

	interactions.On("Get", mock.Anything, chatID).Return(nil, nil)
	notes.On("Insert", mock.Anything, mock.AnythingOfType("models.Note")).Return(int64(1), nil)
	messenger.On("SetReaction", mock.Anything, chatID, int64(3), ReactionSaved).Return(errors.New("Bad Request: message not found"))

	bot := newBotService(BotDependencies{
		Messenger:    messenger,
		Conversation: conversation.NewMachine(interactions, new(mocks.MockFlashcardRepository)),
		Notes:        notes,
	}, clock)

	err := bot.HandleUpdate(context.Background(), telegram.Update{Message: &telegram.Message{
		MessageID: 3,
		Chat:      telegram.Chat{ID: chatID},
		Text:      "note",
	}})
	assert.True(t, errors.HasCode(err, errors.ErrCodeDeliveryFailure))
	messenger.AssertNumberOfCalls(t, "SetReaction", 1)
}

func TestHandleReaction_LostGradeRaceIsNotFound(t *testing.T) {
	flashcards := new(mocks.MockFlashcardRepository)
	messenger := new(mocks.MockMessenger)

	display := int64(40)
	back := "b"
	card := &models.Flashcard{ID: 3, ChatID: chatID, Front: "f", Back: &back, EaseFactor: models.DefaultEaseFactor, DueAt: fixedNow, DisplayMessageID: &display}
	flashcards.On("FindByDisplayMessage", mock.Anything, chatID, display).Return(card, nil)
	flashcards.On("RecordReview", mock.Anything, mock.AnythingOfType("models.Flashcard"), 5, fixedNow).
		Return(fmt.Errorf("record review for flashcard 3: %w", sql.ErrNoRows))
	messenger.On("ReplyText", mock.Anything, chatID, display, "That message is not a flashcard under review.").Return(int64(41), nil).Once()

	bot := newBotService(BotDependencies{Messenger: messenger, Flashcards: flashcards}, clock)
	err := bot.HandleUpdate(context.Background(), telegram.Update{MessageReaction: &telegram.MessageReactionUpdated{
		Chat:        telegram.Chat{ID: chatID},
		MessageID:   display,
		NewReaction: []telegram.ReactionType{{Type: "emoji", Emoji: "🔥"}},
	}})
	assert.NoError(t, err)
	messenger.AssertExpectations(t)
}

func TestQualityForReaction(t *testing.T) {
	for emoji, want := range map[string]int{"💩": 0, "👎": 1, "😢": 2, "🤔": 3, "👍": 4, "🔥": 5} {
		q, ok := QualityForReaction(emoji)
		assert.True(t, ok, emoji)
		assert.Equal(t, want, q, emoji)
	}
	_, ok := QualityForReaction("🎉")
	assert.False(t, ok)
}
