package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vytor/notebot/internal/errors"
	"github.com/vytor/notebot/internal/logger"
	"github.com/vytor/notebot/internal/models"
	"github.com/vytor/notebot/internal/reminder"
	"github.com/vytor/notebot/internal/review"
	"github.com/vytor/notebot/internal/telegram"
)

func (s *botService) handleCommand(ctx context.Context, msg *telegram.Message, name, args string) error {
	log := logger.FromContext(ctx).WithField("command", name)
	ctx = logger.NewContext(ctx, log)
	log.Debug("handling command in chat %d", msg.Chat.ID)

	switch name {
	case "ping":
		now := s.now()
		return s.reply(ctx, msg.Chat.ID, msg.MessageID, fmt.Sprintf("Pong! %s %d", now.UTC().Format(time.RFC1123), now.UnixMilli()))
	case "add":
		if args == "" {
			return s.reply(ctx, msg.Chat.ID, msg.MessageID, "Usage: /add <text>")
		}
		return s.saveNote(ctx, msg, args)
	case "flashcard":
		return s.startFlashcard(ctx, msg)
	case "review":
		return s.runReview(ctx, msg, args)
	case "reminder":
		return s.handleReminder(ctx, msg, args)
	case "reminders":
		return s.listReminders(ctx, msg)
	default:
		return s.reply(ctx, msg.Chat.ID, msg.MessageID, "Unknown command. Try /add, /flashcard, /review, /reminder or /reminders.")
	}
}

func (s *botService) startFlashcard(ctx context.Context, msg *telegram.Message) error {
	res, err := s.conversation.Start(ctx, msg.Chat.ID, msg.MessageID)
	if err != nil {
		return s.fail(ctx, msg, err)
	}
	return s.reply(ctx, msg.Chat.ID, msg.MessageID, res.Prompt)
}

func (s *botService) runReview(ctx context.Context, msg *telegram.Message, args string) error {
	limit := s.reviewLimit
	if args != "" {
		n, err := strconv.Atoi(args)
		if err != nil || n < 1 {
			return s.reply(ctx, msg.Chat.ID, msg.MessageID, "Usage: /review [count]")
		}
		limit = min(n, MaxReviewLimit)
	}

	result, err := s.review.Run(ctx, msg.Chat.ID, limit)
	if err != nil {
		return s.fail(ctx, msg, err)
	}

	switch result.Status {
	case review.StatusNothingDue:
		return s.reply(ctx, msg.Chat.ID, msg.MessageID, "No flashcards due for review.")
	case review.StatusPartial:
		return s.reply(ctx, msg.Chat.ID, msg.MessageID,
			fmt.Sprintf("%d of %d flashcards could not be shown.", result.Failed(), len(result.Items)))
	default:
		return s.react(ctx, msg.Chat.ID, msg.MessageID, ReactionReviewed)
	}
}

func (s *botService) handleReminder(ctx context.Context, msg *telegram.Message, args string) error {
	ev, save, err := reminder.ParseArgs(args)
	if err != nil {
		return s.fail(ctx, msg, err)
	}

	if save {
		_, saved, err := s.reminders.Complete(ctx, msg.Chat.ID)
		if err != nil {
			return s.fail(ctx, msg, err)
		}
		return s.reply(ctx, msg.Chat.ID, msg.MessageID, fmt.Sprintf("Reminder %q saved for %s.", saved.Name, saved.RemindAt.Format(time.RFC1123)))
	}

	actor, err := s.reminders.Handle(ctx, reminder.MachineID(msg.Chat.ID), ev)
	if err != nil {
		if errors.Is(err, reminder.ErrInvalidTransition) && actor != nil {
			return s.reply(ctx, msg.Chat.ID, msg.MessageID, "Not now. "+reminderHint(actor.State()))
		}
		return s.fail(ctx, msg, err)
	}
	return s.reply(ctx, msg.Chat.ID, msg.MessageID, reminderHint(actor.State()))
}

func (s *botService) listReminders(ctx context.Context, msg *telegram.Message) error {
	list, err := s.reminders.List(ctx, msg.Chat.ID)
	if err != nil {
		return s.fail(ctx, msg, err)
	}
	if len(list) == 0 {
		return s.reply(ctx, msg.Chat.ID, msg.MessageID, "No reminders saved.")
	}

	var b strings.Builder
	b.WriteString("Reminders:")
	for _, r := range list {
		fmt.Fprintf(&b, "\n%s: %s", r.RemindAt.UTC().Format(time.RFC1123), r.Name)
		if r.Recurrence != "" {
			fmt.Fprintf(&b, " (%s)", r.Recurrence)
		}
	}
	return s.reply(ctx, msg.Chat.ID, msg.MessageID, b.String())
}

func reminderHint(state reminder.State) string {
	switch state {
	case reminder.StateCreating:
		return "Name the reminder with /reminder name <text>."
	case reminder.StateNameSet:
		return "Set its time with /reminder time <RFC3339 time>."
	case reminder.StateTimeSet:
		return "Set how it repeats with /reminder repeat <text>, or leave the text empty."
	case reminder.StateRecurrenceSet, reminder.StateSaving:
		return "Save it with /reminder save."
	default:
		return "Start a reminder with /reminder."
	}
}

func (s *botService) saveNote(ctx context.Context, msg *telegram.Message, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return s.reply(ctx, msg.Chat.ID, msg.MessageID, "Please send some text.")
	}
	note := models.Note{
		ChatID:    msg.Chat.ID,
		MessageID: msg.MessageID,
		AuthorID:  msg.AuthorID(),
		Data:      text,
	}
	if _, err := s.notes.Insert(ctx, note); err != nil {
		logger.FromContext(ctx).Error("failed to add note: %v", err)
		if rerr := s.reply(ctx, msg.Chat.ID, msg.MessageID, "Failed to add entry."); rerr != nil {
			return rerr
		}
		return errors.NewStorageError("insert note", err)
	}
	return s.react(ctx, msg.Chat.ID, msg.MessageID, ReactionSaved)
}
