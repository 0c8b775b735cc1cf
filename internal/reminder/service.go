package reminder

import (
	"context"
	"strings"
	"time"

	"github.com/vytor/notebot/internal/errors"
	"github.com/vytor/notebot/internal/logger"
	"github.com/vytor/notebot/internal/models"
	"github.com/vytor/notebot/internal/repository"
)

// Service loads, drives and persists reminder actors, one call per invocation.
type Service struct {
	snapshots repository.SnapshotRepository
	reminders repository.ReminderRepository
}

func NewService(snapshots repository.SnapshotRepository, reminders repository.ReminderRepository) *Service {
	return &Service{snapshots: snapshots, reminders: reminders}
}

// Load resumes the actor stored under id.
func (s *Service) Load(ctx context.Context, id string) (*Actor, error) {
	data, err := s.snapshots.GetSnapshot(ctx, id)
	if err != nil {
		return nil, errors.NewStorageError("load reminder snapshot", err)
	}
	actor, err := Resume(id, data)
	if err != nil {
		return nil, errors.NewStorageError("decode reminder snapshot", err)
	}
	return actor, nil
}

func (s *Service) save(ctx context.Context, actor *Actor) error {
	data, err := actor.Persist()
	if err != nil {
		return errors.NewInternalError(err)
	}
	if err := s.snapshots.SaveSnapshot(ctx, actor.ID(), data); err != nil {
		return errors.NewStorageError("save reminder snapshot", err)
	}
	return nil
}

// Handle applies events to the actor stored under id and persists the result.
// If any event is rejected nothing is persisted.
func (s *Service) Handle(ctx context.Context, id string, events ...Event) (*Actor, error) {
	log := logger.FromContext(ctx).WithPrefix("reminder").WithField("machine", id)

	actor, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, ev := range events {
		if err := actor.Send(ev); err != nil {
			log.Debug("event %s rejected in state %s", ev.Type, actor.State())
			return actor, err
		}
	}
	if err := s.save(ctx, actor); err != nil {
		return actor, err
	}

	log.Debug("reminder machine now %s", actor.State())
	return actor, nil
}

// Complete saves the reminder collected by the chat's machine. It moves the
// machine to saving, writes the reminder row, then returns it to idle,
// persisting after each step. A machine found in saving resumes at the write.
func (s *Service) Complete(ctx context.Context, chatID int64) (*Actor, *models.Reminder, error) {
	id := MachineID(chatID)
	log := logger.FromContext(ctx).WithPrefix("reminder").WithField("machine", id)

	actor, err := s.Load(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if actor.State() != StateSaving {
		if err := actor.Send(Event{Type: EventSave}); err != nil {
			return actor, nil, err
		}
		if err := s.save(ctx, actor); err != nil {
			return actor, nil, err
		}
	} else {
		log.Info("resuming interrupted save")
	}

	c := actor.Context()
	reminder := models.Reminder{ChatID: chatID, Name: c.Name, RemindAt: c.Time, Recurrence: c.Recurrence}
	reminderID, err := s.reminders.Insert(ctx, reminder)
	if err != nil {
		log.Warn("reminder not stored, machine stays in %s: %v", actor.State(), err)
		return actor, nil, errors.NewStorageError("insert reminder", err)
	}
	reminder.ID = reminderID

	if err := actor.Send(Event{Type: EventSaved}); err != nil {
		return actor, nil, err
	}
	if err := s.save(ctx, actor); err != nil {
		return actor, &reminder, err
	}

	log.Info("reminder saved: id=%d", reminderID)
	return actor, &reminder, nil
}

// List returns the chat's saved reminders, earliest first.
func (s *Service) List(ctx context.Context, chatID int64) ([]models.Reminder, error) {
	list, err := s.reminders.ListByChat(ctx, chatID)
	if err != nil {
		return nil, errors.NewStorageError("list reminders", err)
	}
	return list, nil
}

// ParseArgs maps the arguments of a /reminder command to an event. save is
// true for "save", which is handled by Complete instead.
//
//	/reminder                 CREATE
//	/reminder name <text>     NAME_SET
//	/reminder time <RFC3339>  TIME_SET
//	/reminder repeat <text>   RECURRENCE_SET
//	/reminder save            SAVE, then SAVED
func ParseArgs(args string) (ev Event, save bool, err error) {
	verb, rest, _ := strings.Cut(strings.TrimSpace(args), " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(verb) {
	case "":
		return Event{Type: EventCreate}, false, nil
	case "name":
		return Event{Type: EventNameSet, Name: rest}, false, nil
	case "time":
		t, perr := time.Parse(time.RFC3339, rest)
		if perr != nil {
			return Event{}, false, errors.NewValidationError("time", "must be RFC3339, e.g. 2026-01-02T15:04:05Z", perr)
		}
		return Event{Type: EventTimeSet, Time: t}, false, nil
	case "repeat":
		return Event{Type: EventRecurrenceSet, Recurrence: rest}, false, nil
	case "save":
		return Event{Type: EventSave}, true, nil
	default:
		return Event{}, false, errors.NewValidationError("reminder", "unknown subcommand "+verb, nil)
	}
}
