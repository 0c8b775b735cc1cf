// Package reminder holds the reminder state machine. The process keeps no
// actor between webhook calls, so every call resumes one from its snapshot
// and persists it again before returning.
package reminder

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/vytor/notebot/internal/errors"
	"github.com/vytor/notebot/internal/models"
)

type State string

const (
	StateIdle          State = "idle"
	StateCreating      State = "creating"
	StateNameSet       State = "name_set"
	StateTimeSet       State = "time_set"
	StateRecurrenceSet State = "recurrence_set"
	StateSaving        State = "saving"
)

type EventType string

const (
	EventCreate        EventType = "CREATE"
	EventNameSet       EventType = "NAME_SET"
	EventTimeSet       EventType = "TIME_SET"
	EventRecurrenceSet EventType = "RECURRENCE_SET"
	EventSave          EventType = "SAVE"
	EventSaved         EventType = "SAVED"
)

const snapshotVersion = 1

var (
	ErrInvalidTransition = errors.New("reminder: event not accepted in current state")
	ErrMalformedSnapshot = errors.New("reminder: malformed snapshot")
)

type transition struct {
	event EventType
	next  State
}

// Each state accepts exactly one event.
var transitions = map[State]transition{
	StateIdle:          {EventCreate, StateCreating},
	StateCreating:      {EventNameSet, StateNameSet},
	StateNameSet:       {EventTimeSet, StateTimeSet},
	StateTimeSet:       {EventRecurrenceSet, StateRecurrenceSet},
	StateRecurrenceSet: {EventSave, StateSaving},
	StateSaving:        {EventSaved, StateIdle},
}

// Event is one named input. Only the payload field matching Type is read.
type Event struct {
	Type       EventType
	Name       string
	Time       time.Time
	Recurrence string
}

// Context is the data collected while a reminder is being created.
type Context struct {
	Name       string    `json:"name"`
	Time       time.Time `json:"time"`
	Recurrence string    `json:"recurrence"`
}

type snapshot struct {
	Version int     `json:"version" validate:"eq=1"`
	State   State   `json:"state" validate:"oneof=idle creating name_set time_set recurrence_set saving"`
	Context Context `json:"context"`
}

// Actor is a running reminder machine.
type Actor struct {
	id    string
	state State
	ctx   Context
}

// MachineID returns the snapshot key of a chat's reminder machine.
func MachineID(chatID int64) string {
	return fmt.Sprintf("reminder:%d", chatID)
}

// Resume restores an actor from data. Empty data yields a fresh idle actor.
func Resume(id string, data []byte) (*Actor, error) {
	actor := &Actor{id: id, state: StateIdle}
	if len(data) == 0 {
		return actor, nil
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformedSnapshot, id, err)
	}
	if err := models.Validate(snap); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformedSnapshot, id, err)
	}
	actor.state = snap.State
	actor.ctx = snap.Context
	return actor, nil
}

func (a *Actor) ID() string       { return a.id }
func (a *Actor) State() State     { return a.state }
func (a *Actor) Context() Context { return a.ctx }

// Send applies ev. An event the current state does not accept, or a payload
// that is missing, leaves the actor untouched.
func (a *Actor) Send(ev Event) error {
	t, ok := transitions[a.state]
	if !ok || t.event != ev.Type {
		return errors.NewStateConflictError(
			fmt.Sprintf("reminder in state %s cannot accept %s", a.state, ev.Type), ErrInvalidTransition)
	}

	next := a.ctx
	switch ev.Type {
	case EventCreate:
		next = Context{}
	case EventNameSet:
		name := strings.TrimSpace(ev.Name)
		if name == "" {
			return errors.NewValidationError("name", "must not be empty", nil)
		}
		next.Name = name
	case EventTimeSet:
		if ev.Time.IsZero() {
			return errors.NewValidationError("time", "must be set", nil)
		}
		next.Time = ev.Time.UTC()
	case EventRecurrenceSet:
		next.Recurrence = strings.TrimSpace(ev.Recurrence)
	}

	a.state = t.next
	a.ctx = next
	return nil
}

// Persist serializes the actor's state and context.
func (a *Actor) Persist() ([]byte, error) {
	return json.Marshal(snapshot{Version: snapshotVersion, State: a.state, Context: a.ctx})
}

// Expected returns the only event the current state accepts.
func (a *Actor) Expected() EventType {
	return transitions[a.state].event
}
