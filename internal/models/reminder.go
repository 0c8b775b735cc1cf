package models

import "time"

// Reminder is the record written once a reminder conversation is saved.
type Reminder struct {
	ID         int64     `json:"id"`
	ChatID     int64     `json:"chat_id" validate:"required"`
	Name       string    `json:"name" validate:"required"`
	RemindAt   time.Time `json:"remind_at" validate:"required"`
	Recurrence string    `json:"recurrence"`
	CreatedAt  time.Time `json:"created_at"`
}
