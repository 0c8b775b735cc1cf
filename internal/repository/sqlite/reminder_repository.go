package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vytor/notebot/internal/logger"
	"github.com/vytor/notebot/internal/models"
	"github.com/vytor/notebot/internal/repository"
)

type reminderRepository struct {
	db *sql.DB
}

// NewReminderRepository creates a new ReminderRepository implementation
func NewReminderRepository(db *sql.DB) repository.ReminderRepository {
	return &reminderRepository{db: db}
}

func (r *reminderRepository) Insert(ctx context.Context, m models.Reminder) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("reminder_repo")
	log.Debug("inserting reminder: chat_id=%d, name=%s", m.ChatID, m.Name)

	if err := models.Validate(m); err != nil {
		return 0, fmt.Errorf("invalid reminder: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
INSERT INTO reminders (chat_id, name, remind_at, recurrence, created_at)
VALUES (?, ?, ?, ?, ?)
`, m.ChatID, m.Name, m.RemindAt.UTC(), m.Recurrence, time.Now().UTC())
	if err != nil {
		log.Error("failed to insert reminder: %v", err)
		return 0, err
	}
	return res.LastInsertId()
}

func (r *reminderRepository) ListByChat(ctx context.Context, chatID int64) ([]models.Reminder, error) {
	log := logger.FromContext(ctx).WithPrefix("reminder_repo")

	rows, err := r.db.QueryContext(ctx, `
SELECT id, chat_id, name, remind_at, recurrence, created_at
FROM reminders
WHERE chat_id = ?
ORDER BY remind_at ASC, id ASC
`, chatID)
	if err != nil {
		log.Error("failed to list reminders: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []models.Reminder
	for rows.Next() {
		var m models.Reminder
		if err := rows.Scan(&m.ID, &m.ChatID, &m.Name, &m.RemindAt, &m.Recurrence, &m.CreatedAt); err != nil {
			return nil, err
		}
		if err := models.Validate(m); err != nil {
			return nil, fmt.Errorf("malformed reminder row %d: %w", m.ID, err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
