package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/notebot/internal/logger"
	"github.com/vytor/notebot/internal/models"
	"github.com/vytor/notebot/internal/repository"
)

type noteRepository struct {
	db *sql.DB
}

// NewNoteRepository creates a new NoteRepository implementation
func NewNoteRepository(db *sql.DB) repository.NoteRepository {
	return &noteRepository{db: db}
}

func (r *noteRepository) Insert(ctx context.Context, n models.Note) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("note_repo")
	log.Debug("inserting note: chat_id=%d, message_id=%d", n.ChatID, n.MessageID)

	if err := models.Validate(n); err != nil {
		return 0, fmt.Errorf("invalid note: %w", err)
	}

	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
INSERT INTO notes (chat_id, message_id, author_id, data, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
`, n.ChatID, n.MessageID, n.AuthorID, n.Data, now, now)
	if err != nil {
		log.Error("failed to insert note: %v", err)
		return 0, err
	}
	return res.LastInsertId()
}

func (r *noteRepository) UpdateByMessage(ctx context.Context, chatID, messageID int64, data string) (bool, error) {
	log := logger.FromContext(ctx).WithPrefix("note_repo")
	log.Debug("updating note: chat_id=%d, message_id=%d", chatID, messageID)

	if data == "" {
		return false, fmt.Errorf("invalid note: empty data")
	}

	sqlStr, args, err := sqlBuilder.Update("notes").
		Set("data", data).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"chat_id": chatID, "message_id": messageID}).
		ToSql()
	if err != nil {
		return false, err
	}

	res, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to update note: %v", err)
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
