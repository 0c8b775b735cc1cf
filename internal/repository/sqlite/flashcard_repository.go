package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/notebot/internal/logger"
	"github.com/vytor/notebot/internal/models"
	"github.com/vytor/notebot/internal/repository"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

var flashcardColumns = []string{
	"id", "chat_id", "author_id", "front", "back", "front_message_id", "back_message_id",
	"interval_days", "repetition", "ease_factor", "due_at", "display_message_id",
	"created_at", "updated_at",
}

type flashcardRepository struct {
	db *sql.DB
}

// NewFlashcardRepository creates a new FlashcardRepository implementation
func NewFlashcardRepository(db *sql.DB) repository.FlashcardRepository {
	return &flashcardRepository{db: db}
}

func (r *flashcardRepository) Get(ctx context.Context, id int64) (*models.Flashcard, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("getting flashcard: id=%d", id)

	return r.findOne(ctx, sqlBuilder.Select(flashcardColumns...).From("flashcards").
		Where(squirrel.Eq{"id": id}))
}

func (r *flashcardRepository) Upsert(ctx context.Context, c models.Flashcard) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	if err := models.Validate(c); err != nil {
		log.Warn("refusing to write invalid flashcard: %v", err)
		return 0, fmt.Errorf("invalid flashcard: %w", err)
	}

	now := time.Now().UTC()
	if c.ID == 0 {
		log.Debug("inserting flashcard: chat_id=%d", c.ChatID)
		res, err := r.db.ExecContext(ctx, `
INSERT INTO flashcards (chat_id, author_id, front, back, front_message_id, back_message_id,
    interval_days, repetition, ease_factor, due_at, display_message_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, c.ChatID, c.AuthorID, c.Front, c.Back, c.FrontMessageID, c.BackMessageID,
			c.IntervalDays, c.Repetition, c.EaseFactor, c.DueAt.UTC(), c.DisplayMessageID, now, now)
		if err != nil {
			log.Error("failed to insert flashcard: %v", err)
			return 0, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			log.Error("failed to get flashcard id: %v", err)
			return 0, err
		}
		log.Debug("flashcard inserted: id=%d", id)
		return id, nil
	}

	log.Debug("updating flashcard: id=%d, interval=%d, ease=%.2f", c.ID, c.IntervalDays, c.EaseFactor)
	res, err := r.db.ExecContext(ctx, `
UPDATE flashcards
SET front = ?, back = ?, front_message_id = ?, back_message_id = ?, interval_days = ?,
    repetition = ?, ease_factor = ?, due_at = ?, display_message_id = ?, updated_at = ?
WHERE id = ?
`, c.Front, c.Back, c.FrontMessageID, c.BackMessageID, c.IntervalDays,
		c.Repetition, c.EaseFactor, c.DueAt.UTC(), c.DisplayMessageID, now, c.ID)
	if err != nil {
		log.Error("failed to update flashcard: %v", err)
		return 0, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		log.Warn("flashcard not found for update: id=%d", c.ID)
		return 0, fmt.Errorf("update flashcard %d: %w", c.ID, sql.ErrNoRows)
	}
	return c.ID, nil
}

func (r *flashcardRepository) DueFlashcards(ctx context.Context, chatID int64, now time.Time, limit int) ([]models.Flashcard, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("fetching due flashcards: chat_id=%d, limit=%d", chatID, limit)

	query := sqlBuilder.Select(flashcardColumns...).From("flashcards").
		Where(squirrel.Eq{"chat_id": chatID}).
		Where(squirrel.LtOrEq{"due_at": now.UTC()}).
		Where(squirrel.NotEq{"front": ""}).
		Where(squirrel.NotEq{"back": nil}).
		OrderBy("due_at ASC", "repetition ASC", "id ASC")
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	cards, err := r.findMany(ctx, query)
	if err != nil {
		log.Error("failed to query due flashcards: %v", err)
		return nil, err
	}
	log.Debug("found %d due flashcards", len(cards))
	return cards, nil
}

func (r *flashcardRepository) FindByDisplayMessage(ctx context.Context, chatID, messageID int64) (*models.Flashcard, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("finding flashcard by display message: chat_id=%d, message_id=%d", chatID, messageID)

	return r.findOne(ctx, sqlBuilder.Select(flashcardColumns...).From("flashcards").
		Where(squirrel.Eq{"chat_id": chatID, "display_message_id": messageID}).
		OrderBy("id DESC").Limit(1))
}

func (r *flashcardRepository) FindBySourceMessage(ctx context.Context, chatID, messageID int64) (*models.Flashcard, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("finding flashcard by source message: chat_id=%d, message_id=%d", chatID, messageID)

	return r.findOne(ctx, sqlBuilder.Select(flashcardColumns...).From("flashcards").
		Where(squirrel.Eq{"chat_id": chatID}).
		Where(squirrel.Or{
			squirrel.Eq{"front_message_id": messageID},
			squirrel.Eq{"back_message_id": messageID},
		}).
		OrderBy("id DESC").Limit(1))
}

func (r *flashcardRepository) SetDisplayMessage(ctx context.Context, id, messageID int64) error {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("setting display message: flashcard_id=%d, message_id=%d", id, messageID)

	query, args, err := sqlBuilder.Update("flashcards").
		Set("display_message_id", messageID).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build display update: %w", err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to set display message: %v", err)
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		log.Warn("flashcard not found for display update: id=%d", id)
		return fmt.Errorf("set display message for flashcard %d: %w", id, sql.ErrNoRows)
	}
	return nil
}

func (r *flashcardRepository) RecordReview(ctx context.Context, c models.Flashcard, quality int, reviewedAt time.Time) error {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("recording review: flashcard_id=%d, quality=%d", c.ID, quality)

	if err := models.Validate(c); err != nil {
		return fmt.Errorf("invalid flashcard: %w", err)
	}
	history := models.ReviewHistory{FlashcardID: c.ID, Quality: quality, ReviewedAt: reviewedAt.UTC()}
	if err := models.Validate(history); err != nil {
		return fmt.Errorf("invalid review history: %w", err)
	}

	update := sqlBuilder.Update("flashcards").
		Set("interval_days", c.IntervalDays).
		Set("repetition", c.Repetition).
		Set("ease_factor", c.EaseFactor).
		Set("due_at", c.DueAt.UTC()).
		Set("display_message_id", nil).
		Set("updated_at", history.ReviewedAt).
		Where(squirrel.Eq{"id": c.ID})
	if c.DisplayMessageID != nil {
		// A display that was already graded has lost its reference.
		update = update.Where(squirrel.Eq{"display_message_id": *c.DisplayMessageID})
	}
	query, args, err := update.ToSql()
	if err != nil {
		return fmt.Errorf("build review update: %w", err)
	}

	return tx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			log.Error("failed to update flashcard schedule: %v", err)
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			log.Debug("review not recorded, display reference gone: flashcard_id=%d", c.ID)
			return fmt.Errorf("record review for flashcard %d: %w", c.ID, sql.ErrNoRows)
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO review_history (flashcard_id, quality, reviewed_at)
VALUES (?, ?, ?)
`, history.FlashcardID, history.Quality, history.ReviewedAt); err != nil {
			log.Error("failed to insert review history: %v", err)
			return err
		}
		return nil
	})
}

func (r *flashcardRepository) findOne(ctx context.Context, query squirrel.SelectBuilder) (*models.Flashcard, error) {
	cards, err := r.findMany(ctx, query)
	if err != nil {
		logger.FromContext(ctx).WithPrefix("flashcard_repo").Error("failed to query flashcard: %v", err)
		return nil, err
	}
	if len(cards) == 0 {
		return nil, nil
	}
	return &cards[0], nil
}

func (r *flashcardRepository) findMany(ctx context.Context, query squirrel.SelectBuilder) ([]models.Flashcard, error) {
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []models.Flashcard
	for rows.Next() {
		c, err := scanFlashcard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

func scanFlashcard(row interface{ Scan(...any) error }) (models.Flashcard, error) {
	var (
		c                models.Flashcard
		back             sql.NullString
		backMessageID    sql.NullInt64
		displayMessageID sql.NullInt64
	)
	err := row.Scan(&c.ID, &c.ChatID, &c.AuthorID, &c.Front, &back, &c.FrontMessageID, &backMessageID,
		&c.IntervalDays, &c.Repetition, &c.EaseFactor, &c.DueAt, &displayMessageID,
		&c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return c, err
	}
	if err != nil {
		return c, fmt.Errorf("scan flashcard: %w", err)
	}
	c.Back = nullString(back)
	c.BackMessageID = nullInt64(backMessageID)
	c.DisplayMessageID = nullInt64(displayMessageID)

	if err := models.Validate(c); err != nil {
		return c, fmt.Errorf("malformed flashcard row %d: %w", c.ID, err)
	}
	return c, nil
}
