package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vytor/notebot/internal/logger"
	"github.com/vytor/notebot/internal/repository"
)

type snapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository creates a new SnapshotRepository implementation
func NewSnapshotRepository(db *sql.DB) repository.SnapshotRepository {
	return &snapshotRepository{db: db}
}

func (r *snapshotRepository) GetSnapshot(ctx context.Context, id string) ([]byte, error) {
	log := logger.FromContext(ctx).WithPrefix("snapshot_repo")

	var data []byte
	err := r.db.QueryRowContext(ctx, `SELECT data FROM state_snapshots WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("no snapshot for %s", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to load snapshot %s: %v", id, err)
		return nil, err
	}
	log.Debug("loaded snapshot %s (%d bytes)", id, len(data))
	return data, nil
}

func (r *snapshotRepository) SaveSnapshot(ctx context.Context, id string, data []byte) error {
	log := logger.FromContext(ctx).WithPrefix("snapshot_repo")
	log.Debug("saving snapshot %s (%d bytes)", id, len(data))

	_, err := r.db.ExecContext(ctx, `
INSERT INTO state_snapshots (id, data, updated_at)
VALUES (?, ?, ?)
ON CONFLICT (id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
`, id, data, time.Now().UTC())
	if err != nil {
		log.Error("failed to save snapshot %s: %v", id, err)
	}
	return err
}
