package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tidemark/internal/domain/entity"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewFolderRepository(pool *pgxpool.Pool, log *slog.Logger) *FolderRepository {
	return &FolderRepository{
		pool: pool,
		log:  log.With("component", "folder_repository"),
	}
}

type FolderRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func (r *FolderRepository) Upsert(ctx context.Context, userID string, f entity.Folder) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO folders (user_id, id, name, sort_order, updated_at, deleted)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (user_id, id) DO UPDATE SET
			name       = EXCLUDED.name,
			sort_order = EXCLUDED.sort_order,
			updated_at = EXCLUDED.updated_at,
			deleted    = EXCLUDED.deleted
		 WHERE folders.updated_at <= EXCLUDED.updated_at`,
		userID, f.ID, f.Name, f.SortOrder, f.UpdatedAt.Time, f.Deleted)
	if err != nil {
		return false, fmt.Errorf("upsert folder: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *FolderRepository) SoftDelete(ctx context.Context, userID, id string, at entity.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE folders SET deleted = 1, updated_at = $3 WHERE user_id = $1 AND id = $2`,
		userID, id, at.Time)
	if err != nil {
		return false, fmt.Errorf("soft delete folder: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *FolderRepository) changedSince(ctx context.Context, q querier, userID string, since entity.Time) ([]entity.Folder, error) {
	rows, err := q.Query(ctx,
		`SELECT id, name, sort_order, updated_at, deleted
		 FROM folders WHERE user_id = $1 AND updated_at > $2 ORDER BY updated_at, id`,
		userID, since.Time)
	if err != nil {
		return nil, fmt.Errorf("query folders: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.Folder, error) {
		var f entity.Folder
		var updated time.Time
		err := row.Scan(&f.ID, &f.Name, &f.SortOrder, &updated, &f.Deleted)
		f.UpdatedAt = entity.NewTime(updated)
		return f, err
	})
}
