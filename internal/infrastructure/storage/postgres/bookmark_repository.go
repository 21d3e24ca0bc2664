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

func NewChannelBookmarkRepository(pool *pgxpool.Pool, log *slog.Logger) *ChannelBookmarkRepository {
	return &ChannelBookmarkRepository{
		pool: pool,
		log:  log.With("component", "channel_bookmark_repository"),
	}
}

type ChannelBookmarkRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func (r *ChannelBookmarkRepository) Upsert(ctx context.Context, userID string, b entity.ChannelBookmark) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO channel_bookmarks (user_id, id, channel_id, channel_name, platform, notes, sort_order, updated_at, deleted)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (user_id, id) DO UPDATE SET
			channel_id   = EXCLUDED.channel_id,
			channel_name = EXCLUDED.channel_name,
			platform     = EXCLUDED.platform,
			notes        = EXCLUDED.notes,
			sort_order   = EXCLUDED.sort_order,
			updated_at   = EXCLUDED.updated_at,
			deleted      = EXCLUDED.deleted
		 WHERE channel_bookmarks.updated_at <= EXCLUDED.updated_at`,
		userID, b.ID, b.ChannelID, b.ChannelName, string(b.Platform), b.Notes, b.SortOrder, b.UpdatedAt.Time, b.Deleted)
	if err != nil {
		return false, fmt.Errorf("upsert channel bookmark: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *ChannelBookmarkRepository) SoftDelete(ctx context.Context, userID, id string, at entity.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE channel_bookmarks SET deleted = 1, updated_at = $3 WHERE user_id = $1 AND id = $2`,
		userID, id, at.Time)
	if err != nil {
		return false, fmt.Errorf("soft delete channel bookmark: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *ChannelBookmarkRepository) changedSince(ctx context.Context, q querier, userID string, since entity.Time) ([]entity.ChannelBookmark, error) {
	rows, err := q.Query(ctx,
		`SELECT id, channel_id, channel_name, platform, notes, sort_order, updated_at, deleted
		 FROM channel_bookmarks WHERE user_id = $1 AND updated_at > $2 ORDER BY updated_at, id`,
		userID, since.Time)
	if err != nil {
		return nil, fmt.Errorf("query channel bookmarks: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.ChannelBookmark, error) {
		var b entity.ChannelBookmark
		var platform string
		var updated time.Time
		err := row.Scan(&b.ID, &b.ChannelID, &b.ChannelName, &platform, &b.Notes, &b.SortOrder, &updated, &b.Deleted)
		b.Platform = entity.Platform(platform)
		b.UpdatedAt = entity.NewTime(updated)
		return b, err
	})
}
