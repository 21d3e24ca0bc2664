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

func NewRecordRepository(pool *pgxpool.Pool, log *slog.Logger) *RecordRepository {
	return &RecordRepository{
		pool: pool,
		log:  log.With("component", "record_repository"),
	}
}

type RecordRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func (r *RecordRepository) Upsert(ctx context.Context, userID string, rec entity.Record) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO records (user_id, id, "timestamp", live_time, title, topic, channel_url, platform, folder_id, sort_order, updated_at, deleted)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 ON CONFLICT (user_id, id) DO UPDATE SET
			"timestamp" = EXCLUDED."timestamp",
			live_time   = EXCLUDED.live_time,
			title       = EXCLUDED.title,
			topic       = EXCLUDED.topic,
			channel_url = EXCLUDED.channel_url,
			platform    = EXCLUDED.platform,
			folder_id   = EXCLUDED.folder_id,
			sort_order  = EXCLUDED.sort_order,
			updated_at  = EXCLUDED.updated_at,
			deleted     = EXCLUDED.deleted
		 WHERE records.updated_at <= EXCLUDED.updated_at`,
		userID, rec.ID, rec.Timestamp, rec.LiveTime, rec.Title, rec.Topic, rec.ChannelURL,
		string(rec.Platform), rec.FolderID, rec.SortOrder, rec.UpdatedAt.Time, rec.Deleted)
	if err != nil {
		return false, fmt.Errorf("upsert record: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *RecordRepository) SoftDelete(ctx context.Context, userID, id string, at entity.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE records SET deleted = 1, updated_at = $3 WHERE user_id = $1 AND id = $2`,
		userID, id, at.Time)
	if err != nil {
		return false, fmt.Errorf("soft delete record: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *RecordRepository) changedSince(ctx context.Context, q querier, userID string, since entity.Time) ([]entity.Record, error) {
	rows, err := q.Query(ctx,
		`SELECT id, "timestamp", live_time, title, topic, channel_url, platform, folder_id, sort_order, updated_at, deleted
		 FROM records WHERE user_id = $1 AND updated_at > $2 ORDER BY updated_at, id`,
		userID, since.Time)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.Record, error) {
		var rec entity.Record
		var platform string
		var updated time.Time
		err := row.Scan(&rec.ID, &rec.Timestamp, &rec.LiveTime, &rec.Title, &rec.Topic, &rec.ChannelURL,
			&platform, &rec.FolderID, &rec.SortOrder, &updated, &rec.Deleted)
		rec.Platform = entity.Platform(platform)
		rec.UpdatedAt = entity.NewTime(updated)
		return rec, err
	})
}
