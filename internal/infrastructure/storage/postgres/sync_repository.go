package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"tidemark/internal/domain/entity"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewSyncRepository(pool *pgxpool.Pool, log *slog.Logger) *SyncRepository {
	return &SyncRepository{
		pool:      pool,
		records:   NewRecordRepository(pool, log),
		folders:   NewFolderRepository(pool, log),
		bookmarks: NewChannelBookmarkRepository(pool, log),
		log:       log.With("component", "sync_repository"),
	}
}

type SyncRepository struct {
	pool      *pgxpool.Pool
	records   *RecordRepository
	folders   *FolderRepository
	bookmarks *ChannelBookmarkRepository
	log       *slog.Logger
}

// ChangedSince reads the three collections inside one read-only repeatable read
// transaction, so a delta never mixes two points in time.
func (r *SyncRepository) ChangedSince(ctx context.Context, userID string, since entity.Time) (entity.Delta, error) {
	var delta entity.Delta

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return delta, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			r.log.Warn("rollback failed", "error", rbErr)
		}
	}()

	if delta.Records, err = r.records.changedSince(ctx, tx, userID, since); err != nil {
		return delta, err
	}
	if delta.Folders, err = r.folders.changedSince(ctx, tx, userID, since); err != nil {
		return delta, err
	}
	if delta.ChannelBookmarks, err = r.bookmarks.changedSince(ctx, tx, userID, since); err != nil {
		return delta, err
	}

	if err := tx.Commit(ctx); err != nil {
		return delta, fmt.Errorf("commit tx: %w", err)
	}
	return delta, nil
}
