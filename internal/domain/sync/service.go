package sync

import (
	"context"
	"fmt"
	"log/slog"

	"tidemark/internal/domain/entity"
)

type Servicer interface {
	Pull(ctx context.Context, userID, since string) (entity.Delta, error)
}

type Service struct {
	repo Repository
	log  *slog.Logger
	now  func() entity.Time
}

func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With("component", "sync_service"),
		now:  entity.Now,
	}
}

// Pull returns the changes after since. An empty since means the epoch.
// synced_at is taken before reading so a write racing the pull is seen again next time.
func (s *Service) Pull(ctx context.Context, userID, since string) (entity.Delta, error) {
	cursor := entity.Epoch
	if since != "" {
		t, err := entity.ParseTime(since)
		if err != nil {
			return entity.Delta{}, fmt.Errorf("%w: %q", ErrInvalidCursor, since)
		}
		cursor = t
	}

	syncedAt := s.now()
	delta, err := s.repo.ChangedSince(ctx, userID, cursor)
	if err != nil {
		return entity.Delta{}, fmt.Errorf("changes since %s: %w", cursor, err)
	}

	delta.SyncedAt = syncedAt
	if delta.Records == nil {
		delta.Records = []entity.Record{}
	}
	if delta.Folders == nil {
		delta.Folders = []entity.Folder{}
	}
	if delta.ChannelBookmarks == nil {
		delta.ChannelBookmarks = []entity.ChannelBookmark{}
	}
	entity.SortByUpdatedAt(delta.Records)
	entity.SortByUpdatedAt(delta.Folders)
	entity.SortByUpdatedAt(delta.ChannelBookmarks)

	s.log.Debug("pull",
		"user_id", userID,
		"since", cursor.String(),
		"records", len(delta.Records),
		"folders", len(delta.Folders),
		"channel_bookmarks", len(delta.ChannelBookmarks),
	)
	return delta, nil
}
