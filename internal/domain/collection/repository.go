package collection

import (
	"context"

	"tidemark/internal/domain/entity"
)

type Repository[T entity.Entity] interface {
	// Upsert inserts e or replaces the stored row when e.updated_at is not older.
	// applied is false when a newer row was kept.
	Upsert(ctx context.Context, userID string, e T) (applied bool, err error)
	// SoftDelete marks the row deleted at the given time. found is false when no row matched.
	SoftDelete(ctx context.Context, userID, id string, at entity.Time) (found bool, err error)
}
