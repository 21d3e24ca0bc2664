package sync

import (
	"context"

	"tidemark/internal/domain/entity"
)

type Repository interface {
	// ChangedSince returns every entity of the user with updated_at strictly after since,
	// tombstones included, read from one consistent snapshot.
	ChangedSince(ctx context.Context, userID string, since entity.Time) (entity.Delta, error)
}
