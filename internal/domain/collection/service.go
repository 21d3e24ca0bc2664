package collection

import (
	"context"
	"fmt"
	"log/slog"

	"tidemark/internal/domain/entity"
)

type Servicer[T entity.Entity] interface {
	Upsert(ctx context.Context, userID string, e T) error
	Delete(ctx context.Context, userID, id string) error
}

type Service[T entity.Entity] struct {
	repo Repository[T]
	log  *slog.Logger
	now  func() entity.Time
}

func NewService[T entity.Entity](repo Repository[T], log *slog.Logger) *Service[T] {
	var zero T
	return &Service[T]{
		repo: repo,
		log:  log.With("component", string(zero.Kind())+"_service"),
		now:  entity.Now,
	}
}

// Upsert stores e as sent by the caller. The caller's updated_at is never overridden.
func (s *Service[T]) Upsert(ctx context.Context, userID string, e T) error {
	if err := e.Validate(); err != nil {
		s.log.Debug("rejected entity", "id", e.GetID(), "error", err)
		return invalid(err)
	}

	applied, err := s.repo.Upsert(ctx, userID, e)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", e.GetID(), err)
	}
	if !applied {
		s.log.Debug("kept newer stored version", "id", e.GetID(), "updated_at", e.GetUpdatedAt().String())
	}
	return nil
}

// Delete tombstones the entity: deleted=1 and updated_at=now.
func (s *Service[T]) Delete(ctx context.Context, userID, id string) error {
	if id == "" {
		return invalid(fmt.Errorf("%w: id", entity.ErrMissingField))
	}

	found, err := s.repo.SoftDelete(ctx, userID, id, s.now())
	if err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	if !found {
		return ErrNotFound
	}
	return nil
}
