package collection

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"tidemark/internal/app/server/api/http/middleware/auth"
	"tidemark/internal/domain/collection"
	"tidemark/internal/domain/entity"

	"github.com/danielgtaylor/huma/v2"
)

// Handler serves POST and DELETE for one collection.
type Handler[T entity.Entity] struct {
	service    collection.Servicer[T]
	kind       entity.Kind
	tag        string
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler[T entity.Entity](service collection.Servicer[T], log *slog.Logger, mws huma.Middlewares) *Handler[T] {
	var zero T
	kind := zero.Kind()
	return &Handler[T]{
		service:    service,
		kind:       kind,
		tag:        strings.TrimPrefix(kind.Path(), "/"),
		log:        log.With("component", string(kind)+"_handler"),
		middleware: mws,
	}
}

func (h *Handler[T]) SetupRoutes(api huma.API) {
	huma.Register(api, h.upsertOp(), h.upsert)
	huma.Register(api, h.deleteOp(), h.delete)
}

func (h *Handler[T]) upsert(ctx context.Context, input *upsertInput[T]) (*output, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("unauthorized")
	}

	if err := h.service.Upsert(ctx, userID, input.Body); err != nil {
		return nil, h.mapError(err)
	}
	return &output{Body: Response{Success: true, ID: input.Body.GetID()}}, nil
}

func (h *Handler[T]) delete(ctx context.Context, input *deleteInput) (*output, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("unauthorized")
	}

	if err := h.service.Delete(ctx, userID, input.ID); err != nil {
		return nil, h.mapError(err)
	}
	return &output{Body: Response{Success: true, ID: input.ID}}, nil
}

func (h *Handler[T]) mapError(err error) error {
	switch {
	case errors.Is(err, collection.ErrInvalidInput):
		return huma.Error400BadRequest(err.Error())
	case errors.Is(err, collection.ErrNotFound):
		return huma.Error404NotFound(string(h.kind) + " not found")
	}
	h.log.Error("persistence failed", "error", err)
	return huma.Error500InternalServerError("persistence failed")
}
