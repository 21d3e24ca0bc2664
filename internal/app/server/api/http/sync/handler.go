package sync

import (
	"context"
	"errors"
	"log/slog"

	"tidemark/internal/app/server/api/http/middleware/auth"
	"tidemark/internal/domain/sync"

	"github.com/danielgtaylor/huma/v2"
)

type Handler struct {
	service    sync.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service sync.Servicer, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log.With("component", "sync_handler"),
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.pullOp(), h.pull)
}

func (h *Handler) pull(ctx context.Context, input *pullInput) (*pullOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("unauthorized")
	}

	delta, err := h.service.Pull(ctx, userID, input.Since)
	if errors.Is(err, sync.ErrInvalidCursor) {
		return nil, huma.Error400BadRequest(err.Error())
	}
	if err != nil {
		h.log.Error("pull failed", "error", err)
		return nil, huma.Error500InternalServerError("pull failed")
	}
	return &pullOutput{Body: delta}, nil
}
