package peer

import (
	"context"
	"log/slog"
	"strings"

	"tidemark/internal/app/client/direct"
	"tidemark/internal/domain/entity"

	"github.com/danielgtaylor/huma/v2"
)

type pingHandler struct{}

func (h *pingHandler) SetupRoutes(api huma.API) {
	huma.Register(api, h.pingOp(), h.ping)
}

func (h *pingHandler) ping(_ context.Context, _ *struct{}) (*pingOutput, error) {
	return &pingOutput{Body: PingResponse{App: direct.AppName}}, nil
}

type applyHandler[T entity.Entity] struct {
	apply func(context.Context, T) (bool, error)
	kind  entity.Kind
	tag   string
	log   *slog.Logger
}

func newApplyHandler[T entity.Entity](apply func(context.Context, T) (bool, error), log *slog.Logger) *applyHandler[T] {
	var zero T
	kind := zero.Kind()
	return &applyHandler[T]{
		apply: apply,
		kind:  kind,
		tag:   strings.TrimPrefix(kind.Path(), "/"),
		log:   log.With("component", "peer_"+string(kind)),
	}
}

func (h *applyHandler[T]) SetupRoutes(api huma.API) {
	huma.Register(api, h.applyOp(), h.handle)
}

func (h *applyHandler[T]) handle(ctx context.Context, input *applyInput[T]) (*applyOutput, error) {
	item := input.Body
	if err := item.Validate(); err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}

	applied, err := h.apply(ctx, item)
	if err != nil {
		h.log.Error("apply failed", "id", item.GetID(), "error", err)
		return nil, huma.Error500InternalServerError("apply failed")
	}
	h.log.Debug("direct push", "id", item.GetID(), "applied", applied, "deleted", item.IsDeleted())

	return &applyOutput{Body: ApplyResponse{Success: true, ID: item.GetID(), Applied: applied}}, nil
}
