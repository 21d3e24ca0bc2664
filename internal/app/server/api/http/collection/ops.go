package collection

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler[T]) upsertOp() huma.Operation {
	return huma.Operation{
		OperationID: h.tag + "-upsert",
		Method:      http.MethodPost,
		Path:        h.kind.Path(),
		Summary:     "Create or replace an entity",
		Description: "Idempotent upsert keyed by id. A stored row with a newer updated_at is kept.",
		Tags:        []string{h.tag},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler[T]) deleteOp() huma.Operation {
	return huma.Operation{
		OperationID: h.tag + "-delete",
		Method:      http.MethodDelete,
		Path:        h.kind.Path() + "/{id}",
		Summary:     "Soft delete an entity",
		Description: "Marks the entity deleted and bumps updated_at so the tombstone reaches every client.",
		Tags:        []string{h.tag},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}
