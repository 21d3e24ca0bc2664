package peer

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *pingHandler) pingOp() huma.Operation {
	return huma.Operation{
		OperationID: "ping",
		Method:      http.MethodGet,
		Path:        "/ping",
		Summary:     "Identify this peer",
		Tags:        []string{"peer"},
	}
}

func (h *applyHandler[T]) applyOp() huma.Operation {
	return huma.Operation{
		OperationID: h.tag + "-apply",
		Method:      http.MethodPost,
		Path:        h.kind.Path(),
		Summary:     "Apply a direct push",
		Description: "Stores the entity unless the local copy has a newer updated_at. A tombstone removes it.",
		Tags:        []string{h.tag},
	}
}
