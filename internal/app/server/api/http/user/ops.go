package user

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) registerOp() huma.Operation {
	return huma.Operation{
		OperationID: "auth-register",
		Method:      http.MethodPost,
		Path:        "/auth/register",
		Summary:     "Create a password account",
		Tags:        []string{"auth"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) loginOp() huma.Operation {
	return huma.Operation{
		OperationID: "auth-login",
		Method:      http.MethodPost,
		Path:        "/auth/login",
		Summary:     "Sign in with email and password",
		Tags:        []string{"auth"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) exchangeOp() huma.Operation {
	return huma.Operation{
		OperationID: "auth-exchange",
		Method:      http.MethodPost,
		Path:        "/auth/exchange",
		Summary:     "Trade an identity provider token for a sync token",
		Tags:        []string{"auth"},
		Middlewares: h.middleware,
	}
}
