package user

import (
	"context"
	"errors"
	"log/slog"

	"tidemark/internal/domain/session"
	"tidemark/internal/domain/user"

	"github.com/danielgtaylor/huma/v2"
)

type Handler struct {
	service    user.Servicer
	session    session.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service user.Servicer, session session.Servicer, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		session:    session,
		log:        log.With("component", "auth_handler"),
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.registerOp(), h.register)
	huma.Register(api, h.loginOp(), h.login)
	huma.Register(api, h.exchangeOp(), h.exchange)
}

func (h *Handler) register(ctx context.Context, input *credentialsInput) (*authOutput, error) {
	u, err := h.service.Register(ctx, input.Body.Email, input.Body.Password)
	if err != nil {
		return nil, h.mapError(err)
	}
	h.log.Info("user registered", "user_id", u.ID)
	return h.issue(ctx, u)
}

func (h *Handler) login(ctx context.Context, input *credentialsInput) (*authOutput, error) {
	u, err := h.service.Authenticate(ctx, input.Body.Email, input.Body.Password)
	if err != nil {
		return nil, h.mapError(err)
	}
	return h.issue(ctx, u)
}

func (h *Handler) exchange(ctx context.Context, input *exchangeInput) (*authOutput, error) {
	u, err := h.service.Exchange(ctx, input.Body.ProviderToken)
	if err != nil {
		return nil, h.mapError(err)
	}
	return h.issue(ctx, u)
}

func (h *Handler) issue(ctx context.Context, u user.User) (*authOutput, error) {
	token, err := h.session.Create(ctx, u.ID, u.Email)
	if err != nil {
		h.log.Error("issue token", "error", err)
		return nil, huma.Error500InternalServerError("could not issue token")
	}
	return &authOutput{
		Body: AuthResponse{
			Token: token,
			User:  Account{ID: u.ID, Email: u.Email},
		},
	}, nil
}

func (h *Handler) mapError(err error) error {
	switch {
	case errors.Is(err, user.ErrInvalidInput):
		return huma.Error400BadRequest(err.Error())
	case errors.Is(err, user.ErrAlreadyExists):
		return huma.Error409Conflict("user already exists")
	case errors.Is(err, user.ErrInvalidAuth):
		return huma.Error401Unauthorized("invalid credentials")
	case errors.Is(err, user.ErrInvalidProviderToken):
		return huma.Error401Unauthorized(err.Error())
	}
	h.log.Error("auth failed", "error", err)
	return huma.Error500InternalServerError("internal error")
}
