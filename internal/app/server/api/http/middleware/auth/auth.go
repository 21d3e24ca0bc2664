package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"tidemark/internal/domain/session"

	"github.com/danielgtaylor/huma/v2"
)

type Auth struct {
	session session.Servicer
	log     *slog.Logger
}

func New(session session.Servicer, log *slog.Logger) *Auth {
	return &Auth{
		session: session,
		log:     log.With("component", "auth_middleware"),
	}
}

type contextKey string

const userIDKey contextKey = "userID"

const bearerPrefix = "Bearer "

// Middleware rejects requests without a valid Bearer JWT and stores the user id in the context.
func (a *Auth) Middleware() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		header := ctx.Header("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) || strings.TrimSpace(header[len(bearerPrefix):]) == "" {
			a.unauthorized(ctx, "missing bearer token")
			return
		}

		identity, err := a.session.Validate(ctx.Context(), strings.TrimSpace(header[len(bearerPrefix):]))
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, session.ErrTokenExpired) {
				msg = "token expired"
			}
			a.log.Debug("token rejected", "error", err, "path", ctx.URL().Path)
			a.unauthorized(ctx, msg)
			return
		}

		next(huma.WithContext(ctx, WithUserID(ctx.Context(), identity.UserID)))
	}
}

func (a *Auth) unauthorized(ctx huma.Context, msg string) {
	ctx.SetHeader("Content-Type", "application/json")
	ctx.SetStatus(http.StatusUnauthorized)
	if err := json.NewEncoder(ctx.BodyWriter()).Encode(map[string]string{"error": msg}); err != nil {
		a.log.Error("write unauthorized response", "error", err)
	}
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}
