package auth

import (
	"context"
	"log/slog"
	"net/http"
	"testing"

	"tidemark/internal/domain/session"
	"tidemark/internal/utils/humautil"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockSession struct {
	mock.Mock
}

func (m *MockSession) Create(ctx context.Context, userID, email string) (string, error) {
	args := m.Called(ctx, userID, email)
	return args.String(0), args.Error(1)
}

func (m *MockSession) Validate(ctx context.Context, token string) (session.Identity, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(session.Identity), args.Error(1)
}

type whoamiOutput struct {
	Body struct {
		UserID string `json:"user_id"`
	}
}

func TestAuth_Middleware(t *testing.T) {
	sess := new(MockSession)
	sess.On("Validate", mock.Anything, "good").Return(session.Identity{UserID: "u1"}, nil)
	sess.On("Validate", mock.Anything, "old").Return(session.Identity{}, session.ErrTokenExpired)
	sess.On("Validate", mock.Anything, "bad").Return(session.Identity{}, session.ErrInvalidToken)

	_, api := humatest.New(t, humautil.Config("test", "1.0.0"))
	mw := New(sess, slog.Default())
	huma.Register(api, huma.Operation{
		OperationID: "whoami",
		Method:      http.MethodGet,
		Path:        "/whoami",
		Middlewares: huma.Middlewares{mw.Middleware()},
	}, func(ctx context.Context, _ *struct{}) (*whoamiOutput, error) {
		out := &whoamiOutput{}
		out.Body.UserID, _ = GetUserID(ctx)
		return out, nil
	})

	tests := []struct {
		name       string
		header     []any
		wantStatus int
		wantBody   string
	}{
		{name: "valid", header: []any{"Authorization: Bearer good"}, wantStatus: http.StatusOK, wantBody: `{"user_id":"u1"}`},
		{name: "missing", wantStatus: http.StatusUnauthorized, wantBody: `{"error":"missing bearer token"}`},
		{name: "wrong scheme", header: []any{"Authorization: Basic abc"}, wantStatus: http.StatusUnauthorized, wantBody: `{"error":"missing bearer token"}`},
		{name: "expired", header: []any{"Authorization: Bearer old"}, wantStatus: http.StatusUnauthorized, wantBody: `{"error":"token expired"}`},
		{name: "invalid", header: []any{"Authorization: Bearer bad"}, wantStatus: http.StatusUnauthorized, wantBody: `{"error":"invalid token"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := api.Get("/whoami", tt.header...)
			assert.Equal(t, tt.wantStatus, resp.Code)
			assert.JSONEq(t, tt.wantBody, resp.Body.String())
		})
	}
}

func TestGetUserID(t *testing.T) {
	_, ok := GetUserID(context.Background())
	assert.False(t, ok)

	id, ok := GetUserID(WithUserID(context.Background(), "u1"))
	assert.True(t, ok)
	assert.Equal(t, "u1", id)
}
