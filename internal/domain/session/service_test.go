package session

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_CreateValidate(t *testing.T) {
	svc := NewService("secret", time.Hour, slog.Default())

	token, err := svc.Create(context.Background(), "u-1", "ann@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	identity, err := svc.Validate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, Identity{UserID: "u-1", Email: "ann@example.com"}, identity)
}

func TestService_Claims(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := NewService("secret", time.Hour, slog.Default())
	svc.now = func() time.Time { return fixed }

	token, err := svc.Create(context.Background(), "u-1", "ann@example.com")
	require.NoError(t, err)

	claims := &Claims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.Subject)
	assert.Equal(t, "ann@example.com", claims.Email)
	assert.Equal(t, fixed.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, fixed.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
}

func TestService_Validate_Errors(t *testing.T) {
	svc := NewService("secret", time.Hour, slog.Default())

	expiredSvc := NewService("secret", time.Hour, slog.Default())
	expiredSvc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := expiredSvc.Create(context.Background(), "u-1", "")
	require.NoError(t, err)

	foreign, err := NewService("other", time.Hour, slog.Default()).Create(context.Background(), "u-1", "")
	require.NoError(t, err)

	noSub, err := svc.Create(context.Background(), "", "")
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "expired", token: expired, wantErr: ErrTokenExpired},
		{name: "wrong secret", token: foreign, wantErr: ErrInvalidToken},
		{name: "garbage", token: "not.a.jwt", wantErr: ErrInvalidToken},
		{name: "empty", token: "", wantErr: ErrInvalidToken},
		{name: "missing subject", token: noSub, wantErr: ErrInvalidToken},
		{name: "unsigned", token: none, wantErr: ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Validate(context.Background(), tt.token)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
