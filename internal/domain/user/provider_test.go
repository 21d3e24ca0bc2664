package user

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenInfoVerifier_Verify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("access_token") {
		case "good":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"sub":"g-42","email":"ann@example.com","aud":"x"}`))
		case "nosub":
			_, _ = w.Write([]byte(`{"email":"ann@example.com"}`))
		case "down":
			w.WriteHeader(http.StatusBadGateway)
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	defer srv.Close()

	v := NewTokenInfoVerifier(srv.URL+"/tokeninfo", time.Second)

	identity, err := v.Verify(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, Identity{Subject: "g-42", Email: "ann@example.com"}, identity)

	_, err = v.Verify(context.Background(), "bogus")
	assert.ErrorIs(t, err, ErrInvalidProviderToken)

	_, err = v.Verify(context.Background(), "nosub")
	assert.ErrorIs(t, err, ErrInvalidProviderToken)

	_, err = v.Verify(context.Background(), "down")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidProviderToken)
}
