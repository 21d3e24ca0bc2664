package user

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

type ProviderVerifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// TokenInfoVerifier asks an OAuth token-info endpoint who owns a token.
// The endpoint is expected to answer {"sub": ..., "email": ...}.
type TokenInfoVerifier struct {
	endpoint string
	client   *http.Client
}

func NewTokenInfoVerifier(endpoint string, timeout time.Duration) *TokenInfoVerifier {
	return &TokenInfoVerifier{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

type tokenInfo struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
}

func (v *TokenInfoVerifier) Verify(ctx context.Context, token string) (Identity, error) {
	u, err := url.Parse(v.endpoint)
	if err != nil {
		return Identity{}, fmt.Errorf("parse tokeninfo url: %w", err)
	}
	q := u.Query()
	q.Set("access_token", token)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Identity{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return Identity{}, fmt.Errorf("tokeninfo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return Identity{}, ErrInvalidProviderToken
	}
	if resp.StatusCode != http.StatusOK {
		return Identity{}, fmt.Errorf("tokeninfo status %d", resp.StatusCode)
	}

	var info tokenInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return Identity{}, fmt.Errorf("decode tokeninfo: %w", err)
	}
	if info.Sub == "" {
		return Identity{}, ErrInvalidProviderToken
	}
	return Identity{Subject: info.Sub, Email: info.Email}, nil
}
