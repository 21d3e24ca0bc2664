// Package remote talks to the tidemark sync service.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	gosync "sync"
	"time"

	"tidemark/internal/domain/entity"
	"tidemark/internal/syncerr"
)

const defaultTimeout = 30 * time.Second

// User is the account a session belongs to.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is what every auth endpoint returns.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Client talks to the sync service over HTTP with a bearer token.
type Client struct {
	client    *http.Client
	log       *slog.Logger
	baseURL   string
	userAgent string

	mu    gosync.RWMutex
	token string
}

// New returns a client for the service at baseURL, without a token.
func New(baseURL string, log *slog.Logger) *Client {
	return &Client{
		client: &http.Client{
			Timeout: defaultTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				IdleConnTimeout:     90 * time.Second,
				MaxIdleConnsPerHost: 10,
			},
		},
		log:       log.With("component", "remote_client"),
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: "tidemark-client/1.0",
	}
}

// SetToken sets the bearer token sent with every request. Empty clears it.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Pull fetches every change newer than since.
func (c *Client) Pull(ctx context.Context, since entity.Time) (entity.Delta, error) {
	var delta entity.Delta
	path := "/sync?since=" + url.QueryEscape(since.String())
	err := c.do(ctx, "pull", http.MethodGet, path, nil, &delta)
	return delta, err
}

// Push posts one entity, tombstones included, to its collection.
func (c *Client) Push(ctx context.Context, kind entity.Kind, payload json.RawMessage) error {
	return c.do(ctx, "push "+string(kind), http.MethodPost, kind.Path(), payload, nil)
}

// Delete soft-deletes an entity by id.
func (c *Client) Delete(ctx context.Context, kind entity.Kind, id string) error {
	return c.do(ctx, "delete "+string(kind), http.MethodDelete, kind.Path()+"/"+url.PathEscape(id), nil, nil)
}

// Exchange trades a provider token for a session.
func (c *Client) Exchange(ctx context.Context, providerToken string) (Session, error) {
	var s Session
	err := c.do(ctx, "exchange", http.MethodPost, "/auth/exchange", map[string]string{"provider_token": providerToken}, &s)
	return s, err
}

func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	var s Session
	err := c.do(ctx, "login", http.MethodPost, "/auth/login", map[string]string{"email": email, "password": password}, &s)
	return s, err
}

func (c *Client) Register(ctx context.Context, email, password string) (Session, error) {
	var s Session
	err := c.do(ctx, "register", http.MethodPost, "/auth/register", map[string]string{"email": email, "password": password}, &s)
	return s, err
}

func (c *Client) do(ctx context.Context, op, method, path string, body, result any) error {
	resp, err := c.doRequest(ctx, op, method, path, body)
	if err != nil {
		return err
	}
	return c.parseResponse(op, resp, result)
}

func (c *Client) doRequest(ctx context.Context, op, method, path string, body any) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		var data []byte
		switch b := body.(type) {
		case json.RawMessage:
			data = b
		default:
			var err error
			if data, err = json.Marshal(body); err != nil {
				return nil, syncerr.Fatal(syncerr.Validation, op, "encode body", err)
			}
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, syncerr.Fatal(syncerr.Validation, op, "build request", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.log.Debug("sending request", "method", method, "path", path)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, syncerr.FromTransport(op, err)
	}
	return resp, nil
}

func (c *Client) parseResponse(op string, resp *http.Response, result any) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return syncerr.FromTransport(op, err)
	}

	c.log.Debug("received response", "op", op, "status", resp.StatusCode)

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		msg := http.StatusText(resp.StatusCode)
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
			msg = errResp.Error
		}
		return syncerr.FromStatus(op, resp.StatusCode, msg)
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return syncerr.Retryable(op, fmt.Sprintf("decode response (status %d)", resp.StatusCode), err)
		}
	}
	return nil
}
