// Package direct pushes mutations straight to a desktop peer on the local
// network when one answers, and buffers them while it does not.
package direct

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"tidemark/internal/domain/entity"
)

const (
	// BufferKey is the KV key the buffer is persisted under.
	BufferKey = "direct_buffer"
	// AppName is what a peer must answer on /ping.
	AppName = "tidemark"

	DefaultProbeInterval = 10 * time.Second
	DefaultProbeTimeout  = 3 * time.Second
	DefaultPushTimeout   = 5 * time.Second
	DefaultBufferLimit   = 100
)

var ErrWrongPeer = errors.New("peer is not a tidemark client")

// BufferStore persists the buffer across restarts.
type BufferStore interface {
	GetJSON(ctx context.Context, key string, v any) (bool, error)
	PutJSON(ctx context.Context, key string, v any) error
}

type Config struct {
	PeerURL       string
	ProbeInterval time.Duration
	ProbeTimeout  time.Duration
	PushTimeout   time.Duration
	BufferLimit   int
}

func (c *Config) setDefaults() {
	if c.ProbeInterval <= 0 {
		c.ProbeInterval = DefaultProbeInterval
	}
	if c.ProbeTimeout <= 0 {
		c.ProbeTimeout = DefaultProbeTimeout
	}
	if c.PushTimeout <= 0 {
		c.PushTimeout = DefaultPushTimeout
	}
	if c.BufferLimit <= 0 {
		c.BufferLimit = DefaultBufferLimit
	}
	c.PeerURL = strings.TrimRight(c.PeerURL, "/")
}

// Item is one push waiting for the peer.
type Item struct {
	ID         string          `json:"id"`
	Endpoint   string          `json:"endpoint"`
	Body       json.RawMessage `json:"body"`
	BufferedAt entity.Time     `json:"buffered_at"`
}

type Monitor struct {
	cfg    Config
	client *http.Client
	store  BufferStore
	log    *slog.Logger

	mu        sync.Mutex // guards available, replaying and buffer
	available bool
	replaying bool
	buffer    []Item

	replayMu sync.Mutex
}

func NewMonitor(cfg Config, store BufferStore, log *slog.Logger) *Monitor {
	cfg.setDefaults()
	return &Monitor{
		cfg:    cfg,
		client: &http.Client{},
		store:  store,
		log:    log.With("component", "direct_monitor", "peer", cfg.PeerURL),
		buffer: []Item{},
	}
}

// Load restores the persisted buffer.
func (m *Monitor) Load(ctx context.Context) error {
	var items []Item
	ok, err := m.store.GetJSON(ctx, BufferKey, &items)
	if err != nil {
		return fmt.Errorf("load direct buffer: %w", err)
	}
	if !ok {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.buffer = items
	m.evict()
	return nil
}

// Start probes immediately and then on every interval until ctx is done.
func (m *Monitor) Start(ctx context.Context) error {
	m.log.Info("direct monitor started", "interval", m.cfg.ProbeInterval)

	m.Probe(ctx)

	ticker := time.NewTicker(m.cfg.ProbeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.log.Info("direct monitor stopped")
			return nil
		case <-ticker.C:
			m.Probe(ctx)
		}
	}
}

// Probe checks the peer and updates availability. Coming back online replays the buffer.
func (m *Monitor) Probe(ctx context.Context) bool {
	err := m.Ping(ctx)
	ok := err == nil

	switch was := m.observe(ok); {
	case ok && !was:
		m.log.Info("peer available")
		m.replayMu.Lock()
		_, err := m.replay(ctx)
		m.replayMu.Unlock()
		if err != nil {
			m.log.Warn("replay stopped", "error", err)
		}
	case !ok && was:
		m.log.Info("peer unavailable", "error", err)
	}
	return ok
}

// observe records a probe result. Becoming available marks a replay as
// running in the same step, so no direct push can overtake the buffer.
func (m *Monitor) observe(ok bool) (was bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	was = m.available
	m.available = ok
	if ok && !was {
		m.replaying = true
	}
	return was
}

// Ping asks the peer who it is.
func (m *Monitor) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.ProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.cfg.PeerURL+"/ping", nil)
	if err != nil {
		return err
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("ping: status %d", resp.StatusCode)
	}

	var body struct {
		App string `json:"app"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body); err != nil {
		return fmt.Errorf("ping: %w: %v", ErrWrongPeer, err)
	}
	if body.App != AppName {
		return fmt.Errorf("ping: %w: app %q", ErrWrongPeer, body.App)
	}
	return nil
}

func (m *Monitor) Available() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.available
}

// TryDirectPush posts body to the peer. It returns false, with the push
// buffered, when the peer is unavailable or the push fails. No request is made
// while the peer is unavailable or a replay is running.
func (m *Monitor) TryDirectPush(ctx context.Context, endpoint string, body []byte) bool {
	m.mu.Lock()
	direct := m.available && !m.replaying
	m.mu.Unlock()

	if !direct {
		m.bufferPush(ctx, endpoint, body)
		return false
	}

	if err := m.push(ctx, endpoint, body); err != nil {
		m.log.Warn("direct push failed, peer marked unavailable", "endpoint", endpoint, "error", err)
		m.setAvailable(false)
		m.bufferPush(ctx, endpoint, body)
		return false
	}
	return true
}

// Replay pushes buffered items oldest first and stops at the first failure,
// keeping the failed item and everything after it. A replay already running
// makes this a no-op.
func (m *Monitor) Replay(ctx context.Context) (int, error) {
	if !m.replayMu.TryLock() {
		return 0, nil
	}
	defer m.replayMu.Unlock()
	return m.replay(ctx)
}

// replay drains the buffer. replayMu must be held.
func (m *Monitor) replay(ctx context.Context) (int, error) {
	m.mu.Lock()
	m.replaying = true
	m.mu.Unlock()

	pushed := 0
	for {
		m.mu.Lock()
		if len(m.buffer) == 0 {
			m.replaying = false
			m.mu.Unlock()
			break
		}
		item := m.buffer[0]
		m.mu.Unlock()

		if err := m.push(ctx, item.Endpoint, item.Body); err != nil {
			m.mu.Lock()
			m.replaying = false
			m.available = false
			m.mu.Unlock()
			return pushed, fmt.Errorf("replay %s: %w", item.Endpoint, err)
		}

		m.mu.Lock()
		m.buffer = slices.DeleteFunc(m.buffer, func(it Item) bool { return it.ID == item.ID })
		m.persist(ctx)
		m.mu.Unlock()
		pushed++
	}

	if pushed > 0 {
		m.log.Info("buffer replayed", "pushed", pushed)
	}
	return pushed, nil
}

// Snapshot returns a copy of the buffer, oldest first.
func (m *Monitor) Snapshot() []Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.buffer)
}

func (m *Monitor) push(ctx context.Context, endpoint string, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.PushTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.PeerURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("push: status %d", resp.StatusCode)
	}
	return nil
}

func (m *Monitor) setAvailable(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.available = v
}

func (m *Monitor) bufferPush(ctx context.Context, endpoint string, body []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.buffer = append(m.buffer, Item{
		ID:         uuid.NewString(),
		Endpoint:   endpoint,
		Body:       slices.Clone(body),
		BufferedAt: entity.Now(),
	})
	m.evict()
	m.persist(ctx)
}

// evict drops the oldest items beyond the limit. mu must be held.
func (m *Monitor) evict() {
	if over := len(m.buffer) - m.cfg.BufferLimit; over > 0 {
		m.log.Debug("buffer full, oldest dropped", "dropped", over)
		m.buffer = slices.Clone(m.buffer[over:])
	}
}

// persist writes the buffer. mu must be held.
func (m *Monitor) persist(ctx context.Context) {
	if err := m.store.PutJSON(context.WithoutCancel(ctx), BufferKey, m.buffer); err != nil {
		m.log.Error("failed to persist direct buffer", "error", err)
	}
}
