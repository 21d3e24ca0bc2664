// Package sync is the offline-first sync engine of the client: it applies
// mutations locally, pushes them to the remote service, queues what could not
// be delivered and merges remote changes on every poll tick.
package sync

import (
	"context"
	"encoding/json"
	"log/slog"
	gosync "sync"
	"time"

	"github.com/google/uuid"

	"tidemark/internal/app/client/remote"
	"tidemark/internal/domain/entity"
)

// DefaultPollInterval is the pause between the end of one pull and the next.
const DefaultPollInterval = 4 * time.Second

// Remote is the sync service as seen by the engine.
type Remote interface {
	SetToken(token string)
	Pull(ctx context.Context, since entity.Time) (entity.Delta, error)
	Push(ctx context.Context, kind entity.Kind, payload json.RawMessage) error
	Delete(ctx context.Context, kind entity.Kind, id string) error
	Exchange(ctx context.Context, providerToken string) (remote.Session, error)
	Login(ctx context.Context, email, password string) (remote.Session, error)
	Register(ctx context.Context, email, password string) (remote.Session, error)
}

// LocalStore holds the entities of the signed-in user on this device.
type LocalStore interface {
	Snapshot(ctx context.Context) (entity.Snapshot, error)
	ReplaceAll(ctx context.Context, snap entity.Snapshot) error
	SaveRecord(ctx context.Context, r entity.Record) (bool, error)
	SaveFolder(ctx context.Context, f entity.Folder) (bool, error)
	SaveBookmark(ctx context.Context, b entity.ChannelBookmark) (bool, error)
	DeleteRecord(ctx context.Context, id string) (entity.Record, bool, error)
	DeleteFolder(ctx context.Context, id string) (entity.Folder, bool, error)
	DeleteBookmark(ctx context.Context, id string) (entity.ChannelBookmark, bool, error)
}

// StateStore persists the engine state between runs.
type StateStore interface {
	GetJSON(ctx context.Context, key string, v any) (bool, error)
	PutJSON(ctx context.Context, key string, v any) error
}

// DirectPusher delivers a mutation to a peer on the local network.
type DirectPusher interface {
	TryDirectPush(ctx context.Context, endpoint string, body []byte) bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithPollInterval overrides DefaultPollInterval. Non-positive values are ignored.
func WithPollInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.interval = d
		}
	}
}

// WithDirect hands every mutation to a local peer before the remote push.
func WithDirect(d DirectPusher) Option {
	return func(e *Engine) { e.direct = d }
}

// WithClock replaces the clock used for updated_at and event times.
func WithClock(now func() entity.Time) Option {
	return func(e *Engine) { e.now = now }
}

// Engine keeps the local store and the remote service in sync.
type Engine struct {
	remote   Remote
	local    LocalStore
	states   StateStore
	direct   DirectPusher
	log      *slog.Logger
	interval time.Duration
	now      func() entity.Time
	newID    func() string

	mu      gosync.Mutex // guards state and subs
	state   State
	subs    map[int]chan Event
	nextSub int

	pullMu  gosync.Mutex // one pull at a time
	pushMu  gosync.Mutex // serialises dispatch and drain
	localMu gosync.Mutex // local writes vs the snapshot/replace window of a pull
}

// New builds an engine in the offline state. Call Load to restore a persisted one.
func New(r Remote, local LocalStore, states StateStore, log *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		remote:   r,
		local:    local,
		states:   states,
		log:      log.With("component", "sync_engine"),
		interval: DefaultPollInterval,
		now:      entity.Now,
		newID:    uuid.NewString,
		state:    initialState(),
		subs:     make(map[int]chan Event),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load restores the persisted state. A pull interrupted by a crash resumes as Error.
func (e *Engine) Load(ctx context.Context) error {
	st := initialState()
	ok, err := e.states.GetJSON(ctx, StateKey, &st)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if st.Queue == nil {
		st.Queue = []QueueItem{}
	}
	if st.LastSyncedAt.IsZero() {
		st.LastSyncedAt = entity.Epoch
	}
	switch {
	case st.JWT == "":
		st.Status = StatusOffline
	case st.Status == StatusSyncing:
		st.Status = StatusError
	}

	e.mu.Lock()
	e.state = st
	e.mu.Unlock()
	e.remote.SetToken(st.JWT)

	e.log.Info("sync state loaded", "status", st.Status, "queued", len(st.Queue), "last_synced_at", st.LastSyncedAt)
	return nil
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.clone()
}

func (e *Engine) Queue() []QueueItem {
	return e.State().Queue
}

// ClearQueue drops every queued mutation and returns how many were dropped.
func (e *Engine) ClearQueue(ctx context.Context) int {
	var n int
	e.update(ctx, "queue cleared", func(s *State) {
		n = len(s.Queue)
		s.Queue = []QueueItem{}
		s.LastError = ""
		if s.Status == StatusError {
			s.Status = StatusSynced
		}
	})
	e.log.Info("queue cleared", "dropped", n)
	return n
}

// Subscribe returns a channel of status transitions. Events that do not fit
// in the buffer are dropped.
func (e *Engine) Subscribe(buffer int) (<-chan Event, func()) {
	ch := make(chan Event, buffer)

	e.mu.Lock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = ch
	e.mu.Unlock()

	cancel := func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if c, ok := e.subs[id]; ok {
			delete(e.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

// update mutates the state, persists it and publishes a transition when the
// status changed.
func (e *Engine) update(ctx context.Context, reason string, fn func(*State)) {
	e.mu.Lock()
	defer e.mu.Unlock()

	from := e.state.Status
	fn(&e.state)
	to := e.state.Status

	if err := e.states.PutJSON(context.WithoutCancel(ctx), StateKey, e.state); err != nil {
		e.log.Error("failed to persist sync state", "error", err)
	}

	if from != to {
		e.log.Debug("status changed", "from", from, "to", to, "reason", reason)
		e.publish(Event{From: from, To: to, At: e.now(), Reason: reason})
	}
}

// publish must be called with mu held.
func (e *Engine) publish(ev Event) {
	for id, ch := range e.subs {
		select {
		case ch <- ev:
		default:
			e.log.Warn("event dropped", "subscriber", id, "to", ev.To)
		}
	}
}

// LocalWrite runs fn while no pull is replacing the local collections.
func (e *Engine) LocalWrite(fn func() error) error {
	e.localMu.Lock()
	defer e.localMu.Unlock()
	return fn()
}
