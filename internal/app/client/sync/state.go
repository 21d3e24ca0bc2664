package sync

import (
	"encoding/json"
	"fmt"
	"strings"

	"tidemark/internal/app/client/remote"
	"tidemark/internal/domain/entity"
)

// StateKey is the KV key the engine persists its state under.
const StateKey = "sync_state"

// Status is the connection state shown to the user.
type Status string

const (
	StatusOffline Status = "offline"
	StatusSyncing Status = "syncing"
	StatusSynced  Status = "synced"
	StatusError   Status = "error"
)

// Action names a queued mutation, such as create_folder or delete_record.
type Action string

const (
	actionCreate = "create_"
	actionUpdate = "update_"
	actionDelete = "delete_"
)

func createAction(k entity.Kind) Action { return Action(actionCreate + string(k)) }
func updateAction(k entity.Kind) Action { return Action(actionUpdate + string(k)) }
func deleteAction(k entity.Kind) Action { return Action(actionDelete + string(k)) }

// IsDelete reports whether the action removes its entity remotely.
func (a Action) IsDelete() bool {
	return strings.HasPrefix(string(a), actionDelete)
}

// QueueItem is one mutation waiting to reach the remote service.
type QueueItem struct {
	ID        string          `json:"id"`
	Action    Action          `json:"action"`
	Kind      entity.Kind     `json:"kind"`
	EntityID  string          `json:"entity_id"`
	Payload   json.RawMessage `json:"payload"`
	QueuedAt  entity.Time     `json:"queued_at"`
	Attempts  int             `json:"attempts"`
	LastError string          `json:"last_error,omitempty"`
}

func (q QueueItem) String() string {
	return fmt.Sprintf("%s %s", q.Action, q.EntityID)
}

// State is everything the engine needs to resume after a restart.
type State struct {
	JWT          string       `json:"jwt,omitempty"`
	User         *remote.User `json:"user,omitempty"`
	LastSyncedAt entity.Time  `json:"last_synced_at"`
	Queue        []QueueItem  `json:"queue"`
	Status       Status       `json:"status"`
	LastError    string       `json:"last_error,omitempty"`
}

func initialState() State {
	return State{LastSyncedAt: entity.Epoch, Queue: []QueueItem{}, Status: StatusOffline}
}

func (s State) clone() State {
	c := s
	c.Queue = append([]QueueItem(nil), s.Queue...)
	if s.User != nil {
		u := *s.User
		c.User = &u
	}
	return c
}

// Event describes one status transition.
type Event struct {
	From   Status      `json:"from"`
	To     Status      `json:"to"`
	At     entity.Time `json:"at"`
	Reason string      `json:"reason,omitempty"`
}
