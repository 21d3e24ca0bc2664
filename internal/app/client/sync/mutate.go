package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"tidemark/internal/domain/entity"
	"tidemark/internal/syncerr"
)

// SaveRecord stamps r with the current time, stores it locally and pushes it.
// An empty id is generated. Only validation and auth problems are returned;
// undeliverable changes are queued.
func (e *Engine) SaveRecord(ctx context.Context, r entity.Record) (entity.Record, error) {
	return save(ctx, e, r, e.local.SaveRecord)
}

func (e *Engine) SaveFolder(ctx context.Context, f entity.Folder) (entity.Folder, error) {
	return save(ctx, e, f, e.local.SaveFolder)
}

func (e *Engine) SaveBookmark(ctx context.Context, b entity.ChannelBookmark) (entity.ChannelBookmark, error) {
	return save(ctx, e, b, e.local.SaveBookmark)
}

func (e *Engine) DeleteRecord(ctx context.Context, id string) error {
	return remove(ctx, e, entity.KindRecord, id, e.local.DeleteRecord)
}

func (e *Engine) DeleteFolder(ctx context.Context, id string) error {
	return remove(ctx, e, entity.KindFolder, id, e.local.DeleteFolder)
}

func (e *Engine) DeleteBookmark(ctx context.Context, id string) error {
	return remove(ctx, e, entity.KindChannelBookmark, id, e.local.DeleteBookmark)
}

func save[T entity.Entity](ctx context.Context, e *Engine, item T, store func(context.Context, T) (bool, error)) (T, error) {
	item = entity.Touch(item, e.now(), e.newID)
	kind := item.Kind()
	op := "save " + string(kind)

	if err := item.Validate(); err != nil {
		return item, syncerr.Fatal(syncerr.Validation, op, "invalid entity", err)
	}

	e.localMu.Lock()
	existed, err := store(ctx, item)
	e.localMu.Unlock()
	if err != nil {
		if errors.Is(err, entity.ErrDuplicateBookmark) {
			return item, syncerr.Fatal(syncerr.Validation, op, "duplicate bookmark", err)
		}
		return item, fmt.Errorf("%s locally: %w", op, err)
	}

	payload, err := json.Marshal(item)
	if err != nil {
		return item, fmt.Errorf("encode %s: %w", kind, err)
	}

	action := createAction(kind)
	if existed {
		action = updateAction(kind)
	}
	return item, e.mutate(ctx, action, kind, item.GetID(), payload)
}

func remove[T entity.Entity](ctx context.Context, e *Engine, kind entity.Kind, id string, del func(context.Context, string) (T, bool, error)) error {
	op := "delete " + string(kind)
	if strings.TrimSpace(id) == "" {
		return syncerr.Fatal(syncerr.Validation, op, "empty id", nil)
	}

	e.localMu.Lock()
	stored, found, err := del(ctx, id)
	e.localMu.Unlock()
	if err != nil {
		return fmt.Errorf("%s locally: %w", op, err)
	}
	if !found {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}

	payload, err := json.Marshal(entity.Tombstone(stored, e.now()))
	if err != nil {
		return fmt.Errorf("encode %s tombstone: %w", kind, err)
	}
	return e.mutate(ctx, deleteAction(kind), kind, id, payload)
}

// mutate delivers one locally applied change: to the peer first, then to the
// remote service, falling back to the queue.
func (e *Engine) mutate(ctx context.Context, action Action, kind entity.Kind, id string, payload json.RawMessage) error {
	if e.direct != nil && e.direct.TryDirectPush(ctx, kind.Path(), payload) {
		e.log.Debug("pushed to peer", "action", action, "id", id)
	}

	item := QueueItem{
		ID:       uuid.NewString(),
		Action:   action,
		Kind:     kind,
		EntityID: id,
		Payload:  payload,
		QueuedAt: e.now(),
	}

	e.pushMu.Lock()
	defer e.pushMu.Unlock()

	st := e.State()
	if st.JWT == "" {
		e.enqueue(ctx, item, "no session")
		return nil
	}
	if slices.ContainsFunc(st.Queue, func(q QueueItem) bool { return q.EntityID == id }) {
		e.enqueue(ctx, item, "behind queued change")
		return nil
	}

	err := e.dispatch(ctx, item)
	switch {
	case err == nil:
		e.update(ctx, "pushed", func(s *State) {
			if s.Status == StatusError && len(s.Queue) == 0 {
				s.Status = StatusSynced
				s.LastError = ""
			}
		})
		return nil
	case syncerr.Is(err, syncerr.Auth):
		e.enqueue(ctx, item, "auth failed")
		e.goOffline(ctx, err)
		return err
	case syncerr.Is(err, syncerr.Validation):
		e.update(ctx, "push rejected", func(s *State) {
			s.Status = StatusError
			s.LastError = err.Error()
		})
		return err
	default:
		item.Attempts = 1
		item.LastError = err.Error()
		e.enqueue(ctx, item, "push failed")
		e.update(ctx, "push failed", func(s *State) {
			s.Status = StatusError
			s.LastError = err.Error()
		})
		e.log.Warn("push failed, queued", "action", action, "id", id, "error", err)
		return nil
	}
}

func (e *Engine) enqueue(ctx context.Context, item QueueItem, reason string) {
	e.update(ctx, "queued: "+reason, func(s *State) {
		s.Queue = append(s.Queue, item)
	})
	e.log.Debug("mutation queued", "item", item.String(), "reason", reason)
}

// dispatch sends one queued item. A delete of an id the remote does not know
// is already consistent.
func (e *Engine) dispatch(ctx context.Context, item QueueItem) error {
	if item.Action.IsDelete() {
		err := e.remote.Delete(ctx, item.Kind, item.EntityID)
		if syncerr.Is(err, syncerr.NotFound) {
			return nil
		}
		return err
	}
	return e.remote.Push(ctx, item.Kind, item.Payload)
}

func (e *Engine) goOffline(ctx context.Context, err error) {
	e.remote.SetToken("")
	e.update(ctx, "auth failed", func(s *State) {
		s.JWT = ""
		s.Status = StatusOffline
		s.LastError = err.Error()
	})
	e.log.Warn("session rejected, going offline", "error", err)
}
