package sync

import (
	"context"
	"fmt"
	"slices"
	"time"

	"tidemark/internal/domain/entity"
	"tidemark/internal/syncerr"
)

// Pull fetches everything changed since the cursor, merges it into the local
// store and drains the queue. It waits for a pull already in flight.
func (e *Engine) Pull(ctx context.Context) error {
	e.pullMu.Lock()
	defer e.pullMu.Unlock()
	return e.pull(ctx)
}

// SyncNow is the manual trigger. It shares the guard of the poll loop.
func (e *Engine) SyncNow(ctx context.Context) error {
	return e.Pull(ctx)
}

// Tick runs one poll cycle unless a pull is already running or there is no session.
func (e *Engine) Tick(ctx context.Context) {
	if !e.pullMu.TryLock() {
		e.log.Debug("pull in flight, tick skipped")
		return
	}
	defer e.pullMu.Unlock()

	if e.State().JWT == "" {
		return
	}
	if err := e.pull(ctx); err != nil {
		e.log.Warn("poll failed", "error", err)
	}
}

// Run polls until ctx is done. The timer is re-armed only after a tick has
// finished, so pulls never overlap.
func (e *Engine) Run(ctx context.Context) error {
	e.log.Info("poll loop started", "interval", e.interval)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			e.log.Info("poll loop stopped")
			return nil
		case <-timer.C:
			e.Tick(ctx)
			timer.Reset(e.interval)
		}
	}
}

func (e *Engine) pull(ctx context.Context) error {
	st := e.State()
	if st.JWT == "" {
		return ErrNotSignedIn
	}

	e.update(ctx, "pull started", func(s *State) { s.Status = StatusSyncing })

	delta, err := e.remote.Pull(ctx, st.LastSyncedAt)
	if err != nil {
		return e.fail(ctx, "pull failed", err)
	}

	if err := e.merge(ctx, delta); err != nil {
		return e.fail(ctx, "merge failed", err)
	}

	if !delta.SyncedAt.IsZero() {
		e.update(ctx, "cursor advanced", func(s *State) { s.LastSyncedAt = delta.SyncedAt })
	}
	e.log.Debug("pulled",
		"since", st.LastSyncedAt,
		"synced_at", delta.SyncedAt,
		"records", len(delta.Records),
		"folders", len(delta.Folders),
		"bookmarks", len(delta.ChannelBookmarks),
	)

	pending, rejected, err := e.drain(ctx)
	if err != nil {
		return err
	}

	if pending > 0 {
		e.update(ctx, "queue pending", func(s *State) {
			s.Status = StatusError
			s.LastError = fmt.Sprintf("%d queued changes pending", pending)
		})
		return nil
	}
	e.update(ctx, "pull finished", func(s *State) {
		s.Status = StatusSynced
		if !rejected {
			s.LastError = ""
		}
	})
	return nil
}

func (e *Engine) merge(ctx context.Context, delta entity.Delta) error {
	if delta.Empty() {
		return nil
	}

	e.localMu.Lock()
	defer e.localMu.Unlock()

	snap, err := e.local.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("read local snapshot: %w", err)
	}
	pending := pendingOf(e.Queue())
	if err := e.local.ReplaceAll(ctx, Merge(snap, delta, pending)); err != nil {
		return fmt.Errorf("replace local snapshot: %w", err)
	}
	return nil
}

// drain replays the queue in order. A transient failure keeps the item and
// holds back later items for the same id; other ids continue. It returns the
// number of items left and whether any item was rejected and dropped.
func (e *Engine) drain(ctx context.Context) (pending int, rejected bool, err error) {
	e.pushMu.Lock()
	defer e.pushMu.Unlock()

	blocked := make(map[string]bool)
	for _, item := range e.Queue() {
		if ctx.Err() != nil {
			break
		}
		if blocked[item.EntityID] {
			continue
		}

		err := e.dispatch(ctx, item)
		switch {
		case err == nil:
			e.removeItem(ctx, item.ID, "")
		case syncerr.Is(err, syncerr.Auth):
			e.goOffline(ctx, err)
			return len(e.Queue()), rejected, err
		case syncerr.Is(err, syncerr.Validation):
			e.log.Warn("queued change rejected, dropped", "item", item.String(), "error", err)
			e.removeItem(ctx, item.ID, err.Error())
			rejected = true
		default:
			blocked[item.EntityID] = true
			e.update(ctx, "retry later", func(s *State) {
				for i := range s.Queue {
					if s.Queue[i].ID == item.ID {
						s.Queue[i].Attempts++
						s.Queue[i].LastError = err.Error()
					}
				}
			})
		}
	}
	return len(e.Queue()), rejected, nil
}

func (e *Engine) removeItem(ctx context.Context, id, lastError string) {
	e.update(ctx, "dequeued", func(s *State) {
		s.Queue = slices.DeleteFunc(s.Queue, func(q QueueItem) bool { return q.ID == id })
		if lastError != "" {
			s.LastError = lastError
		}
	})
}

func (e *Engine) fail(ctx context.Context, reason string, err error) error {
	if syncerr.Is(err, syncerr.Auth) {
		e.goOffline(ctx, err)
		return err
	}
	e.update(ctx, reason, func(s *State) {
		s.Status = StatusError
		s.LastError = err.Error()
	})
	return err
}
