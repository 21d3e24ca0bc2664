package sync

import (
	"slices"

	"tidemark/internal/domain/entity"
)

// Pending holds the ids, per kind, that still have a queued local change.
type Pending map[entity.Kind]map[string]bool

func pendingOf(queue []QueueItem) Pending {
	p := make(Pending)
	for _, it := range queue {
		if p[it.Kind] == nil {
			p[it.Kind] = make(map[string]bool)
		}
		p[it.Kind][it.EntityID] = true
	}
	return p
}

func (p Pending) has(kind entity.Kind, id string) bool {
	return p[kind][id]
}

// Merge applies a pulled delta to the local snapshot. Each collection is merged
// independently: remote entities are applied in updated_at order, a tombstone
// removes the id and anything else overwrites the local copy. A remote entity
// is skipped when its id is pending or the local copy is newer, so the queued
// change reaches the server and stays in place locally. Whole entities win,
// fields are never merged.
func Merge(local entity.Snapshot, delta entity.Delta, pending Pending) entity.Snapshot {
	return entity.Snapshot{
		Records:          mergeCollection(local.Records, delta.Records, pending),
		Folders:          mergeCollection(local.Folders, delta.Folders, pending),
		ChannelBookmarks: mergeCollection(local.ChannelBookmarks, delta.ChannelBookmarks, pending),
	}
}

func mergeCollection[T entity.Entity](local, remote []T, pending Pending) []T {
	byID := make(map[string]T, len(local)+len(remote))
	seen := make(map[string]bool, len(local)+len(remote))
	order := make([]string, 0, len(local)+len(remote))

	track := func(id string) {
		if !seen[id] {
			seen[id] = true
			order = append(order, id)
		}
	}

	for _, e := range local {
		track(e.GetID())
		byID[e.GetID()] = e
	}

	sorted := slices.Clone(remote)
	entity.SortByUpdatedAt(sorted)
	for _, r := range sorted {
		id := r.GetID()
		if pending.has(r.Kind(), id) {
			continue
		}
		if cur, ok := byID[id]; ok && cur.GetUpdatedAt().After(r.GetUpdatedAt()) {
			continue
		}
		if r.IsDeleted() {
			delete(byID, id)
			continue
		}
		track(id)
		byID[id] = r
	}

	out := make([]T, 0, len(byID))
	for _, id := range order {
		if e, ok := byID[id]; ok {
			out = append(out, e)
		}
	}
	return out
}
