package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"tidemark/internal/domain/entity"
)

type scanner interface {
	Scan(dest ...any) error
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// table maps one collection to its sqlite table. columns[0] is always id.
type table[T entity.Entity] struct {
	name    string
	columns []string
	args    func(T) []any
	scan    func(scanner) (T, error)
}

func (t table[T]) selectSQL() string {
	return "SELECT " + strings.Join(t.columns, ", ") + " FROM " + t.name
}

func (t table[T]) upsertSQL() string {
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(t.columns)), ", ")
	return "INSERT OR REPLACE INTO " + t.name + " (" + strings.Join(t.columns, ", ") + ") VALUES (" + marks + ")"
}

func parseStored(s string) (entity.Time, error) {
	t, err := entity.ParseTime(s)
	if err != nil {
		return entity.Time{}, fmt.Errorf("stored updated_at: %w", err)
	}
	return t, nil
}

var recordsTable = table[entity.Record]{
	name:    "records",
	columns: []string{"id", `"timestamp"`, "live_time", "title", "topic", "channel_url", "platform", "folder_id", "sort_order", "updated_at"},
	args: func(r entity.Record) []any {
		return []any{r.ID, r.Timestamp, r.LiveTime, r.Title, r.Topic, r.ChannelURL, string(r.Platform), r.FolderID, r.SortOrder, r.UpdatedAt.String()}
	},
	scan: func(sc scanner) (entity.Record, error) {
		var r entity.Record
		var platform, updated string
		var folderID sql.NullString
		if err := sc.Scan(&r.ID, &r.Timestamp, &r.LiveTime, &r.Title, &r.Topic, &r.ChannelURL,
			&platform, &folderID, &r.SortOrder, &updated); err != nil {
			return r, err
		}
		r.Platform = entity.Platform(platform)
		if folderID.Valid {
			r.FolderID = &folderID.String
		}
		var err error
		r.UpdatedAt, err = parseStored(updated)
		return r, err
	},
}

var foldersTable = table[entity.Folder]{
	name:    "folders",
	columns: []string{"id", "name", "sort_order", "updated_at"},
	args: func(f entity.Folder) []any {
		return []any{f.ID, f.Name, f.SortOrder, f.UpdatedAt.String()}
	},
	scan: func(sc scanner) (entity.Folder, error) {
		var f entity.Folder
		var updated string
		if err := sc.Scan(&f.ID, &f.Name, &f.SortOrder, &updated); err != nil {
			return f, err
		}
		var err error
		f.UpdatedAt, err = parseStored(updated)
		return f, err
	},
}

var bookmarksTable = table[entity.ChannelBookmark]{
	name:    "channel_bookmarks",
	columns: []string{"id", "channel_id", "channel_name", "platform", "notes", "sort_order", "updated_at"},
	args: func(b entity.ChannelBookmark) []any {
		return []any{b.ID, b.ChannelID, b.ChannelName, string(b.Platform), b.Notes, b.SortOrder, b.UpdatedAt.String()}
	},
	scan: func(sc scanner) (entity.ChannelBookmark, error) {
		var b entity.ChannelBookmark
		var platform, updated string
		if err := sc.Scan(&b.ID, &b.ChannelID, &b.ChannelName, &platform, &b.Notes, &b.SortOrder, &updated); err != nil {
			return b, err
		}
		b.Platform = entity.Platform(platform)
		var err error
		b.UpdatedAt, err = parseStored(updated)
		return b, err
	},
}

func list[T entity.Entity](ctx context.Context, q querier, t table[T]) ([]T, error) {
	rows, err := q.QueryContext(ctx, t.selectSQL()+" ORDER BY sort_order, updated_at, id")
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", t.name, err)
	}
	defer rows.Close()

	items := []T{}
	for rows.Next() {
		item, err := t.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", t.name, err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func get[T entity.Entity](ctx context.Context, q querier, t table[T], id string) (T, bool, error) {
	item, err := t.scan(q.QueryRowContext(ctx, t.selectSQL()+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		var zero T
		return zero, false, nil
	}
	if err != nil {
		return item, false, fmt.Errorf("get %s %s: %w", t.name, id, err)
	}
	return item, true, nil
}

func put[T entity.Entity](ctx context.Context, q querier, t table[T], item T) error {
	if _, err := q.ExecContext(ctx, t.upsertSQL(), t.args(item)...); err != nil {
		return fmt.Errorf("put %s %s: %w", t.name, item.GetID(), err)
	}
	return nil
}

func del(ctx context.Context, q querier, name, id string) error {
	if _, err := q.ExecContext(ctx, "DELETE FROM "+name+" WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete %s %s: %w", name, id, err)
	}
	return nil
}

func replace[T entity.Entity](ctx context.Context, tx *sql.Tx, t table[T], items []T) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+t.name); err != nil {
		return fmt.Errorf("clear %s: %w", t.name, err)
	}
	for _, item := range items {
		if item.IsDeleted() {
			continue
		}
		if err := put(ctx, tx, t, item); err != nil {
			return err
		}
	}
	return nil
}

// save validates and stores item. check runs inside the transaction before the write.
func save[T entity.Entity](ctx context.Context, s *Store, t table[T], item T, check func(*sql.Tx) error) (bool, error) {
	if err := item.Validate(); err != nil {
		return false, err
	}

	var existed bool
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		_, found, err := get(ctx, tx, t, item.GetID())
		if err != nil {
			return err
		}
		existed = found
		if check != nil {
			if err := check(tx); err != nil {
				return err
			}
		}
		return put(ctx, tx, t, item)
	})
	return existed, err
}

func remove[T entity.Entity](ctx context.Context, s *Store, t table[T], id string) (T, bool, error) {
	var removed T
	var found bool
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		removed, found, err = get(ctx, tx, t, id)
		if err != nil || !found {
			return err
		}
		return del(ctx, tx, t.name, id)
	})
	return removed, found, err
}

func apply[T entity.Entity](ctx context.Context, s *Store, t table[T], item T) (bool, error) {
	var applied bool
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		cur, found, err := get(ctx, tx, t, item.GetID())
		if err != nil {
			return err
		}
		if found && cur.GetUpdatedAt().After(item.GetUpdatedAt()) {
			return nil
		}
		applied = true
		if item.IsDeleted() {
			return del(ctx, tx, t.name, item.GetID())
		}
		return put(ctx, tx, t, item)
	})
	return applied, err
}
