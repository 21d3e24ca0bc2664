// Package storage is the client's local sqlite store: the three entity collections
// and a small key/value table for engine state.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"tidemark/internal/domain/entity"
	"tidemark/internal/infrastructure/migration"
	"tidemark/migrations"

	// Registers the sqlite3 migrate driver, which links mattn/go-sqlite3.
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/mattn/go-sqlite3"
)

type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// Open migrates the database at path and opens it.
func Open(path string, log *slog.Logger) (*Store, error) {
	if err := migration.FromFS(migrations.FS, migrations.SQLiteDir, "sqlite3://"+path).Up(); err != nil {
		return nil, fmt.Errorf("migrate local store: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}
	// sqlite has a single writer.
	db.SetMaxOpenConns(1)

	return &Store{db: db, log: log.With("component", "local_store")}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Snapshot reads every collection.
func (s *Store) Snapshot(ctx context.Context) (entity.Snapshot, error) {
	var snap entity.Snapshot
	var err error
	if snap.Records, err = list(ctx, s.db, recordsTable); err != nil {
		return snap, err
	}
	if snap.Folders, err = list(ctx, s.db, foldersTable); err != nil {
		return snap, err
	}
	if snap.ChannelBookmarks, err = list(ctx, s.db, bookmarksTable); err != nil {
		return snap, err
	}
	return snap, nil
}

// ReplaceAll swaps every collection for snap in one transaction.
func (s *Store) ReplaceAll(ctx context.Context, snap entity.Snapshot) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := replace(ctx, tx, recordsTable, snap.Records); err != nil {
			return err
		}
		if err := replace(ctx, tx, foldersTable, snap.Folders); err != nil {
			return err
		}
		return replace(ctx, tx, bookmarksTable, snap.ChannelBookmarks)
	})
}

func (s *Store) Records(ctx context.Context) ([]entity.Record, error) {
	return list(ctx, s.db, recordsTable)
}

func (s *Store) Folders(ctx context.Context) ([]entity.Folder, error) {
	return list(ctx, s.db, foldersTable)
}

func (s *Store) ChannelBookmarks(ctx context.Context) ([]entity.ChannelBookmark, error) {
	return list(ctx, s.db, bookmarksTable)
}

// SaveRecord inserts or replaces r. existed reports whether the id was already stored.
func (s *Store) SaveRecord(ctx context.Context, r entity.Record) (existed bool, err error) {
	return save(ctx, s, recordsTable, r, nil)
}

func (s *Store) SaveFolder(ctx context.Context, f entity.Folder) (bool, error) {
	return save(ctx, s, foldersTable, f, nil)
}

// SaveBookmark rejects a second bookmark for the same platform and channel with ErrDuplicateBookmark.
func (s *Store) SaveBookmark(ctx context.Context, b entity.ChannelBookmark) (bool, error) {
	return save(ctx, s, bookmarksTable, b, func(tx *sql.Tx) error {
		var other string
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM channel_bookmarks WHERE platform = ? AND channel_id = ? AND id <> ? LIMIT 1`,
			string(b.Platform), b.ChannelID, b.ID).Scan(&other)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("check duplicate bookmark: %w", err)
		}
		return fmt.Errorf("%w: %s/%s already saved as %s", entity.ErrDuplicateBookmark, b.Platform, b.ChannelID, other)
	})
}

// DeleteRecord removes the record and returns what was stored.
func (s *Store) DeleteRecord(ctx context.Context, id string) (entity.Record, bool, error) {
	return remove(ctx, s, recordsTable, id)
}

func (s *Store) DeleteFolder(ctx context.Context, id string) (entity.Folder, bool, error) {
	return remove(ctx, s, foldersTable, id)
}

func (s *Store) DeleteBookmark(ctx context.Context, id string) (entity.ChannelBookmark, bool, error) {
	return remove(ctx, s, bookmarksTable, id)
}

// ApplyRecord stores an entity pushed by a peer when it is not older than the local copy.
// A tombstone removes the local copy.
func (s *Store) ApplyRecord(ctx context.Context, r entity.Record) (bool, error) {
	return apply(ctx, s, recordsTable, r)
}

func (s *Store) ApplyFolder(ctx context.Context, f entity.Folder) (bool, error) {
	return apply(ctx, s, foldersTable, f)
}

func (s *Store) ApplyBookmark(ctx context.Context, b entity.ChannelBookmark) (bool, error) {
	return apply(ctx, s, bookmarksTable, b)
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.log.Warn("rollback failed", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
