package client

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tidemark/internal/app/client/config"
	clientsync "tidemark/internal/app/client/sync"
	"tidemark/internal/domain/entity"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Env:       "local",
		ServerURL: "http://127.0.0.1:1",
		DataDir:   t.TempDir(),
		Sync:      config.Sync{PollInterval: time.Second},
		Direct: config.Direct{
			PeerURL:       "http://127.0.0.1:1",
			PeerListen:    "127.0.0.1:0",
			ProbeInterval: time.Second,
			ProbeTimeout:  100 * time.Millisecond,
			PushTimeout:   100 * time.Millisecond,
			BufferLimit:   10,
		},
	}
}

func TestApp_OfflineChangesSurviveRestart(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	app, err := New(ctx, cfg, log)
	require.NoError(t, err)

	f, err := app.Engine().SaveFolder(ctx, entity.Folder{Name: "inbox"})
	require.NoError(t, err)
	assert.Len(t, app.Monitor().Snapshot(), 1)
	require.NoError(t, app.Close())

	reopened, err := New(ctx, cfg, log)
	require.NoError(t, err)
	defer reopened.Close()

	st := reopened.Engine().State()
	assert.Equal(t, clientsync.StatusOffline, st.Status)
	require.Len(t, st.Queue, 1)
	assert.Equal(t, f.ID, st.Queue[0].EntityID)
	assert.Len(t, reopened.Monitor().Snapshot(), 1)

	folders, err := reopened.Store().Folders(ctx)
	require.NoError(t, err)
	require.Len(t, folders, 1)
	assert.Equal(t, "inbox", folders[0].Name)
}

func TestGuardedStore_Apply(t *testing.T) {
	ctx := context.Background()
	app, err := New(ctx, testConfig(t), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer app.Close()

	g := guardedStore{store: app.Store(), engine: app.Engine()}
	applied, err := g.ApplyFolder(ctx, entity.Folder{Base: entity.Base{ID: "f1", UpdatedAt: entity.Now()}, Name: "pushed"})
	require.NoError(t, err)
	assert.True(t, applied)

	folders, err := app.Store().Folders(ctx)
	require.NoError(t, err)
	require.Len(t, folders, 1)
	assert.Equal(t, "f1", folders[0].ID)
}
