// Package client wires the local store, the remote client, the direct
// connection monitor and the sync engine into one application.
package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"tidemark/internal/app/client/config"
	"tidemark/internal/app/client/direct"
	"tidemark/internal/app/client/peer"
	"tidemark/internal/app/client/remote"
	"tidemark/internal/app/client/storage"
	clientsync "tidemark/internal/app/client/sync"
	"tidemark/internal/domain/entity"
)

const peerShutdownTimeout = 5 * time.Second

type App struct {
	cfg     *config.Config
	log     *slog.Logger
	store   *storage.Store
	remote  *remote.Client
	monitor *direct.Monitor
	engine  *clientsync.Engine
}

// New opens the local store and restores the engine and buffer state.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	if err := cfg.EnsureDataDir(); err != nil {
		return nil, err
	}

	store, err := storage.Open(cfg.DBPath(), log)
	if err != nil {
		return nil, err
	}

	rc := remote.New(cfg.ServerURL, log)
	monitor := direct.NewMonitor(direct.Config{
		PeerURL:       cfg.Direct.PeerURL,
		ProbeInterval: cfg.Direct.ProbeInterval,
		ProbeTimeout:  cfg.Direct.ProbeTimeout,
		PushTimeout:   cfg.Direct.PushTimeout,
		BufferLimit:   cfg.Direct.BufferLimit,
	}, store, log)
	engine := clientsync.New(rc, store, store, log,
		clientsync.WithPollInterval(cfg.Sync.PollInterval),
		clientsync.WithDirect(monitor),
	)

	app := &App{cfg: cfg, log: log, store: store, remote: rc, monitor: monitor, engine: engine}

	if err := monitor.Load(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	if err := engine.Load(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("load sync state: %w", err)
	}
	return app, nil
}

func (a *App) Engine() *clientsync.Engine { return a.engine }
func (a *App) Store() *storage.Store     { return a.store }
func (a *App) Monitor() *direct.Monitor  { return a.monitor }
func (a *App) Config() *config.Config    { return a.cfg }

func (a *App) Close() error {
	return a.store.Close()
}

// Run polls the remote service and probes the peer until ctx is done. With
// servePeer the desktop peer endpoints are served on the configured address.
func (a *App) Run(ctx context.Context, servePeer bool) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return a.engine.Run(gctx) })
	g.Go(func() error { return a.monitor.Start(gctx) })

	if servePeer {
		srv := &http.Server{
			Addr:              a.cfg.Direct.PeerListen,
			Handler:           peer.New(guardedStore{store: a.store, engine: a.engine}, a.engine, a.log),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			a.log.Info("peer server started", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("peer server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), peerShutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	a.log.Info("client running", "server", a.cfg.ServerURL, "peer", a.cfg.Direct.PeerURL, "env", a.cfg.Env)
	return g.Wait()
}

// guardedStore applies peer pushes under the engine's local write lock so a
// concurrent pull cannot replace them away.
type guardedStore struct {
	store  *storage.Store
	engine *clientsync.Engine
}

func (g guardedStore) ApplyRecord(ctx context.Context, r entity.Record) (bool, error) {
	return guarded(g.engine, func() (bool, error) { return g.store.ApplyRecord(ctx, r) })
}

func (g guardedStore) ApplyFolder(ctx context.Context, f entity.Folder) (bool, error) {
	return guarded(g.engine, func() (bool, error) { return g.store.ApplyFolder(ctx, f) })
}

func (g guardedStore) ApplyBookmark(ctx context.Context, b entity.ChannelBookmark) (bool, error) {
	return guarded(g.engine, func() (bool, error) { return g.store.ApplyBookmark(ctx, b) })
}

func guarded[T any](e *clientsync.Engine, fn func() (T, error)) (T, error) {
	var out T
	err := e.LocalWrite(func() error {
		var err error
		out, err = fn()
		return err
	})
	return out, err
}
