// Package peer is the desktop side of the local direct connection. It accepts
// pushes from other clients on the same machine or LAN and streams sync status
// to local UIs.
//
//	GET  /ping                                   identity probe
//	POST /records | /folders | /channel-bookmarks   apply a pushed entity
//	GET  /events                                 websocket of status transitions
package peer

import (
	"context"
	"log/slog"
	"net/http"

	clientsync "tidemark/internal/app/client/sync"
	"tidemark/internal/domain/entity"
	"tidemark/internal/utils/humautil"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Applier stores a pushed entity when it is not older than the local copy.
type Applier interface {
	ApplyRecord(ctx context.Context, r entity.Record) (bool, error)
	ApplyFolder(ctx context.Context, f entity.Folder) (bool, error)
	ApplyBookmark(ctx context.Context, b entity.ChannelBookmark) (bool, error)
}

// EventSource is implemented by the sync engine.
type EventSource interface {
	Subscribe(buffer int) (<-chan clientsync.Event, func())
}

type routeSetter interface {
	SetupRoutes(api huma.API)
}

// New builds the peer router. events may be nil, in which case /events is not served.
func New(store Applier, events EventSource, log *slog.Logger) http.Handler {
	mux := chi.NewMux()
	mux.Use(chimw.Recoverer)

	api := humachi.New(mux, humautil.Config("tidemark peer", "1.0.0"))

	handlers := []routeSetter{
		&pingHandler{},
		newApplyHandler(store.ApplyRecord, log),
		newApplyHandler(store.ApplyFolder, log),
		newApplyHandler(store.ApplyBookmark, log),
	}
	for _, h := range handlers {
		h.SetupRoutes(api)
	}

	if events != nil {
		mux.Get("/events", newEventStream(events, log).ServeHTTP)
	}
	return mux
}
