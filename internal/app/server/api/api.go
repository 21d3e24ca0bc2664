// Package api assembles the sync service routes.
//
//	GET    /health                      public
//	POST   /auth/register               public
//	POST   /auth/login                  public
//	POST   /auth/exchange               public
//	GET    /sync?since=                 bearer
//	POST   /records | /folders | /channel-bookmarks            bearer
//	DELETE /records/{id} | /folders/{id} | /channel-bookmarks/{id}   bearer
package api

import (
	"log/slog"
	"time"

	"tidemark/internal/app/server/api/http/collection"
	healthAPI "tidemark/internal/app/server/api/http/health"
	"tidemark/internal/app/server/api/http/middleware"
	"tidemark/internal/app/server/api/http/middleware/auth"
	"tidemark/internal/app/server/api/http/middleware/logger"
	syncAPI "tidemark/internal/app/server/api/http/sync"
	userAPI "tidemark/internal/app/server/api/http/user"
	"tidemark/internal/app/server/config"
	collectionDomain "tidemark/internal/domain/collection"
	"tidemark/internal/domain/entity"
	"tidemark/internal/domain/session"
	"tidemark/internal/domain/sync"
	"tidemark/internal/domain/user"
	"tidemark/internal/infrastructure/storage/postgres"
	"tidemark/internal/utils/humautil"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

const providerTimeout = 5 * time.Second

type routeSetter interface {
	SetupRoutes(api huma.API)
}

// Deps are the backends the handlers are built on.
type Deps struct {
	Users     user.Repository
	Records   collectionDomain.Repository[entity.Record]
	Folders   collectionDomain.Repository[entity.Folder]
	Bookmarks collectionDomain.Repository[entity.ChannelBookmark]
	Sync      sync.Repository
	Provider  user.ProviderVerifier
}

// PostgresDeps wires every repository to storage.
func PostgresDeps(storage *postgres.Storage, cfg *config.Config, log *slog.Logger) Deps {
	pool := storage.Pool()
	return Deps{
		Users:     postgres.NewUserRepository(pool, log),
		Records:   postgres.NewRecordRepository(pool, log),
		Folders:   postgres.NewFolderRepository(pool, log),
		Bookmarks: postgres.NewChannelBookmarkRepository(pool, log),
		Sync:      postgres.NewSyncRepository(pool, log),
		Provider:  user.NewTokenInfoVerifier(cfg.Auth.TokenInfoURL, providerTimeout),
	}
}

func New(deps Deps, cfg *config.Config, log *slog.Logger) *chi.Mux {
	mux := chi.NewMux()
	mux.Use(chimw.RealIP, chimw.Recoverer)

	API := humachi.New(mux, humautil.Config("tidemark sync API", "1.0.0"))

	for _, h := range handlers(deps, cfg, log) {
		h.SetupRoutes(API)
	}
	return mux
}

func handlers(deps Deps, cfg *config.Config, log *slog.Logger) []routeSetter {
	sessionService := session.NewService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, log)
	authMW := auth.New(sessionService, log)
	loggerMW := logger.New(log)
	middlewares := middleware.NewContainer()

	middlewares.Add(loggerMW.Middleware())
	healthHandler := healthAPI.NewHandler(log, middlewares.GetAllAndClear())

	userService := user.NewService(deps.Users, user.NewPasswordValidator(), deps.Provider, log)
	middlewares.Add(loggerMW.Middleware())
	userHandler := userAPI.NewHandler(userService, sessionService, log, middlewares.GetAllAndClear())

	// Logger first so rejected tokens are logged too.
	middlewares.Add(loggerMW.Middleware())
	middlewares.Add(authMW.Middleware())
	protected := middlewares.GetAllAndClear()

	recordHandler := collection.NewHandler[entity.Record](
		collectionDomain.NewService(deps.Records, log), log, protected)
	folderHandler := collection.NewHandler[entity.Folder](
		collectionDomain.NewService(deps.Folders, log), log, protected)
	bookmarkHandler := collection.NewHandler[entity.ChannelBookmark](
		collectionDomain.NewService(deps.Bookmarks, log), log, protected)

	syncHandler := syncAPI.NewHandler(sync.NewService(deps.Sync, log), log, protected)

	return []routeSetter{
		healthHandler,
		userHandler,
		syncHandler,
		recordHandler,
		folderHandler,
		bookmarkHandler,
	}
}
