package app

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/example/contentapi/internal/data/eventlog"
	"github.com/example/contentapi/internal/data/repos"
	"github.com/example/contentapi/internal/data/resolver"
	"github.com/example/contentapi/internal/data/store"
	"github.com/example/contentapi/internal/database"
	"github.com/example/contentapi/internal/handlers"
	"github.com/example/contentapi/internal/messages"
	"github.com/example/contentapi/internal/middleware"
	"github.com/example/contentapi/internal/platform/envutil"
	"github.com/example/contentapi/internal/platform/logger"
	"github.com/example/contentapi/internal/server"
)

type App struct {
	Log    *logger.Logger
	DB     *gorm.DB
	Router *gin.Engine
	Cfg    Config
}

func New() (*App, error) {
	log, err := logger.New(envutil.Str("LOG_MODE", "development"))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	cfg := LoadConfig()

	pg, err := database.New(database.Config{
		DSN:             cfg.DatabaseDSN,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}, log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	db := pg.DB()
	if cfg.AutoMigrate {
		if err := database.AutoMigrateAll(db); err != nil {
			log.Sync()
			return nil, fmt.Errorf("automigrate: %w", err)
		}
	}

	dispatcher := wireDispatcher(db, log)

	messageHandler := handlers.NewMessageHandler(dispatcher, log)
	serviceAuth := middleware.NewServiceAuth(cfg.ServiceSecret, log)
	router := server.NewRouter(server.RouterConfig{
		MessageHandler: messageHandler,
		ServiceAuth:    serviceAuth,
		AllowOrigins:   cfg.AllowOrigins,
	})

	return &App{Log: log, DB: db, Router: router, Cfg: cfg}, nil
}

// wireDispatcher assembles the full read/write stack on one database handle.
func wireDispatcher(db *gorm.DB, log *logger.Logger) *messages.Dispatcher {
	uuids := repos.NewUuidRepo(db, log)
	entities := repos.NewEntityRepo(db, log)
	taxonomy := repos.NewTaxonomyRepo(db, log)
	comments := repos.NewCommentRepo(db, log)
	pages := repos.NewPageRepo(db, log)
	users := repos.NewUserRepo(db, log)
	events := repos.NewEventRepo(db, log)
	subscriptions := repos.NewSubscriptionRepo(db, log)
	notifications := repos.NewNotificationRepo(db, log)

	taxonomyResolver := resolver.NewTaxonomyResolver(taxonomy, entities, log)
	entityResolver := resolver.NewEntityResolver(entities, taxonomyResolver, log)
	identity := resolver.NewIdentityResolver(uuids, users, comments, pages, entityResolver, taxonomyResolver, log)

	writer := eventlog.NewWriter(events, subscriptions, notifications, log)
	reader := eventlog.NewReader(events, log)

	queries := messages.NewQueryService(identity, entities, taxonomy, events, reader, log)
	mutations := messages.NewMutationService(uuids, entities, taxonomy, comments, pages, users, subscriptions, writer, identity, log)

	runner := store.NewGormTxRunner(db)
	return messages.NewDispatcher(runner, queries, mutations, log)
}

func (a *App) Run() error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("listening", "addr", a.Cfg.HTTPAddr)
	return a.Router.Run(a.Cfg.HTTPAddr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
