package app

import (
	"fmt"
	"os"

	"gorm.io/gorm"

	"github.com/wemedia/catalog-backend/internal/platform/logger"
	"github.com/wemedia/catalog-backend/internal/platform/pg"
	"github.com/wemedia/catalog-backend/internal/platform/rediscache"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Repos    Repos
	Services Services

	cache rediscache.ResolveCache
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	cfg := LoadConfig(log)

	postgres, err := pg.New(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := postgres.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	db := postgres.DB()

	cache, err := rediscache.New(log)
	if err != nil {
		log.Warn("resolve cache unavailable, continuing without it", "error", err)
		cache = nil
	}

	reposet := wireRepos(db, log)
	serviceset := wireServices(db, log, cfg, reposet, cache)

	return &App{
		Log:      log,
		DB:       db,
		Cfg:      cfg,
		Repos:    reposet,
		Services: serviceset,
		cache:    cache,
	}, nil
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cache != nil {
		_ = a.cache.Close()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
