package app

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/pappy/matching-engine/internal/cache"
	"github.com/pappy/matching-engine/internal/config"
	"github.com/pappy/matching-engine/internal/events"
)

// AppContext holds shared dependencies (DB, Redis, Logger, event bus).
type AppContext struct {
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Logger     *slog.Logger
	Events     *events.Bus
	Config     *config.Config
}

// New creates a new AppContext.
func New(db *gorm.DB, rdb *cache.RedisCache, logger *slog.Logger, bus *events.Bus, cfg *config.Config) *AppContext {
	return &AppContext{
		DB:         db,
		RedisCache: rdb,
		Logger:     logger,
		Events:     bus,
		Config:     cfg,
	}
}
