package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type LogConfig struct {
	Level     string
	Format    string
	Component string
	Source    bool
}

type DBConfig struct {
	Driver   string // "mysql" or "sqlite"
	DSN      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// FeedConfig tunes candidate feed generation.
type FeedConfig struct {
	PoolSize int // how many candidates to pull before ranking
	PageSize int // default number of cards per request
}

// MatchingConfig tunes lost/found suggestion search.
type MatchingConfig struct {
	RadiusKm   float64 // geo cutoff for counterpart search
	WindowDays int     // ± window around the loss/find date
	MinScore   float64 // suggestion threshold (strict >)
}

type Config struct {
	Env      string
	Log      LogConfig
	DB       DBConfig
	Redis    RedisConfig
	Feed     FeedConfig
	Matching MatchingConfig
}

// New loads configuration from environment variables with sane defaults.
// Env names keep the flat convention used across the surrounding
// services (LOG_LEVEL, DB_HOST, REDIS_ADDR, ...).
func New() *Config {
	v := viper.New()

	v.SetDefault("env", "development")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.component", "matching_engine")
	v.SetDefault("log.source", false)

	v.SetDefault("db.driver", "mysql")
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "3306")
	v.SetDefault("db.user", "root")
	v.SetDefault("db.password", "root")
	v.SetDefault("db.name", "pappy")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("feed.poolsize", 100)
	v.SetDefault("feed.pagesize", 10)

	v.SetDefault("matching.radiuskm", 10.0)
	v.SetDefault("matching.windowdays", 30)
	v.SetDefault("matching.minscore", 0.3)

	bindings := map[string]string{
		"env":                 "APP_ENV",
		"log.level":           "LOG_LEVEL",
		"log.format":          "LOG_FORMAT",
		"log.component":       "LOG_COMPONENT",
		"log.source":          "LOG_SOURCE",
		"db.driver":           "DB_DRIVER",
		"db.dsn":              "DB_DSN",
		"db.host":             "DB_HOST",
		"db.port":             "DB_PORT",
		"db.user":             "DB_USER",
		"db.password":         "DB_PASSWORD",
		"db.name":             "DB_NAME",
		"redis.addr":          "REDIS_ADDR",
		"redis.password":      "REDIS_PASSWORD",
		"redis.db":            "REDIS_DB",
		"feed.poolsize":       "FEED_POOL_SIZE",
		"feed.pagesize":       "FEED_PAGE_SIZE",
		"matching.radiuskm":   "MATCHING_RADIUS_KM",
		"matching.windowdays": "MATCHING_WINDOW_DAYS",
		"matching.minscore":   "MATCHING_MIN_SCORE",
	}
	for key, env := range bindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}
	// defaults always unmarshal; an error can only come from a malformed
	// env override, in which case the affected field keeps its zero value
	_ = v.Unmarshal(cfg)

	if cfg.DB.DSN == "" && cfg.DB.Driver == "mysql" {
		cfg.DB.DSN = fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
			cfg.DB.User, cfg.DB.Password, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name,
		)
	}

	return cfg
}
