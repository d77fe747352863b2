// Package config loads server settings from DUEL_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/mcoot/symbolduel/internal/services/sequence"
	redisstorage "github.com/mcoot/symbolduel/internal/storage/redis"
)

// Config holds every server setting
type Config struct {
	Host     string `env:"DUEL_HOST"`
	Port     int    `env:"DUEL_PORT" envDefault:"8080"`
	LogLevel string `env:"DUEL_LOG_LEVEL" envDefault:"info"`

	StorageType string              `env:"DUEL_STORAGE_TYPE" envDefault:"memory"`
	RedisStore  redisstorage.Config `envPrefix:"DUEL_REDIS_"`
	DatabaseURL string              `env:"DUEL_DATABASE_URL"`

	JudgeURL     string        `env:"DUEL_JUDGE_URL"`
	JudgeTimeout time.Duration `env:"DUEL_JUDGE_TIMEOUT" envDefault:"5s"`

	DisplayMs int `env:"DUEL_DISPLAY_MS" envDefault:"6000"`
	MinLength int `env:"DUEL_MIN_LENGTH" envDefault:"3"`
	MaxLength int `env:"DUEL_MAX_LENGTH" envDefault:"5"`

	OTelEndpoint string `env:"DUEL_OTEL_ENDPOINT"`
}

// Load parses the environment and validates the result
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks settings that depend on each other
func (c Config) Validate() error {
	switch c.StorageType {
	case "memory":
	case "redis":
		if c.RedisStore.URL == "" {
			return errors.New("DUEL_REDIS_URL required when DUEL_STORAGE_TYPE=redis")
		}
		if err := c.RedisStore.Validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid DUEL_STORAGE_TYPE %q: must be memory or redis", c.StorageType)
	}
	if err := c.Sequence().Validate(); err != nil {
		return err
	}
	if c.JudgeTimeout <= 0 {
		return fmt.Errorf("invalid DUEL_JUDGE_TIMEOUT %s", c.JudgeTimeout)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level returns the configured slog level
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid DUEL_LOG_LEVEL %q", c.LogLevel)
	}
	return level, nil
}

// Sequence returns the in-process sequence service settings
func (c Config) Sequence() sequence.Config {
	return sequence.Config{
		MinLength: c.MinLength,
		MaxLength: c.MaxLength,
		DisplayMs: c.DisplayMs,
	}
}

// Redis returns the Redis storage settings, or nil when Redis is not in use
func (c Config) Redis() *redisstorage.Config {
	if c.StorageType != "redis" {
		return nil
	}
	redisCfg := c.RedisStore
	return &redisCfg
}
