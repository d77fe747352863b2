package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "memory", cfg.StorageType)
	assert.Equal(t, 5*time.Second, cfg.JudgeTimeout)
	assert.Equal(t, 6000, cfg.DisplayMs)
	assert.Equal(t, 3, cfg.MinLength)
	assert.Equal(t, 5, cfg.MaxLength)
	assert.Empty(t, cfg.JudgeURL)
	assert.Nil(t, cfg.Redis())

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DUEL_PORT", "9090")
	t.Setenv("DUEL_LOG_LEVEL", "debug")
	t.Setenv("DUEL_STORAGE_TYPE", "redis")
	t.Setenv("DUEL_REDIS_URL", "redis://cache:6379/1")
	t.Setenv("DUEL_REDIS_ROOM_TTL", "2h")
	t.Setenv("DUEL_JUDGE_URL", "http://judge:8081/api/v1")
	t.Setenv("DUEL_JUDGE_TIMEOUT", "750ms")
	t.Setenv("DUEL_DISPLAY_MS", "3000")
	t.Setenv("DUEL_MAX_LENGTH", "7")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 750*time.Millisecond, cfg.JudgeTimeout)
	assert.Equal(t, "http://judge:8081/api/v1", cfg.JudgeURL)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	redisCfg := cfg.Redis()
	require.NotNil(t, redisCfg)
	assert.Equal(t, "redis://cache:6379/1", redisCfg.URL)
	assert.Equal(t, 10, redisCfg.PoolSize)
	assert.Equal(t, 2*time.Hour, redisCfg.RoomTTL)
	assert.Equal(t, 7*24*time.Hour, redisCfg.MatchTTL)
	assert.Zero(t, redisCfg.UserTTL)

	seq := cfg.Sequence()
	assert.Equal(t, 3, seq.MinLength)
	assert.Equal(t, 7, seq.MaxLength)
	assert.Equal(t, 3000, seq.DisplayMs)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad port", map[string]string{"DUEL_PORT": "not-an-int"}},
		{"unknown storage", map[string]string{"DUEL_STORAGE_TYPE": "sqlite"}},
		{"redis without url", map[string]string{"DUEL_STORAGE_TYPE": "redis"}},
		{"redis bad pool", map[string]string{"DUEL_STORAGE_TYPE": "redis", "DUEL_REDIS_URL": "redis://cache:6379", "DUEL_REDIS_MIN_IDLE_CONNS": "20"}},
		{"inverted lengths", map[string]string{"DUEL_MIN_LENGTH": "6", "DUEL_MAX_LENGTH": "4"}},
		{"min below contract", map[string]string{"DUEL_MIN_LENGTH": "1"}},
		{"max above contract", map[string]string{"DUEL_MAX_LENGTH": "20"}},
		{"zero display", map[string]string{"DUEL_DISPLAY_MS": "0"}},
		{"bad level", map[string]string{"DUEL_LOG_LEVEL": "loud"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
