package redis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"no expiry", func(c *Config) { c.RoomTTL = 0; c.MatchTTL = 0 }, false},
		{"missing url", func(c *Config) { c.URL = "" }, true},
		{"empty pool", func(c *Config) { c.PoolSize = 0 }, true},
		{"idle above pool", func(c *Config) { c.MinIdleConns = 11 }, true},
		{"negative ttl", func(c *Config) { c.UserTTL = -time.Second }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
