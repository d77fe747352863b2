package redis

import (
	"fmt"
	"time"
)

// Config holds Redis storage settings. The env tags are relative to the
// caller's prefix (DUEL_REDIS_ for the server).
type Config struct {
	URL string `env:"URL"`

	PoolSize     int `env:"POOL_SIZE" envDefault:"10"`
	MinIdleConns int `env:"MIN_IDLE_CONNS" envDefault:"2"`

	// Zero means no expiry. Rooms and users expire after idling; each
	// room's match list expires after its last recorded match.
	RoomTTL  time.Duration `env:"ROOM_TTL" envDefault:"24h"`
	UserTTL  time.Duration `env:"USER_TTL"`
	MatchTTL time.Duration `env:"MATCH_TTL" envDefault:"168h"`
}

// DefaultConfig matches the env defaults, pointed at a local server
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		RoomTTL:      24 * time.Hour,
		MatchTTL:     7 * 24 * time.Hour,
	}
}

// Validate rejects settings go-redis would misbehave with
func (c Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("redis url required")
	}
	if c.PoolSize < 1 || c.MinIdleConns < 0 || c.MinIdleConns > c.PoolSize {
		return fmt.Errorf("invalid redis pool: size %d, min idle %d", c.PoolSize, c.MinIdleConns)
	}
	if c.RoomTTL < 0 || c.UserTTL < 0 || c.MatchTTL < 0 {
		return fmt.Errorf("redis ttls must not be negative")
	}
	return nil
}
