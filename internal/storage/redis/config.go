package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// TTL settings per record type. Active rooms refresh their TTL on
	// every save, so only abandoned records expire.
	RoomTTL    time.Duration
	SessionTTL time.Duration
	ChatTTL    time.Duration
	StatsTTL   time.Duration

	// ReadCacheTTL bounds how stale a locally cached room or session
	// read may be
	ReadCacheTTL time.Duration
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		RoomTTL:      2 * time.Hour,
		SessionTTL:   30 * time.Minute,
		ChatTTL:      time.Hour,
		StatsTTL:     24 * time.Hour,
		ReadCacheTTL: 30 * time.Second,
	}
}
