package config

import (
	"os"
	"time"
)

const (
	// Connection setup
	ConnectTimeout   = 15 * time.Second
	RoomSetupTimeout = 10 * time.Second

	// WebSocket close codes
	CloseCodeAuthFailure = 4000
	CloseCodeInternal    = 1011

	// Transport
	WriteWait      = 10 * time.Second
	PongWait       = 60 * time.Second
	PingPeriod     = (PongWait * 9) / 10
	MaxMessageSize = 512
	SendBufferSize = 256

	// History
	DefaultHistoryLimit = 30
	MaxHistoryLimit     = 100

	// Auth
	TokenTTL = 72 * time.Hour
)

// FabricMode selects the broadcast fabric implementation.
type FabricMode string

const (
	// FabricMemory keeps fan-out in-process. Single-server deployments.
	FabricMemory FabricMode = "memory"
	// FabricRedis relays fan-out through Redis Pub/Sub so multiple server
	// processes share rooms.
	FabricRedis FabricMode = "redis"
)

// Config holds the environment-driven settings. Load it once in main after
// godotenv has populated the process environment.
type Config struct {
	ListenAddr  string
	PostgresDSN string
	RedisAddr   string
	RedisDB     int
	Fabric      FabricMode
	JWTSecret   string
}

// Load reads the configuration from the environment, falling back to the
// local docker-compose defaults.
func Load() Config {
	cfg := Config{
		ListenAddr:  getenv("LISTEN_ADDR", ":8080"),
		PostgresDSN: getenv("POSTGRES_DSN", "host=localhost user=user password=password dbname=groupchatdb port=5432 sslmode=disable"),
		RedisAddr:   getenv("REDIS_ADDR", "localhost:6380"),
		Fabric:      FabricMode(getenv("FABRIC_MODE", string(FabricMemory))),
		JWTSecret:   getenv("JWT_SECRET", ""),
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
