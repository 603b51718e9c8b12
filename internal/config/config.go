package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is the process configuration, populated from the environment with
// the CANVAS_ prefix (for example CANVAS_ADDR). A .env file in the working
// directory is loaded first when present.
type Config struct {
	Addr string `envconfig:"ADDR" default:":3000"`

	// AllowedOrigins restricts the Origin header on upgrade requests.
	// Empty means any origin is accepted.
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS"`

	MaxMessageSize    int64   `envconfig:"MAX_MESSAGE_SIZE" default:"65536"`
	MessagesPerSecond float64 `envconfig:"MESSAGES_PER_SECOND" default:"30"`
	BurstSize         int     `envconfig:"BURST_SIZE" default:"10"`

	InboxCapacity   int `envconfig:"INBOX_CAPACITY" default:"50"`
	BroadcastBuffer int `envconfig:"BROADCAST_BUFFER" default:"10"`

	// Per-IP connection limiting: one connection per interval seconds with
	// the given burst.
	ConnectionIntervalSeconds int `envconfig:"CONNECTION_INTERVAL_SECONDS" default:"6"`
	ConnectionBurst           int `envconfig:"CONNECTION_BURST" default:"5"`
}

// Load reads the optional .env file and the environment.
func Load() (*Config, error) {
	// .env is a development convenience; absence is not an error
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("canvas", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	return &cfg, nil
}
