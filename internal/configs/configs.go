/*
Package configs loads and validates the application's configuration.

Values come from environment variables, with a local .env file honored in
development. Parsing is done with envconfig.
*/
package configs

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// AppConfig contains all configuration the server needs to run.
type AppConfig struct {
	// Environment selects logging format and origin policy ("development"
	// allows any origin).
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	// Port is the HTTP listen port.
	Port int `envconfig:"PORT" default:"8080"`

	// AllowedOrigins lists the origins accepted for CORS and WebSocket
	// upgrades outside development.
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS"`

	// RoomGracePeriod is how long an empty room survives before removal.
	RoomGracePeriod time.Duration `envconfig:"ROOM_GRACE_PERIOD" default:"5m"`

	// MaxUploadBytes caps the accumulated (base64) size of one upload.
	MaxUploadBytes int64 `envconfig:"MAX_UPLOAD_BYTES" default:"268435456"`

	// CreateRatePerSec and CreateBurst bound room creation per client IP.
	CreateRatePerSec float64 `envconfig:"CREATE_RATE_PER_SEC" default:"0.05"`
	CreateBurst      int     `envconfig:"CREATE_BURST" default:"2"`

	// ConnectRatePerSec and ConnectBurst bound WebSocket connects per client IP.
	ConnectRatePerSec float64 `envconfig:"CONNECT_RATE_PER_SEC" default:"0.2"`
	ConnectBurst      int     `envconfig:"CONNECT_BURST" default:"5"`
}

// LoadConfig reads the configuration from the environment. A missing .env file
// is not an error.
func LoadConfig() (*AppConfig, error) {
	_ = godotenv.Load()

	cfg := &AppConfig{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if cfg.Port < 1024 || cfg.Port > 65535 {
		return nil, fmt.Errorf("port number %d is outside the allowed range (1024-65535)", cfg.Port)
	}

	if cfg.RoomGracePeriod <= 0 {
		return nil, fmt.Errorf("ROOM_GRACE_PERIOD must be positive, got %s", cfg.RoomGracePeriod)
	}

	if cfg.MaxUploadBytes < 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_BYTES must not be negative, got %d", cfg.MaxUploadBytes)
	}

	return cfg, nil
}
