// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on.
	Port string `env:"PORT" envDefault:"8080"`

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string `env:"DATABASE_URL,notEmpty"`

	// LogLevel controls the minimum log level.
	// Valid values: debug, info, warn, error.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"http://localhost:5173"`

	// JWTSecret is the HMAC key used to verify bearer tokens. Required.
	JWTSecret string `env:"JWT_SECRET,notEmpty"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// KakaoAPIKey authenticates place searches. Place search fails with
	// PLACE_SEARCH_UNAVAILABLE when it is empty.
	KakaoAPIKey  string        `env:"KAKAO_API_KEY"`
	KakaoBaseURL string        `env:"KAKAO_BASE_URL" envDefault:"https://dapi.kakao.com"`
	PlaceRPS     float64       `env:"PLACE_RPS" envDefault:"5"`
	PlaceBurst   int           `env:"PLACE_BURST" envDefault:"10"`
	PlaceTimeout time.Duration `env:"PLACE_TIMEOUT" envDefault:"5s"`

	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64 `env:"MAX_BODY_BYTES" envDefault:"1048576"`

	// Timezone decides which calendar day "today" is.
	Timezone string `env:"TIMEZONE" envDefault:"Asia/Seoul"`
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error naming every required variable that is not set.
func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("config.Load: %w", err)
	}

	cfg.CORSOrigins = trimAll(cfg.CORSOrigins)
	if _, err := cfg.Location(); err != nil {
		return Config{}, fmt.Errorf("config.Load: %w", err)
	}
	return cfg, nil
}

// Location resolves Timezone.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// trimAll trims every entry, ignoring empty ones.
func trimAll(in []string) []string {
	var out []string
	for _, part := range in {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
