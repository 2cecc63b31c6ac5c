// Package config loads service settings from the environment, with an
// optional .env file for local development.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingSecret indicates ROUTECORE_JWT_SECRET was not set.
var ErrMissingSecret = errors.New("config: ROUTECORE_JWT_SECRET is required")

// Defaults for optional settings.
const (
	DefaultAddr     = ":8080"
	DefaultDBPath   = "routecore.db"
	DefaultTokenTTL = time.Hour
)

// Config holds every runtime setting of the daemon.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string
	// DBPath is the bolthold database file.
	DBPath string
	// JWTSecret signs and verifies API tokens.
	JWTSecret string
	// TokenTTL bounds token lifetime.
	TokenTTL time.Duration
	// Workers sizes the batch and job pools; 0 means auto.
	Workers int
	// CORSOrigins lists allowed origins; empty means allow all.
	CORSOrigins []string
}

// Load reads the environment, preceded by a best-effort .env load (a
// missing file is not an error).
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Addr:      envOr("ROUTECORE_ADDR", DefaultAddr),
		DBPath:    envOr("ROUTECORE_DB", DefaultDBPath),
		JWTSecret: os.Getenv("ROUTECORE_JWT_SECRET"),
		TokenTTL:  DefaultTokenTTL,
	}
	if cfg.JWTSecret == "" {
		return Config{}, ErrMissingSecret
	}

	if raw := os.Getenv("ROUTECORE_TOKEN_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil || ttl <= 0 {
			return Config{}, errors.New("config: ROUTECORE_TOKEN_TTL must be a positive duration")
		}
		cfg.TokenTTL = ttl
	}

	if raw := os.Getenv("ROUTECORE_WORKERS"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return Config{}, errors.New("config: ROUTECORE_WORKERS must be a non-negative integer")
		}
		cfg.Workers = n
	}

	if raw := os.Getenv("ROUTECORE_CORS_ORIGINS"); raw != "" {
		for _, origin := range strings.Split(raw, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
			}
		}
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}
