// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	// Remote content API
	APIBaseURL string `env:"ORGDESK_API_BASE_URL,required"` // e.g. https://api.example.com
	APIToken   string `env:"ORGDESK_API_TOKEN"`             // optional bearer token for the internal API family

	SessionSecret string `env:"ORGDESK_SESSION_SECRET,required"`
	DBPath        string `env:"ORGDESK_DB_PATH" envDefault:"./data/orgdesk.db"`
	ServerHost    string `env:"ORGDESK_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"ORGDESK_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"ORGDESK_ENV" envDefault:"development"`
	LogLevel      string `env:"ORGDESK_LOG_LEVEL" envDefault:"info"`
	StagingDir    string `env:"ORGDESK_STAGING_DIR" envDefault:"./data/staging"`

	// Cache configuration
	RedisURL     string `env:"ORGDESK_REDIS_URL"`                         // Optional Redis URL for distributed caching
	CachePrefix  string `env:"ORGDESK_CACHE_PREFIX" envDefault:"orgdesk:"` // Redis key prefix
	CacheTTL     int    `env:"ORGDESK_CACHE_TTL" envDefault:"3600"`       // Default cache TTL in seconds
	CacheMaxSize int    `env:"ORGDESK_CACHE_MAX_SIZE" envDefault:"10000"` // Max memory cache entries

	// Staged uploads
	MaxUploadSize int64 `env:"ORGDESK_MAX_UPLOAD_SIZE" envDefault:"52428800"` // 50MB
	StagingMaxAge int   `env:"ORGDESK_STAGING_MAX_AGE" envDefault:"86400"`    // Seconds before an unsubmitted stage is reaped
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// MinSessionSecretLength is the minimum required length for the session secret.
// AES-256 requires 32 bytes minimum for secure encryption.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("ORGDESK_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	u, err := url.Parse(cfg.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("ORGDESK_API_BASE_URL must be an absolute URL, got %q", cfg.APIBaseURL)
	}
	// Trailing slashes break path joining downstream
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")

	return cfg, nil
}
