// Package config handles application configuration from environment variables
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Port        string   `env:"PORT" envDefault:"8080"`
	DatabaseURL string   `env:"DATABASE_URL"`
	RedisAddr   string   `env:"REDIS_ADDR"`
	LogLevel    string   `env:"LOG_LEVEL" envDefault:"info"`
	Timezone    string   `env:"TIMEZONE" envDefault:"Local"`
	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`

	Upload  UploadConfig
	Session SessionConfig
}

// UploadConfig holds settings for the upload pipeline
type UploadConfig struct {
	// ProcessingDelay is the pause between accepting a file and parsing it.
	ProcessingDelay time.Duration `env:"PROCESSING_DELAY" envDefault:"1500ms"`
	MaxBytes        int64         `env:"MAX_UPLOAD_BYTES" envDefault:"20971520"`
}

// SessionConfig holds cookie session settings
type SessionConfig struct {
	Lifetime     time.Duration `env:"SESSION_LIFETIME" envDefault:"12h"`
	SecureCookie bool          `env:"SESSION_SECURE_COOKIE" envDefault:"false"`
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Location returns the configured time zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// HasDatabase returns true if an analytics database is configured
func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}

// HasQueue returns true if a Redis queue is configured
func (c *Config) HasQueue() bool {
	return c.RedisAddr != ""
}

// Validate checks value ranges that env parsing cannot express
func (c *Config) Validate() error {
	if c.Upload.ProcessingDelay < 0 {
		return fmt.Errorf("PROCESSING_DELAY must not be negative, got %s", c.Upload.ProcessingDelay)
	}
	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.Upload.MaxBytes)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return nil
}
