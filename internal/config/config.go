// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is read once at startup.
type Config struct {
	Port         string        `env:"PORT"          envDefault:"8080"`
	DatabasePath string        `env:"DATABASE_PATH" envDefault:"photo-gallery.db"`
	DataDir      string        `env:"DATA_DIR"`
	CacheDir     string        `env:"CACHE_DIR"`
	Platform     string        `env:"PHOTO_PLATFORM"`
	PublicURL    string        `env:"PUBLIC_URL"    envDefault:"http://localhost:8080"`
	BlobTTL      time.Duration `env:"BLOB_TTL"      envDefault:"10m"`
	LogLevel     slog.Level    `env:"LOG_LEVEL"     envDefault:"INFO"`

	// Scheme and host of converted native file URIs. Empty values follow PublicURL.
	FileSrcScheme string `env:"FILE_SRC_SCHEME"`
	FileSrcHost   string `env:"FILE_SRC_HOST"`

	// Per-client capture limit: tokens per second and burst size.
	CaptureRate  float64 `env:"CAPTURE_RATE"  envDefault:"1"`
	CaptureBurst float64 `env:"CAPTURE_BURST" envDefault:"5"`
}

// Load parses the environment and fills derived defaults.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() error {
	u, err := url.Parse(c.PublicURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("PUBLIC_URL must be an absolute URL, got %q", c.PublicURL)
	}
	if c.FileSrcScheme == "" {
		c.FileSrcScheme = u.Scheme
	}
	if c.FileSrcHost == "" {
		c.FileSrcHost = u.Host
	}
	if c.CacheDir == "" {
		c.CacheDir = filepath.Join(os.TempDir(), "photo-gallery-cache")
	}
	if c.BlobTTL <= 0 {
		return fmt.Errorf("BLOB_TTL must be positive, got %s", c.BlobTTL)
	}
	if c.CaptureRate < 0 || c.CaptureBurst < 1 {
		return fmt.Errorf("CAPTURE_RATE must be >= 0 and CAPTURE_BURST >= 1")
	}
	return nil
}
