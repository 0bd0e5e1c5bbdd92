package config

import (
	"fmt"
	"os"
	"time"

	"github.com/docrelay/docrelay/pkg/formatting"
)

// APIConfig holds API behavior settings.
type APIConfig struct {
	MaxUploadSize string `toml:"max_upload_size"`
	PurgeInterval string `toml:"purge_interval"`
}

// APIEnv maps environment variable names for API configuration.
type APIEnv struct {
	MaxUploadSize string
	PurgeInterval string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *APIConfig) Finalize(env *APIEnv) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge applies non-zero values from the overlay configuration.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.MaxUploadSize != "" {
		c.MaxUploadSize = overlay.MaxUploadSize
	}
	if overlay.PurgeInterval != "" {
		c.PurgeInterval = overlay.PurgeInterval
	}
}

// MaxUploadBytes returns the upload cap in bytes.
func (c *APIConfig) MaxUploadBytes() int64 {
	n, err := formatting.ParseBytes(c.MaxUploadSize)
	if err != nil {
		return 100 << 20
	}
	return n
}

// PurgeIntervalDuration returns the parsed purge interval.
func (c *APIConfig) PurgeIntervalDuration() time.Duration {
	return parseDuration(c.PurgeInterval, time.Hour)
}

func (c *APIConfig) loadDefaults() {
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "100MB"
	}
	if c.PurgeInterval == "" {
		c.PurgeInterval = "1h"
	}
}

func (c *APIConfig) loadEnv(env *APIEnv) {
	if env.MaxUploadSize != "" {
		if v := os.Getenv(env.MaxUploadSize); v != "" {
			c.MaxUploadSize = v
		}
	}
	if env.PurgeInterval != "" {
		if v := os.Getenv(env.PurgeInterval); v != "" {
			c.PurgeInterval = v
		}
	}
}

func (c *APIConfig) validate() error {
	if _, err := formatting.ParseBytes(c.MaxUploadSize); err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	}
	if _, err := time.ParseDuration(c.PurgeInterval); err != nil {
		return fmt.Errorf("invalid purge_interval: %w", err)
	}
	return nil
}
