package storage

import (
	"fmt"
	"os"
)

// Config holds Azure Blob Storage connection settings.
type Config struct {
	ConnectionString string `toml:"connection_string"`
	Container        string `toml:"container"`
}

// ConfigEnv maps environment variable names for storage configuration.
type ConfigEnv struct {
	ConnectionString string
	Container        string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *ConfigEnv) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge applies non-zero values from the overlay configuration.
func (c *Config) Merge(overlay *Config) {
	if overlay.ConnectionString != "" {
		c.ConnectionString = overlay.ConnectionString
	}
	if overlay.Container != "" {
		c.Container = overlay.Container
	}
}

func (c *Config) loadDefaults() {
	if c.Container == "" {
		c.Container = "shares"
	}
}

func (c *Config) loadEnv(env *ConfigEnv) {
	if env.ConnectionString != "" {
		if v := os.Getenv(env.ConnectionString); v != "" {
			c.ConnectionString = v
		}
	}
	if env.Container != "" {
		if v := os.Getenv(env.Container); v != "" {
			c.Container = v
		}
	}
}

func (c *Config) validate() error {
	if c.ConnectionString == "" {
		return fmt.Errorf("storage connection string is required")
	}
	if c.Container == "" {
		return fmt.Errorf("storage container is required")
	}
	return nil
}
