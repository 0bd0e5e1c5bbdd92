// Package config loads service configuration from TOML files layered
// with environment variable overrides.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/docrelay/docrelay/pkg/database"
	"github.com/docrelay/docrelay/pkg/middleware"
	"github.com/docrelay/docrelay/pkg/pagination"
	"github.com/docrelay/docrelay/pkg/storage"
)

// DefaultPath is the config file read when none is specified.
const DefaultPath = "config.toml"

// Config is the root service configuration.
type Config struct {
	Server     ServerConfig          `toml:"server"`
	API        APIConfig             `toml:"api"`
	Database   database.Config       `toml:"database"`
	Storage    storage.Config        `toml:"storage"`
	CORS       middleware.CORSConfig `toml:"cors"`
	Pagination pagination.Config     `toml:"pagination"`
}

// Load reads configuration from the given TOML file (optional), applies
// environment variable overrides, and validates the result.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path == "" {
		path = DefaultPath
	}

	if data, err := os.ReadFile(path); err == nil {
		overlay := &Config{}
		if err := toml.Unmarshal(data, overlay); err != nil {
			return nil, fmt.Errorf("parse config %q: %w", path, err)
		}
		cfg.merge(overlay)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config %q: %w", path, err)
	}

	if err := cfg.finalize(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) merge(overlay *Config) {
	c.Server.Merge(&overlay.Server)
	c.API.Merge(&overlay.API)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
}

func (c *Config) finalize() error {
	if err := c.Server.Finalize(&ServerEnv{
		Host: "DOCRELAY_SERVER_HOST",
		Port: "DOCRELAY_SERVER_PORT",
	}); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.API.Finalize(&APIEnv{
		MaxUploadSize: "DOCRELAY_MAX_UPLOAD_SIZE",
		PurgeInterval: "DOCRELAY_PURGE_INTERVAL",
	}); err != nil {
		return fmt.Errorf("api config: %w", err)
	}

	if err := c.Database.Finalize(&database.ConfigEnv{
		Host:     "DOCRELAY_DB_HOST",
		Port:     "DOCRELAY_DB_PORT",
		Database: "DOCRELAY_DB_NAME",
		User:     "DOCRELAY_DB_USER",
		Password: "DOCRELAY_DB_PASSWORD",
		SSLMode:  "DOCRELAY_DB_SSL_MODE",
	}); err != nil {
		return fmt.Errorf("database config: %w", err)
	}

	if err := c.Storage.Finalize(&storage.ConfigEnv{
		ConnectionString: "DOCRELAY_STORAGE_CONNECTION_STRING",
		Container:        "DOCRELAY_STORAGE_CONTAINER",
	}); err != nil {
		return fmt.Errorf("storage config: %w", err)
	}

	if err := c.CORS.Finalize(&middleware.CORSEnv{
		Enabled:          "DOCRELAY_CORS_ENABLED",
		Origins:          "DOCRELAY_CORS_ORIGINS",
		AllowedMethods:   "DOCRELAY_CORS_ALLOWED_METHODS",
		AllowedHeaders:   "DOCRELAY_CORS_ALLOWED_HEADERS",
		AllowCredentials: "DOCRELAY_CORS_ALLOW_CREDENTIALS",
		MaxAge:           "DOCRELAY_CORS_MAX_AGE",
	}); err != nil {
		return fmt.Errorf("cors config: %w", err)
	}

	if err := c.Pagination.Finalize(&pagination.ConfigEnv{
		DefaultPageSize: "DOCRELAY_PAGE_SIZE_DEFAULT",
		MaxPageSize:     "DOCRELAY_PAGE_SIZE_MAX",
	}); err != nil {
		return fmt.Errorf("pagination config: %w", err)
	}

	return nil
}
