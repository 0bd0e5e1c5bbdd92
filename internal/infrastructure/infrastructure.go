// Package infrastructure assembles the shared backing systems the
// domain layers depend on.
package infrastructure

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/docrelay/docrelay/internal/config"
	"github.com/docrelay/docrelay/pkg/database"
	"github.com/docrelay/docrelay/pkg/lifecycle"
	"github.com/docrelay/docrelay/pkg/storage"
)

// Infrastructure holds the shared backing systems.
type Infrastructure struct {
	Database *database.System
	Storage  storage.System
}

// New connects the database and blob storage, registering their
// lifecycles with the coordinator.
func New(ctx context.Context, coordinator *lifecycle.Coordinator, cfg *config.Config, logger *slog.Logger) (*Infrastructure, error) {
	db, err := database.New(coordinator, cfg.Database, logger.With("system", "database"))
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	store, err := storage.New(ctx, cfg.Storage, logger.With("system", "storage"))
	if err != nil {
		return nil, fmt.Errorf("initialize storage: %w", err)
	}

	return &Infrastructure{
		Database: db,
		Storage:  store,
	}, nil
}
