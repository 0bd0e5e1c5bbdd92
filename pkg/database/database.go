// Package database manages the PostgreSQL connection pool and wires its
// lifecycle into the service coordinator.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/docrelay/docrelay/pkg/lifecycle"
)

// System owns the database connection pool.
type System struct {
	db     *sql.DB
	logger *slog.Logger
}

// New opens a connection pool, verifies connectivity, and registers
// shutdown with the coordinator.
func New(coordinator *lifecycle.Coordinator, config Config, logger *slog.Logger) (*System, error) {
	db, err := sql.Open("pgx", config.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.connMaxLifetime())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &System{db: db, logger: logger}

	coordinator.OnShutdown(func() {
		<-coordinator.Context().Done()
		logger.Info("closing database connection pool")
		if err := db.Close(); err != nil {
			logger.Error("close database", "error", err)
		}
	})

	logger.Info("database connected",
		"host", config.Host,
		"database", config.Database,
	)

	return s, nil
}

// DB returns the underlying connection pool.
func (s *System) DB() *sql.DB {
	return s.db
}

// Ping verifies database connectivity.
func (s *System) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
