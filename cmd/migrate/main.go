// Command migrate applies database schema migrations.
package main

import (
	"embed"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/docrelay/docrelay/internal/config"
)

//go:embed migrations/*.sql
var migrations embed.FS

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	command := flag.Arg(0)
	if command == "" {
		command = "up"
	}

	if err := run(*configPath, command, logger); err != nil {
		logger.Error("migration failed", "command", command, "error", err)
		os.Exit(1)
	}
}

func run(configPath, command string, logger *slog.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("load migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, cfg.Database.ConnectionString())
	if err != nil {
		return fmt.Errorf("initialize migrator: %w", err)
	}
	defer m.Close()

	switch command {
	case "up":
		err = m.Up()
	case "down":
		err = m.Steps(-1)
	case "drop":
		err = m.Drop()
	case "version":
		version, dirty, verErr := m.Version()
		if verErr != nil {
			return fmt.Errorf("read version: %w", verErr)
		}
		logger.Info("migration version", "version", version, "dirty", dirty)
		return nil
	default:
		return fmt.Errorf("unknown command %q (expected up, down, drop, or version)", command)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migrations to apply", "command", command)
		return nil
	}
	if err != nil {
		return err
	}

	logger.Info("migrations applied", "command", command)
	return nil
}
