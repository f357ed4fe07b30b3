package main

import (
	"ctchen222/tictactoe-service/internal/config"
	"ctchen222/tictactoe-service/internal/db"
	"ctchen222/tictactoe-service/internal/logger"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/golang-migrate/migrate/v4"
)

func main() {
	steps := flag.Int("steps", 0, "number of migrations to roll back with down (0 = all)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-steps n] up|down\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.LogLevel)

	if cfg.Storage.DatabaseURL == "" {
		slog.Error("DATABASE_URL is not set")
		os.Exit(1)
	}

	if err := run(cfg.Storage.DatabaseURL, flag.Arg(0), *steps); err != nil {
		slog.Error("Migration failed", "error", err)
		os.Exit(1)
	}
}

func run(dsn, direction string, steps int) error {
	m, err := db.NewMigrator(dsn)
	if err != nil {
		return err
	}
	defer m.Close()

	switch direction {
	case "up":
		err = m.Up()
	case "down":
		if steps > 0 {
			err = m.Steps(-steps)
		} else {
			err = m.Down()
		}
	default:
		return fmt.Errorf("unknown direction %q", direction)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate %s: %w", direction, err)
	}

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		slog.Info("Migrations applied", "direction", direction, "version", "none")
	case err != nil:
		return fmt.Errorf("failed to read migration version: %w", err)
	default:
		slog.Info("Migrations applied", "direction", direction, "version", version, "dirty", dirty)
	}
	return nil
}
