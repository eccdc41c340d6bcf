package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/beautyops/beautyops/internal/config"
	"github.com/beautyops/beautyops/internal/logger"
	"github.com/beautyops/beautyops/internal/postgres/migrations"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logger.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		logger.Fatalf("Failed to open embedded migrations: %v", err)
	}

	logger.Infow("connecting to database",
		"host", cfg.Postgres.Host,
		"dbname", cfg.Postgres.DBName,
	)
	m, err := migrate.NewWithSourceInstance("iofs", source, cfg.Postgres.GetURL())
	if err != nil {
		logger.Fatalf("Failed to initialize migrations: %v", err)
	}
	defer func() {
		if sourceErr, dbErr := m.Close(); sourceErr != nil || dbErr != nil {
			logger.Errorw("failed to close migration resources", "source_error", sourceErr, "db_error", dbErr)
		}
	}()

	switch command {
	case "up":
		err := m.Up()
		switch {
		case errors.Is(err, migrate.ErrNoChange):
			logger.Info("no change: database is up to date")
		case err != nil:
			logger.Fatalf("Failed to apply migrations: %v", err)
		default:
			logger.Info("migrations applied")
		}

	case "down":
		if err := m.Steps(-1); err != nil {
			logger.Fatalf("Failed to roll back last migration: %v", err)
		}
		logger.Info("rolled back last migration")

	case "goto":
		if len(os.Args) < 3 {
			logger.Fatal("goto requires a version number")
		}
		version, err := strconv.ParseUint(os.Args[2], 10, 64)
		if err != nil {
			logger.Fatalf("Invalid version number: %v", err)
		}
		err = m.Migrate(uint(version))
		switch {
		case errors.Is(err, migrate.ErrNoChange):
			logger.Infow("no change: database already at version", "version", version)
		case err != nil:
			logger.Fatalf("Failed to migrate to version %d: %v", version, err)
		default:
			logger.Infow("migrated", "version", version)
		}

	case "status":
		version, dirty, err := m.Version()
		switch {
		case errors.Is(err, migrate.ErrNilVersion):
			logger.Info("no migrations applied yet")
		case err != nil:
			logger.Fatalf("Failed to read migration version: %v", err)
		default:
			logger.Infow("current migration version", "version", version, "dirty", dirty)
		}

	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: migrate <command>")
	fmt.Println("Commands:")
	fmt.Println("  up     - apply all pending migrations")
	fmt.Println("  down   - roll back the last migration")
	fmt.Println("  goto N - migrate to version N")
	fmt.Println("  status - print the current migration version")
}
