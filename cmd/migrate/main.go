// Command migrate applies the SQL migrations under MIGRATIONS_DIR to the
// postgres database named by the DB_* environment.
package main

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"

	"yieldvest/internal/database"
	"yieldvest/internal/logger"
)

type command func(m *migrate.Migrate, args []string, log *zap.SugaredLogger) error

var commands = map[string]command{
	"up":      up,
	"down":    down,
	"goto":    gotoVersion,
	"force":   force,
	"version": version,
}

func main() {
	logger.Init(os.Getenv("ENV"), logger.WithService("yieldvest-migrate"))
	defer logger.Sync()

	if err := run(os.Args[1:]); err != nil {
		logger.Get().Fatalf("Migration error: %v", err)
	}
}

func usage() error {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Errorf("usage: migrate <%s> [N]", strings.Join(names, "|"))
}

func run(args []string) error {
	if len(args) == 0 {
		return usage()
	}
	cmd, ok := commands[args[0]]
	if !ok {
		return usage()
	}

	cfg, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database config: %w", err)
	}
	if cfg.Driver != database.DriverPostgres {
		return fmt.Errorf("SQL migrations target postgres; %s schemas are created by the API on startup", cfg.Driver)
	}

	m, err := migrate.New(cfg.MigrationSource(), cfg.MigrationURL())
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	log := logger.Named("migrate")
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			log.Warnw("close error", "source", srcErr, "database", dbErr)
		}
	}()

	return cmd(m, args[1:], log)
}

// intArg reads args[0] as a non-negative integer, or returns def when absent.
func intArg(args []string, def int, name string) (int, error) {
	if len(args) == 0 {
		if def < 0 {
			return 0, fmt.Errorf("missing %s", name)
		}
		return def, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q", name, args[0])
	}
	return n, nil
}

func up(m *migrate.Migrate, _ []string, log *zap.SugaredLogger) error {
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	log.Info("Migrations applied")
	return nil
}

func down(m *migrate.Migrate, args []string, log *zap.SugaredLogger) error {
	steps, err := intArg(args, 1, "step count")
	if err != nil {
		return err
	}
	if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration down failed: %w", err)
	}
	log.Infof("Rolled back %d migration(s)", steps)
	return nil
}

func gotoVersion(m *migrate.Migrate, args []string, log *zap.SugaredLogger) error {
	v, err := intArg(args, -1, "version")
	if err != nil {
		return err
	}
	if err := m.Migrate(uint(v)); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate to %d failed: %w", v, err)
	}
	log.Infof("Schema at version %d", v)
	return nil
}

// force marks a version as applied without running it, clearing the dirty
// flag left by a failed migration.
func force(m *migrate.Migrate, args []string, log *zap.SugaredLogger) error {
	v, err := intArg(args, -1, "version")
	if err != nil {
		return err
	}
	if err := m.Force(v); err != nil {
		return fmt.Errorf("force failed: %w", err)
	}
	log.Infof("Forced version %d", v)
	return nil
}

func version(m *migrate.Migrate, _ []string, log *zap.SugaredLogger) error {
	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		log.Info("No migrations applied")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get version: %w", err)
	}
	log.Infow("Schema version", "version", v, "dirty", dirty)
	return nil
}
