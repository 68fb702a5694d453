package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"yieldvest/internal/logger"
	"yieldvest/internal/models"
)

// Manager owns the connection pool and schema lifecycle.
type Manager struct {
	db     *gorm.DB
	cfg    *Config
	logger *zap.SugaredLogger
}

// zapWriter lets gorm's logger print through zap.
type zapWriter struct{ log *zap.SugaredLogger }

func (w zapWriter) Printf(format string, args ...interface{}) {
	w.log.Warnf(format, args...)
}

func dialector(cfg *Config) gorm.Dialector {
	if cfg.Driver == DriverSQLite {
		return sqlite.Open(cfg.SQLitePath)
	}
	return postgres.New(postgres.Config{
		DSN: cfg.DSN(),
		// Transaction-mode poolers such as Supavisor reject prepared statements.
		PreferSimpleProtocol: true,
	})
}

// NewManager opens the database described by cfg. Only slow queries and
// errors are logged; missing rows are an expected outcome and stay quiet.
func NewManager(cfg *Config) (*Manager, error) {
	log := logger.Named("database")
	db, err := gorm.Open(dialector(cfg), &gorm.Config{
		Logger: gormlogger.New(zapWriter{log}, gormlogger.Config{
			SlowThreshold:             cfg.SlowQuery,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying DB: %w", err)
	}
	if cfg.Driver == DriverSQLite {
		// One writer at a time.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	return &Manager{db: db, cfg: cfg, logger: log}, nil
}

// RunMigrations brings the schema up to date. Postgres applies the SQL files
// under cfg.MigrationsDir; SQLite is a local store and is built from the models.
func (m *Manager) RunMigrations() error {
	if m.cfg.Driver == DriverSQLite {
		if err := m.db.AutoMigrate(models.All()...); err != nil {
			return fmt.Errorf("auto-migration failed: %w", err)
		}
		m.logger.Infow("schema auto-migrated", "path", m.cfg.SQLitePath)
		return nil
	}

	mig, err := migrate.New(m.cfg.MigrationSource(), m.cfg.MigrationURL())
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() {
		if srcErr, dbErr := mig.Close(); srcErr != nil || dbErr != nil {
			m.logger.Warnw("migrate close error", "source", srcErr, "database", dbErr)
		}
	}()

	if err := mig.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}
	version, dirty, err := mig.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	m.logger.Infow("schema up to date", "version", version, "dirty", dirty)
	return nil
}

func (m *Manager) DB() *gorm.DB {
	return m.db
}

// Close releases the pool.
func (m *Manager) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
