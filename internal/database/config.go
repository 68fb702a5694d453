package database

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config describes how to reach the store and how to size its pool.
type Config struct {
	Driver     string
	Host       string
	Port       string
	User       string
	Password   string
	DBName     string
	SSLMode    string
	SQLitePath string

	MigrationsDir string
	MaxOpenConns  int
	MaxIdleConns  int
	SlowQuery     time.Duration
}

// NewConfig reads DB_* variables, loading .env first when present.
func NewConfig() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := &Config{
		Driver:        getEnv("DB_DRIVER", DriverPostgres),
		Host:          getEnv("DB_HOST", "localhost"),
		Port:          getEnv("DB_PORT", "5432"),
		User:          getEnv("DB_USER", "yieldvest"),
		Password:      getEnv("DB_PASSWORD", "yieldvest"),
		DBName:        getEnv("DB_NAME", "yieldvest"),
		SSLMode:       getEnv("DB_SSLMODE", "disable"),
		SQLitePath:    getEnv("SQLITE_PATH", "yieldvest.db"),
		MigrationsDir: getEnv("MIGRATIONS_DIR", "migrations"),
		SlowQuery:     200 * time.Millisecond,
	}

	var err error
	if cfg.MaxOpenConns, err = getEnvInt("DB_MAX_OPEN_CONNS", 100); err != nil {
		return nil, err
	}
	if cfg.MaxIdleConns, err = getEnvInt("DB_MAX_IDLE_CONNS", 10); err != nil {
		return nil, err
	}
	if raw := os.Getenv("DB_SLOW_QUERY"); raw != "" {
		if cfg.SlowQuery, err = time.ParseDuration(raw); err != nil {
			return nil, fmt.Errorf("invalid DB_SLOW_QUERY %q: %w", raw, err)
		}
	}

	if cfg.Driver != DriverPostgres && cfg.Driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}
	return cfg, nil
}

// DSN is the key/value connection string the pgx driver accepts.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// MigrationURL is the postgres:// URL golang-migrate expects. Credentials
// are escaped so passwords may contain URL metacharacters.
func (c *Config) MigrationURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + c.Port,
		Path:     "/" + c.DBName,
		RawQuery: url.Values{"sslmode": {c.SSLMode}}.Encode(),
	}
	return u.String()
}

// MigrationSource is the file:// source URL for the migrations directory.
func (c *Config) MigrationSource() string {
	return "file://" + c.MigrationsDir
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid %s %q", key, raw)
	}
	return v, nil
}
