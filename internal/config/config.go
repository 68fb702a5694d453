// Package config reads application settings from the environment. Database
// connection settings live in the database package.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port string

	// JWT
	JWTSecret        string
	JWTExpirationDur time.Duration

	// PipelineAPIKey guards catalog management and settlement. Empty disables
	// those endpoints.
	PipelineAPIKey string

	// Optional text generation for insights.
	GeminiAPIKey string
	GeminiModel  string
	GeminiRPS    float64

	// PortfolioIncludeInactive is the default for whether summaries count
	// cancelled and matured investments.
	PortfolioIncludeInactive bool
	MaturityHorizonDays      int
	RecommendationLimit      int
}

var appConfig *Config

// envReader collects parse failures so one Load reports every bad variable.
type envReader struct {
	errs []error
}

func (r *envReader) str(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func (r *envReader) parse(key string, parse func(string) error) {
	raw := os.Getenv(key)
	if raw == "" {
		return
	}
	if err := parse(raw); err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s=%q: %w", key, raw, err))
	}
}

func (r *envReader) integer(key string, def, min int) int {
	v := def
	r.parse(key, func(raw string) error {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return err
		}
		if n < min {
			return fmt.Errorf("must be at least %d", min)
		}
		v = n
		return nil
	})
	return v
}

func (r *envReader) number(key string, def float64) float64 {
	v := def
	r.parse(key, func(raw string) error {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return err
		}
		if f < 0 {
			return errors.New("must not be negative")
		}
		v = f
		return nil
	})
	return v
}

func (r *envReader) flag(key string, def bool) bool {
	v := def
	r.parse(key, func(raw string) error {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		v = b
		return nil
	})
	return v
}

func (r *envReader) duration(key string, def time.Duration) time.Duration {
	v := def
	r.parse(key, func(raw string) error {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return err
		}
		if d <= 0 {
			return errors.New("must be positive")
		}
		v = d
		return nil
	})
	return v
}

// Load reads .env (when present) and the environment. Malformed values are
// errors rather than silent defaults.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	r := &envReader{}
	cfg := &Config{
		Port:             r.str("PORT", "8080"),
		JWTSecret:        r.str("JWT_SECRET", "fallback-secret-key-for-dev-only"),
		JWTExpirationDur: r.duration("JWT_EXPIRES_IN", 24*time.Hour),

		PipelineAPIKey: r.str("PIPELINE_API_KEY", ""),

		GeminiAPIKey: r.str("GEMINI_API_KEY", ""),
		GeminiModel:  r.str("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiRPS:    r.number("GEMINI_RPS", 1),

		PortfolioIncludeInactive: r.flag("PORTFOLIO_INCLUDE_INACTIVE", false),
		MaturityHorizonDays:      r.integer("MATURITY_HORIZON_DAYS", 30, 0),
		RecommendationLimit:      r.integer("RECOMMENDATION_LIMIT", 5, 1),
	}
	if err := errors.Join(r.errs...); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	appConfig = cfg
	return cfg, nil
}

// Get returns the loaded configuration, loading it on first use.
func Get() *Config {
	if appConfig == nil {
		cfg, err := Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
		appConfig = cfg
	}
	return appConfig
}
