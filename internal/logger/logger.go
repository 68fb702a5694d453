// Package logger holds the process-wide zap logger.
package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	sugar *zap.SugaredLogger
	once  sync.Once
)

type settings struct {
	level   string
	service string
}

// Option adjusts how Init builds the logger.
type Option func(*settings)

// WithLevel overrides the environment's default minimum level ("debug",
// "info", "warn", "error"). Unparseable levels are ignored.
func WithLevel(level string) Option {
	return func(s *settings) { s.level = level }
}

// WithService tags every entry with a service field.
func WithService(name string) Option {
	return func(s *settings) { s.service = name }
}

func build(env string, s settings) (*zap.Logger, error) {
	var cfg zap.Config
	switch env {
	case "test":
		return zap.NewNop(), nil
	case "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}

	if s.level != "" {
		if lvl, err := zapcore.ParseLevel(s.level); err == nil {
			cfg.Level = zap.NewAtomicLevelAt(lvl)
		}
	}
	if s.service != "" {
		cfg.InitialFields = map[string]interface{}{"service": s.service}
	}
	return cfg.Build()
}

// Init sets up the global logger once. "production" logs JSON, "test" logs
// nothing and anything else gets the development console encoder.
func Init(env string, opts ...Option) {
	once.Do(func() {
		var s settings
		for _, opt := range opts {
			opt(&s)
		}
		base, err := build(env, s)
		if err != nil {
			base = zap.NewNop()
		}
		sugar = base.Sugar()
	})
}

// Get returns the global logger, initializing a development one on first use.
func Get() *zap.SugaredLogger {
	if sugar == nil {
		Init("development")
	}
	return sugar
}

// Named returns a child logger for one component, e.g. "insights".
func Named(component string) *zap.SugaredLogger {
	return Get().Named(component)
}

func Sync() {
	if sugar != nil {
		_ = sugar.Sync()
	}
}
