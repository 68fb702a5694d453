package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name     string
		env      string
		opts     settings
		enabled  zapcore.Level
		disabled []zapcore.Level
	}{
		{name: "development logs debug", env: "development", enabled: zapcore.DebugLevel},
		{name: "production starts at info", env: "production", enabled: zapcore.InfoLevel, disabled: []zapcore.Level{zapcore.DebugLevel}},
		{name: "level override", env: "development", opts: settings{level: "warn"}, enabled: zapcore.WarnLevel, disabled: []zapcore.Level{zapcore.DebugLevel, zapcore.InfoLevel}},
		{name: "bad level keeps default", env: "production", opts: settings{level: "loud"}, enabled: zapcore.InfoLevel, disabled: []zapcore.Level{zapcore.DebugLevel}},
		{name: "service field", env: "production", opts: settings{service: "yieldvest-api"}, enabled: zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := build(tt.env, tt.opts)
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			if !l.Core().Enabled(tt.enabled) {
				t.Errorf("expected %s enabled", tt.enabled)
			}
			for _, lvl := range tt.disabled {
				if l.Core().Enabled(lvl) {
					t.Errorf("expected %s disabled", lvl)
				}
			}
		})
	}
}

func TestBuild_TestEnvIsSilent(t *testing.T) {
	l, err := build("test", settings{level: "debug"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if l.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("expected test logger to discard everything")
	}
}
