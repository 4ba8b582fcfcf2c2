package logger

import (
	"log/slog"
	"strings"
)

// Config holds logger configuration
type Config struct {
	Env     string `env:"APP_ENV" envDefault:"development"`
	Service string `env:"APP_NAME" envDefault:"sessiond"`
	Level   string `env:"LOG_LEVEL" envDefault:""` // overrides the environment default when set
}

// NewFromConfig creates a logger from the provided Config.
func NewFromConfig(cfg Config, opts ...Option) *slog.Logger {
	configOpts := []Option{WithEnvironment(cfg.Env, cfg.Service)}

	if cfg.Level != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.Level))); err == nil {
			configOpts = append(configOpts, WithLevel(level))
		}
	}

	configOpts = append(configOpts, opts...)

	return New(configOpts...)
}
