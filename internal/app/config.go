package app

import (
	"errors"
	"fmt"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	CasePath   string // hcl file or directory
	OutDir     string
	ConfigFile string // optional settings file

	LogFormat    string
	LogLevel     string
	ProgressPort int
	Plot         bool
	// Only restricts the run to the named cases.
	Only []string
	// ListModels prints the registered models instead of running cases.
	ListModels bool
}

// NewConfig validates cfg.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.CasePath == "" && !cfg.ListModels {
		return nil, errors.New("CasePath is a required configuration field and cannot be empty")
	}
	if cfg.OutDir == "" {
		cfg.OutDir = "."
	}
	switch cfg.LogFormat {
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", cfg.LogFormat)
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}
	if cfg.ProgressPort < 0 || cfg.ProgressPort > 65535 {
		return nil, fmt.Errorf("invalid progress-port %d", cfg.ProgressPort)
	}
	return &cfg, nil
}
