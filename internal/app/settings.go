package app

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Setting keys, shared with the command-line flags of the same name.
const (
	KeyLogLevel     = "log-level"
	KeyLogFormat    = "log-format"
	KeyOut          = "out"
	KeyProgressPort = "progress-port"
	KeyPlot         = "plot"
)

// EnvPrefix prefixes the environment variables read for settings, for
// example HYPERMDO_LOG_LEVEL.
const EnvPrefix = "HYPERMDO"

// ResolveSettings fills every setting not given explicitly on the command
// line from the environment, then from cfg.ConfigFile, then from the values
// already in cfg. explicit holds the keys set by flags.
func ResolveSettings(cfg Config, explicit map[string]bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyLogLevel, cfg.LogLevel)
	v.SetDefault(KeyLogFormat, cfg.LogFormat)
	v.SetDefault(KeyOut, cfg.OutDir)
	v.SetDefault(KeyProgressPort, cfg.ProgressPort)
	v.SetDefault(KeyPlot, cfg.Plot)

	if cfg.ConfigFile != "" {
		v.SetConfigFile(cfg.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return cfg, fmt.Errorf("reading settings file %s: %w", cfg.ConfigFile, err)
		}
	}

	if !explicit[KeyLogLevel] {
		cfg.LogLevel = strings.ToLower(v.GetString(KeyLogLevel))
	}
	if !explicit[KeyLogFormat] {
		cfg.LogFormat = strings.ToLower(v.GetString(KeyLogFormat))
	}
	if !explicit[KeyOut] {
		cfg.OutDir = v.GetString(KeyOut)
	}
	if !explicit[KeyProgressPort] {
		cfg.ProgressPort = v.GetInt(KeyProgressPort)
	}
	if !explicit[KeyPlot] {
		cfg.Plot = v.GetBool(KeyPlot)
	}
	return cfg, nil
}
