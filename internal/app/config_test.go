package app_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/hypermdo/internal/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	valid := app.Config{CasePath: "cases", LogFormat: "text", LogLevel: "info"}

	testCases := []struct {
		name    string
		mutate  func(c *app.Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*app.Config) {}},
		{name: "missing case path", mutate: func(c *app.Config) { c.CasePath = "" }, wantErr: "CasePath"},
		{name: "listing models needs no cases", mutate: func(c *app.Config) { c.CasePath = ""; c.ListModels = true }},
		{name: "bad format", mutate: func(c *app.Config) { c.LogFormat = "xml" }, wantErr: "log-format"},
		{name: "bad level", mutate: func(c *app.Config) { c.LogLevel = "trace" }, wantErr: "log-level"},
		{name: "bad port", mutate: func(c *app.Config) { c.ProgressPort = 70000 }, wantErr: "progress-port"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid
			tc.mutate(&cfg)

			got, err := app.NewConfig(cfg)

			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, ".", got.OutDir, "output defaults to the working directory")
		})
	}
}

func TestResolveSettings(t *testing.T) {
	base := app.Config{CasePath: "cases", LogFormat: "text", LogLevel: "info", OutDir: "."}

	t.Run("flag defaults survive without overrides", func(t *testing.T) {
		got, err := app.ResolveSettings(base, nil)

		require.NoError(t, err)
		assert.Equal(t, base, got)
	})

	t.Run("environment overrides defaults", func(t *testing.T) {
		t.Setenv("HYPERMDO_LOG_LEVEL", "DEBUG")
		t.Setenv("HYPERMDO_PROGRESS_PORT", "8088")

		got, err := app.ResolveSettings(base, nil)

		require.NoError(t, err)
		assert.Equal(t, "debug", got.LogLevel)
		assert.Equal(t, 8088, got.ProgressPort)
	})

	t.Run("explicit flags win over the environment", func(t *testing.T) {
		t.Setenv("HYPERMDO_LOG_LEVEL", "debug")

		got, err := app.ResolveSettings(base, map[string]bool{app.KeyLogLevel: true})

		require.NoError(t, err)
		assert.Equal(t, "info", got.LogLevel)
	})

	t.Run("settings file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "hypermdo.yaml")
		require.NoError(t, os.WriteFile(path, []byte("out: results\nplot: true\nlog-format: json\n"), 0o644))
		cfg := base
		cfg.ConfigFile = path

		got, err := app.ResolveSettings(cfg, nil)

		require.NoError(t, err)
		assert.Equal(t, "results", got.OutDir)
		assert.True(t, got.Plot)
		assert.Equal(t, "json", got.LogFormat)
	})

	t.Run("missing settings file", func(t *testing.T) {
		cfg := base
		cfg.ConfigFile = filepath.Join(t.TempDir(), "absent.yaml")

		_, err := app.ResolveSettings(cfg, nil)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading settings file")
	})
}
