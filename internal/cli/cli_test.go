package cli_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/hypermdo/internal/app"
	"github.com/specialistvlad/hypermdo/internal/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name     string
		args     []string
		want     *app.Config
		wantExit bool
		wantErr  string
	}{
		{
			name: "positional path with defaults",
			args: []string{"cases/"},
			want: &app.Config{CasePath: "cases/", OutDir: ".", LogFormat: "text", LogLevel: "info"},
		},
		{
			name: "case flag wins over positional",
			args: []string{"--case", "a.hcl", "b.hcl"},
			want: &app.Config{CasePath: "a.hcl", OutDir: ".", LogFormat: "text", LogLevel: "info"},
		},
		{
			name: "shorthands and options",
			args: []string{"-c", "a.hcl", "-o", "results", "--plot", "--only", "x, y", "--log-level", "DEBUG", "--progress-port", "8080"},
			want: &app.Config{
				CasePath: "a.hcl", OutDir: "results", LogFormat: "text", LogLevel: "debug",
				ProgressPort: 8080, Plot: true, Only: []string{"x", "y"},
			},
		},
		{
			name: "listing models needs no path",
			args: []string{"--models"},
			want: &app.Config{OutDir: ".", LogFormat: "text", LogLevel: "info", ListModels: true},
		},
		{name: "no path prints usage", args: nil, wantExit: true},
		{name: "help", args: []string{"-h"}, wantExit: true},
		{name: "unknown flag", args: []string{"--warp"}, wantErr: "flag provided but not defined"},
		{name: "bad log format", args: []string{"--log-format", "xml", "a.hcl"}, wantErr: "log-format"},
		{name: "bad port", args: []string{"--progress-port", "-1", "a.hcl"}, wantErr: "progress-port"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			out := &bytes.Buffer{}

			// Act
			got, exit, err := cli.Parse(tc.args, out)

			// Assert
			if tc.wantErr != "" {
				require.Error(t, err)
				var exitErr *cli.ExitError
				require.True(t, errors.As(err, &exitErr))
				assert.Equal(t, 2, exitErr.Code)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantExit, exit)
			if tc.wantExit {
				assert.Contains(t, out.String(), "Usage:")
				return
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_EnvironmentFillsUnsetFlags(t *testing.T) {
	t.Setenv("HYPERMDO_LOG_FORMAT", "json")
	t.Setenv("HYPERMDO_OUT", "from-env")

	got, _, err := cli.Parse([]string{"-o", "from-flag", "a.hcl"}, &bytes.Buffer{})

	require.NoError(t, err)
	assert.Equal(t, "json", got.LogFormat)
	assert.Equal(t, "from-flag", got.OutDir, "flags beat the environment")
}
