package app_test

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/specialistvlad/hypermdo/internal/app"
	"github.com/specialistvlad/hypermdo/internal/mdoerr"
	"github.com/specialistvlad/hypermdo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readTSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	r := csv.NewReader(f)
	r.Comma = '\t'
	rows, err := r.ReadAll()
	require.NoError(t, err)
	return rows
}

func column(t *testing.T, rows [][]string, name string) []string {
	t.Helper()
	for i, h := range rows[0] {
		if h == name {
			var out []string
			for _, row := range rows[1:] {
				out = append(out, row[i])
			}
			return out
		}
	}
	require.Failf(t, "missing column", "no column %q in %v", name, rows[0])
	return nil
}

func TestApp_RunsScenarioSweep(t *testing.T) {
	// Arrange
	files := map[string]string{
		"tube.hcl": `
case "tube_sweep" {
  model = "tube_thermal"
  set = {
    nozzle_air_W = 1.08
    num_pods     = 34
  }
  sweep "nozzle_air_Tt" {
    values = [1200, 1710, 2400]
  }
  record = ["temp_boundary", "tube_wall.q_pods"]
}
`,
	}

	// Act
	result := testutil.RunApp(t, files, nil)

	// Assert
	require.NoError(t, result.Err, result.Output)
	assert.Contains(t, result.Output, "ok   tube_sweep: 3 point(s)")

	rows := readTSV(t, filepath.Join(result.OutDir, "tube_sweep.tsv"))
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"point", "nozzle_air_Tt", "status", "iterations", "temp_boundary", "tube_wall.q_pods", "error"}, rows[0])
	assert.Equal(t, []string{"converged", "converged", "converged"}, column(t, rows, "status"))

	temps := column(t, rows, "temp_boundary")
	middle, err := strconv.ParseFloat(temps[1], 64)
	require.NoError(t, err)
	assert.InDelta(t, 322.5, middle, 0.5)
}

func TestApp_ConvergenceFailureIsReportedPerPoint(t *testing.T) {
	// Arrange: one Newton iteration is never enough from the default guess.
	files := map[string]string{
		"tube.hcl": `
case "starved" {
  model = "tube_thermal"
  solver "" {
    kind    = "newton"
    maxiter = 1
  }
  sweep "num_pods" {
    values = [10, 34]
  }
  record = ["temp_boundary"]
}
`,
	}

	// Act
	result := testutil.RunApp(t, files, nil)

	// Assert
	require.Error(t, result.Err)
	assert.True(t, mdoerr.IsNotConverged(result.Err))
	assert.False(t, mdoerr.IsAssembly(result.Err))
	assert.Contains(t, result.Output, "FAIL starved: 2 of 2 point(s) failed")
	assert.Contains(t, result.Output, "not converged")

	rows := readTSV(t, filepath.Join(result.OutDir, "starved.tsv"))
	require.Len(t, rows, 3, "failed points still get a row")
	assert.Equal(t, []string{"diverged", "diverged"}, column(t, rows, "status"))
}

func TestApp_AssemblyErrorStopsTheCase(t *testing.T) {
	// Arrange
	files := map[string]string{
		"bad.hcl": `
case "typo" {
  model = "tube_thermal"
  set = {
    nozle_air_W = 1.0
  }
}

case "fine" {
  model = "vacuum"
}
`,
	}

	// Act
	result := testutil.RunApp(t, files, nil)

	// Assert
	require.Error(t, result.Err)
	assert.True(t, mdoerr.IsAssembly(result.Err))
	assert.Contains(t, result.Output, "FAIL typo (assembly)")
	assert.Contains(t, result.Output, "ok   fine: 1 point(s)", "other cases still run")
	assert.NoFileExists(t, filepath.Join(result.OutDir, "typo.tsv"))
	assert.FileExists(t, filepath.Join(result.OutDir, "fine.tsv"))
}

func TestApp_UnknownModel(t *testing.T) {
	files := map[string]string{"x.hcl": `case "x" { model = "warp_drive" }`}

	result := testutil.RunApp(t, files, nil)

	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "unknown model 'warp_drive'")
	assert.Nil(t, result.App)
}

func TestApp_OnlyFilter(t *testing.T) {
	files := map[string]string{
		"cases.hcl": `
case "a" { model = "aero" }
case "b" { model = "compressor" }
`,
	}

	t.Run("selects named cases", func(t *testing.T) {
		result := testutil.RunApp(t, files, func(c *app.Config) { c.Only = []string{"b"} })

		require.NoError(t, result.Err, result.Output)
		assert.FileExists(t, filepath.Join(result.OutDir, "b.tsv"))
		assert.NoFileExists(t, filepath.Join(result.OutDir, "a.tsv"))
	})

	t.Run("rejects unknown names", func(t *testing.T) {
		result := testutil.RunApp(t, files, func(c *app.Config) { c.Only = []string{"c"} })

		require.Error(t, result.Err)
		assert.Contains(t, result.Err.Error(), "unknown case 'c'")
	})
}

func TestApp_WritesPlots(t *testing.T) {
	files := map[string]string{
		"motor.hcl": `
case "motor_torque" {
  model = "motor"
  sweep "design_torque" {
    from  = 100
    to    = 500
    steps = 5
  }
  record = ["mass", "volume"]
}
`,
	}

	result := testutil.RunApp(t, files, func(c *app.Config) { c.Plot = true })

	require.NoError(t, result.Err, result.Output)
	pngs, err := filepath.Glob(filepath.Join(result.OutDir, "*.png"))
	require.NoError(t, err)
	assert.Len(t, pngs, 2)
}

func TestApp_ListModels(t *testing.T) {
	result := testutil.RunApp(t, nil, func(c *app.Config) {
		c.CasePath = ""
		c.ListModels = true
	})

	require.NoError(t, result.Err)
	for _, name := range []string{"aero", "battery", "compressor", "hyperloop", "motor", "tube_structure", "tube_thermal", "vacuum"} {
		assert.True(t, strings.Contains(result.Output, name), "missing model %s", name)
	}
}
