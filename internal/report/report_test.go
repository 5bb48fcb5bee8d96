package report_test

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/specialistvlad/hypermdo/internal/report"
	"github.com/specialistvlad/hypermdo/internal/study"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *study.Result {
	return &study.Result{
		Plan: study.Plan{Name: "tube", Variable: "inputs.W", Record: []string{"t.temp", "t.vec"}},
		Points: []study.Point{
			{Index: 0, Value: 0.5, Status: "converged", Iterations: 3, Outputs: [][]float64{{300}, {1, 2}}},
			{Index: 1, Value: 1, Status: "diverged", Iterations: 50, Outputs: [][]float64{{310}, {3, 4}}, Err: errors.New("no luck")},
			{Index: 2, Value: 1.5, Status: "converged", Iterations: 4, Outputs: [][]float64{{320}, {5, 6}}},
		},
	}
}

func TestColumns(t *testing.T) {
	// Act
	cols := report.Columns(sample())

	// Assert
	require.Len(t, cols, 3)
	assert.Equal(t, "t.temp", cols[0].Name)
	assert.Equal(t, "t.vec[1]", cols[2].Name)
	assert.Equal(t, []float64{2, 4, 6}, cols[2].Values)
}

func TestWriteTSV(t *testing.T) {
	// Arrange
	var buf bytes.Buffer

	// Act
	err := report.WriteTSV(&buf, sample())

	// Assert
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "point\tinputs.W\tstatus\titerations\tt.temp\tt.vec[0]\tt.vec[1]\terror", lines[0])
	assert.Equal(t, "1\t1\tdiverged\t50\t310\t3\t4\tno luck", lines[2])
}

func TestWriteTSV_NoSweep(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	res := &study.Result{
		Plan:   study.Plan{Name: "once", Record: []string{"x"}},
		Points: []study.Point{{Status: "converged", Iterations: 1, Outputs: [][]float64{{1.25}}}},
	}

	// Act
	require.NoError(t, report.WriteTSV(&buf, res))

	// Assert
	assert.Equal(t, "point\tstatus\titerations\tx\terror\n0\tconverged\t1\t1.25\t\n", buf.String())
}

func TestPlot(t *testing.T) {
	// Arrange
	dir := t.TempDir()

	// Act
	files, err := report.Plot(dir, sample())

	// Assert
	require.NoError(t, err)
	require.Len(t, files, 3)
	for _, f := range files {
		info, err := os.Stat(f)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
}

func TestPlot_NothingToPlot(t *testing.T) {
	files, err := report.Plot(t.TempDir(), &study.Result{Plan: study.Plan{Name: "once"}})
	require.NoError(t, err)
	assert.Empty(t, files)
}
