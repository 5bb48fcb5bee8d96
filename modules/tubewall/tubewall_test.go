package tubewall_test

import (
	"errors"
	"math"
	"testing"

	"github.com/specialistvlad/hypermdo/internal/mdoerr"
	"github.com/specialistvlad/hypermdo/internal/model"
	"github.com/specialistvlad/hypermdo/internal/recorder"
	"github.com/specialistvlad/hypermdo/internal/testutil"
	"github.com/specialistvlad/hypermdo/modules/tubewall"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) *model.Problem {
	t.Helper()
	ctx, _ := testutil.Context(t)
	g, err := tubewall.NewGroup()
	require.NoError(t, err)
	p := model.NewProblem(g)
	require.NoError(t, p.Setup(ctx))
	return p
}

func TestTubeWall_Equilibrium(t *testing.T) {
	// Arrange: representative pod exhaust and tube geometry.
	ctx, _ := testutil.Context(t)
	p := setup(t)
	for path, v := range map[string]float64{
		"nozzle_air_W":         1.08,
		"nozzle_air_Tt":        1710,
		"tube_area":            3.9057,
		"tube_length":          482803,
		"num_pods":             34,
		"temp_outside_ambient": 305.6,
	} {
		require.NoError(t, p.Set(path, v))
	}
	rec := recorder.NewMemory()

	// Act
	err := p.Run(ctx, rec)

	// Assert
	require.NoError(t, err)
	temp, err := p.Float("temp_boundary")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, temp, 322.0)
	assert.LessOrEqual(t, temp, 323.0)

	res, err := p.Residual("temp_boundary")
	require.NoError(t, err)
	assert.LessOrEqual(t, math.Abs(res[0]), 1.0, "residual is in watts against a balance of ~4e8 W")

	in, err := p.Float("tube_wall.q_total_in")
	require.NoError(t, err)
	out, err := p.Float("tube_wall.q_total_out")
	require.NoError(t, err)
	assert.InEpsilon(t, in, out, 1e-9)

	last, ok := rec.Last()
	require.True(t, ok)
	assert.False(t, last.Failed())
	assert.Greater(t, last.Iterations, 0)
}

func TestTubeWall_HotterExhaustHeatsTheWall(t *testing.T) {
	ctx, _ := testutil.Context(t)
	temps := make([]float64, 0, 3)
	for _, tt := range []float64{1200, 1710, 2400} {
		p := setup(t)
		require.NoError(t, p.Set("nozzle_air_Tt", tt))
		require.NoError(t, p.Run(ctx, nil))
		temp, err := p.Float("temp_boundary")
		require.NoError(t, err)
		temps = append(temps, temp)
	}
	assert.Less(t, temps[0], temps[1])
	assert.Less(t, temps[1], temps[2])
}

func TestTubeWall_InvalidGeometry(t *testing.T) {
	// Arrange
	ctx, _ := testutil.Context(t)
	p := setup(t)
	require.NoError(t, p.Set("tube_area", -1))

	// Act
	err := p.Run(ctx, nil)

	// Assert
	require.Error(t, err)
	assert.True(t, errors.Is(err, mdoerr.ErrCompute))
	var ce *mdoerr.ComputeError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "tube_area", ce.Variable)
}
