package hyperloop_test

import (
	"testing"

	"github.com/specialistvlad/hypermdo/internal/model"
	"github.com/specialistvlad/hypermdo/internal/recorder"
	"github.com/specialistvlad/hypermdo/internal/registry"
	"github.com/specialistvlad/hypermdo/internal/testutil"
	"github.com/specialistvlad/hypermdo/modules/hyperloop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func float(t *testing.T, p *model.Problem, path string) float64 {
	t.Helper()
	v, err := p.Float(path)
	require.NoError(t, err, path)
	return v
}

func TestHyperloop_CoupledSolve(t *testing.T) {
	// Arrange
	ctx, _ := testutil.Context(t)
	g, err := hyperloop.NewGroup()
	require.NoError(t, err)
	p := model.NewProblem(g)
	require.NoError(t, p.Setup(ctx))
	rec := recorder.NewMemory()

	// Act
	err = p.Run(ctx, rec)

	// Assert
	require.NoError(t, err)
	wall := float(t, p, "tube.temp_boundary")
	assert.InDelta(t, 322.61, wall, 0.05)
	assert.InDelta(t, wall, float(t, p, "pod.tube_temp"), 1e-6, "compressor inlet follows the wall")

	exit := float(t, p, "pod.exit_temp")
	assert.InDelta(t, exit*9/5, float(t, p, "tube.nozzle_air_Tt"), 1e-6, "exhaust arrives in degR")

	cells := float(t, p, "pod.battery.num_cells")
	assert.Greater(t, cells, 0.0)
	assert.Greater(t, float(t, p, "pod.motor.mass"), 0.0)
	assert.InDelta(t, 0.02337, float(t, p, "tube.structure.thickness"), 1e-4)
	assert.Equal(t, 91.0, float(t, p, "tube.vacuum.num_pumps"))

	assert.NotEmpty(t, rec.IterationsOf(""), "root Gauss-Seidel iterations are recorded")
	assert.NotEmpty(t, rec.IterationsOf("tube.thermal"))
	last, ok := rec.Last()
	require.True(t, ok)
	assert.False(t, last.Failed())
}

func TestHyperloop_SpeedRaisesBatteryDemand(t *testing.T) {
	ctx, _ := testutil.Context(t)
	var prev float64
	for _, speed := range []float64{200, 313, 600} {
		g, err := hyperloop.NewGroup()
		require.NoError(t, err)
		p := model.NewProblem(g)
		require.NoError(t, p.Setup(ctx))
		require.NoError(t, p.Set("design.speed", speed))
		require.NoError(t, p.Run(ctx, nil))

		power := float(t, p, "pod.battery.des_power")
		assert.Greater(t, power, prev, "speed %g", speed)
		prev = power
	}
}

func TestModules_RegisterValidModels(t *testing.T) {
	// Arrange
	ctx, _ := testutil.Context(t)
	r := registry.New()
	for _, m := range []registry.Module{&hyperloop.Module{}} {
		m.Register(r)
	}

	// Act
	err := r.ValidateRegistry(ctx)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []string{"hyperloop"}, r.Models())
}
