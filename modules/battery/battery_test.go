package battery_test

import (
	"math"
	"testing"

	"github.com/specialistvlad/hypermdo/internal/model"
	"github.com/specialistvlad/hypermdo/internal/testutil"
	"github.com/specialistvlad/hypermdo/modules/battery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solve(t *testing.T, power float64) *model.Problem {
	t.Helper()
	ctx, _ := testutil.Context(t)
	g, err := battery.NewGroup()
	require.NoError(t, err)
	p := model.NewProblem(g)
	require.NoError(t, p.Setup(ctx))
	require.NoError(t, p.Set("des_power", power))
	require.NoError(t, p.Run(ctx, nil))
	return p
}

func float(t *testing.T, p *model.Problem, path string) float64 {
	t.Helper()
	v, err := p.Float(path)
	require.NoError(t, err)
	return v
}

func TestBattery_CellCount(t *testing.T) {
	// Act
	p := solve(t, 65000)

	// Assert
	cells := float(t, p, "num_cells")
	assert.Greater(t, cells, 0.0)
	assert.Equal(t, math.Trunc(cells), cells, "cell count must be whole")
	assert.Equal(t, 82.0, float(t, p, "balance.series"))
	assert.Equal(t, 328.0, cells)
	assert.InDelta(t, 70.406, float(t, p, "balance.cell_current"), 1e-3)
	assert.InDelta(t, 224.04, float(t, p, "balance.current"), 1e-2)
	assert.InDelta(t, 328*0.9, float(t, p, "mass"), 1e-9)
}

func TestBattery_CellsGrowWithPower(t *testing.T) {
	var prev float64
	for _, power := range []float64{65000, 130000, 260000} {
		cells := float(t, solve(t, power), "num_cells")
		assert.Greater(t, cells, prev, "power %g", power)
		prev = cells
	}
}

func TestBattery_PowerBalance(t *testing.T) {
	p := solve(t, 120000)

	current := float(t, p, "balance.current")
	voltage := float(t, p, "balance.pack_voltage")
	assert.InEpsilon(t, 120000, current*voltage, 1e-9)
}
