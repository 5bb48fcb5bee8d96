package structure_test

import (
	"math"
	"testing"

	"github.com/specialistvlad/hypermdo/internal/model"
	"github.com/specialistvlad/hypermdo/internal/testutil"
	"github.com/specialistvlad/hypermdo/modules/structure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTubeBuckling_Thickness(t *testing.T) {
	// Arrange
	ctx, _ := testutil.Context(t)
	g, err := structure.NewGroup()
	require.NoError(t, err)
	p := model.NewProblem(g)
	require.NoError(t, p.Setup(ctx))
	d := math.Sqrt(4 * 3.9057 / math.Pi)
	want := d * math.Cbrt(5*(101325-100)*(1-0.09)/(2*200e9))

	// Act
	err = p.Run(ctx, nil)

	// Assert
	require.NoError(t, err)
	thickness, err := p.Float("thickness")
	require.NoError(t, err)
	assert.InEpsilon(t, want, thickness, 1e-9)
	assert.InDelta(t, 0.02337, thickness, 1e-4)

	mass, err := p.Float("mass_per_length")
	require.NoError(t, err)
	assert.InEpsilon(t, 7820*math.Pi*want*(d+want), mass, 1e-9)
}

func TestTubeBuckling_HigherSafetyFactorThickensTheWall(t *testing.T) {
	ctx, _ := testutil.Context(t)
	var prev float64
	for _, sf := range []float64{2, 5, 10} {
		g, err := structure.NewGroup()
		require.NoError(t, err)
		p := model.NewProblem(g)
		require.NoError(t, p.Setup(ctx))
		require.NoError(t, p.Set("safety_factor", sf))
		require.NoError(t, p.Run(ctx, nil))
		thickness, err := p.Float("thickness")
		require.NoError(t, err)
		assert.Greater(t, thickness, prev)
		prev = thickness
	}
}
