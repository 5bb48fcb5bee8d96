package aero_test

import (
	"testing"

	"github.com/specialistvlad/hypermdo/internal/model"
	"github.com/specialistvlad/hypermdo/internal/testutil"
	"github.com/specialistvlad/hypermdo/modules/aero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrag(t *testing.T) {
	// Arrange
	ctx, _ := testutil.Context(t)
	g, err := aero.NewGroup()
	require.NoError(t, err)
	p := model.NewProblem(g)
	require.NoError(t, p.Setup(ctx))
	require.NoError(t, p.Set("speed", 700), "speed is declared in m/s")
	rho := 100 / (287.05 * 322)

	// Act
	err = p.Run(ctx, nil)

	// Assert
	require.NoError(t, err)
	drag, err := p.Float("drag")
	require.NoError(t, err)
	assert.InEpsilon(t, 0.5*rho*700*700*0.2*1.4, drag, 1e-12)
	power, err := p.Float("drag_power")
	require.NoError(t, err)
	assert.InEpsilon(t, drag*700, power, 1e-12)
}
