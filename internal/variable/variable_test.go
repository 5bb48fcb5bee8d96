package variable

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/hypermdo/internal/mdoerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeclarations(t *testing.T) {
	// --- Arrange ---
	d := NewDeclarations("tube.wall")

	// --- Act ---
	require.NoError(t, d.Param("length", 482803, "m", "tube length"))
	require.NoError(t, d.ParamVec("loads", []float64{1, 2}, "N", "point loads"))
	require.NoError(t, d.Output("q_rad", 0, "W", "radiated heat"))
	require.NoError(t, d.State("temp_boundary", 340, "K", "wall temperature"))

	// --- Assert ---
	m, err := d.Get("loads")
	require.NoError(t, err)
	assert.Equal(t, 2, m.Size())
	assert.Equal(t, Parameter, m.Kind)

	names := func(ms []Meta) []string {
		var out []string
		for _, m := range ms {
			out = append(out, m.Name)
		}
		return out
	}
	if diff := cmp.Diff([]string{"length", "loads"}, names(d.Of(Parameter))); diff != "" {
		t.Errorf("parameters mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 3, d.Size(Parameter))
	assert.Equal(t, 1, d.Size(State))
	assert.Equal(t, "state", State.String())
}

func TestDeclarationErrors(t *testing.T) {
	t.Run("duplicate name", func(t *testing.T) {
		d := NewDeclarations("motor")
		require.NoError(t, d.Param("torque", 1, "N*m", ""))
		err := d.Output("torque", 1, "N*m", "")

		var dup *mdoerr.DuplicateNameError
		require.True(t, errors.As(err, &dup))
		assert.Equal(t, "torque", dup.Name)
		assert.True(t, mdoerr.IsAssembly(err))
	})

	t.Run("unknown variable", func(t *testing.T) {
		d := NewDeclarations("motor")
		_, err := d.Get("rpm")
		var unk *mdoerr.UnknownVariableError
		assert.True(t, errors.As(err, &unk))
	})

	t.Run("bad units", func(t *testing.T) {
		d := NewDeclarations("motor")
		assert.ErrorContains(t, d.Param("rpm", 1, "furlong/fortnight", ""), "unknown unit")
	})

	t.Run("non-finite default", func(t *testing.T) {
		d := NewDeclarations("motor")
		assert.Error(t, d.Param("x", math.NaN(), "", ""))
	})

	t.Run("empty vector", func(t *testing.T) {
		d := NewDeclarations("motor")
		assert.Error(t, d.ParamVec("x", nil, "", ""))
	})

	t.Run("dotted name", func(t *testing.T) {
		d := NewDeclarations("motor")
		assert.Error(t, d.Param("a.b", 0, "", ""))
	})
}

func TestDefaultsAreCopied(t *testing.T) {
	def := []float64{1, 2}
	d := NewDeclarations("c")
	require.NoError(t, d.ParamVec("v", def, "", ""))
	def[0] = 99

	m, err := d.Get("v")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, m.Default)
}
