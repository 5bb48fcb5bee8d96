package tubewall

import (
	"github.com/specialistvlad/hypermdo/internal/model"
	"github.com/specialistvlad/hypermdo/internal/registry"
	"github.com/specialistvlad/hypermdo/internal/solver"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Inputs are the parameters promoted to the group.
var Inputs = []string{
	"nozzle_air_W", "nozzle_air_Cp", "nozzle_air_Tt",
	"tube_area", "tube_length", "num_pods", "temp_outside_ambient",
	"emissivity_tube", "solar_reflectance", "solar_incidence", "solar_insolation",
	"nu_multiplier",
}

// NewGroup returns a Newton group around a single TubeWallTemp named
// "tube_wall" with its inputs and the wall temperature promoted.
func NewGroup() (*model.Group, error) {
	g := model.NewGroup()
	if err := g.AddChild("tube_wall", TubeWallTemp{}); err != nil {
		return nil, err
	}
	for _, name := range append(Inputs, "temp_boundary") {
		if err := g.Promote("tube_wall."+name, name); err != nil {
			return nil, err
		}
	}
	if err := g.SetNonlinearSolver(solver.KindNewton, solver.Options{Atol: 1e-4, Rtol: 1e-10, MaxIter: 30}); err != nil {
		return nil, err
	}
	if err := g.SetLinearSolver(solver.KindDirect, solver.LinearOptions{}); err != nil {
		return nil, err
	}
	return g, nil
}

// Register registers the tube_thermal model.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterModel("tube_thermal", &registry.RegisteredModel{
		Description: "Steady-state tube wall temperature (Newton)",
		Build:       NewGroup,
	})
}
