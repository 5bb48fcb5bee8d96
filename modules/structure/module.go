package structure

import (
	"github.com/specialistvlad/hypermdo/internal/model"
	"github.com/specialistvlad/hypermdo/internal/registry"
	"github.com/specialistvlad/hypermdo/internal/solver"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// NewGroup returns a Newton group around a TubeBuckling named "buckling".
func NewGroup() (*model.Group, error) {
	g := model.NewGroup()
	if err := g.AddChild("buckling", TubeBuckling{}); err != nil {
		return nil, err
	}
	for _, name := range []string{
		"tube_area", "pressure_ambient", "tube_pressure", "youngs_modulus", "poisson",
		"safety_factor", "density", "thickness", "mass_per_length",
	} {
		if err := g.Promote("buckling."+name, name); err != nil {
			return nil, err
		}
	}
	if err := g.SetNonlinearSolver(solver.KindNewton, solver.Options{Atol: 1e-6, Rtol: 1e-12, MaxIter: 40}); err != nil {
		return nil, err
	}
	return g, nil
}

// Register registers the tube_structure model.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterModel("tube_structure", &registry.RegisteredModel{
		Description: "Buckling-limited tube wall thickness (Newton)",
		Build:       NewGroup,
	})
}
