package battery

import (
	"github.com/specialistvlad/hypermdo/internal/model"
	"github.com/specialistvlad/hypermdo/internal/registry"
	"github.com/specialistvlad/hypermdo/internal/solver"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Inputs are the design parameters promoted to the group.
var Inputs = []string{
	"des_power", "des_voltage", "flight_time", "cell_capacity", "rated_current",
	"peukert", "discharge_limit", "cell_voltage", "cell_resistance",
}

// NewGroup returns the battery Newton group: "balance" solves the currents
// and "sizing" counts the cells.
func NewGroup() (*model.Group, error) {
	g := model.NewGroup()
	for _, err := range []error{
		g.AddChild("balance", PackBalance{}),
		g.AddChild("sizing", PackSizing{}),
		g.Connect("balance.current", "sizing.current"),
		g.Connect("balance.cell_current", "sizing.cell_current"),
		g.Connect("balance.series", "sizing.series"),
	} {
		if err != nil {
			return nil, err
		}
	}
	for _, name := range Inputs {
		if err := g.Promote("balance."+name, name); err != nil {
			return nil, err
		}
	}
	for _, name := range []string{"num_cells", "mass", "volume"} {
		if err := g.Promote("sizing."+name, name); err != nil {
			return nil, err
		}
	}
	if err := g.SetNonlinearSolver(solver.KindNewton, solver.Options{Atol: 1e-8, Rtol: 1e-12, MaxIter: 30}); err != nil {
		return nil, err
	}
	return g, nil
}

// Register registers the battery model.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterModel("battery", &registry.RegisteredModel{
		Description: "Battery pack currents and cell count (Newton)",
		Build:       NewGroup,
	})
}
