package motor

import (
	"github.com/specialistvlad/hypermdo/internal/model"
	"github.com/specialistvlad/hypermdo/internal/registry"
	"github.com/specialistvlad/hypermdo/internal/solver"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// NewGroup returns the motor Newton group. The sizing shaft power feeds the
// balance, and max_rpm is shared by both.
func NewGroup() (*model.Group, error) {
	g := model.NewGroup()
	for _, err := range []error{
		g.AddChild("sizing", MotorSizing{}),
		g.AddChild("balance", MotorBalance{}),
		g.Connect("sizing.mech_power", "balance.mech_power"),
		g.Promote("sizing.max_rpm", "max_rpm"),
		g.Promote("balance.max_rpm", "max_rpm"),
		g.Promote("sizing.design_torque", "design_torque"),
		g.Promote("balance.voltage", "voltage"),
		g.Promote("balance.efficiency", "efficiency"),
		g.Promote("balance.resistance", "resistance"),
		g.Promote("balance.current", "current"),
		g.Promote("balance.elec_power", "elec_power"),
		g.Promote("sizing.mass", "mass"),
		g.Promote("sizing.volume", "volume"),
		g.SetNonlinearSolver(solver.KindNewton, solver.Options{Atol: 1e-6, Rtol: 1e-12, MaxIter: 30}),
		g.SetLinearSolver(solver.KindDirect, solver.LinearOptions{}),
	} {
		if err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Register registers the motor model.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterModel("motor", &registry.RegisteredModel{
		Description: "Motor mass, volume and operating current (Newton)",
		Build:       NewGroup,
	})
}
