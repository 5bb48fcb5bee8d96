// Package hyperloop assembles the full pod-and-tube system.
//
// The pod group carries aerodynamics, the compressor, the power budget and
// the motor and battery Newton groups. The tube group carries the buckling
// Newton group, the vacuum pumps and the wall thermal Newton group. The two
// are coupled in both directions: the compressor exhaust heats the tube wall
// and the wall temperature sets the air the compressor ingests. The root
// group converges that loop with nonlinear Gauss-Seidel.
package hyperloop

import (
	"github.com/specialistvlad/hypermdo/internal/model"
	"github.com/specialistvlad/hypermdo/internal/registry"
	"github.com/specialistvlad/hypermdo/internal/solver"
	"github.com/specialistvlad/hypermdo/modules/aero"
	"github.com/specialistvlad/hypermdo/modules/battery"
	"github.com/specialistvlad/hypermdo/modules/compressor"
	"github.com/specialistvlad/hypermdo/modules/motor"
	"github.com/specialistvlad/hypermdo/modules/structure"
	"github.com/specialistvlad/hypermdo/modules/tubewall"
	"github.com/specialistvlad/hypermdo/modules/vacuum"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Design holds the top-level design variables and their defaults.
func Design() *model.IndepVars {
	return model.NewIndepVars().
		Add("speed", 313, "m/s", "pod cruise speed").
		Add("tube_pressure", 100, "Pa", "tube operating pressure").
		Add("tube_area", 3.9057, "m**2", "tube cross-sectional area").
		Add("tube_length", 482803, "m", "route length").
		Add("num_pods", 34, "", "pods in the tube at once").
		Add("temp_outside_ambient", 305.6, "K", "outside air temperature").
		Add("mass_flow", 1.08, "kg/s", "compressor mass flow").
		Add("max_rpm", 6000, "rpm", "motor top speed")
}

func newPod() (*model.Group, error) {
	mot, err := motor.NewGroup()
	if err != nil {
		return nil, err
	}
	bat, err := battery.NewGroup()
	if err != nil {
		return nil, err
	}

	g := model.NewGroup()
	for _, err := range []error{
		g.AddChild("aero", aero.Drag{}),
		g.AddChild("compressor", compressor.Compressor{}),
		g.AddChild("power", PowerBudget{}),
		g.AddSubgroup("motor", mot),
		g.AddSubgroup("battery", bat),

		g.Connect("aero.drag_power", "power.drag_power"),
		g.Connect("compressor.power", "power.comp_power"),
		g.Connect("power.torque", "motor.design_torque"),
		g.Connect("motor.elec_power", "battery.des_power"),

		g.Promote("aero.speed", "speed"),
		g.Promote("aero.tube_pressure", "tube_pressure"),
		g.Promote("aero.tube_temp", "tube_temp"),
		g.Promote("compressor.inlet_temp", "tube_temp"),
		g.Promote("compressor.mass_flow", "mass_flow"),
		g.Promote("compressor.exit_temp", "exit_temp"),
		g.Promote("power.max_rpm", "max_rpm"),
		g.Promote("motor.max_rpm", "max_rpm"),
	} {
		if err != nil {
			return nil, err
		}
	}
	return g, nil
}

func newTube() (*model.Group, error) {
	st, err := structure.NewGroup()
	if err != nil {
		return nil, err
	}
	thermal, err := tubewall.NewGroup()
	if err != nil {
		return nil, err
	}

	g := model.NewGroup()
	for _, err := range []error{
		g.AddSubgroup("structure", st),
		g.AddChild("vacuum", vacuum.Vacuum{}),
		g.AddSubgroup("thermal", thermal),

		g.Promote("structure.tube_area", "tube_area"),
		g.Promote("vacuum.tube_area", "tube_area"),
		g.Promote("thermal.tube_area", "tube_area"),
		g.Promote("vacuum.tube_length", "tube_length"),
		g.Promote("thermal.tube_length", "tube_length"),
		g.Promote("structure.tube_pressure", "tube_pressure"),
		g.Promote("vacuum.tube_pressure", "tube_pressure"),
		g.Promote("thermal.num_pods", "num_pods"),
		g.Promote("thermal.temp_outside_ambient", "temp_outside_ambient"),
		g.Promote("thermal.nozzle_air_W", "nozzle_air_W"),
		g.Promote("thermal.nozzle_air_Tt", "nozzle_air_Tt"),
		g.Promote("thermal.temp_boundary", "temp_boundary"),
	} {
		if err != nil {
			return nil, err
		}
	}
	return g, nil
}

// NewGroup assembles the coupled system.
func NewGroup() (*model.Group, error) {
	pod, err := newPod()
	if err != nil {
		return nil, err
	}
	tube, err := newTube()
	if err != nil {
		return nil, err
	}

	g := model.NewGroup()
	for _, err := range []error{
		g.AddChild("design", Design()),
		g.AddSubgroup("pod", pod),
		g.AddSubgroup("tube", tube),

		g.Connect("design.speed", "pod.speed"),
		g.Connect("design.tube_pressure", "pod.tube_pressure"),
		g.Connect("design.tube_pressure", "tube.tube_pressure"),
		g.Connect("design.tube_area", "tube.tube_area"),
		g.Connect("design.tube_length", "tube.tube_length"),
		g.Connect("design.num_pods", "tube.num_pods"),
		g.Connect("design.temp_outside_ambient", "tube.temp_outside_ambient"),
		g.Connect("design.mass_flow", "pod.mass_flow"),
		g.Connect("design.mass_flow", "tube.nozzle_air_W"),
		g.Connect("design.max_rpm", "pod.max_rpm"),

		// The coupling loop.
		g.Connect("pod.exit_temp", "tube.nozzle_air_Tt"),
		g.Connect("tube.temp_boundary", "pod.tube_temp"),

		g.SetNonlinearSolver(solver.KindNLGS, solver.Options{Atol: 1e-6, Rtol: 1e-12, MaxIter: 50}),
	} {
		if err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Register registers the hyperloop model.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterModel("hyperloop", &registry.RegisteredModel{
		Description: "Coupled pod and tube system (Gauss-Seidel over Newton subsystems)",
		Build:       NewGroup,
	})
}
