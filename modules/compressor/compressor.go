// Package compressor is a lumped stand-in for the pod's compression cycle.
// It reports the exit total temperature and shaft power of an adiabatic
// compressor with a given pressure ratio and isentropic efficiency.
package compressor

import (
	"math"

	"github.com/specialistvlad/hypermdo/internal/component"
	"github.com/specialistvlad/hypermdo/internal/model"
	"github.com/specialistvlad/hypermdo/internal/registry"
	"github.com/specialistvlad/hypermdo/internal/variable"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Compressor computes the exit temperature and power.
type Compressor struct{}

func (Compressor) Declare(d *variable.Declarations) error {
	for _, err := range []error{
		d.Param("inlet_temp", 322, "K", "inlet total temperature"),
		d.Param("pressure_ratio", 12.5, "", ""),
		d.Param("efficiency", 0.8, "", "isentropic efficiency"),
		d.Param("mass_flow", 1.08, "kg/s", ""),
		d.Param("cp", 1005, "J/(kg*K)", ""),
		d.Param("gamma", 1.4, "", ""),

		d.Output("exit_temp", 0, "K", "exit total temperature"),
		d.Output("power", 0, "W", "shaft power"),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

func (Compressor) Compute(in component.Reader, out component.Writer) error {
	eta := in.Float("efficiency")
	if eta <= 0 || eta > 1 {
		return component.DomainError("efficiency", "efficiency %g outside (0, 1]", eta)
	}
	pr := in.Float("pressure_ratio")
	if pr < 1 {
		return component.DomainError("pressure_ratio", "pressure ratio %g below 1", pr)
	}
	gamma := in.Float("gamma")
	t1 := in.Float("inlet_temp")
	t2 := t1 * (1 + (math.Pow(pr, (gamma-1)/gamma)-1)/eta)
	out.SetFloat("exit_temp", t2)
	out.SetFloat("power", in.Float("mass_flow")*in.Float("cp")*(t2-t1))
	return nil
}

// NewGroup wraps a single Compressor named "comp" with every variable promoted.
func NewGroup() (*model.Group, error) {
	g := model.NewGroup()
	if err := g.AddChild("comp", Compressor{}); err != nil {
		return nil, err
	}
	for _, name := range []string{
		"inlet_temp", "pressure_ratio", "efficiency", "mass_flow", "cp", "gamma", "exit_temp", "power",
	} {
		if err := g.Promote("comp."+name, name); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Register registers the compressor model.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterModel("compressor", &registry.RegisteredModel{
		Description: "Lumped compressor exit temperature and power",
		Build:       NewGroup,
	})
}
