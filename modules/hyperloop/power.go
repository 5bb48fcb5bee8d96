package hyperloop

import (
	"math"

	"github.com/specialistvlad/hypermdo/internal/component"
	"github.com/specialistvlad/hypermdo/internal/variable"
)

// PowerBudget adds up the pod's shaft loads and converts them into the
// torque the motor must deliver at its top speed.
type PowerBudget struct{}

func (PowerBudget) Declare(d *variable.Declarations) error {
	for _, err := range []error{
		d.Param("drag_power", 0, "W", ""),
		d.Param("comp_power", 0, "W", ""),
		d.Param("aux_power", 25, "kW", "hotel and levitation loads"),
		d.Param("drivetrain_efficiency", 0.95, "", ""),
		d.Param("max_rpm", 6000, "rpm", ""),

		d.Output("shaft_power", 0, "W", ""),
		d.Output("torque", 0, "N*m", ""),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

func (PowerBudget) Compute(in component.Reader, out component.Writer) error {
	eta := in.Float("drivetrain_efficiency")
	if eta <= 0 {
		return component.DomainError("drivetrain_efficiency", "non-positive efficiency %g", eta)
	}
	omega := in.Float("max_rpm") * 2 * math.Pi / 60
	if omega <= 0 {
		return component.DomainError("max_rpm", "non-positive speed")
	}
	shaft := (in.Float("drag_power") + in.Float("comp_power") + in.Float("aux_power")*1e3) / eta
	out.SetFloat("shaft_power", shaft)
	out.SetFloat("torque", shaft/omega)
	return nil
}
