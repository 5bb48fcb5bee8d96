// Package motor sizes the pod's electric motor and solves its operating current.
package motor

import (
	"math"

	"github.com/specialistvlad/hypermdo/internal/component"
	"github.com/specialistvlad/hypermdo/internal/variable"
)

// MotorSizing estimates mass and volume from power-law fits against torque.
type MotorSizing struct{}

func (MotorSizing) Declare(d *variable.Declarations) error {
	for _, err := range []error{
		d.Param("design_torque", 310, "N*m", "peak torque"),
		d.Param("max_rpm", 6000, "rpm", "speed at peak power"),
		d.Param("mass_coef", 0.9, "kg", "mass of a 1 N*m motor"),
		d.Param("mass_exp", 0.8, "", ""),
		d.Param("volume_coef", 2.4e-4, "m**3", "volume of a 1 N*m motor"),
		d.Param("volume_exp", 0.9, "", ""),

		d.Output("mech_power", 0, "W", "shaft power at peak torque and speed"),
		d.Output("mass", 0, "kg", ""),
		d.Output("volume", 0, "m**3", ""),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

func (MotorSizing) Compute(in component.Reader, out component.Writer) error {
	torque := in.Float("design_torque")
	if torque <= 0 {
		return component.DomainError("design_torque", "non-positive torque %g", torque)
	}
	omega := in.Float("max_rpm") * 2 * math.Pi / 60
	out.SetFloat("mech_power", torque*omega)
	out.SetFloat("mass", in.Float("mass_coef")*math.Pow(torque, in.Float("mass_exp")))
	out.SetFloat("volume", in.Float("volume_coef")*math.Pow(torque, in.Float("volume_exp")))
	return nil
}

func (MotorSizing) Linearize(in, _ component.Reader, jac *component.Jacobian) error {
	torque := in.Float("design_torque")
	omega := in.Float("max_rpm") * 2 * math.Pi / 60
	mc, me := in.Float("mass_coef"), in.Float("mass_exp")
	vc, ve := in.Float("volume_coef"), in.Float("volume_exp")

	jac.Set("mech_power", "design_torque", omega)
	jac.Set("mech_power", "max_rpm", torque*2*math.Pi/60)
	jac.Set("mass", "design_torque", mc*me*math.Pow(torque, me-1))
	jac.Set("mass", "mass_coef", math.Pow(torque, me))
	jac.Set("mass", "mass_exp", mc*math.Pow(torque, me)*math.Log(torque))
	jac.Set("volume", "design_torque", vc*ve*math.Pow(torque, ve-1))
	jac.Set("volume", "volume_coef", math.Pow(torque, ve))
	jac.Set("volume", "volume_exp", vc*math.Pow(torque, ve)*math.Log(torque))
	return nil
}

// MotorBalance solves the supply current I from V·I = P/η + I²·R and
// reports the back-EMF constant at the resulting operating point.
type MotorBalance struct{}

func (MotorBalance) Declare(d *variable.Declarations) error {
	for _, err := range []error{
		d.Param("mech_power", 100000, "W", ""),
		d.Param("voltage", 500, "V", "supply voltage"),
		d.Param("efficiency", 0.95, "", "efficiency excluding copper losses"),
		d.Param("resistance", 0.05, "ohm", "winding resistance"),
		d.Param("max_rpm", 6000, "rpm", ""),

		d.State("current", 100, "A", "supply current"),

		d.Output("elec_power", 0, "W", "power drawn from the supply"),
		d.Output("back_emf", 0, "V", ""),
		d.Output("kv", 0, "V*s", "back-EMF constant"),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

func (MotorBalance) Compute(in component.Reader, out component.Writer) error {
	i := in.Float("current")
	v := in.Float("voltage")
	emf := v - i*in.Float("resistance")
	omega := in.Float("max_rpm") * 2 * math.Pi / 60
	if omega <= 0 {
		return component.DomainError("max_rpm", "non-positive speed")
	}
	out.SetFloat("elec_power", v*i)
	out.SetFloat("back_emf", emf)
	out.SetFloat("kv", emf/omega)
	return nil
}

func (MotorBalance) ComputeResiduals(in, states component.Reader, res component.Writer) error {
	eta := in.Float("efficiency")
	if eta <= 0 {
		return component.DomainError("efficiency", "non-positive efficiency %g", eta)
	}
	i := states.Float("current")
	r := in.Float("resistance")
	res.SetFloat("current", in.Float("voltage")*i-in.Float("mech_power")/eta-i*i*r)
	return nil
}

func (MotorBalance) ComputeResidualsComplex(in, states component.ComplexReader, res component.ComplexWriter) error {
	i := states.Float("current")
	r := in.Float("resistance")
	res.SetFloat("current", in.Float("voltage")*i-in.Float("mech_power")/in.Float("efficiency")-i*i*r)
	return nil
}

func (MotorBalance) ComputeComplex(in component.ComplexReader, out component.ComplexWriter) error {
	i := in.Float("current")
	v := in.Float("voltage")
	emf := v - i*in.Float("resistance")
	out.SetFloat("elec_power", v*i)
	out.SetFloat("back_emf", emf)
	out.SetFloat("kv", emf/(in.Float("max_rpm")*complex(2*math.Pi/60, 0)))
	return nil
}
