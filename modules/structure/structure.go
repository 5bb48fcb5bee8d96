// Package structure sizes the tube wall against external pressure.
package structure

import (
	"math"
	"math/cmplx"

	"github.com/specialistvlad/hypermdo/internal/component"
	"github.com/specialistvlad/hypermdo/internal/variable"
)

// TubeBuckling finds the wall thickness whose critical buckling pressure,
// 2E/(1−ν²)·(t/D)³ for a long thin tube, equals the safety factor times the
// pressure difference across the wall.
type TubeBuckling struct{}

func (TubeBuckling) Declare(d *variable.Declarations) error {
	for _, err := range []error{
		d.Param("tube_area", 3.9057, "m**2", "area enclosed by the tube wall"),
		d.Param("pressure_ambient", 101325, "Pa", "outside pressure"),
		d.Param("tube_pressure", 100, "Pa", "inside pressure"),
		d.Param("youngs_modulus", 200e9, "Pa", ""),
		d.Param("poisson", 0.3, "", ""),
		d.Param("safety_factor", 5, "", ""),
		d.Param("density", 7820, "kg/m**3", "wall material density"),

		d.State("thickness", 0.05, "m", "wall thickness"),

		d.Output("diameter", 0, "m", "inner diameter"),
		d.Output("critical_pressure", 0, "Pa", ""),
		d.Output("mass_per_length", 0, "kg/m", ""),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

func diameter(area float64) float64 { return math.Sqrt(4 * area / math.Pi) }

func (TubeBuckling) Compute(in component.Reader, out component.Writer) error {
	area := in.Float("tube_area")
	if area <= 0 {
		return component.DomainError("tube_area", "non-positive tube area %g", area)
	}
	d := diameter(area)
	t := in.Float("thickness")
	nu := in.Float("poisson")
	out.SetFloat("diameter", d)
	out.SetFloat("critical_pressure", 2*in.Float("youngs_modulus")/(1-nu*nu)*math.Pow(t/d, 3))
	out.SetFloat("mass_per_length", in.Float("density")*math.Pi*t*(d+t))
	return nil
}

func (TubeBuckling) ComputeResiduals(in, states component.Reader, res component.Writer) error {
	d := diameter(in.Float("tube_area"))
	t := states.Float("thickness")
	nu := in.Float("poisson")
	load := in.Float("safety_factor") * (in.Float("pressure_ambient") - in.Float("tube_pressure"))
	res.SetFloat("thickness", 2*in.Float("youngs_modulus")/(1-nu*nu)*math.Pow(t/d, 3)-load)
	return nil
}

func (TubeBuckling) ComputeComplex(in component.ComplexReader, out component.ComplexWriter) error {
	d := cmplx.Sqrt(4 * in.Float("tube_area") / math.Pi)
	t := in.Float("thickness")
	nu := in.Float("poisson")
	r := t / d
	out.SetFloat("diameter", d)
	out.SetFloat("critical_pressure", 2*in.Float("youngs_modulus")/(1-nu*nu)*r*r*r)
	out.SetFloat("mass_per_length", in.Float("density")*math.Pi*t*(d+t))
	return nil
}

func (TubeBuckling) ComputeResidualsComplex(in, states component.ComplexReader, res component.ComplexWriter) error {
	d := cmplx.Sqrt(4 * in.Float("tube_area") / math.Pi)
	t := states.Float("thickness")
	nu := in.Float("poisson")
	r := t / d
	load := in.Float("safety_factor") * (in.Float("pressure_ambient") - in.Float("tube_pressure"))
	res.SetFloat("thickness", 2*in.Float("youngs_modulus")/(1-nu*nu)*r*r*r-load)
	return nil
}
