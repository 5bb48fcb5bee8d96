package tubewall

import (
	"math"

	"github.com/specialistvlad/hypermdo/internal/component"
	"github.com/specialistvlad/hypermdo/internal/variable"
)

const (
	stefanBoltzmann = 5.670373e-8 // W/(m**2*K**4)
	gravity         = 9.81
	airGasConstant  = 287.05 // J/(kg*K)
	airCp           = 1007.0 // J/(kg*K)
	ambientPressure = 101325.0
)

// TubeWallTemp balances the heat entering and leaving the tube wall.
type TubeWallTemp struct{}

func (TubeWallTemp) Declare(d *variable.Declarations) error {
	for _, err := range []error{
		d.Param("nozzle_air_W", 1.08, "kg/s", "mass flow of the pod exhaust"),
		d.Param("nozzle_air_Cp", 1009, "J/(kg*K)", "specific heat of the pod exhaust"),
		d.Param("nozzle_air_Tt", 1710, "degR", "total temperature of the pod exhaust"),
		d.Param("tube_area", 3.9057, "m**2", "area enclosed by the outer tube wall"),
		d.Param("tube_length", 482803, "m", "length of the tube"),
		d.Param("num_pods", 34, "", "pods in the tube at once"),
		d.Param("temp_outside_ambient", 305.6, "K", "outside air temperature"),
		d.Param("emissivity_tube", 0.5, "", "emissivity of the tube surface"),
		d.Param("solar_reflectance", 0.5, "", "fraction of sunlight reflected by the tube"),
		d.Param("solar_incidence", 0.7, "", "mean fraction of the tube facing the sun"),
		d.Param("solar_insolation", 1000, "W/m**2", "solar irradiance"),
		d.Param("nu_multiplier", 1, "", "correction applied to the Nusselt number"),

		d.State("temp_boundary", 340, "K", "tube wall temperature"),

		d.Output("diameter_outer_tube", 0, "m", ""),
		d.Output("area_convection", 0, "m**2", "outer surface of the tube"),
		d.Output("rayleigh", 0, "", ""),
		d.Output("nusselt", 0, "", ""),
		d.Output("h", 0, "W/(m**2*K)", "natural convection coefficient"),
		d.Output("q_convection", 0, "W", "heat lost by convection"),
		d.Output("q_radiation", 0, "W", "heat lost by radiation"),
		d.Output("q_solar", 0, "W", "heat gained from the sun"),
		d.Output("q_pods", 0, "W", "heat gained from the pod exhaust"),
		d.Output("q_total_out", 0, "W", ""),
		d.Output("q_total_in", 0, "W", ""),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

// balance holds every intermediate of the heat balance.
type balance struct {
	diameter, area       float64
	rayleigh, nusselt, h float64
	qConv, qRad          float64
	qSolar, qPods        float64
}

func (b balance) out() float64 { return b.qConv + b.qRad }
func (b balance) in() float64  { return b.qSolar + b.qPods }

func evaluate(in component.Reader, temp float64) (balance, error) {
	if temp <= 0 {
		return balance{}, component.DomainError("temp_boundary", "non-positive wall temperature %g K", temp)
	}
	area := in.Float("tube_area")
	if area <= 0 {
		return balance{}, component.DomainError("tube_area", "non-positive tube area %g", area)
	}
	ambient := in.Float("temp_outside_ambient")
	length := in.Float("tube_length")

	var b balance
	b.diameter = math.Sqrt(4 * area / math.Pi)
	b.area = math.Pi * b.diameter * length

	// Air properties at the film temperature.
	film := (temp + ambient) / 2
	k := 0.0241 * math.Pow(film/273.15, 0.9)
	mu := 1.716e-5 * math.Pow(film/273.15, 1.5) * (273.15 + 110.4) / (film + 110.4)
	rho := ambientPressure / (airGasConstant * film)
	pr := mu * airCp / k
	nu := mu / rho

	// Churchill-Chu correlation for a horizontal cylinder. The magnitude of
	// the temperature difference keeps it defined while Newton overshoots.
	dT := temp - ambient
	grashof := gravity * (1 / film) * math.Abs(dT) * math.Pow(b.diameter, 3) / (nu * nu)
	b.rayleigh = grashof * pr
	b.nusselt = math.Pow(0.6+0.387*math.Pow(b.rayleigh, 1.0/6)/math.Pow(1+math.Pow(0.559/pr, 9.0/16), 8.0/27), 2) *
		in.Float("nu_multiplier")
	b.h = b.nusselt * k / b.diameter

	b.qConv = b.h * dT * b.area
	b.qRad = stefanBoltzmann * in.Float("emissivity_tube") * (math.Pow(temp, 4) - math.Pow(ambient, 4)) * b.area
	b.qSolar = (1 - in.Float("solar_reflectance")) * in.Float("solar_incidence") * in.Float("solar_insolation") *
		b.diameter * length

	exhaust := in.Float("nozzle_air_Tt") * 5 / 9 // degR to K
	b.qPods = in.Float("nozzle_air_W") * in.Float("nozzle_air_Cp") * (exhaust - temp) * in.Float("num_pods")
	return b, nil
}

func (TubeWallTemp) Compute(in component.Reader, out component.Writer) error {
	b, err := evaluate(in, in.Float("temp_boundary"))
	if err != nil {
		return err
	}
	out.SetFloat("diameter_outer_tube", b.diameter)
	out.SetFloat("area_convection", b.area)
	out.SetFloat("rayleigh", b.rayleigh)
	out.SetFloat("nusselt", b.nusselt)
	out.SetFloat("h", b.h)
	out.SetFloat("q_convection", b.qConv)
	out.SetFloat("q_radiation", b.qRad)
	out.SetFloat("q_solar", b.qSolar)
	out.SetFloat("q_pods", b.qPods)
	out.SetFloat("q_total_out", b.out())
	out.SetFloat("q_total_in", b.in())
	return nil
}

// ComputeResiduals is the heat leaving the wall minus the heat entering it.
func (TubeWallTemp) ComputeResiduals(in, states component.Reader, res component.Writer) error {
	b, err := evaluate(in, states.Float("temp_boundary"))
	if err != nil {
		return err
	}
	res.SetFloat("temp_boundary", b.out()-b.in())
	return nil
}
