// Package vacuum sizes the pumps that evacuate the tube.
package vacuum

import (
	"math"

	"github.com/specialistvlad/hypermdo/internal/component"
	"github.com/specialistvlad/hypermdo/internal/model"
	"github.com/specialistvlad/hypermdo/internal/registry"
	"github.com/specialistvlad/hypermdo/internal/variable"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Vacuum counts the pumps needed to take the tube from atmospheric to
// operating pressure within the pump-down time. A single pump of speed S
// needs V/S·ln(p0/p1) for the whole volume.
type Vacuum struct{}

func (Vacuum) Declare(d *variable.Declarations) error {
	for _, err := range []error{
		d.Param("tube_area", 3.9057, "m**2", "tube cross-sectional area"),
		d.Param("tube_length", 482803, "m", ""),
		d.Param("pressure_initial", 101325, "Pa", ""),
		d.Param("tube_pressure", 100, "Pa", "operating pressure"),
		d.Param("pump_speed", 10, "m**3/s", "volume flow of one pump"),
		d.Param("pumpdown_time", 4, "h", ""),
		d.Param("pump_power", 18.5, "kW", "power drawn by one pump"),
		d.Param("pump_mass", 715, "kg", ""),

		d.Output("tube_volume", 0, "m**3", ""),
		d.Output("num_pumps", 0, "", ""),
		d.Output("energy", 0, "kW*h", "energy of one pump-down"),
		d.Output("mass", 0, "kg", "total pump mass"),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

func (Vacuum) Compute(in component.Reader, out component.Writer) error {
	p0, p1 := in.Float("pressure_initial"), in.Float("tube_pressure")
	if p1 <= 0 || p1 >= p0 {
		return component.DomainError("tube_pressure", "operating pressure %g Pa outside (0, %g)", p1, p0)
	}
	speed := in.Float("pump_speed")
	if speed <= 0 {
		return component.DomainError("pump_speed", "non-positive pump speed")
	}
	hours := in.Float("pumpdown_time")
	volume := in.Float("tube_area") * in.Float("tube_length")
	single := volume / speed * math.Log(p0/p1) / 3600
	pumps := math.Ceil(single / hours)

	out.SetFloat("tube_volume", volume)
	out.SetFloat("num_pumps", pumps)
	out.SetFloat("energy", pumps*in.Float("pump_power")*hours)
	out.SetFloat("mass", pumps*in.Float("pump_mass"))
	return nil
}

// NewGroup wraps a single Vacuum named "vacuum" with every variable promoted.
func NewGroup() (*model.Group, error) {
	g := model.NewGroup()
	if err := g.AddChild("vacuum", Vacuum{}); err != nil {
		return nil, err
	}
	for _, name := range []string{
		"tube_area", "tube_length", "pressure_initial", "tube_pressure", "pump_speed",
		"pumpdown_time", "pump_power", "pump_mass", "tube_volume", "num_pumps", "energy", "mass",
	} {
		if err := g.Promote("vacuum."+name, name); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Register registers the vacuum model.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterModel("vacuum", &registry.RegisteredModel{
		Description: "Vacuum pump count, energy and mass",
		Build:       NewGroup,
	})
}
