// Package battery sizes a battery pack for a given power draw.
package battery

import (
	"math"

	"github.com/specialistvlad/hypermdo/internal/component"
	"github.com/specialistvlad/hypermdo/internal/variable"
)

// PackBalance finds the pack current and the per-cell current.
//
// The cell current follows from Peukert's law: a cell discharged at current
// i for the flight time delivers C·(I_rated/i)^(k-1) amp-hours, and the
// pack draws each cell down to the discharge limit. The pack current then
// satisfies I·V_pack = P with V_pack = n_series·(E0 − R·i).
type PackBalance struct{}

func (PackBalance) Declare(d *variable.Declarations) error {
	for _, err := range []error{
		d.Param("des_power", 65000, "W", "power drawn from the pack"),
		d.Param("des_voltage", 300, "V", "nominal pack voltage"),
		d.Param("flight_time", 1800, "s", "discharge duration"),
		d.Param("cell_capacity", 45, "Ah", "rated cell capacity"),
		d.Param("rated_current", 45, "A", "discharge current of the capacity rating"),
		d.Param("peukert", 1.05, "", "Peukert exponent"),
		d.Param("discharge_limit", 0.8, "", "usable fraction of the capacity"),
		d.Param("cell_voltage", 3.7, "V", "open-circuit cell voltage"),
		d.Param("cell_resistance", 0.0023, "ohm", "internal cell resistance"),

		d.State("current", 100, "A", "pack current"),
		d.State("cell_current", 50, "A", "current through each cell"),

		d.Output("series", 0, "", "cells in series"),
		d.Output("pack_voltage", 0, "V", "pack voltage under load"),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

func series(in component.Reader) float64 {
	return math.Ceil(in.Float("des_voltage") / in.Float("cell_voltage"))
}

func packVoltage(in component.Reader, cellCurrent float64) float64 {
	return series(in) * (in.Float("cell_voltage") - in.Float("cell_resistance")*cellCurrent)
}

func (PackBalance) Compute(in component.Reader, out component.Writer) error {
	out.SetFloat("series", series(in))
	out.SetFloat("pack_voltage", packVoltage(in, in.Float("cell_current")))
	return nil
}

func (PackBalance) ComputeResiduals(in, states component.Reader, res component.Writer) error {
	i := states.Float("cell_current")
	if i <= 0 {
		return component.DomainError("cell_current", "non-positive cell current %g A", i)
	}
	if in.Float("cell_voltage") <= 0 {
		return component.DomainError("cell_voltage", "non-positive cell voltage")
	}
	hours := in.Float("flight_time") / 3600
	effective := in.Float("cell_capacity") * math.Pow(in.Float("rated_current")/i, in.Float("peukert")-1)
	res.SetFloat("cell_current", i-effective*in.Float("discharge_limit")/hours)

	current := states.Float("current")
	res.SetFloat("current", current*packVoltage(in, i)-in.Float("des_power"))
	return nil
}

// PackSizing turns the balanced currents into a whole number of cells.
type PackSizing struct{}

func (PackSizing) Declare(d *variable.Declarations) error {
	for _, err := range []error{
		d.Param("current", 100, "A", ""),
		d.Param("cell_current", 50, "A", ""),
		d.Param("series", 1, "", ""),
		d.Param("cell_mass", 0.9, "kg", ""),
		d.Param("cell_volume", 0.45, "L", ""),
		d.Param("packing_factor", 1.25, "", "pack volume per cell volume"),

		d.Output("parallel", 0, "", "parallel strings"),
		d.Output("num_cells", 0, "", ""),
		d.Output("mass", 0, "kg", ""),
		d.Output("volume", 0, "m**3", ""),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

func (PackSizing) Compute(in component.Reader, out component.Writer) error {
	i := in.Float("cell_current")
	if i <= 0 {
		return component.DomainError("cell_current", "non-positive cell current %g A", i)
	}
	parallel := math.Ceil(in.Float("current") / i)
	cells := parallel * in.Float("series")
	out.SetFloat("parallel", parallel)
	out.SetFloat("num_cells", cells)
	out.SetFloat("mass", cells*in.Float("cell_mass"))
	out.SetFloat("volume", cells*in.Float("cell_volume")*1e-3*in.Float("packing_factor"))
	return nil
}
