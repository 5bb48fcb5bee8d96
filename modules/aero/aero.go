// Package aero estimates the drag on a pod travelling through low-pressure air.
package aero

import (
	"github.com/specialistvlad/hypermdo/internal/component"
	"github.com/specialistvlad/hypermdo/internal/model"
	"github.com/specialistvlad/hypermdo/internal/registry"
	"github.com/specialistvlad/hypermdo/internal/variable"
)

const airGasConstant = 287.05 // J/(kg*K)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Drag computes the air density in the tube and the pod's drag and drag power.
type Drag struct{}

func (Drag) Declare(d *variable.Declarations) error {
	for _, err := range []error{
		d.Param("speed", 313, "m/s", "pod speed"),
		d.Param("tube_pressure", 100, "Pa", ""),
		d.Param("tube_temp", 322, "K", "air temperature in the tube"),
		d.Param("drag_coef", 0.2, "", ""),
		d.Param("frontal_area", 1.4, "m**2", "pod frontal area"),

		d.Output("air_density", 0, "kg/m**3", ""),
		d.Output("drag", 0, "N", ""),
		d.Output("drag_power", 0, "W", ""),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

func (Drag) Compute(in component.Reader, out component.Writer) error {
	temp := in.Float("tube_temp")
	if temp <= 0 {
		return component.DomainError("tube_temp", "non-positive temperature %g K", temp)
	}
	rho := in.Float("tube_pressure") / (airGasConstant * temp)
	v := in.Float("speed")
	drag := 0.5 * rho * v * v * in.Float("drag_coef") * in.Float("frontal_area")
	out.SetFloat("air_density", rho)
	out.SetFloat("drag", drag)
	out.SetFloat("drag_power", drag*v)
	return nil
}

// ComputeComplex lets Drag be linearized by complex step.
func (Drag) ComputeComplex(in component.ComplexReader, out component.ComplexWriter) error {
	rho := in.Float("tube_pressure") / (airGasConstant * in.Float("tube_temp"))
	v := in.Float("speed")
	drag := 0.5 * rho * v * v * in.Float("drag_coef") * in.Float("frontal_area")
	out.SetFloat("air_density", rho)
	out.SetFloat("drag", drag)
	out.SetFloat("drag_power", drag*v)
	return nil
}

// NewGroup wraps a single Drag named "drag" with every variable promoted.
func NewGroup() (*model.Group, error) {
	g := model.NewGroup()
	if err := g.AddChild("drag", Drag{}); err != nil {
		return nil, err
	}
	for _, name := range []string{
		"speed", "tube_pressure", "tube_temp", "drag_coef", "frontal_area",
		"air_density", "drag", "drag_power",
	} {
		if err := g.Promote("drag."+name, name); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Register registers the aero model.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterModel("aero", &registry.RegisteredModel{
		Description: "Pod drag in the evacuated tube",
		Build:       NewGroup,
	})
}
