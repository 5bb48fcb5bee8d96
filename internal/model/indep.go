package model

import (
	"github.com/specialistvlad/hypermdo/internal/component"
	"github.com/specialistvlad/hypermdo/internal/variable"
)

// IndepVars is a component with outputs only. It holds the design inputs of
// a model so that they can be connected like any other source.
type IndepVars struct {
	vars []indep
}

type indep struct {
	name, units, desc string
	value             []float64
}

// NewIndepVars returns an empty IndepVars.
func NewIndepVars() *IndepVars { return &IndepVars{} }

// Add declares a scalar output.
func (iv *IndepVars) Add(name string, value float64, units, desc string) *IndepVars {
	return iv.AddVec(name, []float64{value}, units, desc)
}

// AddVec declares a vector output.
func (iv *IndepVars) AddVec(name string, value []float64, units, desc string) *IndepVars {
	iv.vars = append(iv.vars, indep{name: name, units: units, desc: desc, value: append([]float64(nil), value...)})
	return iv
}

func (iv *IndepVars) Declare(d *variable.Declarations) error {
	for _, v := range iv.vars {
		if err := d.OutputVec(v.name, v.value, v.units, v.desc); err != nil {
			return err
		}
	}
	return nil
}

// Compute leaves the outputs at whatever was set on the problem.
func (iv *IndepVars) Compute(component.Reader, component.Writer) error { return nil }
