package testutil

import (
	"errors"
	"math"

	"github.com/specialistvlad/hypermdo/internal/component"
	"github.com/specialistvlad/hypermdo/internal/variable"
)

// Source has a single output "y" and no inputs.
type Source struct {
	Value float64
	Units string
}

func (s *Source) Declare(d *variable.Declarations) error {
	return d.Output("y", s.Value, s.Units, "")
}

func (*Source) Compute(component.Reader, component.Writer) error { return nil }

// Affine computes y = A·x + B.
type Affine struct {
	A, B          float64
	InUnits       string
	OutUnits      string
	Calls         int
	FailAfter     int
	FailWith      error
	NonFiniteFrom int
}

func (c *Affine) Declare(d *variable.Declarations) error {
	if err := d.Param("x", 0, c.InUnits, ""); err != nil {
		return err
	}
	return d.Output("y", c.B, c.OutUnits, "")
}

func (c *Affine) Compute(in component.Reader, out component.Writer) error {
	c.Calls++
	if c.FailAfter > 0 && c.Calls >= c.FailAfter {
		if c.FailWith != nil {
			return c.FailWith
		}
		return errors.New("forced failure")
	}
	if c.NonFiniteFrom > 0 && c.Calls >= c.NonFiniteFrom {
		out.SetFloat("y", math.NaN())
		return nil
	}
	out.SetFloat("y", c.A*in.Float("x")+c.B)
	return nil
}

func (c *Affine) Linearize(_, _ component.Reader, jac *component.Jacobian) error {
	jac.Set("y", "x", c.A)
	return nil
}

// Sum computes y = U·u + V·v + B.
type Sum struct {
	U, V, B float64
}

func (c *Sum) Declare(d *variable.Declarations) error {
	if err := d.Param("u", 0, "", ""); err != nil {
		return err
	}
	if err := d.Param("v", 0, "", ""); err != nil {
		return err
	}
	return d.Output("y", c.B, "", "")
}

func (c *Sum) Compute(in component.Reader, out component.Writer) error {
	out.SetFloat("y", c.U*in.Float("u")+c.V*in.Float("v")+c.B)
	return nil
}

func (c *Sum) Linearize(_, _ component.Reader, jac *component.Jacobian) error {
	jac.Set("y", "u", c.U)
	jac.Set("y", "v", c.V)
	return nil
}

// LinearResidual owns state "x" with residual A·x − b, where b is a parameter.
type LinearResidual struct {
	A float64
}

func (c *LinearResidual) Declare(d *variable.Declarations) error {
	if err := d.Param("b", 0, "", ""); err != nil {
		return err
	}
	return d.State("x", 0, "", "")
}

func (*LinearResidual) Compute(component.Reader, component.Writer) error { return nil }

func (c *LinearResidual) ComputeResiduals(in, states component.Reader, res component.Writer) error {
	res.SetFloat("x", c.A*states.Float("x")-in.Float("b"))
	return nil
}

func (c *LinearResidual) Linearize(_, _ component.Reader, jac *component.Jacobian) error {
	jac.Set("x", "x", c.A)
	jac.Set("x", "b", -1)
	return nil
}

// Quadratic owns state "x" with residual x² + C. For C > 0 it has no real root.
type Quadratic struct {
	C float64
}

func (c *Quadratic) Declare(d *variable.Declarations) error {
	return d.State("x", 1, "", "")
}

func (*Quadratic) Compute(component.Reader, component.Writer) error { return nil }

func (c *Quadratic) ComputeResiduals(_, states component.Reader, res component.Writer) error {
	x := states.Float("x")
	res.SetFloat("x", x*x+c.C)
	return nil
}

// ComputeResidualsComplex lets the quadratic be linearized by complex step.
func (c *Quadratic) ComputeResidualsComplex(_, states component.ComplexReader, res component.ComplexWriter) error {
	x := states.Float("x")
	res.SetFloat("x", x*x+complex(c.C, 0))
	return nil
}

// ComputeComplex is a no-op; the quadratic has no outputs.
func (*Quadratic) ComputeComplex(component.ComplexReader, component.ComplexWriter) error { return nil }

// Sqrt computes y = sqrt(x) and rejects negative inputs with a domain error.
type Sqrt struct{}

func (Sqrt) Declare(d *variable.Declarations) error {
	if err := d.Param("x", 1, "", ""); err != nil {
		return err
	}
	return d.Output("y", 1, "", "")
}

func (Sqrt) Compute(in component.Reader, out component.Writer) error {
	x := in.Float("x")
	if x < 0 {
		return component.DomainError("x", "negative input %g", x)
	}
	out.SetFloat("y", math.Sqrt(x))
	return nil
}
