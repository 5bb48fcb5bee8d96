package component

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/specialistvlad/hypermdo/internal/mdoerr"
	"github.com/specialistvlad/hypermdo/internal/variable"
)

// DomainError builds a compute error for a bad value of one variable. The
// framework fills in the component path.
func DomainError(variable, format string, args ...any) error {
	return &mdoerr.ComputeError{Variable: variable, Err: fmt.Errorf(format, args...)}
}

// Buffers allocates value sets initialized from the declared defaults.
func Buffers(d *variable.Declarations) (in, states, out, res Values) {
	in, states, out, res = Values{}, Values{}, Values{}, Values{}
	for _, m := range d.All() {
		switch m.Kind {
		case variable.Parameter:
			in[m.Name] = append([]float64(nil), m.Default...)
		case variable.Output:
			out[m.Name] = append([]float64(nil), m.Default...)
		case variable.State:
			states[m.Name] = append([]float64(nil), m.Default...)
			res[m.Name] = make([]float64, m.Size())
		}
	}
	return in, states, out, res
}

// Evaluate runs Compute and, when res is non-nil and c is implicit,
// ComputeResiduals. Panics and non-finite results become
// *mdoerr.ComputeError values naming the component at path name.
func Evaluate(name string, c Component, in, states, out, res Values) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recovered(name, r)
		}
	}()

	if err := c.Compute(NewReader(name, in, states), NewWriter(name, out)); err != nil {
		return wrap(name, err)
	}
	if bad := nonFinite(out); bad != "" {
		return &mdoerr.ComputeError{Component: name, Variable: bad, Err: mdoerr.ErrNonFinite}
	}

	ic, ok := c.(Implicit)
	if !ok || res == nil {
		return nil
	}
	if err := ic.ComputeResiduals(NewReader(name, in), NewReader(name, states), NewWriter(name, res)); err != nil {
		return wrap(name, err)
	}
	if bad := nonFinite(res); bad != "" {
		return &mdoerr.ComputeError{Component: name, Variable: bad, Err: mdoerr.ErrNonFinite}
	}
	return nil
}

func wrap(name string, err error) error {
	var ce *mdoerr.ComputeError
	if errors.As(err, &ce) {
		if ce.Component == "" {
			return &mdoerr.ComputeError{Component: name, Variable: ce.Variable, Err: ce.Err}
		}
		return err
	}
	return &mdoerr.ComputeError{Component: name, Err: err}
}

func recovered(name string, r any) error {
	var unknown *mdoerr.UnknownVariableError
	if err, ok := r.(error); ok {
		if errors.As(err, &unknown) {
			return &mdoerr.ComputeError{Component: name, Variable: unknown.Name, Err: err}
		}
		return wrap(name, err)
	}
	return &mdoerr.ComputeError{Component: name, Err: fmt.Errorf("panic: %v", r)}
}

func nonFinite(v Values) string {
	names := make([]string, 0, len(v))
	for k := range v {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		for _, x := range v[k] {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return k
			}
		}
	}
	return ""
}
