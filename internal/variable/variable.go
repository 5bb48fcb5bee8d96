package variable

import (
	"fmt"
	"math"

	"github.com/specialistvlad/hypermdo/internal/mdoerr"
	"github.com/specialistvlad/hypermdo/internal/units"
	"github.com/specialistvlad/hypermdo/internal/varpath"
)

// Kind classifies a declared variable.
type Kind int

const (
	// Parameter is an external input, driven by a connection or left at its default.
	Parameter Kind = iota
	// Output is an explicit function of the parameters.
	Output
	// State is an implicit unknown with a matching residual.
	State
)

func (k Kind) String() string {
	switch k {
	case Parameter:
		return "parameter"
	case Output:
		return "output"
	case State:
		return "state"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Meta describes one declared variable.
type Meta struct {
	Name    string
	Kind    Kind
	Default []float64
	Units   string
	Desc    string
}

// Size is the number of scalar entries.
func (m Meta) Size() int { return len(m.Default) }

// Declarations is the ordered registry a component fills in Declare.
type Declarations struct {
	scope string
	metas []Meta
	index map[string]int
}

// NewDeclarations creates an empty registry. scope is used in error messages.
func NewDeclarations(scope string) *Declarations {
	return &Declarations{scope: scope, index: make(map[string]int)}
}

// Param declares a scalar parameter.
func (d *Declarations) Param(name string, def float64, units, desc string) error {
	return d.add(Meta{Name: name, Kind: Parameter, Default: []float64{def}, Units: units, Desc: desc})
}

// ParamVec declares a vector parameter.
func (d *Declarations) ParamVec(name string, def []float64, units, desc string) error {
	return d.add(Meta{Name: name, Kind: Parameter, Default: clone(def), Units: units, Desc: desc})
}

// Output declares a scalar explicit output.
func (d *Declarations) Output(name string, def float64, units, desc string) error {
	return d.add(Meta{Name: name, Kind: Output, Default: []float64{def}, Units: units, Desc: desc})
}

// OutputVec declares a vector explicit output.
func (d *Declarations) OutputVec(name string, def []float64, units, desc string) error {
	return d.add(Meta{Name: name, Kind: Output, Default: clone(def), Units: units, Desc: desc})
}

// State declares a scalar implicit unknown. def is the initial guess.
func (d *Declarations) State(name string, def float64, units, desc string) error {
	return d.add(Meta{Name: name, Kind: State, Default: []float64{def}, Units: units, Desc: desc})
}

// StateVec declares a vector implicit unknown.
func (d *Declarations) StateVec(name string, def []float64, units, desc string) error {
	return d.add(Meta{Name: name, Kind: State, Default: clone(def), Units: units, Desc: desc})
}

func (d *Declarations) add(m Meta) error {
	if !varpath.ValidName(m.Name) {
		return fmt.Errorf("invalid variable name %q in '%s'", m.Name, d.scope)
	}
	if _, exists := d.index[m.Name]; exists {
		return &mdoerr.DuplicateNameError{Scope: d.scope, Name: m.Name}
	}
	if len(m.Default) == 0 {
		return fmt.Errorf("variable '%s' in '%s' has no entries", m.Name, d.scope)
	}
	for _, v := range m.Default {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("variable '%s' in '%s' has a non-finite default", m.Name, d.scope)
		}
	}
	if _, err := units.Parse(m.Units); err != nil {
		return fmt.Errorf("variable '%s' in '%s': %w", m.Name, d.scope, err)
	}
	d.index[m.Name] = len(d.metas)
	d.metas = append(d.metas, m)
	return nil
}

// Get returns the declaration of name.
func (d *Declarations) Get(name string) (Meta, error) {
	i, ok := d.index[name]
	if !ok {
		return Meta{}, &mdoerr.UnknownVariableError{Scope: d.scope, Name: name}
	}
	return d.metas[i], nil
}

// Has reports whether name is declared.
func (d *Declarations) Has(name string) bool {
	_, ok := d.index[name]
	return ok
}

// All returns every declaration in declaration order.
func (d *Declarations) All() []Meta {
	return append([]Meta(nil), d.metas...)
}

// Of returns the declarations of one kind in declaration order.
func (d *Declarations) Of(kind Kind) []Meta {
	var out []Meta
	for _, m := range d.metas {
		if m.Kind == kind {
			out = append(out, m)
		}
	}
	return out
}

// Size is the total scalar size of the declarations of one kind.
func (d *Declarations) Size(kind Kind) int {
	n := 0
	for _, m := range d.metas {
		if m.Kind == kind {
			n += m.Size()
		}
	}
	return n
}

// Scope is the name used in error messages.
func (d *Declarations) Scope() string { return d.scope }

func clone(v []float64) []float64 {
	return append([]float64(nil), v...)
}
