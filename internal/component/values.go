package component

import (
	"fmt"

	"github.com/specialistvlad/hypermdo/internal/mdoerr"
)

// Values maps variable names to their buffers.
type Values map[string][]float64

// Clone deep-copies the buffers.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, b := range v {
		out[k] = append([]float64(nil), b...)
	}
	return out
}

// Reader is a read-only view over one or more value sets.
// Looking up an undeclared name panics with *mdoerr.UnknownVariableError,
// which Evaluate turns into a *mdoerr.ComputeError.
type Reader struct {
	scope string
	sets  []Values
}

// NewReader creates a view over sets, searched in order.
func NewReader(scope string, sets ...Values) Reader {
	return Reader{scope: scope, sets: sets}
}

func (r Reader) lookup(name string) []float64 {
	for _, s := range r.sets {
		if b, ok := s[name]; ok {
			return b
		}
	}
	panic(&mdoerr.UnknownVariableError{Scope: r.scope, Name: name})
}

// Float returns the first entry of name.
func (r Reader) Float(name string) float64 {
	return r.lookup(name)[0]
}

// Vec returns a copy of name's entries.
func (r Reader) Vec(name string) []float64 {
	return append([]float64(nil), r.lookup(name)...)
}

// Has reports whether name is visible through this view.
func (r Reader) Has(name string) bool {
	for _, s := range r.sets {
		if _, ok := s[name]; ok {
			return true
		}
	}
	return false
}

// Writer is a writable view over a single value set.
type Writer struct {
	Reader
	dst Values
}

// NewWriter creates a writable view over dst.
func NewWriter(scope string, dst Values) Writer {
	return Writer{Reader: NewReader(scope, dst), dst: dst}
}

// SetFloat sets the first entry of name.
func (w Writer) SetFloat(name string, v float64) {
	w.lookup(name)[0] = v
}

// SetVec overwrites name's entries; the length must match the declaration.
func (w Writer) SetVec(name string, v []float64) {
	b := w.lookup(name)
	if len(v) != len(b) {
		panic(fmt.Errorf("'%s' has %d entries, got %d", name, len(b), len(v)))
	}
	copy(b, v)
}
