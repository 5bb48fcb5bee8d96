package component

import (
	"fmt"

	"github.com/specialistvlad/hypermdo/internal/mdoerr"
)

// ComplexValues maps variable names to complex buffers.
type ComplexValues map[string][]complex128

// ComplexReader is the complex-step counterpart of Reader.
type ComplexReader struct {
	scope string
	sets  []ComplexValues
}

func (r ComplexReader) lookup(name string) []complex128 {
	for _, s := range r.sets {
		if b, ok := s[name]; ok {
			return b
		}
	}
	panic(&mdoerr.UnknownVariableError{Scope: r.scope, Name: name})
}

// Float returns the first entry of name.
func (r ComplexReader) Float(name string) complex128 {
	return r.lookup(name)[0]
}

// Vec returns a copy of name's entries.
func (r ComplexReader) Vec(name string) []complex128 {
	return append([]complex128(nil), r.lookup(name)...)
}

// ComplexWriter is the complex-step counterpart of Writer.
type ComplexWriter struct {
	ComplexReader
}

// SetFloat sets the first entry of name.
func (w ComplexWriter) SetFloat(name string, v complex128) {
	w.lookup(name)[0] = v
}

// SetVec overwrites name's entries.
func (w ComplexWriter) SetVec(name string, v []complex128) {
	b := w.lookup(name)
	if len(v) != len(b) {
		panic(fmt.Errorf("'%s' has %d entries, got %d", name, len(b), len(v)))
	}
	copy(b, v)
}

func toComplex(v Values) ComplexValues {
	out := make(ComplexValues, len(v))
	for k, b := range v {
		c := make([]complex128, len(b))
		for i, x := range b {
			c[i] = complex(x, 0)
		}
		out[k] = c
	}
	return out
}
