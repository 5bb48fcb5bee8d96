package units

import (
	"fmt"
	"math"
	"strings"
)

// Base dimensions, in the order used by Dim.
const (
	Length = iota
	Mass
	Time
	Current
	Temperature
	Amount
	Luminosity
	numDims
)

var dimNames = [numDims]string{"m", "kg", "s", "A", "K", "mol", "cd"}

// Dim holds the exponent of each base dimension.
type Dim [numDims]int8

func (d Dim) mul(o Dim, sign int8) Dim {
	var r Dim
	for i := range d {
		r[i] = d[i] + sign*o[i]
	}
	return r
}

func (d Dim) pow(n int8) Dim {
	var r Dim
	for i := range d {
		r[i] = d[i] * n
	}
	return r
}

// String renders the dimension in SI base units, e.g. "kg*m**2/s**3".
func (d Dim) String() string {
	var num, den []string
	for i, e := range d {
		switch {
		case e == 1:
			num = append(num, dimNames[i])
		case e > 1:
			num = append(num, fmt.Sprintf("%s**%d", dimNames[i], e))
		case e == -1:
			den = append(den, dimNames[i])
		case e < -1:
			den = append(den, fmt.Sprintf("%s**%d", dimNames[i], -e))
		}
	}
	s := strings.Join(num, "*")
	if s == "" {
		s = "1"
	}
	if len(den) > 0 {
		s += "/" + strings.Join(den, "/")
	}
	return s
}

// Unit is a parsed unit expression.
type Unit struct {
	Expr   string
	Scale  float64
	Offset float64
	Dim    Dim
}

// Dimensionless is the unit of plain numbers.
var Dimensionless = Unit{Scale: 1}

// ToSI converts v expressed in u into SI base units.
func (u Unit) ToSI(v float64) float64 { return v*u.Scale + u.Offset }

// FromSI converts an SI value into u.
func (u Unit) FromSI(v float64) float64 { return (v - u.Offset) / u.Scale }

// Compatible reports whether two unit expressions share a dimension.
// Unspecified units are compatible with anything.
func Compatible(a, b string) (bool, error) {
	if a == "" || b == "" {
		return true, nil
	}
	ua, err := Parse(a)
	if err != nil {
		return false, err
	}
	ub, err := Parse(b)
	if err != nil {
		return false, err
	}
	return ua.Dim == ub.Dim, nil
}

// Factors returns scale and offset such that to = from*scale + offset.
// Unspecified units on either side give the identity.
func Factors(from, to string) (scale, offset float64, err error) {
	if from == "" || to == "" || from == to {
		return 1, 0, nil
	}
	uf, err := Parse(from)
	if err != nil {
		return 0, 0, err
	}
	ut, err := Parse(to)
	if err != nil {
		return 0, 0, err
	}
	if uf.Dim != ut.Dim {
		return 0, 0, fmt.Errorf("cannot convert '%s' (%s) to '%s' (%s)", from, uf.Dim, to, ut.Dim)
	}
	return uf.Scale / ut.Scale, (uf.Offset - ut.Offset) / ut.Scale, nil
}

// Convert converts v from one unit expression to another.
func Convert(v float64, from, to string) (float64, error) {
	scale, offset, err := Factors(from, to)
	if err != nil {
		return 0, err
	}
	return v*scale + offset, nil
}

// MustConvert is Convert for constant expressions known to be valid.
func MustConvert(v float64, from, to string) float64 {
	r, err := Convert(v, from, to)
	if err != nil {
		panic(err)
	}
	return r
}

type def struct {
	scale      float64
	offset     float64
	dim        Dim
	prefixable bool
}

func d(l, m, t, a, k int8) Dim { return Dim{l, m, t, a, k, 0, 0} }

var table = map[string]def{
	// SI base and derived
	"m":   {1, 0, d(1, 0, 0, 0, 0), true},
	"g":   {1e-3, 0, d(0, 1, 0, 0, 0), true},
	"s":   {1, 0, d(0, 0, 1, 0, 0), true},
	"A":   {1, 0, d(0, 0, 0, 1, 0), true},
	"K":   {1, 0, d(0, 0, 0, 0, 1), true},
	"mol": {1, 0, Dim{0, 0, 0, 0, 0, 1, 0}, true},
	"cd":  {1, 0, Dim{0, 0, 0, 0, 0, 0, 1}, false},
	"Hz":  {1, 0, d(0, 0, -1, 0, 0), true},
	"N":   {1, 0, d(1, 1, -2, 0, 0), true},
	"J":   {1, 0, d(2, 1, -2, 0, 0), true},
	"W":   {1, 0, d(2, 1, -3, 0, 0), true},
	"Pa":  {1, 0, d(-1, 1, -2, 0, 0), true},
	"C":   {1, 0, d(0, 0, 1, 1, 0), true},
	"V":   {1, 0, d(2, 1, -3, -1, 0), true},
	"ohm": {1, 0, d(2, 1, -3, -2, 0), true},
	"L":   {1e-3, 0, d(3, 0, 0, 0, 0), true},
	"Wh":  {3600, 0, d(2, 1, -2, 0, 0), true},
	"Ah":  {3600, 0, d(0, 0, 1, 1, 0), true},
	"bar": {1e5, 0, d(-1, 1, -2, 0, 0), false},

	// time
	"min": {60, 0, d(0, 0, 1, 0, 0), false},
	"h":   {3600, 0, d(0, 0, 1, 0, 0), false},
	"hr":  {3600, 0, d(0, 0, 1, 0, 0), false},
	"day": {86400, 0, d(0, 0, 1, 0, 0), false},

	// angles are dimensionless
	"rad": {1, 0, Dim{}, false},
	"deg": {math.Pi / 180, 0, Dim{}, false},
	"rev": {2 * math.Pi, 0, Dim{}, false},
	"rpm": {2 * math.Pi / 60, 0, d(0, 0, -1, 0, 0), false},

	// temperature
	"degK": {1, 0, d(0, 0, 0, 0, 1), false},
	"degC": {1, 273.15, d(0, 0, 0, 0, 1), false},
	"degR": {5.0 / 9.0, 0, d(0, 0, 0, 0, 1), false},
	"degF": {5.0 / 9.0, 459.67 * 5.0 / 9.0, d(0, 0, 0, 0, 1), false},

	// imperial
	"inch": {0.0254, 0, d(1, 0, 0, 0, 0), false},
	"ft":   {0.3048, 0, d(1, 0, 0, 0, 0), false},
	"mi":   {1609.344, 0, d(1, 0, 0, 0, 0), false},
	"lbm":  {0.45359237, 0, d(0, 1, 0, 0, 0), false},
	"lbf":  {4.4482216152605, 0, d(1, 1, -2, 0, 0), false},
	"psi":  {6894.757293168361, 0, d(-1, 1, -2, 0, 0), false},
	"atm":  {101325, 0, d(-1, 1, -2, 0, 0), false},
	"hp":   {745.6998715822702, 0, d(2, 1, -3, 0, 0), false},
	"Btu":  {1055.05585262, 0, d(2, 1, -2, 0, 0), false},
	"mph":  {0.44704, 0, d(1, 0, -1, 0, 0), false},

	// plain numbers
	"unitless": {1, 0, Dim{}, false},
	"percent":  {0.01, 0, Dim{}, false},
}

var prefixes = []struct {
	sym   string
	scale float64
}{
	// longest first so "da" wins over "d"
	{"da", 1e1},
	{"Y", 1e24}, {"Z", 1e21}, {"E", 1e18}, {"P", 1e15}, {"T", 1e12}, {"G", 1e9},
	{"M", 1e6}, {"k", 1e3}, {"h", 1e2}, {"d", 1e-1}, {"c", 1e-2}, {"m", 1e-3},
	{"u", 1e-6}, {"µ", 1e-6}, {"n", 1e-9}, {"p", 1e-12}, {"f", 1e-15},
}

func lookup(name string) (def, bool) {
	if u, ok := table[name]; ok {
		return u, true
	}
	for _, p := range prefixes {
		rest, ok := strings.CutPrefix(name, p.sym)
		if !ok || rest == "" {
			continue
		}
		if u, ok := table[rest]; ok && u.prefixable {
			u.scale *= p.scale
			return u, true
		}
	}
	return def{}, false
}
