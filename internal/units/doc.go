// Package units parses unit expressions such as "W/(m**2*K)" or "lbm/s" and
// converts values between compatible units.
//
// A Unit maps a value to SI as si = v*Scale + Offset. Two units are
// compatible when their dimension vectors match. The empty string means
// "unspecified" and is compatible with anything.
package units
