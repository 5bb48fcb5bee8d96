// Package study runs a problem over a list of input values and collects the
// recorded outputs of every point.
package study
