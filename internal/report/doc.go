// Package report writes study results as tab-separated tables and PNG plots.
package report
