package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/specialistvlad/hypermdo/internal/study"
)

// Column is one scalar series of a study: a recorded variable, or one
// element of a recorded vector.
type Column struct {
	Name   string
	Values []float64
}

// Columns flattens the recorded outputs of a study. Vector variables give
// one column per element, named path[i]. Elements missing from a point are NaN.
func Columns(res *study.Result) []Column {
	var cols []Column
	for k, path := range res.Plan.Record {
		width := 0
		for _, pt := range res.Points {
			if k < len(pt.Outputs) {
				width = max(width, len(pt.Outputs[k]))
			}
		}
		for e := 0; e < width; e++ {
			name := path
			if width > 1 {
				name = fmt.Sprintf("%s[%d]", path, e)
			}
			col := Column{Name: name, Values: make([]float64, len(res.Points))}
			for i, pt := range res.Points {
				col.Values[i] = nan()
				if k < len(pt.Outputs) && e < len(pt.Outputs[k]) {
					col.Values[i] = pt.Outputs[k][e]
				}
			}
			cols = append(cols, col)
		}
	}
	return cols
}

// WriteTSV writes one row per point: index, swept value (when there is
// one), status, iterations, every recorded column and the error text.
func WriteTSV(w io.Writer, res *study.Result) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'

	cols := Columns(res)
	header := []string{"point"}
	if res.Plan.Variable != "" {
		header = append(header, res.Plan.Variable)
	}
	header = append(header, "status", "iterations")
	for _, c := range cols {
		header = append(header, c.Name)
	}
	header = append(header, "error")
	if err := cw.Write(header); err != nil {
		return err
	}

	for i, pt := range res.Points {
		row := []string{strconv.Itoa(pt.Index)}
		if res.Plan.Variable != "" {
			row = append(row, formatFloat(pt.Value))
		}
		row = append(row, pt.Status, strconv.Itoa(pt.Iterations))
		for _, c := range cols {
			row = append(row, formatFloat(c.Values[i]))
		}
		errText := ""
		if pt.Err != nil {
			errText = pt.Err.Error()
		}
		row = append(row, errText)
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 10, 64)
}
