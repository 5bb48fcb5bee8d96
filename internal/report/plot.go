package report

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/hypermdo/internal/study"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Plot draws every recorded column against the swept variable and saves one
// PNG per column into dir. Failed points are left out. It returns the files
// written; a study without a swept variable has nothing to plot.
func Plot(dir string, res *study.Result) ([]string, error) {
	if res.Plan.Variable == "" || len(res.Points) < 2 {
		return nil, nil
	}

	var files []string
	for _, col := range Columns(res) {
		pts := make(plotter.XYs, 0, len(res.Points))
		for i, pt := range res.Points {
			y := col.Values[i]
			if pt.Failed() || math.IsNaN(y) || math.IsInf(y, 0) {
				continue
			}
			pts = append(pts, plotter.XY{X: pt.Value, Y: y})
		}
		if len(pts) == 0 {
			continue
		}

		p := plot.New()
		p.Title.Text = fmt.Sprintf("%s: %s", res.Plan.Name, col.Name)
		p.X.Label.Text = res.Plan.Variable
		p.Y.Label.Text = col.Name
		p.Add(plotter.NewGrid())
		if err := plotutil.AddLinePoints(p, col.Name, pts); err != nil {
			return files, fmt.Errorf("plotting '%s': %w", col.Name, err)
		}

		file := filepath.Join(dir, fileName(res.Plan.Name, col.Name)+".png")
		if err := p.Save(6*vg.Inch, 4*vg.Inch, file); err != nil {
			return files, fmt.Errorf("saving plot %s: %w", file, err)
		}
		files = append(files, file)
	}
	return files, nil
}

func fileName(study, column string) string {
	r := strings.NewReplacer(".", "_", "[", "_", "]", "", "/", "_", " ", "_")
	return r.Replace(study + "__" + column)
}

func nan() float64 { return math.NaN() }
