package study

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/specialistvlad/hypermdo/internal/ctxlog"
	"github.com/specialistvlad/hypermdo/internal/mdoerr"
	"github.com/specialistvlad/hypermdo/internal/model"
	"github.com/specialistvlad/hypermdo/internal/recorder"
	"github.com/specialistvlad/hypermdo/internal/solver"
)

// Plan describes a study. Without a Variable the problem runs once.
type Plan struct {
	Name     string
	Variable string
	Values   []float64
	// Record lists the variables collected at every point.
	Record []string
	// Prepare runs after each point's setup and before the swept value is
	// written. Case inputs are assigned here.
	Prepare func(p *model.Problem) error
	// OnPoint is called after every point.
	OnPoint func(Point)
}

// Point is the outcome of one run.
type Point struct {
	Index int
	// Value is the swept input; zero when nothing is swept.
	Value      float64
	Status     string
	Iterations int
	Duration   time.Duration
	// Outputs holds one entry per recorded variable, in Plan.Record order.
	Outputs [][]float64
	Err     error
}

// Failed reports whether the point did not produce a solution.
func (p Point) Failed() bool { return p.Err != nil }

// Result gathers the points of a study.
type Result struct {
	Plan   Plan
	Points []Point
}

// Failures counts the failed points.
func (r *Result) Failures() int {
	n := 0
	for _, p := range r.Points {
		if p.Failed() {
			n++
		}
	}
	return n
}

// Run executes the plan. Each point starts from a fresh setup so that
// results do not depend on the order of the points. A point that fails to
// converge or to compute is recorded and the study moves on; assembly
// errors and cancellation stop it.
func Run(ctx context.Context, p *model.Problem, plan Plan, rec recorder.Recorder) (*Result, error) {
	logger := ctxlog.FromContext(ctx).With("study", plan.Name)
	values := plan.Values
	if plan.Variable == "" {
		values = []float64{0}
	} else if len(values) == 0 {
		return nil, fmt.Errorf("study '%s' sweeps '%s' over no values", plan.Name, plan.Variable)
	}

	res := &Result{Plan: plan}
	for i, v := range values {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		pt, err := runPoint(ctx, p, plan, i, v, rec)
		if err != nil {
			return res, err
		}
		res.Points = append(res.Points, pt)
		if plan.OnPoint != nil {
			plan.OnPoint(pt)
		}
		if pt.Failed() {
			logger.Warn("Study point failed.", "point", i, "value", v, "error", pt.Err)
			continue
		}
		logger.Debug("Study point finished.", "point", i, "value", v, "iterations", pt.Iterations)
	}
	logger.Info("Study finished.", "points", len(res.Points), "failed", res.Failures())
	return res, nil
}

func runPoint(ctx context.Context, p *model.Problem, plan Plan, i int, v float64, rec recorder.Recorder) (Point, error) {
	pt := Point{Index: i, Value: v}
	if err := p.Setup(ctx); err != nil {
		return pt, err
	}
	if plan.Prepare != nil {
		if err := plan.Prepare(p); err != nil {
			return pt, err
		}
	}
	if plan.Variable != "" {
		if err := p.Set(plan.Variable, v); err != nil {
			return pt, fmt.Errorf("sweeping '%s': %w", plan.Variable, err)
		}
		p.Name = fmt.Sprintf("%s[%d]", plan.Name, i)
	} else {
		p.Name = plan.Name
	}

	tracker := &tracker{}
	var sink recorder.Recorder = tracker
	if rec != nil {
		sink = recorder.Multi{tracker, rec}
	}

	started := time.Now()
	runErr := p.Run(ctx, sink)
	pt.Duration = time.Since(started)
	pt.Status = tracker.last.Status
	pt.Iterations = tracker.last.Iterations

	switch {
	case runErr == nil:
	case mdoerr.IsAssembly(runErr), errors.Is(runErr, context.Canceled):
		return pt, runErr
	default:
		pt.Err = runErr
	}

	for _, path := range plan.Record {
		v, err := p.Get(path)
		if err != nil {
			return pt, fmt.Errorf("recording '%s': %w", path, err)
		}
		pt.Outputs = append(pt.Outputs, v)
	}
	return pt, nil
}

// tracker keeps the outcome of the current run.
type tracker struct {
	last recorder.Case
}

func (*tracker) Start(context.Context, recorder.Info) error { return nil }
func (*tracker) Iteration(context.Context, solver.Iteration) error { return nil }
func (*tracker) Close() error { return nil }

func (t *tracker) Finish(_ context.Context, c recorder.Case) error {
	t.last = c
	return nil
}
