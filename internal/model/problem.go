package model

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/specialistvlad/hypermdo/internal/ctxlog"
	"github.com/specialistvlad/hypermdo/internal/mdoerr"
	"github.com/specialistvlad/hypermdo/internal/recorder"
	"github.com/specialistvlad/hypermdo/internal/solver"
	"github.com/specialistvlad/hypermdo/internal/variable"
	"github.com/specialistvlad/hypermdo/internal/varpath"
)

// ErrNotSetup is returned by operations that need Setup first.
var ErrNotSetup = errors.New("problem is not set up")

// Problem is a root group plus the flat variable store it runs on.
type Problem struct {
	// Name labels the runs sent to recorders.
	Name string

	root *Group

	vals, res []float64
	leaves    []*leaf
	slots     []*slot
	groups    []*Group
	byRef     map[varRef]*slot
	driven    map[*slot]string
	overrides []override
	ready     bool

	rec recorder.Recorder
}

type override struct {
	path   string
	values []float64
}

// NewProblem wraps root.
func NewProblem(root *Group) *Problem {
	return &Problem{root: root}
}

// Root returns the root group.
func (p *Problem) Root() *Group { return p.root }

// Run executes the root group's solver. rec may be nil; when set it receives
// the run's start, every solver iteration and the final values. The caller
// owns rec and closes it.
func (p *Problem) Run(ctx context.Context, rec recorder.Recorder) error {
	if !p.ready {
		return ErrNotSetup
	}
	logger := ctxlog.FromContext(ctx)
	p.rec = rec
	defer func() { p.rec = nil }()

	started := time.Now()
	if rec != nil {
		info := recorder.Info{Case: p.Name, Started: started}
		for _, s := range p.slots {
			info.Variables = append(info.Variables, s.abs)
		}
		if err := rec.Start(ctx, info); err != nil {
			return fmt.Errorf("starting recorder: %w", err)
		}
	}

	res, err := p.root.rt.nl.Solve(ctx, p.root.rt)
	logger.Debug("Problem run finished.", "case", p.Name, "status", res.Status, "iterations", res.Iterations, "duration", time.Since(started))

	if rec != nil {
		c := recorder.Case{
			Name:       p.Name,
			Status:     res.Status.String(),
			Iterations: res.Iterations,
			Duration:   time.Since(started),
			Values:     p.snapshot(),
		}
		if err != nil {
			c.Error = err.Error()
		}
		if ferr := rec.Finish(ctx, c); ferr != nil && err == nil {
			return fmt.Errorf("finishing recorder: %w", ferr)
		}
	}
	return err
}

func (p *Problem) snapshot() map[string][]float64 {
	out := make(map[string][]float64, len(p.slots))
	for _, s := range p.slots {
		out[s.abs] = append([]float64(nil), p.vals[s.off:s.off+s.size]...)
	}
	return out
}

func (p *Problem) record(ctx context.Context, it solver.Iteration) {
	if p.rec == nil {
		return
	}
	if err := p.rec.Iteration(ctx, it); err != nil {
		ctxlog.FromContext(ctx).Warn("Recorder rejected an iteration.", "system", scope(it.System), "error", err)
	}
}

func (p *Problem) lookup(path string) ([]*slot, varpath.Path, error) {
	if !p.ready {
		return nil, varpath.Path{}, ErrNotSetup
	}
	vp, err := varpath.Parse(path)
	if err != nil {
		return nil, varpath.Path{}, err
	}
	refs, err := p.root.resolve(vp)
	if err != nil {
		return nil, varpath.Path{}, err
	}
	slots := make([]*slot, len(refs))
	for i, r := range refs {
		slots[i] = p.byRef[r]
	}
	if i := vp.Index(); i >= slots[0].size {
		return nil, varpath.Path{}, fmt.Errorf("index %d out of range for '%s' with %d entries", i, vp.WithoutIndex(), slots[0].size)
	}
	return slots, vp, nil
}

// Get returns a copy of the value at path. A merged promoted parameter
// returns the value of its first member.
func (p *Problem) Get(path string) ([]float64, error) {
	slots, vp, err := p.lookup(path)
	if err != nil {
		return nil, err
	}
	s := slots[0]
	if i := vp.Index(); i >= 0 {
		return []float64{p.vals[s.off+i]}, nil
	}
	return append([]float64(nil), p.vals[s.off:s.off+s.size]...), nil
}

// Float returns a scalar value. Vector variables need an element index.
func (p *Problem) Float(path string) (float64, error) {
	v, err := p.Get(path)
	if err != nil {
		return 0, err
	}
	if len(v) != 1 {
		return 0, fmt.Errorf("'%s' has %d entries, address one with an index", path, len(v))
	}
	return v[0], nil
}

// Set writes an independent value. Every member of a merged promoted
// parameter receives it. Parameters driven by a connection are rejected;
// outputs and states may be set as initial guesses.
func (p *Problem) Set(path string, values ...float64) error {
	if err := p.write(path, values); err != nil {
		return err
	}
	for i, o := range p.overrides {
		if o.path == path {
			p.overrides[i].values = append([]float64(nil), values...)
			return nil
		}
	}
	p.overrides = append(p.overrides, override{path: path, values: append([]float64(nil), values...)})
	return nil
}

func (p *Problem) write(path string, values []float64) error {
	slots, vp, err := p.lookup(path)
	if err != nil {
		return err
	}
	for _, s := range slots {
		if s.meta.Kind == variable.Parameter {
			if src, ok := p.driven[s]; ok {
				return fmt.Errorf("cannot set '%s': %w by '%s'", path, mdoerr.ErrDrivenVariable, src)
			}
		}
	}
	idx := vp.Index()
	for _, s := range slots {
		switch {
		case idx >= 0 && len(values) == 1:
			p.vals[s.off+idx] = values[0]
		case idx < 0 && len(values) == s.size:
			copy(p.vals[s.off:s.off+s.size], values)
		default:
			return fmt.Errorf("cannot set '%s': expected %d values, got %d", path, s.size, len(values))
		}
	}
	return nil
}

// VariableInfo describes one variable of a set-up problem.
type VariableInfo struct {
	Path   string
	Kind   variable.Kind
	Units  string
	Desc   string
	Value  []float64
	Source string
}

// Variables lists every variable sorted by path.
func (p *Problem) Variables() ([]VariableInfo, error) {
	if !p.ready {
		return nil, ErrNotSetup
	}
	out := make([]VariableInfo, 0, len(p.slots))
	for _, s := range p.slots {
		out = append(out, VariableInfo{
			Path:   s.abs,
			Kind:   s.meta.Kind,
			Units:  s.meta.Units,
			Desc:   s.meta.Desc,
			Value:  append([]float64(nil), p.vals[s.off:s.off+s.size]...),
			Source: p.driven[s],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// Residual returns the current residual of a state variable.
func (p *Problem) Residual(path string) ([]float64, error) {
	slots, _, err := p.lookup(path)
	if err != nil {
		return nil, err
	}
	s := slots[0]
	if s.meta.Kind != variable.State {
		return nil, fmt.Errorf("'%s' is a %s, not a state", path, s.meta.Kind)
	}
	return append([]float64(nil), p.res[s.off:s.off+s.size]...), nil
}
