package model

import (
	"context"
	"fmt"
	"math"

	"github.com/specialistvlad/hypermdo/internal/component"
	"github.com/specialistvlad/hypermdo/internal/ctxlog"
	"github.com/specialistvlad/hypermdo/internal/mdoerr"
	"github.com/specialistvlad/hypermdo/internal/solver"
	"gonum.org/v1/gonum/mat"
)

// Iterative subgroups are linearized through their boundary by finite
// differences with the relative step opaqueStep. The re-solves use tolerances
// well below the step.
const (
	opaqueStep      = 1e-6
	boundaryAtol    = 1e-12
	boundaryRtol    = 1e-13
	boundaryMaxIter = 500

	nestedTolFactor = 1e-2
	nestedMinIter   = 100
)

// linearOperator applies dF/dx of a Newton group by pushing a perturbation
// of the unknowns through the group's sweep: leaf Jacobians for components,
// recursion for run-once subgroups and a finite-difference boundary
// Jacobian for iterative subgroups.
type linearOperator struct {
	rt     *groupRuntime
	jacs   map[*leaf]*component.Jacobian
	opaque map[*groupRuntime]*mat.Dense
}

// Linearize builds the operator at the last evaluated point.
func (rt *groupRuntime) Linearize(ctx context.Context) (solver.Operator, error) {
	op := &linearOperator{rt: rt, jacs: map[*leaf]*component.Jacobian{}, opaque: map[*groupRuntime]*mat.Dense{}}
	if err := op.build(ctx, rt); err != nil {
		return nil, err
	}
	return op, nil
}

func (op *linearOperator) build(ctx context.Context, rt *groupRuntime) error {
	for _, ch := range rt.seq {
		if ch.leaf != nil {
			l := ch.leaf
			jac, err := component.Linearize(l.abs, l.ch.comp, l.ch.decl, l.in, l.states)
			if err != nil {
				return err
			}
			op.jacs[l] = jac
			continue
		}
		sub := ch.group.rt
		if !sub.nl.Iterative() {
			if err := op.build(ctx, sub); err != nil {
				return err
			}
			continue
		}
		m, err := op.boundaryJacobian(ctx, sub)
		if err != nil {
			return fmt.Errorf("linearizing '%s': %w", scope(sub.path), err)
		}
		op.opaque[sub] = m
	}
	return nil
}

// boundaryJacobian differentiates the converged outputs of an iterative
// subgroup with respect to its driven inputs by re-solving it. The base point
// and every perturbed point are solved to boundaryAtol so the leftover error
// of the subgroup's own tolerance does not end up in the difference quotient.
func (op *linearOperator) boundaryJacobian(ctx context.Context, sub *groupRuntime) (*mat.Dense, error) {
	nin, nout := size(sub.extIn), size(sub.extOut)
	if nin == 0 || nout == 0 {
		return nil, nil
	}
	p := sub.p
	savedVals := append([]float64(nil), p.vals...)
	savedRes := append([]float64(nil), p.res...)
	rec := p.rec
	p.rec = nil
	restore := sub.tighten()
	defer func() {
		restore()
		copy(p.vals, savedVals)
		copy(p.res, savedRes)
		p.rec = rec
	}()

	if err := sub.solveTight(ctx); err != nil {
		return nil, err
	}
	baseVals := append([]float64(nil), p.vals...)
	baseRes := append([]float64(nil), p.res...)
	base := gather(p.vals, sub.extOut)

	m := mat.NewDense(nout, nin, nil)
	col := 0
	for _, s := range sub.extIn {
		for k := 0; k < s.size; k++ {
			x := baseVals[s.off+k]
			h := opaqueStep * math.Max(1, math.Abs(x))
			p.vals[s.off+k] = x + h
			if err := sub.solveTight(ctx); err != nil {
				return nil, err
			}
			out := gather(p.vals, sub.extOut)
			for r := range out {
				m.Set(r, col, (out[r]-base[r])/h)
			}
			copy(p.vals, baseVals)
			copy(p.res, baseRes)
			col++
		}
	}
	return m, nil
}

// solveTight solves the subgroup during linearization. Missing the tight
// tolerance is not fatal: the result is still closer than the subgroup's
// own tolerance allows.
func (rt *groupRuntime) solveTight(ctx context.Context) error {
	res, err := rt.nl.Solve(ctx, rt)
	if err != nil && mdoerr.IsNotConverged(err) && ctx.Err() == nil {
		ctxlog.FromContext(ctx).Debug("Subgroup missed the linearization tolerance.",
			"system", scope(rt.path), "iterations", res.Iterations, "norm", res.Norm)
		return nil
	}
	return err
}

// tighten swaps the solver of rt and of every iterative group below it for
// a copy converging to boundaryAtol. The returned func puts them back.
func (rt *groupRuntime) tighten() (restore func()) {
	var saved []func()
	var walk func(g *groupRuntime)
	walk = func(g *groupRuntime) {
		orig := g.nl
		g.nl = solver.Tightened(orig, boundaryAtol, boundaryRtol, boundaryMaxIter)
		saved = append(saved, func() { g.nl = orig })
		for _, ch := range g.seq {
			if ch.group != nil {
				walk(ch.group.rt)
			}
		}
	}
	walk(rt)
	return func() {
		for _, f := range saved {
			f()
		}
	}
}

func (op *linearOperator) Size() int { return op.rt.Unknowns() }

// Apply computes dst = J·v.
func (op *linearOperator) Apply(dst, v []float64) error {
	if len(v) != op.Size() || len(dst) != op.Size() {
		return fmt.Errorf("operator of size %d applied to vectors of %d and %d", op.Size(), len(v), len(dst))
	}
	rt := op.rt
	d := map[*slot][]float64{}
	i := 0
	for _, s := range rt.owned {
		d[s] = v[i : i+s.size]
		i += s.size
	}
	tears := make([][]float64, len(rt.tears))
	for k, t := range rt.tears {
		tears[k] = v[i : i+t.src.size]
		i += t.src.size
	}

	dres := map[*slot][]float64{}
	op.walk(rt, d, dres, tears)

	i = 0
	for _, s := range rt.owned {
		if r, ok := dres[s]; ok {
			copy(dst[i:i+s.size], r)
		} else {
			clear(dst[i : i+s.size])
		}
		i += s.size
	}
	for k, t := range rt.tears {
		cur := d[t.src]
		for e := 0; e < t.src.size; e++ {
			var dv float64
			if cur != nil {
				dv = cur[e]
			}
			dst[i] = dv - tears[k][e]
			i++
		}
	}
	return nil
}

func (op *linearOperator) walk(rt *groupRuntime, d, dres map[*slot][]float64, tears [][]float64) {
	for _, ch := range rt.seq {
		for _, t := range rt.into[ch] {
			src := d[t.src]
			if t.tear >= 0 {
				src = tears[t.tear]
			}
			if src == nil {
				delete(d, t.dst)
				continue
			}
			scaled := make([]float64, len(src))
			for e, x := range src {
				scaled[e] = x * t.scale
			}
			d[t.dst] = scaled
		}

		if ch.leaf != nil {
			op.applyLeaf(ch.leaf, d, dres)
			continue
		}
		sub := ch.group.rt
		if !sub.nl.Iterative() {
			op.walk(sub, d, dres, nil)
			continue
		}
		op.applyOpaque(sub, d)
	}
}

func (op *linearOperator) applyLeaf(l *leaf, d, dres map[*slot][]float64) {
	jac := op.jacs[l]
	cols := component.Values{}
	for name := range l.in {
		if v, ok := d[l.slots[name]]; ok {
			cols[name] = v
		}
	}
	for name := range l.states {
		if v, ok := d[l.slots[name]]; ok {
			cols[name] = v
		}
	}
	if len(cols) == 0 {
		for name := range l.out {
			delete(d, l.slots[name])
		}
		for name := range l.states {
			delete(dres, l.slots[name])
		}
		return
	}
	rows := jac.Apply(cols)
	for name := range l.out {
		d[l.slots[name]] = rows[name]
	}
	for name := range l.states {
		dres[l.slots[name]] = rows[name]
	}
}

func (op *linearOperator) applyOpaque(sub *groupRuntime, d map[*slot][]float64) {
	m := op.opaque[sub]
	if m == nil {
		for _, s := range sub.extOut {
			delete(d, s)
		}
		return
	}
	in := mat.NewVecDense(size(sub.extIn), gatherDelta(d, sub.extIn))
	var out mat.VecDense
	out.MulVec(m, in)
	i := 0
	for _, s := range sub.extOut {
		v := make([]float64, s.size)
		for e := range v {
			v[e] = out.AtVec(i)
			i++
		}
		d[s] = v
	}
}

func size(slots []*slot) int {
	n := 0
	for _, s := range slots {
		n += s.size
	}
	return n
}

func gather(vals []float64, slots []*slot) []float64 {
	out := make([]float64, 0, size(slots))
	for _, s := range slots {
		out = append(out, vals[s.off:s.off+s.size]...)
	}
	return out
}

func gatherDelta(d map[*slot][]float64, slots []*slot) []float64 {
	out := make([]float64, 0, size(slots))
	for _, s := range slots {
		if v, ok := d[s]; ok {
			out = append(out, v...)
		} else {
			out = append(out, make([]float64, s.size)...)
		}
	}
	return out
}
