package model

import (
	"context"

	"github.com/specialistvlad/hypermdo/internal/solver"
)

// groupRuntime implements solver.System for its group.
var _ solver.System = (*groupRuntime)(nil)

func (rt *groupRuntime) Path() string { return rt.path }

// Sweep runs every child once in order, applying transfers first.
func (rt *groupRuntime) Sweep(ctx context.Context) error {
	for _, ch := range rt.seq {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := rt.execute(ctx, ch); err != nil {
			return err
		}
	}
	return nil
}

func (rt *groupRuntime) execute(ctx context.Context, ch *child) error {
	rt.transferInto(ch)
	if ch.leaf != nil {
		return ch.leaf.evaluate()
	}
	sub := ch.group.rt
	_, err := sub.nl.Solve(ctx, sub)
	return err
}

func (rt *groupRuntime) transferInto(ch *child) {
	vals := rt.p.vals
	for _, t := range rt.into[ch] {
		src := vals[t.src.off : t.src.off+t.src.size]
		if t.tear >= 0 {
			src = rt.tears[t.tear].guess
		}
		dst := vals[t.dst.off : t.dst.off+t.dst.size]
		for i, v := range src {
			dst[i] = v*t.scale + t.offset
		}
	}
}

func (rt *groupRuntime) Carried(dst []float64) []float64 {
	for _, t := range rt.carried {
		dst = append(dst, rt.p.vals[t.src.off:t.src.off+t.src.size]...)
	}
	return dst
}

func (rt *groupRuntime) Unknowns() int {
	n := 0
	for _, s := range rt.owned {
		n += s.size
	}
	for _, t := range rt.tears {
		n += t.src.size
	}
	return n
}

// Guess reads the current states and takes the current source values as
// the tear guesses.
func (rt *groupRuntime) Guess(x []float64) {
	vals := rt.p.vals
	i := 0
	for _, s := range rt.owned {
		i += copy(x[i:], vals[s.off:s.off+s.size])
	}
	for _, t := range rt.tears {
		copy(t.guess, vals[t.src.off:t.src.off+t.src.size])
		i += copy(x[i:], t.guess)
	}
}

// Evaluate writes x into the owned states and tear guesses, sweeps once and
// collects the state residuals followed by the tear mismatches.
func (rt *groupRuntime) Evaluate(ctx context.Context, x, f []float64) error {
	vals := rt.p.vals
	i := 0
	for _, s := range rt.owned {
		i += copy(vals[s.off:s.off+s.size], x[i:])
	}
	for _, t := range rt.tears {
		i += copy(t.guess, x[i:])
	}

	if err := rt.Sweep(ctx); err != nil {
		return err
	}

	i = 0
	for _, s := range rt.owned {
		i += copy(f[i:], rt.p.res[s.off:s.off+s.size])
	}
	for _, t := range rt.tears {
		for k, g := range t.guess {
			f[i] = vals[t.src.off+k] - g
			i++
		}
	}
	return nil
}

func (rt *groupRuntime) Record(ctx context.Context, it solver.Iteration) {
	rt.p.record(ctx, it)
}
