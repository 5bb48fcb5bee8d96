package model

import (
	"context"
	"fmt"

	"github.com/specialistvlad/hypermdo/internal/component"
	"github.com/specialistvlad/hypermdo/internal/ctxlog"
	"github.com/specialistvlad/hypermdo/internal/dag"
	"github.com/specialistvlad/hypermdo/internal/mdoerr"
	"github.com/specialistvlad/hypermdo/internal/solver"
	"github.com/specialistvlad/hypermdo/internal/units"
	"github.com/specialistvlad/hypermdo/internal/variable"
	"github.com/specialistvlad/hypermdo/internal/varpath"
)

// Setup validates the tree and prepares it to run. It can be called again
// after the tree changes; values given to Set are re-applied.
func (p *Problem) Setup(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	p.ready = false
	p.vals, p.res, p.leaves, p.slots = nil, nil, nil, nil
	p.byRef = make(map[varRef]*slot)
	p.driven = make(map[*slot]string)
	p.groups = nil

	if err := p.place(p.root, "", nil, nil); err != nil {
		return err
	}
	p.allocate()

	for _, g := range p.groups {
		if err := p.resolveTransfers(g); err != nil {
			return err
		}
	}
	for _, g := range p.groups {
		if err := p.order(ctx, g); err != nil {
			return err
		}
	}
	if err := p.assignStates(ctx); err != nil {
		return err
	}
	p.boundaries()
	p.nestTolerances(ctx)

	p.ready = true
	for _, o := range p.overrides {
		if err := p.write(o.path, o.values); err != nil {
			p.ready = false
			return fmt.Errorf("re-applying value for '%s': %w", o.path, err)
		}
	}
	logger.Debug("Problem setup complete.", "components", len(p.leaves), "variables", len(p.slots), "groups", len(p.groups))
	return nil
}

// place assigns absolute paths and runtimes, depth first in child order.
func (p *Problem) place(g *Group, path string, parent *Group, self *child) error {
	for _, seen := range p.groups {
		if seen == g {
			return fmt.Errorf("group at '%s' is already part of the model", scope(path))
		}
	}
	nl, err := p.allocateSolver(g)
	if err != nil {
		return fmt.Errorf("group '%s': %w", scope(path), err)
	}
	g.rt = &groupRuntime{g: g, p: p, path: path, parent: parent, self: self, nl: nl, into: map[*child][]*transfer{}}
	p.groups = append(p.groups, g)

	for _, ch := range g.children {
		abs := varpath.Join(path, ch.name)
		if ch.group != nil {
			ch.leaf = nil
			if err := p.place(ch.group, abs, g, ch); err != nil {
				return err
			}
			continue
		}
		ch.leaf = &leaf{abs: abs, ch: ch, parent: g, slots: map[string]*slot{}}
		p.leaves = append(p.leaves, ch.leaf)
	}
	return nil
}

func (p *Problem) allocateSolver(g *Group) (solver.Nonlinear, error) {
	var lin solver.Linear
	if g.nlKind == solver.KindNewton {
		var err error
		if lin, err = solver.NewLinear(g.linKind, g.linOpts); err != nil {
			return nil, err
		}
	}
	return solver.NewNonlinear(g.nlKind, g.nlOpts, lin)
}

// allocate lays every variable out in the flat store and copies defaults.
func (p *Problem) allocate() {
	n := 0
	for _, l := range p.leaves {
		for _, m := range l.ch.decl.All() {
			s := &slot{off: n, size: m.Size(), abs: varpath.Join(l.abs, m.Name), meta: m, leaf: l}
			l.slots[m.Name] = s
			p.slots = append(p.slots, s)
			p.byRef[varRef{c: l.ch, name: m.Name}] = s
			n += m.Size()
		}
	}
	p.vals = make([]float64, n)
	p.res = make([]float64, n)

	for _, l := range p.leaves {
		l.in, l.states, l.out, l.res = component.Values{}, component.Values{}, component.Values{}, component.Values{}
		for _, m := range l.ch.decl.All() {
			s := l.slots[m.Name]
			buf := p.vals[s.off : s.off+s.size : s.off+s.size]
			copy(buf, m.Default)
			switch m.Kind {
			case variable.Parameter:
				l.in[m.Name] = buf
			case variable.Output:
				l.out[m.Name] = buf
			case variable.State:
				l.states[m.Name] = buf
				l.res[m.Name] = p.res[s.off : s.off+s.size : s.off+s.size]
			}
		}
	}
}

// resolveTransfers re-validates g's connections against the whole model and
// hands each resulting transfer to the lowest group containing both ends.
func (p *Problem) resolveTransfers(g *Group) error {
	for _, c := range g.conns {
		srcRef, dstRefs, err := g.resolveConnection(c.src, c.dst)
		if err != nil {
			return err
		}
		src := p.byRef[srcRef]
		for _, r := range dstRefs {
			dst := p.byRef[r]
			if prev, ok := p.driven[dst]; ok {
				return &mdoerr.MultipleSourcesError{Target: dst.abs, Existing: prev, Source: src.abs}
			}
			scale, offset, err := units.Factors(src.meta.Units, dst.meta.Units)
			if err != nil {
				return &mdoerr.UnitMismatchError{Source: src.abs, Target: dst.abs, SourceUnits: src.meta.Units, TargetUnits: dst.meta.Units}
			}
			p.driven[dst] = src.abs

			owner := lowestCommon(src.leaf, dst.leaf)
			t := &transfer{src: src, dst: dst, scale: scale, offset: offset, tear: -1}
			owner.rt.transfers = append(owner.rt.transfers, t)
			target := childOf(owner, dst.leaf)
			owner.rt.into[target] = append(owner.rt.into[target], t)
		}
	}
	return nil
}

// order sorts g's children, rejects cycles g cannot iterate and, for Newton
// groups, tears the back edges of every cycle.
func (p *Problem) order(ctx context.Context, g *Group) error {
	rt := g.rt
	graph := dag.New()
	for _, ch := range g.children {
		graph.AddNode(ch.name)
	}
	for _, t := range rt.transfers {
		from, to := childOf(g, t.src.leaf), childOf(g, t.dst.leaf)
		if err := graph.AddEdge(from.name, to.name); err != nil {
			return fmt.Errorf("group '%s': %w", scope(rt.path), err)
		}
	}

	rt.seq = rt.seq[:0]
	back := map[[2]string]bool{}
	for _, comp := range graph.Order() {
		if len(comp) > 1 {
			if !rt.nl.Iterative() {
				return &mdoerr.UnresolvableCycleError{Group: rt.path, Members: comp}
			}
			for _, e := range graph.BackEdges(comp) {
				back[e] = true
			}
		}
		for _, name := range comp {
			rt.seq = append(rt.seq, g.byName[name])
		}
	}

	if rt.nl.OwnsStates() {
		torn := map[*slot]int{}
		for _, t := range rt.transfers {
			from, to := childOf(g, t.src.leaf), childOf(g, t.dst.leaf)
			if !back[[2]string{from.name, to.name}] {
				continue
			}
			idx, ok := torn[t.src]
			if !ok {
				idx = len(rt.tears)
				torn[t.src] = idx
				rt.tears = append(rt.tears, &tearVar{src: t.src, guess: make([]float64, t.src.size)})
			}
			t.tear = idx
		}
	}

	names := make([]string, len(rt.seq))
	for i, ch := range rt.seq {
		names[i] = ch.name
	}
	ctxlog.FromContext(ctx).Debug("Group ordered.", "group", scope(rt.path), "solver", rt.nl.Kind(), "order", names, "tears", len(rt.tears))
	return nil
}

// assignStates hands every state to its nearest Newton ancestor. Run-once
// groups are transparent; a Gauss-Seidel group or the root stops the search.
func (p *Problem) assignStates(ctx context.Context) error {
	for _, l := range p.leaves {
		states := l.ch.decl.Of(variable.State)
		if len(states) == 0 {
			continue
		}
		g := l.parent
		for {
			if g.rt.nl.OwnsStates() {
				break
			}
			if g.rt.nl.Iterative() || g.rt.parent == nil {
				return &mdoerr.UnsolvedStateError{Variable: varpath.Join(l.abs, states[0].Name), Group: g.rt.path}
			}
			g = g.rt.parent
		}
		l.owner = g
		for _, m := range states {
			g.rt.owned = append(g.rt.owned, l.slots[m.Name])
		}
		ctxlog.FromContext(ctx).Debug("States assigned.", "component", l.abs, "group", scope(g.rt.path))
	}

	// values carried by a group's own sweep include those of transparent
	// run-once subgroups
	for _, g := range p.groups {
		g.rt.carried = g.rt.collectCarried(nil)
	}
	return nil
}

func (rt *groupRuntime) collectCarried(dst []*transfer) []*transfer {
	dst = append(dst, rt.transfers...)
	for _, ch := range rt.seq {
		if ch.group != nil && !ch.group.rt.nl.Iterative() {
			dst = ch.group.rt.collectCarried(dst)
		}
	}
	return dst
}

// boundaries records, for every group, the variables connected to the
// world outside it.
func (p *Problem) boundaries() {
	add := func(list []*slot, s *slot) []*slot {
		for _, x := range list {
			if x == s {
				return list
			}
		}
		return append(list, s)
	}
	for _, owner := range p.groups {
		for _, t := range owner.rt.transfers {
			for cur := t.dst.leaf.parent; cur != owner; cur = cur.rt.parent {
				cur.rt.extIn = add(cur.rt.extIn, t.dst)
			}
			for cur := t.src.leaf.parent; cur != owner; cur = cur.rt.parent {
				cur.rt.extOut = add(cur.rt.extOut, t.src)
			}
		}
	}
}

// nestTolerances tightens every Gauss-Seidel group below a Newton group to
// nestedTolFactor of the Newton tolerances. Newton sees such a group only
// through its converged outputs, and a looser fixed point leaves noise in
// the residual that Newton cannot remove.
func (p *Problem) nestTolerances(ctx context.Context) {
	for _, g := range p.groups {
		newton, ok := g.rt.nl.(*solver.Newton)
		if !ok {
			continue
		}
		atol := newton.Options.Atol * nestedTolFactor
		rtol := newton.Options.Rtol * nestedTolFactor
		var walk func(rt *groupRuntime)
		walk = func(rt *groupRuntime) {
			for _, ch := range rt.seq {
				if ch.group == nil {
					continue
				}
				sub := ch.group.rt
				if sub.nl.Kind() == solver.KindNLGS {
					sub.nl = solver.Tightened(sub.nl, atol, rtol, nestedMinIter)
					ctxlog.FromContext(ctx).Debug("Nested Gauss-Seidel tolerance tightened.",
						"group", scope(sub.path), "newton", scope(g.rt.path), "atol", atol, "rtol", rtol)
				}
				walk(sub)
			}
		}
		walk(g.rt)
	}
}
