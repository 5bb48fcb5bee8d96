package model

import (
	"github.com/specialistvlad/hypermdo/internal/component"
	"github.com/specialistvlad/hypermdo/internal/solver"
	"github.com/specialistvlad/hypermdo/internal/variable"
)

// slot is the location of one variable in the problem's flat store. The
// residual of a state lives at the same offset of the residual array.
type slot struct {
	off, size int
	abs       string
	meta      variable.Meta
	leaf      *leaf
}

// leaf is a component placed in the tree.
type leaf struct {
	abs    string
	ch     *child
	parent *Group
	slots  map[string]*slot

	in, states, out, res component.Values

	// owner is the Newton group solving this leaf's states, nil without states.
	owner *Group
}

// transfer copies a source value into a driven parameter, converting units.
type transfer struct {
	src, dst      *slot
	scale, offset float64
	// tear is the index into the owning Newton group's tear list, or -1.
	tear int
}

// tearVar is a guessed source value that breaks a cycle inside a Newton group.
type tearVar struct {
	src   *slot
	guess []float64
}

type groupRuntime struct {
	g      *Group
	p      *Problem
	path   string
	parent *Group
	self   *child

	nl  solver.Nonlinear
	seq []*child
	// into holds, per child, the transfers applied right before it runs.
	into      map[*child][]*transfer
	transfers []*transfer
	carried   []*transfer

	owned []*slot
	tears []*tearVar

	// extIn and extOut are the variables inside this group that connect to
	// the world outside it. Iterative subgroups are linearized through them.
	extIn, extOut []*slot
}

func (l *leaf) evaluate() error {
	res := l.res
	if len(res) == 0 {
		res = nil
	}
	return component.Evaluate(l.abs, l.ch.comp, l.in, l.states, l.out, res)
}

// within reports whether the leaf sits somewhere below g.
func (l *leaf) within(g *Group) bool {
	for cur := l.parent; cur != nil; cur = cur.rt.parent {
		if cur == g {
			return true
		}
	}
	return false
}

// childOf returns the direct child of g that contains l.
func childOf(g *Group, l *leaf) *child {
	if l.parent == g {
		return l.ch
	}
	for cur := l.parent; cur != nil; cur = cur.rt.parent {
		if cur.rt.parent == g {
			return cur.rt.self
		}
	}
	return nil
}

// ancestors lists the groups from the root down to the leaf's parent.
func (l *leaf) ancestors() []*Group {
	var out []*Group
	for cur := l.parent; cur != nil; cur = cur.rt.parent {
		out = append([]*Group{cur}, out...)
	}
	return out
}

func lowestCommon(a, b *leaf) *Group {
	as, bs := a.ancestors(), b.ancestors()
	var lca *Group
	for i := 0; i < len(as) && i < len(bs) && as[i] == bs[i]; i++ {
		lca = as[i]
	}
	return lca
}
