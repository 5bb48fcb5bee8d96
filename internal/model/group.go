package model

import (
	"fmt"

	"github.com/specialistvlad/hypermdo/internal/component"
	"github.com/specialistvlad/hypermdo/internal/mdoerr"
	"github.com/specialistvlad/hypermdo/internal/solver"
	"github.com/specialistvlad/hypermdo/internal/units"
	"github.com/specialistvlad/hypermdo/internal/variable"
	"github.com/specialistvlad/hypermdo/internal/varpath"
)

// Group is a composite of components and subgroups with its own solvers.
type Group struct {
	children []*child
	byName   map[string]*child
	conns    []*connection
	promoted map[string]*promotion

	nlKind  string
	nlOpts  solver.Options
	linKind string
	linOpts solver.LinearOptions

	// set by Problem.Setup
	rt *groupRuntime
}

type child struct {
	name  string
	comp  component.Component
	decl  *variable.Declarations
	group *Group

	// set by Problem.Setup
	leaf *leaf
}

// varRef identifies one declared variable of one component.
type varRef struct {
	c    *child
	name string
}

func (r varRef) meta() variable.Meta {
	m, _ := r.c.decl.Get(r.name)
	return m
}

type connection struct {
	src, dst string
}

type promotion struct {
	refs []varRef
	from []string
}

// NewGroup creates an empty group that runs its children once.
func NewGroup() *Group {
	return &Group{
		byName:   make(map[string]*child),
		promoted: make(map[string]*promotion),
		nlKind:   solver.KindRunOnce,
		linKind:  solver.KindGMRES,
	}
}

// AddChild declares c and adds it under name.
func (g *Group) AddChild(name string, c component.Component) error {
	if err := g.checkName(name); err != nil {
		return err
	}
	d := variable.NewDeclarations(name)
	if err := c.Declare(d); err != nil {
		return fmt.Errorf("declaring '%s': %w", name, err)
	}
	if err := checkImplicit(name, c, d); err != nil {
		return err
	}
	ch := &child{name: name, comp: c, decl: d}
	g.children = append(g.children, ch)
	g.byName[name] = ch
	return nil
}

// AddSubgroup adds sub under name.
func (g *Group) AddSubgroup(name string, sub *Group) error {
	if sub == nil || sub == g {
		return fmt.Errorf("invalid subgroup '%s'", name)
	}
	if err := g.checkName(name); err != nil {
		return err
	}
	ch := &child{name: name, group: sub}
	g.children = append(g.children, ch)
	g.byName[name] = ch
	return nil
}

func (g *Group) checkName(name string) error {
	if !varpath.ValidName(name) {
		return fmt.Errorf("invalid child name %q", name)
	}
	if _, ok := g.byName[name]; ok {
		return &mdoerr.DuplicateNameError{Scope: g.path(), Name: name}
	}
	if _, ok := g.promoted[name]; ok {
		return &mdoerr.DuplicateNameError{Scope: g.path(), Name: name}
	}
	return nil
}

func checkImplicit(name string, c component.Component, d *variable.Declarations) error {
	_, implicit := c.(component.Implicit)
	states := d.Size(variable.State) > 0
	switch {
	case states && !implicit:
		return fmt.Errorf("'%s' declares states but does not compute residuals", name)
	case implicit && !states:
		return fmt.Errorf("'%s' computes residuals but declares no states", name)
	}
	return nil
}

// Connect drives the parameter at dst from the output or state at src.
// Both paths are relative to the group and may use promoted names. The
// connection is validated immediately and again at setup.
func (g *Group) Connect(src, dst string) error {
	_, dstRefs, err := g.resolveConnection(src, dst)
	if err != nil {
		return err
	}
	for _, prev := range g.conns {
		_, prevDst, err := g.resolveConnection(prev.src, prev.dst)
		if err != nil {
			continue
		}
		for _, a := range prevDst {
			for _, b := range dstRefs {
				if a == b {
					return &mdoerr.MultipleSourcesError{Target: dst, Existing: prev.src, Source: src}
				}
			}
		}
	}
	g.conns = append(g.conns, &connection{src: src, dst: dst})
	return nil
}

func (g *Group) resolveConnection(src, dst string) (varRef, []varRef, error) {
	srcPath, err := varpath.Parse(src)
	if err != nil {
		return varRef{}, nil, err
	}
	dstPath, err := varpath.Parse(dst)
	if err != nil {
		return varRef{}, nil, err
	}
	if srcPath.Index() != -1 || dstPath.Index() != -1 {
		return varRef{}, nil, &mdoerr.InvalidConnectionError{Source: src, Target: dst, Reason: "connections cannot address single elements"}
	}

	srcRefs, err := g.resolve(srcPath)
	if err != nil {
		return varRef{}, nil, err
	}
	dstRefs, err := g.resolve(dstPath)
	if err != nil {
		return varRef{}, nil, err
	}

	if len(srcRefs) != 1 {
		return varRef{}, nil, &mdoerr.InvalidConnectionError{Source: src, Target: dst, Reason: "source must be a single output or state"}
	}
	s := srcRefs[0].meta()
	if s.Kind == variable.Parameter {
		return varRef{}, nil, &mdoerr.InvalidConnectionError{Source: src, Target: dst, Reason: "source must be an output or state"}
	}
	for _, r := range dstRefs {
		d := r.meta()
		if d.Kind != variable.Parameter {
			return varRef{}, nil, &mdoerr.InvalidConnectionError{Source: src, Target: dst, Reason: "target must be a parameter"}
		}
		if srcRefs[0].c == r.c {
			return varRef{}, nil, &mdoerr.InvalidConnectionError{Source: src, Target: dst, Reason: "a component cannot drive its own parameter"}
		}
		if d.Size() != s.Size() {
			return varRef{}, nil, &mdoerr.InvalidConnectionError{Source: src, Target: dst,
				Reason: fmt.Sprintf("size mismatch (%d vs %d)", s.Size(), d.Size())}
		}
		ok, err := units.Compatible(s.Units, d.Units)
		if err != nil {
			return varRef{}, nil, err
		}
		if !ok {
			return varRef{}, nil, &mdoerr.UnitMismatchError{Source: src, Target: dst, SourceUnits: s.Units, TargetUnits: d.Units}
		}
	}
	return srcRefs[0], dstRefs, nil
}

// Promote exposes the child variable at childVar under the group-level name
// as. Parameters promoted to the same name merge into one shared input.
func (g *Group) Promote(childVar, as string) error {
	if !varpath.ValidName(as) {
		return fmt.Errorf("invalid promoted name %q", as)
	}
	p, err := varpath.Parse(childVar)
	if err != nil {
		return err
	}
	if p.Len() < 2 || p.Index() != -1 {
		return fmt.Errorf("promoted variable %q must be a path into a child", childVar)
	}
	refs, err := g.resolve(p)
	if err != nil {
		return err
	}
	if _, ok := g.byName[as]; ok {
		return &mdoerr.DuplicateNameError{Scope: g.path(), Name: as}
	}

	m := refs[0].meta()
	existing, ok := g.promoted[as]
	if !ok {
		g.promoted[as] = &promotion{refs: refs, from: []string{childVar}}
		return nil
	}

	first := existing.refs[0].meta()
	if first.Kind != variable.Parameter || m.Kind != variable.Parameter {
		return &mdoerr.AlreadyPromotedError{Group: g.path(), Name: as, Existing: existing.from[0], Variable: childVar}
	}
	for _, r := range existing.refs {
		if r == refs[0] {
			return &mdoerr.AlreadyPromotedError{Group: g.path(), Name: as, Existing: existing.from[0], Variable: childVar}
		}
	}
	if first.Size() != m.Size() {
		return &mdoerr.InvalidConnectionError{Source: existing.from[0], Target: childVar, Reason: "merged parameters differ in size"}
	}
	compatible, err := units.Compatible(first.Units, m.Units)
	if err != nil {
		return err
	}
	if !compatible {
		return &mdoerr.UnitMismatchError{Source: existing.from[0], Target: childVar, SourceUnits: first.Units, TargetUnits: m.Units}
	}
	existing.refs = append(existing.refs, refs...)
	existing.from = append(existing.from, childVar)
	return nil
}

// SetNonlinearSolver selects the nonlinear solver by kind (run_once, nlgs, newton).
func (g *Group) SetNonlinearSolver(kind string, opts solver.Options) error {
	if _, err := solver.NewNonlinear(kind, opts, nil); err != nil {
		return err
	}
	g.nlKind, g.nlOpts = kind, opts
	return nil
}

// SetLinearSolver selects the linear solver used by a Newton solver (gmres, direct, lgs).
func (g *Group) SetLinearSolver(kind string, opts solver.LinearOptions) error {
	if _, err := solver.NewLinear(kind, opts); err != nil {
		return err
	}
	g.linKind, g.linOpts = kind, opts
	return nil
}

// NonlinearSolver reports the configured nonlinear solver.
func (g *Group) NonlinearSolver() (string, solver.Options) { return g.nlKind, g.nlOpts }

// LinearSolver reports the configured linear solver.
func (g *Group) LinearSolver() (string, solver.LinearOptions) { return g.linKind, g.linOpts }

// Subgroup walks a dotted path of subgroup names.
func (g *Group) Subgroup(path string) (*Group, error) {
	if path == "" {
		return g, nil
	}
	p, err := varpath.Parse(path)
	if err != nil {
		return nil, err
	}
	cur := g
	for _, seg := range p.Segments {
		ch, ok := cur.byName[seg.Name]
		if !ok || ch.group == nil {
			return nil, fmt.Errorf("no subgroup '%s' in '%s'", seg.Name, scope(cur.path()))
		}
		cur = ch.group
	}
	return cur, nil
}

// resolve walks p from g and returns the variables it names. A merged
// promoted parameter resolves to all of its members.
func (g *Group) resolve(p varpath.Path) ([]varRef, error) {
	p = p.WithoutIndex()
	head := p.Head()
	if p.Len() == 1 {
		if pr, ok := g.promoted[head]; ok {
			return append([]varRef(nil), pr.refs...), nil
		}
		return nil, &mdoerr.UnknownVariableError{Scope: g.path(), Name: p.String()}
	}
	ch, ok := g.byName[head]
	if !ok {
		return nil, &mdoerr.UnknownVariableError{Scope: g.path(), Name: p.String()}
	}
	if ch.group != nil {
		refs, err := ch.group.resolve(p.Tail())
		if err != nil {
			return nil, &mdoerr.UnknownVariableError{Scope: g.path(), Name: p.String()}
		}
		return refs, nil
	}
	if p.Len() != 2 || !ch.decl.Has(p.Segments[1].Name) {
		return nil, &mdoerr.UnknownVariableError{Scope: g.path(), Name: p.String()}
	}
	return []varRef{{c: ch, name: p.Segments[1].Name}}, nil
}

func (g *Group) path() string {
	if g.rt == nil {
		return ""
	}
	return g.rt.path
}

func scope(s string) string {
	if s == "" {
		return "<root>"
	}
	return s
}
