package casefile

import (
	"fmt"

	"github.com/specialistvlad/hypermdo/internal/model"
)

// Configure applies the case's solver overrides to the model tree.
func (c *Case) Configure(root *model.Group) error {
	for _, s := range c.Solvers {
		g, err := root.Subgroup(s.Group)
		if err != nil {
			return fmt.Errorf("case '%s': %w", c.Name, err)
		}
		if err := g.SetNonlinearSolver(s.Kind, s.Options); err != nil {
			return fmt.Errorf("case '%s', group '%s': %w", c.Name, s.Group, err)
		}
		if s.Linear != nil {
			if err := g.SetLinearSolver(s.Linear.Kind, s.Linear.Options); err != nil {
				return fmt.Errorf("case '%s', group '%s': %w", c.Name, s.Group, err)
			}
		}
	}
	return nil
}

// Assign writes the case's input values into a set-up problem.
func (c *Case) Assign(p *model.Problem) error {
	for _, a := range c.Set {
		if err := p.Set(a.Path, a.Values...); err != nil {
			return fmt.Errorf("case '%s': %w", c.Name, err)
		}
	}
	return nil
}
