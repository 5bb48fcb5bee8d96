package casefile

import (
	"time"

	"github.com/specialistvlad/hypermdo/internal/solver"
)

// Suite is everything loaded from a set of case files.
type Suite struct {
	Cases     []*Case
	Recorders []*Recorder
}

// Case is one configured run of a registered model.
type Case struct {
	Name        string
	Model       string
	Description string
	// Set is sorted by path.
	Set     []Assignment
	Solvers []*SolverConfig
	Sweep   *Sweep
	Record  []string
	// Source is the file the case was read from.
	Source string
}

// Assignment is an input value written before each run.
type Assignment struct {
	Path   string
	Values []float64
}

// SolverConfig overrides the solvers of the group at Group ("" is the root).
type SolverConfig struct {
	Group   string
	Kind    string
	Options solver.Options
	Linear  *LinearConfig
}

// LinearConfig overrides a group's linear solver.
type LinearConfig struct {
	Kind    string
	Options solver.LinearOptions
}

// Sweep runs a case once per value of the variable at Path.
type Sweep struct {
	Path   string
	Values []float64
}

// Recorder configures a sink every case streams to.
type Recorder struct {
	Kind      string
	URL       string
	Namespace string
	Event     string
	Timeout   time.Duration
}

// Recorder kinds.
const (
	RecorderLog      = "log"
	RecorderSocketIO = "socketio"
)

// Case returns the case called name.
func (s *Suite) Case(name string) (*Case, bool) {
	for _, c := range s.Cases {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}
