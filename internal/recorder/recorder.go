package recorder

import (
	"context"
	"time"

	"github.com/specialistvlad/hypermdo/internal/solver"
)

// Recorder observes problem runs.
type Recorder interface {
	Start(ctx context.Context, info Info) error
	Iteration(ctx context.Context, it solver.Iteration) error
	Finish(ctx context.Context, c Case) error
	Close() error
}

// Info describes a run about to start.
type Info struct {
	Case      string    `json:"case"`
	Started   time.Time `json:"started"`
	Variables []string  `json:"variables"`
}

// Case is the outcome of one run.
type Case struct {
	Name       string               `json:"name"`
	Status     string               `json:"status"`
	Iterations int                  `json:"iterations"`
	Duration   time.Duration        `json:"duration"`
	Values     map[string][]float64 `json:"values,omitempty"`
	Error      string               `json:"error,omitempty"`
}

// Failed reports whether the run ended with an error.
func (c Case) Failed() bool { return c.Error != "" }
