package recorder

import (
	"context"
	"sync"

	"github.com/specialistvlad/hypermdo/internal/solver"
)

// Memory keeps everything it receives. It is safe for concurrent use.
type Memory struct {
	mu         sync.Mutex
	starts     []Info
	iterations []solver.Iteration
	cases      []Case
	closed     bool
}

// NewMemory returns an empty in-memory recorder.
func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Start(_ context.Context, info Info) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.starts = append(m.starts, info)
	return nil
}

func (m *Memory) Iteration(_ context.Context, it solver.Iteration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.iterations = append(m.iterations, it)
	return nil
}

func (m *Memory) Finish(_ context.Context, c Case) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cases = append(m.cases, c)
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Starts returns a copy of the recorded run starts.
func (m *Memory) Starts() []Info {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Info(nil), m.starts...)
}

// Iterations returns a copy of the recorded iterations.
func (m *Memory) Iterations() []solver.Iteration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]solver.Iteration(nil), m.iterations...)
}

// IterationsOf returns the iterations reported by the system at path.
func (m *Memory) IterationsOf(path string) []solver.Iteration {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []solver.Iteration
	for _, it := range m.iterations {
		if it.System == path {
			out = append(out, it)
		}
	}
	return out
}

// Cases returns a copy of the finished cases.
func (m *Memory) Cases() []Case {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Case(nil), m.cases...)
}

// Last returns the most recent finished case.
func (m *Memory) Last() (Case, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.cases) == 0 {
		return Case{}, false
	}
	return m.cases[len(m.cases)-1], true
}

// Closed reports whether Close was called.
func (m *Memory) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
