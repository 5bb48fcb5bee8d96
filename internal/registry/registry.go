package registry

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/specialistvlad/hypermdo/internal/model"
)

// Module is the interface that all physics modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Builder assembles a fresh model tree.
type Builder func() (*model.Group, error)

// RegisteredModel is a named model builder.
type RegisteredModel struct {
	Description string
	Build       Builder
}

// Registry holds the registered models of a single application instance.
type Registry struct {
	models map[string]*RegisteredModel
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{models: make(map[string]*RegisteredModel)}
}

// RegisterModel registers a model builder under name.
func (r *Registry) RegisterModel(name string, m *RegisteredModel) {
	if _, exists := r.models[name]; exists {
		panic(fmt.Sprintf("model with name '%s' already registered", name))
	}
	if m == nil || m.Build == nil {
		panic(fmt.Sprintf("model '%s' has no builder", name))
	}
	slog.Debug("Registering model.", "name", name)
	r.models[name] = m
}

// Models lists the registered model names, sorted.
func (r *Registry) Models() []string {
	out := make([]string, 0, len(r.models))
	for name := range r.models {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Lookup returns the registration for name.
func (r *Registry) Lookup(name string) (*RegisteredModel, bool) {
	m, ok := r.models[name]
	return m, ok
}

// Build assembles a fresh tree of the model called name.
func (r *Registry) Build(name string) (*model.Group, error) {
	m, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("unknown model '%s' (available: %v)", name, r.Models())
	}
	root, err := m.Build()
	if err != nil {
		return nil, fmt.Errorf("building model '%s': %w", name, err)
	}
	return root, nil
}
