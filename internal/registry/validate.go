package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/hypermdo/internal/ctxlog"
	"github.com/specialistvlad/hypermdo/internal/model"
)

// ValidateRegistry builds and sets up every registered model, collecting
// every failure instead of stopping at the first.
func (r *Registry) ValidateRegistry(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, name := range r.Models() {
		root, err := r.Build(name)
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		p := model.NewProblem(root)
		p.Name = name
		if err := p.Setup(ctxlog.Discard(ctx)); err != nil {
			errs = append(errs, fmt.Sprintf("model '%s': %v", name, err))
			continue
		}
		logger.Debug("Model validated.", "model", name)
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}
