package casefile

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/hypermdo/internal/ctxlog"
	"github.com/specialistvlad/hypermdo/internal/fsutil"
	"github.com/specialistvlad/hypermdo/internal/solver"
)

// Extension of case files.
const Extension = ".hcl"

// Load reads every case file found under paths. Directories are walked for
// files ending in Extension.
func Load(ctx context.Context, paths ...string) (*Suite, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Case loader started.", "path_count", len(paths))

	files, err := fsutil.CollectFiles(paths, Extension)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no case files found in %v", paths)
	}
	logger.Debug("Discovered case files.", "count", len(files))

	parser := hclparse.NewParser()
	suite := &Suite{}
	for _, file := range files {
		src, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read case file %s: %w", file, err)
		}
		if err := parse(ctx, parser, file, src, suite); err != nil {
			return nil, err
		}
	}
	logger.Debug("Case loading complete.", "cases", len(suite.Cases), "recorders", len(suite.Recorders))
	return suite, nil
}

// Parse reads a single case file held in memory.
func Parse(ctx context.Context, filename string, src []byte) (*Suite, error) {
	suite := &Suite{}
	if err := parse(ctx, hclparse.NewParser(), filename, src, suite); err != nil {
		return nil, err
	}
	return suite, nil
}

func parse(ctx context.Context, parser *hclparse.Parser, filename string, src []byte, suite *Suite) error {
	hclFile, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse case file %s: %w", filename, diags)
	}

	var root fileRoot
	diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
	if diags.HasErrors() {
		return fmt.Errorf("failed to decode case file %s: %w", filename, diags)
	}

	evalCtx := evalContext()
	for _, b := range root.Cases {
		if _, dup := suite.Case(b.Name); dup {
			return fmt.Errorf("%s: case '%s' is defined more than once", filename, b.Name)
		}
		c, err := translateCase(b, evalCtx)
		if err != nil {
			return fmt.Errorf("%s: case '%s': %w", filename, b.Name, err)
		}
		c.Source = filename
		suite.Cases = append(suite.Cases, c)
		ctxlog.FromContext(ctx).Debug("Case loaded.", "case", c.Name, "model", c.Model, "file", filename)
	}
	for _, b := range root.Recorders {
		r, err := translateRecorder(b)
		if err != nil {
			return fmt.Errorf("%s: recorder '%s': %w", filename, b.Kind, err)
		}
		suite.Recorders = append(suite.Recorders, r)
	}
	return nil
}

func translateCase(b *caseBlock, evalCtx *hcl.EvalContext) (*Case, error) {
	if b.Model == "" {
		return nil, fmt.Errorf("'model' must not be empty")
	}
	c := &Case{Name: b.Name, Model: b.Model, Description: b.Description, Record: b.Record}

	if isExprDefined(b.Set) {
		set, err := assignments(b.Set, evalCtx)
		if err != nil {
			return nil, err
		}
		c.Set = set
	}

	groups := map[string]bool{}
	for _, sb := range b.Solvers {
		if groups[sb.Group] {
			return nil, fmt.Errorf("solver for group '%s' is configured twice", sb.Group)
		}
		groups[sb.Group] = true
		s, err := translateSolver(sb)
		if err != nil {
			return nil, fmt.Errorf("solver '%s': %w", sb.Group, err)
		}
		c.Solvers = append(c.Solvers, s)
	}

	switch len(b.Sweeps) {
	case 0:
	case 1:
		sw, err := translateSweep(b.Sweeps[0], evalCtx)
		if err != nil {
			return nil, fmt.Errorf("sweep '%s': %w", b.Sweeps[0].Path, err)
		}
		c.Sweep = sw
	default:
		return nil, fmt.Errorf("at most one sweep is allowed, got %d", len(b.Sweeps))
	}
	return c, nil
}

func translateSolver(b *solverBlock) (*SolverConfig, error) {
	s := &SolverConfig{
		Group: b.Group,
		Kind:  b.Kind,
		Options: solver.Options{
			Atol:    b.Atol,
			Rtol:    b.Rtol,
			MaxIter: b.MaxIter,
			Relax:   b.Relax,
		},
	}
	if _, err := solver.NewNonlinear(b.Kind, s.Options, nil); err != nil {
		return nil, err
	}
	if b.Timeout != "" {
		d, err := time.ParseDuration(b.Timeout)
		if err != nil {
			return nil, fmt.Errorf("failed to parse timeout: %w", err)
		}
		s.Options.Timeout = d
	}
	if b.Linear != nil {
		s.Linear = &LinearConfig{
			Kind: b.Linear.Kind,
			Options: solver.LinearOptions{
				Atol:    b.Linear.Atol,
				Rtol:    b.Linear.Rtol,
				MaxIter: b.Linear.MaxIter,
				Restart: b.Linear.Restart,
			},
		}
		if _, err := solver.NewLinear(s.Linear.Kind, s.Linear.Options); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func translateSweep(b *sweepBlock, evalCtx *hcl.EvalContext) (*Sweep, error) {
	if isExprDefined(b.Values) {
		if isExprDefined(b.From) || isExprDefined(b.To) {
			return nil, fmt.Errorf("use either 'values' or 'from'/'to'")
		}
		val, diags := b.Values.Value(evalCtx)
		if diags.HasErrors() {
			return nil, diags
		}
		values, err := numbers(val)
		if err != nil {
			return nil, err
		}
		return &Sweep{Path: b.Path, Values: values}, nil
	}

	if !isExprDefined(b.From) || !isExprDefined(b.To) {
		return nil, fmt.Errorf("needs 'values' or both 'from' and 'to'")
	}
	from, err := number(b.From, evalCtx)
	if err != nil {
		return nil, fmt.Errorf("from: %w", err)
	}
	to, err := number(b.To, evalCtx)
	if err != nil {
		return nil, fmt.Errorf("to: %w", err)
	}
	if b.Steps < 2 {
		return nil, fmt.Errorf("'steps' must be at least 2, got %d", b.Steps)
	}
	return &Sweep{Path: b.Path, Values: Linspace(from, to, b.Steps)}, nil
}

func translateRecorder(b *recorderBlock) (*Recorder, error) {
	r := &Recorder{Kind: b.Kind, URL: b.URL, Namespace: b.Namespace, Event: b.Event}
	switch b.Kind {
	case RecorderLog:
	case RecorderSocketIO:
		if b.URL == "" {
			return nil, fmt.Errorf("'url' is required")
		}
	default:
		return nil, fmt.Errorf("unknown recorder kind (available: %s, %s)", RecorderLog, RecorderSocketIO)
	}
	if b.Timeout != "" {
		d, err := time.ParseDuration(b.Timeout)
		if err != nil {
			return nil, fmt.Errorf("failed to parse timeout: %w", err)
		}
		r.Timeout = d
	}
	return r, nil
}
