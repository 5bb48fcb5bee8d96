package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/specialistvlad/hypermdo/internal/casefile"
	"github.com/specialistvlad/hypermdo/internal/ctxlog"
	"github.com/specialistvlad/hypermdo/internal/mdoerr"
	"github.com/specialistvlad/hypermdo/internal/model"
	"github.com/specialistvlad/hypermdo/internal/recorder"
	"github.com/specialistvlad/hypermdo/internal/report"
	"github.com/specialistvlad/hypermdo/internal/study"
	"github.com/specialistvlad/hypermdo/internal/variable"
)

// Run executes every selected case and writes its report.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.ListModels {
		return a.listModels()
	}
	if a.suite == nil {
		return errors.New("no cases loaded")
	}

	cases, err := a.selectCases()
	if err != nil {
		return err
	}

	if a.config.ProgressPort > 0 {
		a.startProgressServer(ctx)
		defer a.closeProgressServer(ctx)
	}

	rec, err := a.openRecorders(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := rec.Close(); err != nil {
			a.logger.Warn("Closing recorders failed.", "error", err)
		}
	}()

	if err := os.MkdirAll(a.config.OutDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	a.logger.Info("Running cases.", "count", len(cases))
	var errs []error
	for _, c := range cases {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := a.runCase(ctx, c, rec); err != nil {
			errs = append(errs, fmt.Errorf("case '%s': %w", c.Name, err))
		}
	}

	a.logger.Debug("App.Run method finished.", "failed", len(errs))
	return errors.Join(errs...)
}

func (a *App) listModels() error {
	for _, name := range a.registry.Models() {
		m, _ := a.registry.Lookup(name)
		if _, err := fmt.Fprintf(a.outW, "%-16s %s\n", name, m.Description); err != nil {
			return err
		}
	}
	return nil
}

// selectCases applies the --only filter, keeping file order.
func (a *App) selectCases() ([]*casefile.Case, error) {
	if len(a.config.Only) == 0 {
		return a.suite.Cases, nil
	}
	var out []*casefile.Case
	for _, name := range a.config.Only {
		if _, ok := a.suite.Case(name); !ok {
			return nil, fmt.Errorf("unknown case '%s'", name)
		}
	}
	for _, c := range a.suite.Cases {
		if slices.Contains(a.config.Only, c.Name) {
			out = append(out, c)
		}
	}
	return out, nil
}

// openRecorders dials every recorder the case files configure.
func (a *App) openRecorders(ctx context.Context) (recorder.Multi, error) {
	var out recorder.Multi
	for _, r := range a.suite.Recorders {
		switch r.Kind {
		case casefile.RecorderLog:
			out = append(out, recorder.NewLog(nil))
		case casefile.RecorderSocketIO:
			s, err := recorder.DialSocketIO(ctx, recorder.SocketIOConfig{
				URL:       r.URL,
				Namespace: r.Namespace,
				Event:     r.Event,
				Timeout:   r.Timeout,
			})
			if err != nil {
				out.Close()
				return nil, fmt.Errorf("opening socketio recorder: %w", err)
			}
			out = append(out, s)
		default:
			out.Close()
			return nil, fmt.Errorf("unknown recorder kind '%s'", r.Kind)
		}
	}
	return out, nil
}

func (a *App) runCase(ctx context.Context, c *casefile.Case, rec recorder.Recorder) error {
	logger := a.logger.With("case", c.Name, "model", c.Model)
	ctx = ctxlog.WithLogger(ctx, logger)

	root, err := a.registry.Build(c.Model)
	if err != nil {
		a.summary(c, nil, err)
		return err
	}
	if err := c.Configure(root); err != nil {
		a.summary(c, nil, err)
		return err
	}
	p := model.NewProblem(root)

	plan := study.Plan{
		Name:    c.Name,
		Record:  c.Record,
		Prepare: c.Assign,
		OnPoint: a.progress.point,
	}
	if c.Sweep != nil {
		plan.Variable = c.Sweep.Path
		plan.Values = c.Sweep.Values
	}
	if len(plan.Record) == 0 {
		if plan.Record, err = defaultRecord(ctx, p); err != nil {
			a.summary(c, nil, err)
			return err
		}
	}

	total := 1
	if c.Sweep != nil {
		total = len(c.Sweep.Values)
	}
	a.progress.start(c.Name, total)
	defer a.progress.finish(c.Name)

	res, err := study.Run(ctx, p, plan, rec)
	if err != nil {
		a.summary(c, res, err)
		return err
	}
	if err := a.writeReport(c, res); err != nil {
		return err
	}
	a.summary(c, res, nil)

	if n := res.Failures(); n > 0 {
		for _, pt := range res.Points {
			if pt.Failed() {
				return fmt.Errorf("%d of %d points failed: %w", n, len(res.Points), pt.Err)
			}
		}
	}
	return nil
}

// defaultRecord lists every output and state of the model.
func defaultRecord(ctx context.Context, p *model.Problem) ([]string, error) {
	if err := p.Setup(ctx); err != nil {
		return nil, err
	}
	vars, err := p.Variables()
	if err != nil {
		return nil, err
	}
	var out []string
	for _, v := range vars {
		if v.Kind != variable.Parameter {
			out = append(out, v.Path)
		}
	}
	return out, nil
}

func (a *App) writeReport(c *casefile.Case, res *study.Result) error {
	path := filepath.Join(a.config.OutDir, c.Name+".tsv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report: %w", err)
	}
	if err := report.WriteTSV(f, res); err != nil {
		f.Close()
		return fmt.Errorf("writing report: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	a.logger.Debug("Report written.", "path", path)

	if !a.config.Plot {
		return nil
	}
	files, err := report.Plot(a.config.OutDir, res)
	if err != nil {
		return fmt.Errorf("plotting: %w", err)
	}
	a.logger.Debug("Plots written.", "files", files)
	return nil
}

// summary prints one line per case, plus the reason when it failed.
func (a *App) summary(c *casefile.Case, res *study.Result, err error) {
	var b strings.Builder
	switch {
	case err != nil && mdoerr.IsAssembly(err):
		fmt.Fprintf(&b, "FAIL %s (assembly): %v\n", c.Name, err)
	case err != nil:
		fmt.Fprintf(&b, "FAIL %s: %v\n", c.Name, err)
	case res.Failures() == 0:
		fmt.Fprintf(&b, "ok   %s: %d point(s)\n", c.Name, len(res.Points))
	default:
		fmt.Fprintf(&b, "FAIL %s: %d of %d point(s) failed\n", c.Name, res.Failures(), len(res.Points))
		for _, pt := range res.Points {
			if !pt.Failed() {
				continue
			}
			kind := "compute error"
			if mdoerr.IsNotConverged(pt.Err) {
				kind = "not converged"
			}
			fmt.Fprintf(&b, "     [%d] value=%g iterations=%d %s: %v\n", pt.Index, pt.Value, pt.Iterations, kind, pt.Err)
		}
	}
	fmt.Fprint(a.outW, b.String())
}
