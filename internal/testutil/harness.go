package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/hypermdo/internal/app"
	"github.com/specialistvlad/hypermdo/internal/registry"
	"github.com/stretchr/testify/require"
)

// HarnessResult holds the outcomes of an application run.
type HarnessResult struct {
	Output string
	Err    error
	App    *app.App
	// OutDir is where the run wrote its reports.
	OutDir string
}

// RunApp writes files (relative path -> content) into a temporary case
// directory and runs the application over it with a background context.
// configure, when not nil, adjusts the configuration before the app is built.
// Without modules the app uses the built-in physics modules.
func RunApp(t *testing.T, files map[string]string, configure func(*app.Config), modules ...registry.Module) *HarnessResult {
	t.Helper()
	return RunAppWithContext(context.Background(), t, files, configure, modules...)
}

// RunAppWithContext is RunApp with a caller-provided context.
func RunAppWithContext(ctx context.Context, t *testing.T, files map[string]string, configure func(*app.Config), modules ...registry.Module) *HarnessResult {
	t.Helper()

	tmpDir := t.TempDir()
	caseDir := filepath.Join(tmpDir, "cases")
	outDir := filepath.Join(tmpDir, "out")
	require.NoError(t, os.Mkdir(caseDir, 0o755))

	for name, content := range files {
		path := filepath.Join(caseDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	cfg := &app.Config{
		CasePath:  caseDir,
		OutDir:    outDir,
		LogLevel:  "debug",
		LogFormat: "text",
	}
	if configure != nil {
		configure(cfg)
	}

	out := &SafeBuffer{}
	a, err := app.NewApp(ctx, out, cfg, modules...)
	if err == nil {
		err = a.Run(ctx)
	}

	if os.Getenv("HYPERMDO_TEST_LOGS") == "true" {
		t.Logf("--- Full Output for %s ---\n%s", t.Name(), out.String())
	}

	return &HarnessResult{
		Output: out.String(),
		Err:    err,
		App:    a,
		OutDir: outDir,
	}
}
