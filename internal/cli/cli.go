package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/hypermdo/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config, a
// boolean indicating if the program should exit cleanly, or an ExitError.
// Settings not given as flags are resolved from the environment and the
// optional settings file.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("hypermdo", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
hypermdo - Coupled pod-and-tube design analysis.

Usage:
  hypermdo [options] [CASE_PATH]

Arguments:
  CASE_PATH
    Path to a single .hcl case file or a directory containing .hcl files.

Environment:
  HYPERMDO_LOG_LEVEL, HYPERMDO_LOG_FORMAT, HYPERMDO_OUT,
  HYPERMDO_PROGRESS_PORT, HYPERMDO_PLOT override defaults when the flag is not given.

Options:
`)
		flagSet.PrintDefaults()
	}

	caseFlag := flagSet.String("case", "", "Path to the case file or directory.")
	cFlag := flagSet.String("c", "", "Path to the case file or directory (shorthand).")
	outFlag := flagSet.String(app.KeyOut, ".", "Directory for the result tables and plots.")
	oFlag := flagSet.String("o", "", "Directory for the results (shorthand).")
	configFlag := flagSet.String("config", "", "Optional settings file (yaml, json or toml).")
	logFormatFlag := flagSet.String(app.KeyLogFormat, "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String(app.KeyLogLevel, "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	progressPortFlag := flagSet.Int(app.KeyProgressPort, 0, "Port for the HTTP health and progress server. 0 is disabled.")
	plotFlag := flagSet.Bool(app.KeyPlot, false, "Write a PNG plot per recorded variable.")
	onlyFlag := flagSet.String("only", "", "Comma-separated names of the cases to run.")
	modelsFlag := flagSet.Bool("models", false, "List the registered models and exit.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	explicit := make(map[string]bool)
	flagSet.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "o":
			explicit[app.KeyOut] = true
		default:
			explicit[f.Name] = true
		}
	})

	path := ""
	if *caseFlag != "" {
		path = *caseFlag
	} else if *cFlag != "" {
		path = *cFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Case path determined.", "path", path)

	if path == "" && !*modelsFlag {
		slog.Debug("No case path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	outDir := *outFlag
	if *oFlag != "" {
		outDir = *oFlag
	}

	var only []string
	for _, name := range strings.Split(*onlyFlag, ",") {
		if name = strings.TrimSpace(name); name != "" {
			only = append(only, name)
		}
	}

	settings, err := app.ResolveSettings(app.Config{
		CasePath:     path,
		OutDir:       outDir,
		ConfigFile:   *configFlag,
		LogFormat:    strings.ToLower(*logFormatFlag),
		LogLevel:     strings.ToLower(*logLevelFlag),
		ProgressPort: *progressPortFlag,
		Plot:         *plotFlag,
		Only:         only,
		ListModels:   *modelsFlag,
	}, explicit)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	config, err := app.NewConfig(settings)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
