package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/specialistvlad/hypermdo/internal/app"
	"github.com/specialistvlad/hypermdo/internal/cli"
	"github.com/specialistvlad/hypermdo/internal/registry"
)

func main() {
	// Startup messages before NewApp go through this logger; the run's own
	// logger is built from the parsed flags.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	err := run(os.Stdout, os.Args[1:])
	if err == nil {
		return
	}
	code := 1
	if exitErr := (*cli.ExitError)(nil); errors.As(err, &exitErr) {
		code = exitErr.Code
		err = errors.New(exitErr.Message)
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(code)
}

// run parses args, builds the app and runs every selected case. Without
// modules the built-in physics modules are registered.
func run(outW io.Writer, args []string, modules ...registry.Module) (err error) {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	// Model registration panics on programming errors such as duplicate
	// names; report them as a clean startup failure.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application startup panicked: %v", r)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mdoApp, err := app.NewApp(ctx, outW, appConfig, modules...)
	if err != nil {
		return err
	}
	return mdoApp.Run(ctx)
}
