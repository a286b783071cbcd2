// Package main is the entry point for the mend CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindlemire/graft"
	"go.trai.ch/mend/cmd/mend/commands"
	"go.trai.ch/mend/internal/adapters/config"
	"go.trai.ch/mend/internal/app"
	"go.trai.ch/mend/internal/core/domain"
	_ "go.trai.ch/mend/internal/wiring"
)

// Exit codes. A ceiling exit is distinguishable from an operational failure
// so callers can decide whether to rerun with --resume.
const (
	exitOK      = 0
	exitFailure = 1
	exitCeiling = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	// 0. Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// 1. Initialize application components
	components, _, err := graft.ExecuteFor[*app.Components](ctx)
	if err != nil {
		// Logger is not available yet if initialization failed
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return exitFailure
	}

	// 2. Interface - CLI
	cli := commands.New(components.App)
	cli.SetConfigHook(func(path string) {
		if loader, ok := components.ConfigLoader.(*config.FileConfigLoader); ok {
			loader.Filename = path
		}
	})

	// 3. Execution
	if err := cli.Execute(ctx); err != nil {
		if errors.Is(err, domain.ErrCeilingReached) {
			components.Logger.Warn(err.Error())
			return exitCeiling
		}
		// zerr prints a pretty error report with stack trace and metadata when using %+v
		_, _ = fmt.Fprintf(os.Stderr, "%+v\n", err)
		return exitFailure
	}
	return exitOK
}
