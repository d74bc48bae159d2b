package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vk/pipegen/internal/app"
	"github.com/vk/pipegen/internal/cli"
)

// main is the entrypoint for the pipegen application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Stdout, os.Stderr, os.Args[1:])
	stop()

	// The real main function handles errors and exit codes.
	if exitErr := cli.ExitErrorFor(err); exitErr != nil {
		fmt.Fprintln(os.Stderr, exitErr.Message)
		os.Exit(exitErr.Code)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(ctx context.Context, outW, logW io.Writer, args []string) error {
	inv, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	a := app.NewApp(outW, logW, inv.Config)

	switch inv.Command {
	case cli.CommandGenerate:
		return a.Generate(ctx)
	case cli.CommandPlan:
		return a.Plan(ctx)
	case cli.CommandRun:
		return a.Run(ctx)
	case cli.CommandWatch:
		return a.Watch(ctx)
	default:
		return &cli.ExitError{Code: cli.ExitUsage, Message: fmt.Sprintf("unknown command %q", inv.Command)}
	}
}
