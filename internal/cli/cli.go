package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vk/pipegen/internal/app"
	"github.com/vk/pipegen/internal/diag"
)

// Exit codes.
const (
	ExitDiagnostics = 1
	ExitUsage       = 2
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

// Command names a workflow.
type Command string

const (
	CommandGenerate Command = "generate"
	CommandPlan     Command = "plan"
	CommandRun      Command = "run"
	CommandWatch    Command = "watch"
)

// Invocation is a parsed command line.
type Invocation struct {
	Command Command
	Config  *app.Config
}

// Parse processes command-line arguments. It returns the invocation, a
// boolean indicating if the program should exit cleanly (help was shown),
// or an ExitError.
func Parse(args []string, output io.Writer) (*Invocation, bool, error) {
	slog.Debug("CLI parser started.")

	var inv *Invocation
	var cfgErr error
	root := newRootCommand(func(cmd Command, cfg app.Config) {
		validated, err := app.NewConfig(cfg)
		if err != nil {
			cfgErr = err
			return
		}
		inv = &Invocation{Command: cmd, Config: validated}
	})
	// cobra falls back to os.Args on nil.
	if args == nil {
		args = []string{}
	}
	root.SetArgs(args)
	root.SetOut(output)
	root.SetErr(output)

	if err := root.Execute(); err != nil {
		return nil, false, &ExitError{Code: ExitUsage, Message: err.Error()}
	}
	if cfgErr != nil {
		return nil, false, &ExitError{Code: ExitUsage, Message: cfgErr.Error()}
	}
	if inv == nil {
		slog.Debug("No command selected, usage was printed.")
		return nil, true, nil
	}

	slog.Debug("CLI parser finished successfully.", "command", string(inv.Command))
	return inv, false, nil
}

func newRootCommand(selected func(Command, app.Config)) *cobra.Command {
	cfg := app.DefaultConfig()

	root := &cobra.Command{
		Use:   "pipegen",
		Short: "Compile declarative pipeline schemas into Go construction code",
		Long: `pipegen compiles pipeline schemas (HCL or YAML) into a deterministic
construction plan and Go code that builds the pipeline against the
pkg/pipeline runtime.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg.Mode = strings.ToLower(cfg.Mode)
			cfg.LogLevel = strings.ToLower(cfg.LogLevel)
			cfg.LogFormat = strings.ToLower(cfg.LogFormat)
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfg.Mode, "mode", cfg.Mode, "Diagnostics mode: 'strict' fails on dropped items, 'permissive' warns.")
	pf.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	pf.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log output format. Options: 'text' or 'json'.")
	pf.IntVarP(&cfg.Parallelism, "parallelism", "j", cfg.Parallelism, "Number of input files compiled concurrently.")

	run := func(c Command) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg.Inputs = args
			selected(c, cfg)
			return nil
		}
	}

	generate := &cobra.Command{
		Use:   "generate [flags] PATH...",
		Short: "Generate Go code (or plan YAML) for every schema",
		Args:  cobra.MinimumNArgs(1),
		RunE:  run(CommandGenerate),
	}
	outputFlags(generate, &cfg)

	plan := &cobra.Command{
		Use:   "plan PATH...",
		Short: "Print the construction plan and fingerprint of every schema",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Format = app.FormatYAML
			return run(CommandPlan)(cmd, args)
		},
	}

	dryRun := &cobra.Command{
		Use:   "run PATH...",
		Short: "Build, start and stop every schema against a recording runtime",
		Args:  cobra.MinimumNArgs(1),
		RunE:  run(CommandRun),
	}

	watch := &cobra.Command{
		Use:   "watch [flags] PATH...",
		Short: "Regenerate outputs whenever an input changes",
		Args:  cobra.MinimumNArgs(1),
		RunE:  run(CommandWatch),
	}
	outputFlags(watch, &cfg)
	watch.Flags().StringVar(&cfg.MetricsAddr, "metrics-addr", "", "Serve /healthz and /metrics on this host:port. Empty disables it.")
	watch.Flags().DurationVar(&cfg.Debounce, "debounce", cfg.Debounce, "Quiet period after a change before regenerating.")

	root.AddCommand(generate, plan, dryRun, watch)
	return root
}

func outputFlags(cmd *cobra.Command, cfg *app.Config) {
	f := cmd.Flags()
	f.StringVarP(&cfg.OutputDir, "out", "o", "", "Output directory, one file per input. Empty writes to stdout.")
	f.StringVarP(&cfg.Package, "package", "p", cfg.Package, "Package name of generated Go files.")
	f.StringVar(&cfg.Format, "format", cfg.Format, "Output format. Options: 'go' or 'yaml'.")
}

// ExitErrorFor maps an application error to an ExitError. Compile
// diagnostics and every other failure exit with ExitDiagnostics; the
// message lists every diagnostic.
func ExitErrorFor(err error) *ExitError {
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	list, ok := diag.AsList(err)
	if !ok {
		return &ExitError{Code: ExitDiagnostics, Message: err.Error()}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "compilation failed: %v", err)
	if len(list) > 1 {
		for _, d := range list {
			fmt.Fprintf(&b, "\n  %s: %s", d.Severity, d)
		}
	}
	return &ExitError{Code: ExitDiagnostics, Message: b.String()}
}
