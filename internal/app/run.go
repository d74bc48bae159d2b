package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/pipegen/internal/ctxlog"
	"github.com/vk/pipegen/internal/engine"
	"github.com/vk/pipegen/pkg/pipeline/pipelinetest"
)

// Run compiles every input and executes each plan against the recording
// runtime: build, start, then close. The recorded calls are written to the
// output writer, one block per schema.
func (a *App) Run(ctx context.Context) error {
	ctx = a.withLogger(ctx)
	logger := ctxlog.FromContext(ctx)
	logger.Debug("App.Run method started.")

	compiled, err := a.Compile(ctx)
	if err != nil {
		return err
	}

	for _, p := range allPlans(compiled) {
		rec := pipelinetest.New()
		logger.Info("🚀 Building pipeline.", "schema", p.Schema, "stages", len(p.Stages))

		h, err := engine.Execute(ctx, p, rec)
		if err != nil {
			return fmt.Errorf("failed to build pipeline: %w", err)
		}
		startErr := h.Start()
		closeErr := h.Close()

		fmt.Fprintf(a.outW, "# %s\n", p.Schema)
		for _, line := range rec.Lines() {
			fmt.Fprintln(a.outW, line)
		}
		if err := errors.Join(startErr, closeErr); err != nil {
			return fmt.Errorf("pipeline %s: %w", p.Schema, err)
		}
		logger.Info("🏁 Pipeline stopped.", "schema", p.Schema, "calls", len(rec.Events()))
	}

	logger.Debug("App.Run method finished.")
	return nil
}
