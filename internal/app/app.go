package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vk/pipegen/internal/compiler"
	"github.com/vk/pipegen/internal/config"
	"github.com/vk/pipegen/internal/ctxlog"
	"github.com/vk/pipegen/internal/diag"
	"github.com/vk/pipegen/internal/hclsource"
	"github.com/vk/pipegen/internal/yamlsource"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	ctx        context.Context
	config     *Config
	mode       diag.Mode
	sources    *config.Sources
	registry   *prometheus.Registry
	metrics    *compiler.Metrics
	rebuilds   *prometheus.CounterVec
	httpServer *http.Server
}

// NewApp is the constructor for the main application. Results are written
// to outW, logs to logW. Without loaders the HCL and YAML front-ends are
// used.
func NewApp(outW, logW io.Writer, cfg *Config, loaders ...config.Loader) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	// The config was validated, so the mode always parses.
	mode, _ := diag.ParseMode(cfg.Mode)

	if len(loaders) == 0 {
		loaders = []config.Loader{hclsource.NewLoader(), yamlsource.NewLoader()}
	}

	reg := prometheus.NewRegistry()
	a := &App{
		outW:     outW,
		logger:   logger,
		ctx:      ctx,
		config:   cfg,
		mode:     mode,
		sources:  config.NewSources(loaders...),
		registry: reg,
		metrics:  compiler.NewMetrics(reg),
		rebuilds: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pipegen",
				Subsystem: "watch",
				Name:      "rebuilds_total",
				Help:      "Total number of watch-triggered rebuilds by result",
			},
			[]string{"result"},
		),
	}
	logger.Debug("Application initialized.", "extensions", a.sources.Extensions(), "mode", mode.String())
	return a
}

// Registry returns the application's metrics registry. This is primarily for testing.
func (a *App) Registry() *prometheus.Registry {
	return a.registry
}

// withLogger attaches the app logger to a caller context.
func (a *App) withLogger(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}
