// Package app implements the application layer for kcache.
package app

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"go.trai.ch/kcache/internal/adapters/compiler"  //nolint:depguard // Wired in app layer
	"go.trai.ch/kcache/internal/adapters/matcher"   //nolint:depguard // Wired in app layer
	"go.trai.ch/kcache/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/kcache/internal/core/domain"
	"go.trai.ch/kcache/internal/core/ports"
	"go.trai.ch/kcache/internal/engine/pool"
	"go.trai.ch/kcache/internal/engine/worker"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader   ports.ConfigLoader
	workloadLoader ports.WorkloadLoader
	executor       ports.Executor
	tracer         ports.Tracer
	logger         ports.Logger
	out            io.Writer
}

// New creates a new App instance. The tracer receives compile spans when
// timings are disabled; a nil tracer drops them.
func New(
	configLoader ports.ConfigLoader,
	workloadLoader ports.WorkloadLoader,
	executor ports.Executor,
	tracer ports.Tracer,
	logger ports.Logger,
) *App {
	if tracer == nil {
		tracer = telemetry.NewNoOpTracer()
	}
	return &App{
		configLoader:   configLoader,
		workloadLoader: workloadLoader,
		executor:       executor,
		tracer:         tracer,
		logger:         logger,
		out:            os.Stdout,
	}
}

// WithOutput sets the writer the replay report is rendered to.
func (a *App) WithOutput(w io.Writer) *App {
	a.out = w
	return a
}

// ReplayOptions holds the options for a replay. A nil override keeps the
// value from the configuration file.
type ReplayOptions struct {
	ConfigPath string
	TracePath  string

	Capacity        *int
	Workers         *int
	DuplicatePolicy *string
	Routing         *string
	CompileLatency  *time.Duration
	JSONLogs        bool
	// NoTimings sends compile spans to the App tracer instead of the
	// per-replay timing collector.
	NoTimings bool
}

// Replay runs a recorded workload trace through a fresh worker pool and
// renders the resulting cache statistics.
func (a *App) Replay(ctx context.Context, opts ReplayOptions) (*Report, error) {
	// 1. Resolve the configuration
	cfg, err := a.configLoader.Load(opts.ConfigPath)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}
	cfg, err = applyOverrides(cfg, opts)
	if err != nil {
		return nil, err
	}
	if j, ok := a.logger.(interface{ SetJSON(bool) }); ok {
		j.SetJSON(cfg.LogFormat == domain.LogJSON)
	}

	// 2. Load the workload
	w, err := a.workloadLoader.Load(opts.TracePath)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load trace")
	}
	partitioner, err := matcher.FromWorkload(w)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load trace")
	}

	// 3. Build the pool
	tracer := a.tracer
	var collector *telemetry.Collector
	if !opts.NoTimings {
		collector = telemetry.NewCollector(worker.SpanCompile)
		tp := telemetry.NewProvider(collector)
		defer func() {
			_ = tp.Shutdown(context.WithoutCancel(ctx))
		}()
		tracer = telemetry.NewOTelTracerFromProvider(tp, telemetry.InstrumentationName)
	}
	comp := compiler.New(cfg.CompileLatency)

	p, err := pool.New(cfg.Workers, func(id int) (*worker.Worker, error) {
		return worker.New(id, cfg, partitioner, comp, a.executor, tracer, a.logger)
	}, pool.NewRouter(cfg.Routing), a.logger)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to start workers")
	}
	defer p.Close()

	// 4. Replay
	start := time.Now()
	runErr := p.Run(ctx, w.Calls)

	report := &Report{
		Config:   cfg,
		Calls:    len(w.Calls),
		Elapsed:  time.Since(start),
		Workers:  p.Stats(),
		Total:    p.Total(),
		Patterns: len(w.Patterns),
	}
	if collector != nil {
		report.Timings = collector.Timings()
	}
	if err := report.Render(a.out); err != nil {
		return report, zerr.Wrap(err, "failed to render report")
	}

	if runErr != nil {
		return report, errors.Join(domain.ErrReplayFailed, runErr)
	}
	return report, nil
}

func applyOverrides(cfg domain.Config, opts ReplayOptions) (domain.Config, error) {
	if opts.Capacity != nil {
		cfg.Capacity = *opts.Capacity
	}
	if opts.Workers != nil {
		cfg.Workers = *opts.Workers
	}
	if opts.DuplicatePolicy != nil {
		policy, err := domain.ParseDuplicatePolicy(*opts.DuplicatePolicy)
		if err != nil {
			return domain.Config{}, zerr.With(zerr.Wrap(err, "invalid flag"), "policy", *opts.DuplicatePolicy)
		}
		cfg.DuplicatePolicy = policy
	}
	if opts.Routing != nil {
		routing, err := domain.ParseRouting(*opts.Routing)
		if err != nil {
			return domain.Config{}, zerr.With(zerr.Wrap(err, "invalid flag"), "routing", *opts.Routing)
		}
		cfg.Routing = routing
	}
	if opts.CompileLatency != nil {
		cfg.CompileLatency = *opts.CompileLatency
	}
	if opts.JSONLogs {
		cfg.LogFormat = domain.LogJSON
	}
	if err := cfg.Validate(); err != nil {
		return domain.Config{}, err
	}
	return cfg, nil
}
