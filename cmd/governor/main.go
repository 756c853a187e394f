// Package main implements the entry point for the governor service, an
// adaptive control plane for generation pipelines: bounded retry sessions
// around every task, throughput-driven budget degradation, and event
// broadcasting over NATS and WebSocket.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/c360/governor/adaptive"
	"github.com/c360/governor/component"
	"github.com/c360/governor/config"
	"github.com/c360/governor/metric"
	"github.com/c360/governor/natsclient"
	"github.com/c360/governor/notify"
	"github.com/c360/governor/pipeline"
	"github.com/c360/governor/service"
	"github.com/c360/governor/session"
)

// Build information constants
const (
	Version = "0.1.0"
	appName = "governor"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cliCfg := parseFlags()
	if err := validateFlags(cliCfg); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil
	}
	if cliCfg.ShowHelp {
		printDetailedHelp()
		return nil
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	cfg, err := loadConfig(cliCfg.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if cliCfg.Validate {
		slog.Info("Configuration is valid")
		return nil
	}

	slog.Info("Starting governor",
		"version", Version,
		"platform", cfg.Platform.ID,
		"environment", cfg.Platform.Environment)

	mgr, err := assemble(cfg, logger)
	if err != nil {
		return err
	}

	return runWithSignalHandling(mgr, cliCfg.ShutdownTimeout)
}

func loadConfig(path string) (*config.Config, error) {
	loader := config.NewLoader()
	if path != "" {
		loader.AddLayer(path)
	}
	return loader.Load()
}

// assemble wires every component into a lifecycle manager:
// metrics endpoint, NATS transport, budget-paced runner, throughput sampler
// driving the adaptive controller, task intake, and the event server.
func assemble(cfg *config.Config, logger *slog.Logger) (*component.Manager, error) {
	registry := metric.NewMetricsRegistry()
	frameworkMetrics := registry.CoreMetrics()

	mgr := component.NewManager(
		component.WithLogger(logger),
		component.WithMetrics(frameworkMetrics),
	)

	if cfg.Metrics.Enabled {
		server := metric.NewServer(cfg.Metrics.Port, cfg.Metrics.Path, registry)
		if err := mgr.Register("metrics", &metricsComponent{server: server}); err != nil {
			return nil, err
		}
	}

	var natsClient *natsclient.Client
	if cfg.NATS.Enabled {
		var err error
		natsClient, err = natsclient.NewClient(cfg.NATS.URL,
			natsclient.WithName(cfg.Platform.ID),
			natsclient.WithMaxReconnects(cfg.NATS.MaxReconnects),
			natsclient.WithReconnectWait(cfg.NATS.ReconnectWait.Std()),
			natsclient.WithTimeout(cfg.NATS.Timeout.Std()),
			natsclient.WithLogger(logger),
			natsclient.WithMetrics(frameworkMetrics),
		)
		if err != nil {
			return nil, fmt.Errorf("create NATS client: %w", err)
		}
		if err := mgr.Register("nats", &natsComponent{
			client:  natsClient,
			timeout: cfg.NATS.Timeout.Std(),
		}); err != nil {
			return nil, err
		}
	}

	// Notification sinks: structured log always, NATS and WebSocket when
	// enabled.
	sinks := []notify.Notifier{notify.NewLogNotifier(logger)}
	if natsClient != nil {
		natsNotifier, err := notify.NewNATSNotifier(natsClient)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, natsNotifier)
	}

	var events *service.EventServer
	if cfg.Events.Enabled {
		events = service.NewEventServer(cfg.Events.Port,
			service.WithHealthSource(mgr.Health),
			service.WithLogger(logger),
		)
		sinks = append(sinks, events)
	}
	notifier := notify.NewFanout(sinks...)

	// The runner and the adaptive loop reference each other: the controller
	// applies budget changes to the runner, and every completed task marks
	// the sampler. The apply closure resolves the runner after construction.
	var runner *pipeline.Runner[task]
	var sampler *adaptive.Sampler
	if cfg.Adaptive.Enabled {
		var err error
		sampler, err = buildAdaptive(cfg, logger, registry, notifier, func(budget int) {
			runner.SetBudget(budget)
		})
		if err != nil {
			return nil, err
		}
	}

	runner, err := buildRunner(cfg, logger, registry, notifier, natsClient, sampler)
	if err != nil {
		return nil, err
	}
	if err := mgr.Register("pipeline", &runnerComponent{runner: runner}); err != nil {
		return nil, err
	}

	if sampler != nil {
		if err := mgr.Register("sampler", &samplerComponent{sampler: sampler}); err != nil {
			return nil, err
		}
	}

	if natsClient != nil {
		if err := mgr.Register("intake", &intakeComponent{
			client: natsClient,
			runner: runner,
			logger: logger,
		}); err != nil {
			return nil, err
		}
	}

	if events != nil {
		if err := mgr.Register("events", events); err != nil {
			return nil, err
		}
	}

	return mgr, nil
}

func buildRunner(
	cfg *config.Config,
	logger *slog.Logger,
	registry *metric.MetricsRegistry,
	notifier notify.Notifier,
	natsClient *natsclient.Client,
	sampler *adaptive.Sampler,
) (*pipeline.Runner[task], error) {
	sessionMetrics, err := session.NewMetrics(registry, "pipeline")
	if err != nil {
		return nil, fmt.Errorf("register session metrics: %w", err)
	}
	runnerMetrics, err := pipeline.NewMetrics(registry, "pipeline")
	if err != nil {
		return nil, fmt.Errorf("register runner metrics: %w", err)
	}

	backoff := session.Backoff{
		InitialDelay: cfg.Session.InitialDelay.Std(),
		Multiplier:   cfg.Session.Multiplier,
		MaxDelay:     cfg.Session.MaxDelay.Std(),
		Jitter:       cfg.Session.Jitter,
	}

	opts := []pipeline.RunnerOption[task]{
		pipeline.WithQueueSize[task](cfg.Pipeline.QueueSize),
		pipeline.WithInterval[task](cfg.Pipeline.DispatchInterval.Std()),
		pipeline.WithRunnerLogger[task](logger),
		pipeline.WithRunnerMetrics[task](runnerMetrics),
		pipeline.WithSessionMetrics[task](sessionMetrics),
		pipeline.WithSessionBackoff[task](backoff),
		pipeline.WithNotifier[task](notifier),
	}
	if sampler != nil {
		opts = append(opts, pipeline.WithOnComplete[task](sampler.Mark))
	}

	return pipeline.NewRunner("pipeline", cfg.Adaptive.InitialBudget,
		newProcessor(natsClient, logger), opts...)
}

// buildAdaptive closes the control loop: sampler measures completed tasks,
// the controller degrades the budget on low throughput, the runner applies
// the reduced dispatch allowance, and every warning goes out via the
// notifier.
func buildAdaptive(
	cfg *config.Config,
	logger *slog.Logger,
	registry *metric.MetricsRegistry,
	notifier notify.Notifier,
	apply adaptive.ApplyFunc,
) (*adaptive.Sampler, error) {
	adaptiveMetrics, err := adaptive.NewMetrics(registry, "adaptive")
	if err != nil {
		return nil, fmt.Errorf("register adaptive metrics: %w", err)
	}

	controller, err := adaptive.New(cfg.Adaptive.InitialBudget, cfg.Adaptive.Threshold,
		adaptive.WithFloor(cfg.Adaptive.Floor),
		adaptive.WithDegradeFactor(cfg.Adaptive.DegradeFactor),
		adaptive.WithLogger(logger),
		adaptive.WithMetrics(adaptiveMetrics),
		adaptive.WithApply(apply),
		adaptive.WithWarn(func(fps float64, budget int) {
			warning := notify.QualityWarning{
				Component: "pipeline",
				FPS:       fps,
				Budget:    budget,
				AtFloor:   budget == cfg.Adaptive.Floor,
				Timestamp: time.Now().UTC(),
			}
			if err := notifier.NotifyQuality(context.Background(), warning); err != nil {
				logger.Debug("Quality notification failed", "error", err)
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("create adaptive controller: %w", err)
	}

	sampler, err := adaptive.NewSampler(controller, cfg.Adaptive.SampleInterval.Std(),
		adaptive.WithSamplerLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("create sampler: %w", err)
	}

	return sampler, nil
}

// runWithSignalHandling starts all components and blocks until SIGINT or
// SIGTERM, then stops them within the shutdown timeout.
func runWithSignalHandling(mgr *component.Manager, shutdownTimeout time.Duration) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := mgr.Start(ctx, shutdownTimeout); err != nil {
		return fmt.Errorf("start components: %w", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	slog.Info("Shutting down", "signal", sig.String())

	cancel()
	return mgr.Stop(shutdownTimeout)
}
