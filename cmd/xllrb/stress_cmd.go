package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	antsv2 "github.com/panjf2000/ants/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/xllrb/observability"
	"github.com/benz9527/xllrb/xlog"
)

func newStressPool(lc fx.Lifecycle, profile *StressProfile, logger xlog.XLogger) (*antsv2.Pool, error) {
	pool, err := antsv2.NewPool(profile.Workers, antsv2.WithLogger(xlog.NewAntsXLogger(logger)))
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			pool.Release()
			return nil
		},
	})
	return pool, nil
}

// registerMetrics installs the configured exporter before any tree
// creates its instruments.
func registerMetrics(lc fx.Lifecycle, profile *StressProfile, logger xlog.XLogger, out io.Writer) error {
	var (
		shutdown observability.ShutdownCallback
		err      error
	)
	switch profile.Metrics {
	case metricsConsole:
		shutdown, err = observability.NewConsoleMetricsExporter(
			time.Minute, 5*time.Second,
			stdoutmetric.WithWriter(out),
			stdoutmetric.WithPrettyPrint(),
		)
	case metricsPrometheus:
		reg := prometheus.NewRegistry()
		if shutdown, err = observability.NewPrometheusMetricsExporter(reg); err == nil {
			registerMetricsServer(lc, profile.Listen, reg, logger)
		}
	default:
		return nil
	}
	if err != nil {
		return err
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return observability.InitAppStats(ctx, "stress")
		},
		// Exports the final collection before the report is returned.
		OnStop: func(ctx context.Context) error {
			return shutdown(ctx)
		},
	})
	return nil
}

func registerMetricsServer(lc fx.Lifecycle, addr string, reg *prometheus.Registry, logger xlog.XLogger) {
	srv := &http.Server{
		Addr:              addr,
		Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error(err, "metrics server stopped")
				}
			}()
			logger.Info("metrics served", zap.String("addr", ln.Addr().String()))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

func newStressApp(profile *StressProfile, logger xlog.XLogger, metricsOut io.Writer, runner **stressRunner) *fx.App {
	return fx.New(
		fx.WithLogger(func() fxevent.Logger {
			return xlog.NewFxXLogger(logger)
		}),
		fx.Supply(profile),
		fx.Provide(
			func() xlog.XLogger { return logger },
			func() io.Writer { return metricsOut },
			newStressPool,
			newStressRunner,
		),
		fx.Invoke(registerMetrics),
		fx.Populate(runner),
	)
}

func stress(c *cli.Context) error {
	logger, err := newAppLogger(c)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	profile, err := loadStressProfile(c.Path("profile"))
	if err != nil {
		return err
	}
	if c.IsSet("trees") {
		profile.Trees = c.Int("trees")
	}
	if c.IsSet("operations") {
		profile.Operations = c.Int("operations")
	}
	if c.IsSet("seed") {
		profile.Seed = c.Uint64("seed")
	}
	if c.IsSet("metrics") {
		profile.Metrics = c.String("metrics")
	}
	if err = profile.validate(); err != nil {
		return fmt.Errorf("invalid stress profile: %w", err)
	}
	return runStressApp(c.Context, profile, logger, os.Stdout)
}

func runStressApp(ctx context.Context, profile *StressProfile, logger xlog.XLogger, out io.Writer) (err error) {
	var runner *stressRunner
	app := newStressApp(profile, logger, out, &runner)
	if err = app.Err(); err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(ctx, app.StartTimeout())
	defer cancel()
	if err = app.Start(startCtx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), app.StopTimeout())
		defer cancel()
		err = multierr.Append(err, app.Stop(stopCtx))
	}()

	report, err := runner.Run(ctx)
	renderStressReport(out, profile, report)
	return multierr.Combine(err, report.Err())
}

func init() {
	commands = append(commands, &cli.Command{
		Name:   "stress",
		Usage:  "Run randomized operations on independent trees and validate every rule",
		Action: stress,
		Flags: []cli.Flag{
			&cli.PathFlag{
				Name:    "profile",
				Aliases: []string{"p"},
				Usage:   "yaml stress profile",
			},
			&cli.IntFlag{Name: "trees", Usage: "number of independent trees"},
			&cli.IntFlag{Name: "operations", Usage: "operations per tree"},
			&cli.Uint64Flag{Name: "seed", Usage: "random seed"},
			&cli.StringFlag{Name: "metrics", Usage: "none, console or prometheus"},
		},
	})
}
