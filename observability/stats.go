package observability

import (
	"context"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/samber/lo"
	"github.com/shirou/gopsutil/v3/process"
	otelruntime "go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	once  sync.Once
	stats *appStats
)

type appStats struct {
	goroutines metric.Int64ObservableUpDownCounter
	processes  metric.Int64ObservableUpDownCounter
	rss        metric.Int64ObservableGauge
}

func appStatsName(name string) string {
	builder := &strings.Builder{}
	builder.WriteString("xllrb/app/")
	if len(strings.TrimSpace(name)) > 0 {
		builder.WriteString(name)
	} else {
		builder.WriteString("default")
	}
	return builder.String()
}

// InitAppStats registers the process level instruments on the global
// meter provider once. The caller owns the provider and its shutdown.
func InitAppStats(ctx context.Context, name string) error {
	var err error
	once.Do(func() {
		var proc *process.Process
		if proc, err = process.NewProcessWithContext(ctx, int32(os.Getpid())); err != nil {
			return
		}
		meter := otel.Meter(
			appStatsName(name),
			metric.WithInstrumentationVersion(otelruntime.Version()),
		)
		stats = &appStats{
			goroutines: lo.Must[metric.Int64ObservableUpDownCounter](meter.Int64ObservableUpDownCounter(
				"app.core.goroutines",
				metric.WithDescription(`The application goroutines' info.`),
				metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
					ob.Observe(int64(runtime.NumGoroutine()))
					return nil
				}),
			)),
			processes: lo.Must[metric.Int64ObservableUpDownCounter](meter.Int64ObservableUpDownCounter(
				"app.core.processes",
				metric.WithDescription(`The application processes' info.`),
				metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
					ob.Observe(int64(runtime.GOMAXPROCS(0)))
					return nil
				}),
			)),
			rss: lo.Must[metric.Int64ObservableGauge](meter.Int64ObservableGauge(
				"app.process.rss",
				metric.WithUnit("By"),
				metric.WithDescription(`The resident set size of the application process.`),
				metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
					mem, err := proc.MemoryInfoWithContext(ctx)
					if err != nil {
						return err
					}
					ob.Observe(int64(mem.RSS))
					return nil
				}),
			)),
		}
		err = otelruntime.Start()
	})
	return err
}
