package observability

// https://opentelemetry.io/docs/languages/go/exporters/

import (
	"context"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/sdk/metric"
)

type ShutdownCallback func(ctx context.Context) error

// NewConsoleMetricsExporter serves for test/dev environment.
// The final collection is exported by the returned callback.
func NewConsoleMetricsExporter(interval, timeout time.Duration, opts ...stdoutmetric.Option) (ShutdownCallback, error) {
	exporter, err := stdoutmetric.New(opts...)
	if err != nil {
		return nil, err
	}
	mp := metric.NewMeterProvider(metric.WithReader(metric.NewPeriodicReader(
		exporter,
		metric.WithInterval(interval),
		metric.WithTimeout(timeout),
	)))
	otel.SetMeterProvider(mp)
	return mp.Shutdown, nil
}

// NewPrometheusMetricsExporter serves for the product environment, the
// registerer is scraped over HTTP by the caller. A nil registerer means
// the prometheus default one.
func NewPrometheusMetricsExporter(reg promclient.Registerer) (ShutdownCallback, error) {
	opts := make([]prometheus.Option, 0, 1)
	if reg != nil {
		opts = append(opts, prometheus.WithRegisterer(reg))
	}
	exporter, err := prometheus.New(opts...)
	if err != nil {
		return nil, err
	}
	mp := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(mp)
	return mp.Shutdown, nil
}
