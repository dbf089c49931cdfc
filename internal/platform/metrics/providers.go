package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// InitProviders sets the global OTel tracer and meter providers for
// serviceName, bridging metric.Meter instruments (HTTPMetrics, and any
// collaborator spans) onto the default Prometheus registry so they
// surface on the same /metrics endpoint the service's chi router
// already mounts via promhttp.Handler(). Returns a shutdown func to
// call during graceful shutdown.
func InitProviders(serviceName string) (func(context.Context) error, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(semconv.SchemaURL, semconv.ServiceNameKey.String(serviceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("metrics: failed to build otel resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(sdktrace.WithResource(res))
	otel.SetTracerProvider(tp)

	promExporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("metrics: failed to create prometheus exporter: %w", err)
	}
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithResource(res), sdkmetric.WithReader(promExporter))
	otel.SetMeterProvider(mp)

	return func(ctx context.Context) error {
		var err error
		if shutdownErr := mp.Shutdown(ctx); shutdownErr != nil {
			err = fmt.Errorf("meter provider shutdown: %w", shutdownErr)
		}
		if shutdownErr := tp.Shutdown(ctx); shutdownErr != nil {
			err = fmt.Errorf("tracer provider shutdown: %w", shutdownErr)
		}
		return err
	}, nil
}
