// Package metrics provides Prometheus instruments shared across the
// generator and query HTTP services, following the teacher's
// sync.Once global-instrument pattern but namespaced per service and
// exposing the request-rate/latency/in-flight triple spec.md §6 asks
// every HTTP service to carry.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// HTTPMetrics holds the request-path instruments for one HTTP service.
type HTTPMetrics struct {
	RequestsTotal   metric.Int64Counter
	DurationSeconds metric.Float64Histogram
	InFlight        metric.Int64UpDownCounter
}

var (
	registry = map[string]*HTTPMetrics{}
	mu       sync.Mutex
)

// ForService returns (creating once) the HTTPMetrics for a given
// service name, namespaced "nearyou_<service>_*".
func ForService(service string) *HTTPMetrics {
	mu.Lock()
	defer mu.Unlock()

	if m, ok := registry[service]; ok {
		return m
	}

	meter := otel.GetMeterProvider().Meter("nearyou." + service)
	m := &HTTPMetrics{}

	var err error
	m.RequestsTotal, err = meter.Int64Counter(
		"nearyou_"+service+"_requests_total",
		metric.WithDescription("Total HTTP requests handled"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		panic(err)
	}

	m.DurationSeconds, err = meter.Float64Histogram(
		"nearyou_"+service+"_request_duration_seconds",
		metric.WithDescription("HTTP request latency"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
	)
	if err != nil {
		panic(err)
	}

	m.InFlight, err = meter.Int64UpDownCounter(
		"nearyou_"+service+"_requests_in_flight",
		metric.WithDescription("HTTP requests currently being served"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		panic(err)
	}

	registry[service] = m
	return m
}

// Middleware wraps an http.Handler, recording request rate, latency,
// and in-flight count for the named service.
func Middleware(service string, next http.Handler) http.Handler {
	m := ForService(service)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		m.InFlight.Add(ctx, 1)
		defer m.InFlight.Add(ctx, -1)

		start := time.Now()
		next.ServeHTTP(w, r)
		elapsed := time.Since(start).Seconds()

		m.RequestsTotal.Add(ctx, 1)
		m.DurationSeconds.Record(ctx, elapsed)
	})
}
