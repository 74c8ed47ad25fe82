package prometheus

import (
	"errors"
	"fmt"
	"time"

	"github.com/Swind/go-nonblock/core"
	prom "github.com/prometheus/client_golang/prometheus"
)

// ExporterOptions controls collector configuration.
type ExporterOptions struct {
	// Dispatcher is attached as the "dispatcher" label. Defaults to "dispatcher".
	Dispatcher      string
	DurationBuckets []float64
}

// MetricsExporter adapts core.Metrics to Prometheus collectors.
type MetricsExporter struct {
	dispatcher string

	dispatchDurationSeconds *prom.HistogramVec
	callablePanicTotal      *prom.CounterVec
	staleIdentityTotal      *prom.CounterVec
	queueDepth              *prom.GaugeVec
}

var _ core.Metrics = (*MetricsExporter)(nil)

// NewMetricsExporter creates and registers Prometheus collectors for core.Metrics.
// Exporters for several dispatchers may share one registry.
func NewMetricsExporter(namespace string, reg prom.Registerer, opts ExporterOptions) (*MetricsExporter, error) {
	if namespace == "" {
		namespace = "nonblock"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	buckets := opts.DurationBuckets
	if len(buckets) == 0 {
		// Main-thread callables are expected to be short.
		buckets = prom.ExponentialBuckets(0.00001, 4, 10)
	}

	durationVec := prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "dispatch_duration_seconds",
		Help:      "Callable run time in seconds.",
		Buckets:   buckets,
	}, []string{"dispatcher", "queue"})
	panicVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "callable_panic_total",
		Help:      "Total number of callables that panicked.",
	}, []string{"dispatcher", "queue"})
	staleVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "stale_identity_total",
		Help:      "Total number of triggers whose identity was no longer pending.",
	}, []string{"dispatcher", "queue"})
	queueDepthVec := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "queue_depth",
		Help:      "Current queue depth.",
	}, []string{"dispatcher", "queue"})

	var err error
	if durationVec, err = registerCollector(reg, durationVec); err != nil {
		return nil, err
	}
	if panicVec, err = registerCollector(reg, panicVec); err != nil {
		return nil, err
	}
	if staleVec, err = registerCollector(reg, staleVec); err != nil {
		return nil, err
	}
	if queueDepthVec, err = registerCollector(reg, queueDepthVec); err != nil {
		return nil, err
	}

	return &MetricsExporter{
		dispatcher:              normalizeLabel(opts.Dispatcher, "dispatcher"),
		dispatchDurationSeconds: durationVec,
		callablePanicTotal:      panicVec,
		staleIdentityTotal:      staleVec,
		queueDepth:              queueDepthVec,
	}, nil
}

// RecordDispatchDuration records callable run time.
func (m *MetricsExporter) RecordDispatchDuration(queue core.QueueKind, duration time.Duration) {
	if m == nil {
		return
	}
	m.dispatchDurationSeconds.WithLabelValues(m.dispatcher, queue.String()).Observe(duration.Seconds())
}

// RecordCallablePanic records callable panics.
func (m *MetricsExporter) RecordCallablePanic(queue core.QueueKind, panicInfo any) {
	if m == nil {
		return
	}
	m.callablePanicTotal.WithLabelValues(m.dispatcher, queue.String()).Inc()
}

// RecordQueueDepth records queue depth.
func (m *MetricsExporter) RecordQueueDepth(queue core.QueueKind, depth int) {
	if m == nil {
		return
	}
	m.queueDepth.WithLabelValues(m.dispatcher, queue.String()).Set(float64(depth))
}

// RecordStaleIdentity records triggers that found nothing to run.
func (m *MetricsExporter) RecordStaleIdentity(queue core.QueueKind) {
	if m == nil {
		return
	}
	m.staleIdentityTotal.WithLabelValues(m.dispatcher, queue.String()).Inc()
}

func normalizeLabel(v string, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func registerCollector[T prom.Collector](reg prom.Registerer, collector T) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var alreadyRegisteredErr prom.AlreadyRegisteredError
	if errors.As(err, &alreadyRegisteredErr) {
		existing, ok := alreadyRegisteredErr.ExistingCollector.(T)
		if !ok {
			return collector, fmt.Errorf("collector type mismatch for %T", collector)
		}
		return existing, nil
	}

	return collector, err
}
