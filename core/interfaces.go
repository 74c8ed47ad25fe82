package core

import (
	"time"
)

// =============================================================================
// Metrics: Interface for observability and monitoring
// =============================================================================

// Metrics defines the interface for collecting dispatch metrics.
// Implementations can send metrics to monitoring systems (Prometheus, StatsD, etc.).
//
// Methods should be non-blocking and fast: RecordDispatchDuration and
// RecordQueueDepth are called on the main thread between callables.
type Metrics interface {
	// RecordDispatchDuration records how long a unit took to run.
	//
	// Parameters:
	// - queue: QueueActive for main-thread units, QueueTask for worker units
	// - duration: How long the callable ran
	RecordDispatchDuration(queue QueueKind, duration time.Duration)

	// RecordCallablePanic records that a callable panicked. The panic is
	// re-raised after this call returns.
	RecordCallablePanic(queue QueueKind, panicInfo any)

	// RecordQueueDepth records the depth of a queue after it changed.
	RecordQueueDepth(queue QueueKind, depth int)

	// RecordStaleIdentity records a trigger whose Identity did not resolve.
	RecordStaleIdentity(queue QueueKind)
}

// NilMetrics provides a no-op metrics implementation that does nothing.
// This is the default when no metrics interface is provided.
type NilMetrics struct{}

// RecordDispatchDuration is a no-op.
func (m *NilMetrics) RecordDispatchDuration(queue QueueKind, duration time.Duration) {}

// RecordCallablePanic is a no-op.
func (m *NilMetrics) RecordCallablePanic(queue QueueKind, panicInfo any) {}

// RecordQueueDepth is a no-op.
func (m *NilMetrics) RecordQueueDepth(queue QueueKind, depth int) {}

// RecordStaleIdentity is a no-op.
func (m *NilMetrics) RecordStaleIdentity(queue QueueKind) {}

// =============================================================================
// Config: Configuration for Dispatcher
// =============================================================================

// Config holds configuration options for a Dispatcher.
// All fields are optional; zero values are replaced by defaults.
type Config struct {
	// Name identifies the dispatcher in logs and stats. Defaults to "dispatcher".
	Name string

	// Notifier wakes the main thread. Defaults to a PollNotifier.
	Notifier Notifier

	// Spawner starts worker goroutines for Run and RunTask. Defaults to GoSpawner{}.
	Spawner Spawner

	// Logger defaults to a DefaultLogger at LevelInfo.
	Logger Logger

	// Metrics defaults to NilMetrics.
	Metrics Metrics
}

// DefaultConfig returns a config with default collaborators.
func DefaultConfig() *Config {
	return &Config{
		Name:     "dispatcher",
		Notifier: NewPollNotifier(),
		Spawner:  GoSpawner{},
		Logger:   NewLeveledLogger(LevelInfo),
		Metrics:  &NilMetrics{},
	}
}
