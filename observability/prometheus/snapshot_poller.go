package prometheus

import (
	"context"
	"sync"
	"time"

	"github.com/Swind/go-nonblock/core"
	prom "github.com/prometheus/client_golang/prometheus"
)

// DispatcherSnapshotProvider provides current dispatcher stats snapshots.
// *core.Dispatcher satisfies it.
type DispatcherSnapshotProvider interface {
	Stats() core.DispatcherStats
}

// SnapshotPoller periodically exports dispatcher Stats() snapshots into Prometheus gauges.
type SnapshotPoller struct {
	interval time.Duration

	mu          sync.RWMutex
	dispatchers map[string]DispatcherSnapshotProvider

	queueLength   *prom.GaugeVec
	counters      *prom.GaugeVec
	notifierState *prom.GaugeVec
	mainThread    *prom.GaugeVec

	stateMu sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSnapshotPoller creates a snapshot poller and registers its collectors.
func NewSnapshotPoller(reg prom.Registerer, interval time.Duration) (*SnapshotPoller, error) {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	if interval <= 0 {
		interval = time.Second
	}

	queueLength := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "nonblock",
		Name:      "dispatcher_queue_length",
		Help:      "Units held per dispatcher queue.",
	}, []string{"dispatcher", "queue"})
	counters := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "nonblock",
		Name:      "dispatcher_events",
		Help:      "Dispatcher counter snapshot by event type.",
	}, []string{"dispatcher", "event"})
	notifierState := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "nonblock",
		Name:      "dispatcher_notifier_state",
		Help:      "Notifier state (1 for the current state, 0 otherwise).",
	}, []string{"dispatcher", "notifier", "state"})
	mainThread := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "nonblock",
		Name:      "dispatcher_main_thread_id",
		Help:      "Thread id recorded as the main thread (0 if none yet).",
	}, []string{"dispatcher"})

	var err error
	if queueLength, err = registerCollector(reg, queueLength); err != nil {
		return nil, err
	}
	if counters, err = registerCollector(reg, counters); err != nil {
		return nil, err
	}
	if notifierState, err = registerCollector(reg, notifierState); err != nil {
		return nil, err
	}
	if mainThread, err = registerCollector(reg, mainThread); err != nil {
		return nil, err
	}

	return &SnapshotPoller{
		interval:      interval,
		dispatchers:   make(map[string]DispatcherSnapshotProvider),
		queueLength:   queueLength,
		counters:      counters,
		notifierState: notifierState,
		mainThread:    mainThread,
	}, nil
}

// AddDispatcher adds or replaces a dispatcher snapshot provider by name.
func (p *SnapshotPoller) AddDispatcher(name string, provider DispatcherSnapshotProvider) {
	if p == nil || provider == nil {
		return
	}
	name = normalizeLabel(name, "dispatcher")
	p.mu.Lock()
	p.dispatchers[name] = provider
	p.mu.Unlock()
}

// RemoveDispatcher stops polling name. Its last exported values are removed.
func (p *SnapshotPoller) RemoveDispatcher(name string) {
	if p == nil {
		return
	}
	name = normalizeLabel(name, "dispatcher")
	p.mu.Lock()
	delete(p.dispatchers, name)
	p.mu.Unlock()

	labels := prom.Labels{"dispatcher": name}
	p.queueLength.DeletePartialMatch(labels)
	p.counters.DeletePartialMatch(labels)
	p.notifierState.DeletePartialMatch(labels)
	p.mainThread.DeletePartialMatch(labels)
}

// Start begins periodic polling; repeated calls are no-ops.
func (p *SnapshotPoller) Start(ctx context.Context) {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if p.running {
		p.stateMu.Unlock()
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true
	p.stateMu.Unlock()

	go p.loop(pollCtx)
}

// Stop stops periodic polling; repeated calls are safe.
func (p *SnapshotPoller) Stop() {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if !p.running {
		p.stateMu.Unlock()
		return
	}
	cancel := p.cancel
	done := p.done
	p.stateMu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	p.stateMu.Lock()
	p.running = false
	p.cancel = nil
	p.done = nil
	p.stateMu.Unlock()
}

func (p *SnapshotPoller) loop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.collectOnce()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.collectOnce()
		}
	}
}

var notifierStates = []core.NotifierState{
	core.NotifierUninitialized,
	core.NotifierRegistered,
	core.NotifierIdle,
	core.NotifierArmed,
	core.NotifierFiring,
	core.NotifierClosed,
}

func (p *SnapshotPoller) collectOnce() {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for name, provider := range p.dispatchers {
		stats := provider.Stats()

		p.queueLength.WithLabelValues(name, core.QueueActive.String()).Set(float64(stats.Active))
		p.queueLength.WithLabelValues(name, core.QueueTask.String()).Set(float64(stats.PendingTasks))
		p.queueLength.WithLabelValues(name, core.QueueEvent.String()).Set(float64(stats.PendingEvents))

		p.counters.WithLabelValues(name, "dispatched").Set(float64(stats.Dispatched))
		p.counters.WithLabelValues(name, "spawned").Set(float64(stats.Spawned))
		p.counters.WithLabelValues(name, "discarded").Set(float64(stats.Discarded))
		p.counters.WithLabelValues(name, "stale_trigger").Set(float64(stats.StaleTriggers))

		kind := stats.NotifierKind.String()
		for _, s := range notifierStates {
			v := 0.0
			if s == stats.NotifierState {
				v = 1
			}
			p.notifierState.WithLabelValues(name, kind, s.String()).Set(v)
		}

		p.mainThread.WithLabelValues(name).Set(float64(stats.MainThreadID))
	}
}
