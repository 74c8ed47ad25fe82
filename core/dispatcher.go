package core

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

// Dispatcher marshals callables onto a single main thread and defers
// background or main-thread work until an explicit trigger.
//
// It owns three queues, each with its own lock:
//   - active: units ready to run on the main thread
//   - tasks: background units waiting for RunTask
//   - events: main-thread units waiting for RunEventOnMainThread
//
// Locks are only held while a queue is mutated or scanned, never while a
// callable runs, so callables may schedule more work.
type Dispatcher struct {
	name     string
	active   *UnitQueue
	tasks    *PendingQueue
	events   *PendingQueue
	notifier Notifier
	spawner  Spawner
	logger   Logger
	metrics  Metrics

	mainThread atomic.Int64
	enabled    atomic.Bool

	dispatched atomic.Int64
	spawned    atomic.Int64
	discarded  atomic.Int64
	stale      atomic.Int64
}

// NewDispatcher creates a dispatcher with the default config.
func NewDispatcher() *Dispatcher {
	return NewDispatcherWithConfig(DefaultConfig())
}

// NewDispatcherWithConfig creates a dispatcher; nil fields in config fall
// back to defaults.
func NewDispatcherWithConfig(config *Config) *Dispatcher {
	d := &Dispatcher{
		active: NewUnitQueue(),
		tasks:  NewPendingQueue(QueueTask),
		events: NewPendingQueue(QueueEvent),
	}

	// Apply config
	if config != nil {
		d.name = config.Name
		d.notifier = config.Notifier
		d.spawner = config.Spawner
		d.logger = config.Logger
		d.metrics = config.Metrics
	}

	// Use defaults if not provided
	if d.name == "" {
		d.name = "dispatcher"
	}
	if d.notifier == nil {
		d.notifier = NewPollNotifier()
	}
	if d.spawner == nil {
		d.spawner = GoSpawner{}
	}
	if d.logger == nil {
		d.logger = NewLeveledLogger(LevelInfo)
	}
	if d.metrics == nil {
		d.metrics = &NilMetrics{}
	}

	return d
}

// Name returns the dispatcher name.
func (d *Dispatcher) Name() string {
	return d.name
}

// Notifier returns the wake notifier.
func (d *Dispatcher) Notifier() Notifier {
	return d.notifier
}

// MainThreadID returns the id recorded by EnableMainThreadEvent or the last
// PollEvent under the poll strategy, or 0 if neither has run.
func (d *Dispatcher) MainThreadID() int64 {
	return d.mainThread.Load()
}

// EnableMainThreadEvent registers the notifier and records the calling
// thread as the main thread. It may be called once; the caller should have
// locked its goroutine to the OS thread.
func (d *Dispatcher) EnableMainThreadEvent() error {
	if !d.enabled.CompareAndSwap(false, true) {
		return fmt.Errorf("enable %s: %w", d.name, ErrAlreadyRegistered)
	}
	if err := d.notifier.Register(); err != nil {
		d.enabled.Store(false)
		return fmt.Errorf("enable %s: %w", d.name, err)
	}

	d.mainThread.Store(CurrentThreadID())
	d.logger.Info("main thread events enabled",
		F("dispatcher", d.name),
		F("notifier", d.notifier.Kind()),
		F("thread", d.mainThread.Load()))

	// Anything submitted before registration was never announced.
	if !d.active.IsEmpty() {
		d.wake()
	}
	return nil
}

// =============================================================================
// Run now
// =============================================================================

// Run starts fn(args...) on a detached worker. There is no identity, join or
// cancellation. The error reports a bind failure or a spawn failure.
func (d *Dispatcher) Run(fn any, args ...any) error {
	u, err := newOwnedUnit(fn, args)
	if err != nil {
		return err
	}
	return d.spawn(u)
}

// RunOnMainThread queues fn(args...) for the main thread and wakes it.
// Units run in the order the active queue lock admitted them.
func (d *Dispatcher) RunOnMainThread(fn any, args ...any) error {
	u, err := newOwnedUnit(fn, args)
	if err != nil {
		return err
	}
	d.enqueueActive(u)
	return nil
}

// =============================================================================
// Two-phase background tasks
// =============================================================================

// PushTask parks fn(args...) in the pending task queue without running it.
func (d *Dispatcher) PushTask(fn any, args ...any) (Identity, error) {
	u, err := newOwnedUnit(fn, args)
	if err != nil {
		return Identity{}, err
	}
	id := d.tasks.Push(u)
	d.metrics.RecordQueueDepth(QueueTask, d.tasks.Len())
	return id, nil
}

// RunTask moves the task addressed by id to a detached worker. It reports
// false, and does nothing else, when id no longer resolves. If the worker
// cannot be started the unit is dropped and the error returned.
func (d *Dispatcher) RunTask(id Identity) (bool, error) {
	u, ok := d.tasks.Take(id)
	if !ok {
		d.recordStale(QueueTask, id)
		return false, nil
	}
	d.metrics.RecordQueueDepth(QueueTask, d.tasks.Len())
	return true, d.spawn(u)
}

// RunAllTask starts a worker for every pending task, in push order, and
// returns how many were started.
func (d *Dispatcher) RunAllTask() (int, error) {
	units := d.tasks.TakeAll()
	d.metrics.RecordQueueDepth(QueueTask, d.tasks.Len())

	var errs []error
	started := 0
	for _, u := range units {
		if err := d.spawn(u); err != nil {
			errs = append(errs, err)
			continue
		}
		started++
	}
	return started, errors.Join(errs...)
}

// RemoveAllTask discards every pending task without running it.
func (d *Dispatcher) RemoveAllTask() int {
	n := d.tasks.Clear()
	d.afterClear(QueueTask, n, d.tasks.Len())
	return n
}

// =============================================================================
// Two-phase main-thread events
// =============================================================================

// PushEventToMainThread parks fn(args...) in the pending event queue. It is
// not visible to the main thread until RunEventOnMainThread.
func (d *Dispatcher) PushEventToMainThread(fn any, args ...any) (Identity, error) {
	u, err := newOwnedUnit(fn, args)
	if err != nil {
		return Identity{}, err
	}
	id := d.events.Push(u)
	d.metrics.RecordQueueDepth(QueueEvent, d.events.Len())
	return id, nil
}

// RunEventOnMainThread moves the event addressed by id to the active queue
// and wakes the main thread. It reports false when id no longer resolves.
func (d *Dispatcher) RunEventOnMainThread(id Identity) bool {
	u, ok := d.events.Take(id)
	if !ok {
		d.recordStale(QueueEvent, id)
		return false
	}
	d.metrics.RecordQueueDepth(QueueEvent, d.events.Len())
	d.enqueueActive(u)
	return true
}

// RunAllEventOnMainThread moves every pending event to the active queue, in
// push order, and returns how many moved.
func (d *Dispatcher) RunAllEventOnMainThread() int {
	units := d.events.TakeAll()
	if len(units) == 0 {
		return 0
	}
	d.metrics.RecordQueueDepth(QueueEvent, d.events.Len())

	for _, u := range units {
		d.active.Push(u)
	}
	d.metrics.RecordQueueDepth(QueueActive, d.active.Len())
	d.wake()
	return len(units)
}

// RemoveAllEvent discards every pending event without running it.
func (d *Dispatcher) RemoveAllEvent() int {
	n := d.events.Clear()
	d.afterClear(QueueEvent, n, d.events.Len())
	return n
}

// =============================================================================
// Main thread
// =============================================================================

// PollEvent drains the active queue on the calling thread and returns how
// many units ran. It must only be called from the main thread. Under the poll
// strategy the caller becomes the main thread; under the signal strategies it
// behaves as DrainReady, so a host loop may call PollEvent whatever the
// notifier kind.
//
// Draining stops at the first callable that returns an error; that error is
// returned and the remaining units stay queued. Panics propagate.
func (d *Dispatcher) PollEvent() (int, error) {
	if d.notifier.Kind() != NotifierPoll {
		return d.DrainReady()
	}
	d.mainThread.Store(CurrentThreadID())
	return d.drainActive()
}

// DrainReady is the main-thread half of the asynchronous strategies: call it
// from the thread that called EnableMainThreadEvent after receiving from
// Notifier().Ready(). Calling it from any other thread runs main-thread units
// off the main thread. It drains, settles the notifier and re-arms it if
// units arrived after the drain finished, so they are not left waiting for an
// unrelated wake-up.
func (d *Dispatcher) DrainReady() (int, error) {
	ran, err := d.drainActive()
	d.notifier.Settle()
	if err != nil {
		return ran, err
	}
	if !d.active.IsEmpty() {
		d.wake()
	}
	return ran, nil
}

// HasPendingMainThreadWork reports whether the active queue is non-empty.
func (d *Dispatcher) HasPendingMainThreadWork() bool {
	return !d.active.IsEmpty()
}

func (d *Dispatcher) drainActive() (int, error) {
	ran := 0
	for {
		// Pop takes and releases the active lock; the unit runs unlocked.
		u, ok := d.active.Pop()
		if !ok {
			return ran, nil
		}
		err := d.invoke(QueueActive, u)
		if errors.Is(err, ErrUnitConsumed) {
			d.logger.Debug("skipped unit invoked outside the dispatcher", F("dispatcher", d.name))
			continue
		}
		ran++
		d.dispatched.Add(1)
		if err != nil {
			return ran, err
		}
	}
}

// Close releases the notifier. Queued units are left in place.
func (d *Dispatcher) Close() error {
	return d.notifier.Close()
}

// Stats returns a snapshot of queue depths and counters.
func (d *Dispatcher) Stats() DispatcherStats {
	return DispatcherStats{
		Name:          d.name,
		Active:        d.active.Len(),
		PendingTasks:  d.tasks.Len(),
		PendingEvents: d.events.Len(),
		Dispatched:    d.dispatched.Load(),
		Spawned:       d.spawned.Load(),
		Discarded:     d.discarded.Load(),
		StaleTriggers: d.stale.Load(),
		NotifierKind:  d.notifier.Kind(),
		NotifierState: d.notifier.State(),
		MainThreadID:  d.mainThread.Load(),
	}
}

// =============================================================================
// internals
// =============================================================================

// newOwnedUnit binds fn and claims the result, so one *Unit cannot sit in
// two queues or run on two workers.
func newOwnedUnit(fn any, args []any) (*Unit, error) {
	u, err := NewUnit(fn, args...)
	if err != nil {
		return nil, err
	}
	if err := u.claim(); err != nil {
		return nil, err
	}
	return u, nil
}

func (d *Dispatcher) enqueueActive(u *Unit) {
	d.active.Push(u)
	d.metrics.RecordQueueDepth(QueueActive, d.active.Len())
	d.wake()
}

func (d *Dispatcher) wake() {
	err := d.notifier.Notify()
	switch {
	case err == nil:
	case errors.Is(err, ErrNotifierNotRegistered):
		// EnableMainThreadEvent re-announces queued work.
	default:
		d.logger.Warn("wake notification failed",
			F("dispatcher", d.name),
			F("notifier", d.notifier.Kind()),
			F("error", err))
	}
}

func (d *Dispatcher) spawn(u *Unit) error {
	err := d.spawner.Spawn(func() {
		if err := d.invoke(QueueTask, u); err != nil && !errors.Is(err, ErrUnitConsumed) {
			d.logger.Error("task returned error", F("dispatcher", d.name), F("error", err))
		}
	})
	if err != nil {
		return fmt.Errorf("spawn worker: %w", err)
	}
	d.spawned.Add(1)
	return nil
}

// invoke runs u, recording its duration. A panic is recorded and re-raised.
func (d *Dispatcher) invoke(queue QueueKind, u *Unit) error {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			d.metrics.RecordCallablePanic(queue, r)
			d.logger.Error("callable panicked",
				F("dispatcher", d.name),
				F("queue", queue),
				F("panic", r))
			panic(r)
		}
		d.metrics.RecordDispatchDuration(queue, time.Since(start))
	}()
	return u.Invoke()
}

func (d *Dispatcher) recordStale(queue QueueKind, id Identity) {
	d.stale.Add(1)
	d.metrics.RecordStaleIdentity(queue)
	d.logger.Debug("trigger ignored, identity not pending",
		F("dispatcher", d.name),
		F("identity", id))
}

func (d *Dispatcher) afterClear(queue QueueKind, n, depth int) {
	if n == 0 {
		return
	}
	d.discarded.Add(int64(n))
	d.metrics.RecordQueueDepth(queue, depth)
	d.logger.Debug("pending queue cleared",
		F("dispatcher", d.name),
		F("queue", queue),
		F("discarded", n))
}
