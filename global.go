package nonblock

import (
	"fmt"
	"sync"

	"github.com/Swind/go-nonblock/core"
)

// =============================================================================
// Global Dispatcher Helper (Singleton)
// =============================================================================

var (
	globalDispatcher *core.Dispatcher
	globalMu         sync.Mutex
)

// InitGlobalDispatcher initializes the global dispatcher. A nil cfg selects
// core.DefaultConfig. Calling it again before shutdown is a no-op.
func InitGlobalDispatcher(cfg *Config) {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalDispatcher != nil {
		return // Already initialized
	}

	if cfg == nil {
		cfg = core.DefaultConfig()
	}
	c := *cfg
	if c.Name == "" || c.Name == "dispatcher" {
		c.Name = "global-dispatcher"
	}
	globalDispatcher = core.NewDispatcherWithConfig(&c)
}

// GetGlobalDispatcher returns the global dispatcher instance.
// It panics if InitGlobalDispatcher has not been called.
func GetGlobalDispatcher() *Dispatcher {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalDispatcher == nil {
		panic("GlobalDispatcher not initialized. Call InitGlobalDispatcher() first.")
	}
	return globalDispatcher
}

// ShutdownGlobalDispatcher closes the global dispatcher's notifier and
// forgets it. Queued units are dropped with it.
func ShutdownGlobalDispatcher() {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalDispatcher != nil {
		if err := globalDispatcher.Close(); err != nil {
			fmt.Printf("[nonblock] close global dispatcher: %v\n", err)
		}
		globalDispatcher = nil
	}
}

// =============================================================================
// Package-level API over the global dispatcher
// =============================================================================

// Run starts fn(args...) on a detached worker.
func Run(fn any, args ...any) error {
	return GetGlobalDispatcher().Run(fn, args...)
}

// RunOnMainThread queues fn(args...) for the main thread.
func RunOnMainThread(fn any, args ...any) error {
	return GetGlobalDispatcher().RunOnMainThread(fn, args...)
}

// PushTask parks fn(args...) until RunTask is called with the returned Identity.
func PushTask(fn any, args ...any) (Identity, error) {
	return GetGlobalDispatcher().PushTask(fn, args...)
}

// RunTask starts the pending task on a worker. It reports false for an
// Identity that is no longer pending.
func RunTask(id Identity) (bool, error) {
	return GetGlobalDispatcher().RunTask(id)
}

// RunAllTask starts every pending task.
func RunAllTask() (int, error) {
	return GetGlobalDispatcher().RunAllTask()
}

// RemoveAllTask discards every pending task.
func RemoveAllTask() int {
	return GetGlobalDispatcher().RemoveAllTask()
}

// PushEventToMainThread parks fn(args...) until RunEventOnMainThread is
// called with the returned Identity.
func PushEventToMainThread(fn any, args ...any) (Identity, error) {
	return GetGlobalDispatcher().PushEventToMainThread(fn, args...)
}

// RunEventOnMainThread moves the pending event to the main thread. It reports
// false for an Identity that is no longer pending.
func RunEventOnMainThread(id Identity) bool {
	return GetGlobalDispatcher().RunEventOnMainThread(id)
}

// RunAllEventOnMainThread moves every pending event to the main thread.
func RunAllEventOnMainThread() int {
	return GetGlobalDispatcher().RunAllEventOnMainThread()
}

// RemoveAllEvent discards every pending event.
func RemoveAllEvent() int {
	return GetGlobalDispatcher().RemoveAllEvent()
}

// PollEvent drains the main-thread queue. Call it only from the main thread.
// Under a signal notifier it also settles the notifier, like DrainReady.
func PollEvent() (int, error) {
	return GetGlobalDispatcher().PollEvent()
}

// DrainReady drains the main-thread queue after a receive from the global
// notifier's Ready channel, then settles and re-arms the notifier. Call it
// only from the thread that called EnableMainThreadEvent.
func DrainReady() (int, error) {
	return GetGlobalDispatcher().DrainReady()
}

// EnableMainThreadEvent registers the global dispatcher's notifier and makes
// the calling thread the main thread. A registration failure leaves the
// process unable to deliver main-thread work, so it panics.
func EnableMainThreadEvent() {
	if err := GetGlobalDispatcher().EnableMainThreadEvent(); err != nil {
		panic(fmt.Sprintf("nonblock: enable main thread event: %v", err))
	}
}
