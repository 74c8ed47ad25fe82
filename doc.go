// Package nonblock schedules work onto a single main thread without blocking
// it, and lets any goroutine defer background tasks or main-thread callbacks
// until an explicit trigger.
//
// # Quick Start
//
// Initialize the global dispatcher at application startup, on the goroutine
// that will act as the main thread:
//
//	runtime.LockOSThread()
//	nonblock.InitGlobalDispatcher(nil) // poll strategy
//	defer nonblock.ShutdownGlobalDispatcher()
//
// Hand work to the main thread from any goroutine:
//
//	nonblock.Run(func() {
//		result := compute()
//		nonblock.RunOnMainThread(func(r int) { render(r) }, result)
//	})
//
// and drain it once per frame or tick:
//
//	for running {
//		nonblock.PollEvent()
//		...
//	}
//
// # Key Concepts
//
// Unit: a callable bound to its arguments at scheduling time. Arguments are
// copied; pass pointers for shared state. A unit runs at most once.
//
// Active queue: units ready to run on the main thread, drained in FIFO order
// by PollEvent (poll strategy) or by the Pump when a notifier fires.
//
// Pending tasks and events: PushTask and PushEventToMainThread park a unit and
// return an Identity. RunTask starts the task on a worker; RunEventOnMainThread
// moves the event to the active queue. An Identity that was already triggered
// or cleared simply does nothing.
//
// Notifier: how the main thread learns about new work. NotifierPoll never
// interrupts it. NotifierOSTimer and NotifierDirectSignal raise a signal that
// is relayed to the main loop through Notifier.Ready.
//
// # Signal Strategies
//
//	n, _ := nonblock.NewSignalNotifier(nonblock.SignalNotifierOptions{
//		Kind: nonblock.NotifierDirectSignal,
//	})
//	d := nonblock.NewDispatcherWithConfig(&nonblock.Config{Notifier: n})
//	go produce(d)
//	err := nonblock.NewPump(d, 0).Run(ctx) // blocks on the main thread
//
// Callables never run inside a signal handler: the signal only marks work as
// ready and the drain happens in the pump's ordinary control flow.
package nonblock
