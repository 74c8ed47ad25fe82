package nonblock

import "github.com/Swind/go-nonblock/core"

// Re-export commonly used types from core package for convenience.
// This allows users to import only the nonblock package for most use cases.

// Unit is a deferred callable with its bound arguments
type Unit = core.Unit

// Identity addresses a pending task or event until it is triggered or cleared
type Identity = core.Identity

// Dispatcher owns the queues and the wake notifier
type Dispatcher = core.Dispatcher

// Config configures a Dispatcher
type Config = core.Config

// DispatcherStats is a snapshot returned by Dispatcher.Stats
type DispatcherStats = core.DispatcherStats

// Notifier wakes the main thread when work is queued for it
type Notifier = core.Notifier

// NotifierKind selects the wake strategy
type NotifierKind = core.NotifierKind

// SignalNotifierOptions configures a signal-backed notifier
type SignalNotifierOptions = core.SignalNotifierOptions

// Pump is a ready-made main loop
type Pump = core.Pump

// Logger is the structured logging interface used by the dispatcher
type Logger = core.Logger

// Metrics is the metrics interface used by the dispatcher
type Metrics = core.Metrics

// Wake strategies
const (
	NotifierPoll         NotifierKind = core.NotifierPoll
	NotifierOSTimer      NotifierKind = core.NotifierOSTimer
	NotifierDirectSignal NotifierKind = core.NotifierDirectSignal
)

// Constructors re-exported for callers that only import this package.
var (
	NewUnit           = core.NewUnit
	NewDispatcher     = core.NewDispatcher
	NewPollNotifier   = core.NewPollNotifier
	NewSignalNotifier = core.NewSignalNotifier
	NewPump           = core.NewPump
	DefaultConfig     = core.DefaultConfig
	CurrentThreadID   = core.CurrentThreadID
)

// NewDispatcherWithConfig creates a dispatcher with custom collaborators.
func NewDispatcherWithConfig(cfg *Config) *Dispatcher {
	return core.NewDispatcherWithConfig(cfg)
}
