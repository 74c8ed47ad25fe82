package core

import (
	"sync/atomic"
)

// NotifierKind selects how the main thread learns that work is ready.
type NotifierKind int

const (
	// NotifierPoll never interrupts the main thread; it drains on its own
	// cadence by calling PollEvent.
	NotifierPoll NotifierKind = iota

	// NotifierOSTimer arms a single-shot, near-immediate interval timer whose
	// expiry signal wakes the main thread.
	NotifierOSTimer

	// NotifierDirectSignal sends a signal to the current process.
	NotifierDirectSignal
)

func (k NotifierKind) String() string {
	switch k {
	case NotifierPoll:
		return "poll"
	case NotifierOSTimer:
		return "timer"
	case NotifierDirectSignal:
		return "signal"
	default:
		return "unknown"
	}
}

// NotifierState is the wake state of a notifier.
//
// State machine:
//
//	Uninitialized → Registered → Idle   [Register()]
//	Idle → Armed                        [Notify(), OS primitive invoked]
//	Armed → Firing                      [signal received, readiness sent]
//	Firing → Idle                       [Settle(), after the drain]
//	any → Closed                        [Close()]
//
// Notify while Armed or Firing is coalesced: the drain that follows is
// exhaustive, so it observes every unit enqueued in the meantime.
type NotifierState int32

const (
	NotifierUninitialized NotifierState = iota
	NotifierRegistered
	NotifierIdle
	NotifierArmed
	NotifierFiring
	NotifierClosed
)

func (s NotifierState) String() string {
	switch s {
	case NotifierUninitialized:
		return "Uninitialized"
	case NotifierRegistered:
		return "Registered"
	case NotifierIdle:
		return "Idle"
	case NotifierArmed:
		return "Armed"
	case NotifierFiring:
		return "Firing"
	case NotifierClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// Notifier tells the main thread that the active queue has entries.
//
// Notify is called by submitting goroutines and must never block. For
// asynchronous kinds the main thread selects on Ready, drains the active
// queue, then calls Settle. Ready returns nil for NotifierPoll.
type Notifier interface {
	Kind() NotifierKind
	State() NotifierState
	Register() error
	Notify() error
	Ready() <-chan struct{}
	Settle()
	Close() error
}

type notifierState struct {
	v atomic.Int32
}

func (s *notifierState) Load() NotifierState {
	return NotifierState(s.v.Load())
}

func (s *notifierState) Store(state NotifierState) {
	s.v.Store(int32(state))
}

func (s *notifierState) Swap(state NotifierState) NotifierState {
	return NotifierState(s.v.Swap(int32(state)))
}

func (s *notifierState) TryTransition(from, to NotifierState) bool {
	return s.v.CompareAndSwap(int32(from), int32(to))
}

// =============================================================================
// PollNotifier
// =============================================================================

// PollNotifier is the cooperative strategy: submitters only enqueue and the
// main thread calls PollEvent on its own schedule (once per frame or tick).
type PollNotifier struct {
	state notifierState
}

var _ Notifier = (*PollNotifier)(nil)

func NewPollNotifier() *PollNotifier {
	return &PollNotifier{}
}

func (n *PollNotifier) Kind() NotifierKind { return NotifierPoll }

func (n *PollNotifier) State() NotifierState { return n.state.Load() }

func (n *PollNotifier) Register() error {
	if n.state.TryTransition(NotifierUninitialized, NotifierRegistered) {
		n.state.Store(NotifierIdle)
		return nil
	}
	if n.state.Load() == NotifierClosed {
		return ErrNotifierClosed
	}
	return ErrAlreadyRegistered
}

// Notify does nothing; the main thread is never interrupted.
func (n *PollNotifier) Notify() error { return nil }

func (n *PollNotifier) Ready() <-chan struct{} { return nil }

func (n *PollNotifier) Settle() {}

func (n *PollNotifier) Close() error {
	n.state.Store(NotifierClosed)
	return nil
}
