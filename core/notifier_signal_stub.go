//go:build !linux && !darwin

package core

import "os"

// SignalNotifierOptions configures NewSignalNotifier.
type SignalNotifierOptions struct {
	Kind     NotifierKind
	Signal   os.Signal
	Previous func(os.Signal)
}

// SignalNotifier is not available on this platform.
type SignalNotifier struct {
	PollNotifier
}

// NewSignalNotifier always fails on this platform; use NotifierPoll.
func NewSignalNotifier(opts SignalNotifierOptions) (*SignalNotifier, error) {
	return nil, ErrNotifierUnsupported
}
