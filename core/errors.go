package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNilCallable is returned when a nil function is scheduled.
	ErrNilCallable = errors.New("callable is nil")

	// ErrNotCallable is returned when the scheduled value is not a func.
	ErrNotCallable = errors.New("value is not callable")

	// ErrUnitConsumed is returned by a second Invoke of the same Unit.
	ErrUnitConsumed = errors.New("unit already invoked")

	// ErrUnitEnqueued is returned when a *Unit that a dispatcher already owns
	// is scheduled again.
	ErrUnitEnqueued = errors.New("unit already scheduled")

	// ErrAlreadyRegistered is returned when a notifier is registered twice.
	ErrAlreadyRegistered = errors.New("notifier already registered")

	// ErrNotifierNotRegistered is returned by Notify before Register.
	ErrNotifierNotRegistered = errors.New("notifier not registered")

	// ErrNotifierClosed is returned by operations on a closed notifier.
	ErrNotifierClosed = errors.New("notifier closed")

	// ErrSignalClaimed is returned when the notifier's signal already has an
	// owner in this process, or the host has set it to be ignored.
	ErrSignalClaimed = errors.New("signal already claimed")

	// ErrNotifierUnsupported is returned when the requested notifier kind is
	// not available on this platform, or the requested signal cannot carry
	// wake-ups.
	ErrNotifierUnsupported = errors.New("notifier not supported")
)

// BindError reports an argument that cannot be bound to a callable.
type BindError struct {
	// Index is the offending argument position, or -1 for arity errors.
	Index  int
	Reason string
}

func (e *BindError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("bind: %s", e.Reason)
	}
	return fmt.Sprintf("bind: argument %d: %s", e.Index, e.Reason)
}

// IsBindError reports whether err is, or wraps, a *BindError.
func IsBindError(err error) bool {
	var bindErr *BindError
	return errors.As(err, &bindErr)
}
