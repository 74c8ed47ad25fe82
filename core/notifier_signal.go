//go:build linux || darwin

package core

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// closeGrace bounds how long Close waits for an already-armed signal to land
// before the handler is removed. A signal delivered after signal.Stop gets the
// default disposition, which terminates the process for SIGUSR1 and SIGALRM.
const closeGrace = 100 * time.Millisecond

// SignalNotifierOptions configures NewSignalNotifier.
type SignalNotifierOptions struct {
	// Kind is NotifierDirectSignal (default) or NotifierOSTimer.
	Kind NotifierKind

	// Signal used by NotifierDirectSignal. Defaults to SIGUSR1.
	// NotifierOSTimer always uses SIGALRM.
	Signal os.Signal

	// Previous receives signals that arrive while no wake-up is armed, so a
	// host that already uses the same signal keeps working.
	Previous func(os.Signal)
}

// SignalNotifier wakes the main thread through an OS signal.
//
// The signal is received by os/signal on a relay goroutine which only flips
// Armed to Firing and posts to the readiness channel. The drain itself runs on
// the main thread's ordinary control flow, never in the relay.
type SignalNotifier struct {
	kind     NotifierKind
	sig      syscall.Signal
	previous func(os.Signal)
	arm      func() error
	disarm   func()

	state notifierState
	sigCh chan os.Signal
	ready chan struct{}
	done  chan struct{}
	relay sync.WaitGroup

	mu sync.Mutex // serializes Register and Close
}

var _ Notifier = (*SignalNotifier)(nil)

// NewSignalNotifier creates an unregistered signal-backed notifier.
func NewSignalNotifier(opts SignalNotifierOptions) (*SignalNotifier, error) {
	n := &SignalNotifier{
		kind:     opts.Kind,
		previous: opts.Previous,
		sigCh:    make(chan os.Signal, 1),
		ready:    make(chan struct{}, 1),
		done:     make(chan struct{}),
	}

	switch opts.Kind {
	case NotifierDirectSignal:
		n.sig = unix.SIGUSR1
		if opts.Signal != nil {
			s, ok := opts.Signal.(syscall.Signal)
			if !ok {
				return nil, fmt.Errorf("unsupported signal value %v", opts.Signal)
			}
			if err := CheckWakeSignal(s); err != nil {
				return nil, err
			}
			n.sig = s
		}
		pid := unix.Getpid()
		n.arm = func() error { return unix.Kill(pid, n.sig) }
		n.disarm = func() {}
	case NotifierOSTimer:
		if !timerSupported {
			return nil, ErrNotifierUnsupported
		}
		n.sig = unix.SIGALRM
		n.arm = armOneShotTimer
		n.disarm = disarmOneShotTimer
	default:
		return nil, fmt.Errorf("%w: %s", ErrNotifierUnsupported, opts.Kind)
	}

	return n, nil
}

// CheckWakeSignal reports whether sig can carry wake-ups. SIGKILL and SIGSTOP
// cannot be caught. The Go runtime turns synchronous faults (SIGSEGV, SIGBUS,
// SIGFPE, SIGILL) into panics or crashes, so a process-directed one would be
// misreported as a fault.
func CheckWakeSignal(sig syscall.Signal) error {
	switch sig {
	case unix.SIGKILL, unix.SIGSTOP:
		return fmt.Errorf("%w: %s cannot be caught", ErrNotifierUnsupported, sig)
	case unix.SIGSEGV, unix.SIGBUS, unix.SIGFPE, unix.SIGILL:
		return fmt.Errorf("%w: %s is reserved for runtime faults", ErrNotifierUnsupported, sig)
	}
	return nil
}

func (n *SignalNotifier) Kind() NotifierKind { return n.kind }

func (n *SignalNotifier) State() NotifierState { return n.state.Load() }

// Signal returns the signal this notifier listens on.
func (n *SignalNotifier) Signal() os.Signal { return n.sig }

// Register claims the signal and starts the relay. A notifier can only be
// registered once, and a signal can only have one notifier in the process.
func (n *SignalNotifier) Register() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch n.state.Load() {
	case NotifierUninitialized:
	case NotifierClosed:
		return ErrNotifierClosed
	default:
		return ErrAlreadyRegistered
	}

	if err := claimSignal(n.sig, n); err != nil {
		return err
	}

	signal.Notify(n.sigCh, n.sig)
	n.state.Store(NotifierRegistered)

	n.relay.Add(1)
	go n.relayLoop()

	n.state.Store(NotifierIdle)
	return nil
}

// Notify arms the OS primitive unless a wake-up is already outstanding.
func (n *SignalNotifier) Notify() error {
	switch n.state.Load() {
	case NotifierUninitialized, NotifierRegistered:
		return ErrNotifierNotRegistered
	case NotifierClosed:
		return ErrNotifierClosed
	}

	if !n.state.TryTransition(NotifierIdle, NotifierArmed) {
		return nil
	}

	if err := n.arm(); err != nil {
		n.state.TryTransition(NotifierArmed, NotifierIdle)
		return fmt.Errorf("arm %s notifier: %w", n.kind, err)
	}
	return nil
}

func (n *SignalNotifier) Ready() <-chan struct{} { return n.ready }

// Settle returns the notifier to Idle once the main thread has drained.
func (n *SignalNotifier) Settle() {
	n.state.TryTransition(NotifierFiring, NotifierIdle)
}

// Close stops the relay and releases the signal. It is safe to call more
// than once.
func (n *SignalNotifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	prev := n.state.Swap(NotifierClosed)
	if prev == NotifierClosed {
		return nil
	}
	if prev == NotifierUninitialized {
		return nil
	}

	n.disarm()
	close(n.done)
	n.relay.Wait()

	if prev == NotifierArmed {
		timer := time.NewTimer(closeGrace)
		select {
		case <-n.sigCh:
		case <-timer.C:
		}
		timer.Stop()
	}

	signal.Stop(n.sigCh)
	releaseSignal(n.sig, n)
	return nil
}

func (n *SignalNotifier) relayLoop() {
	defer n.relay.Done()
	for {
		select {
		case <-n.done:
			return
		case s := <-n.sigCh:
			if n.state.TryTransition(NotifierArmed, NotifierFiring) {
				select {
				case n.ready <- struct{}{}:
				default:
				}
				continue
			}
			if n.previous != nil {
				n.previous(s)
			}
		}
	}
}

// =============================================================================
// Process-wide signal ownership
// =============================================================================

var signalClaims = struct {
	sync.Mutex
	owners map[syscall.Signal]*SignalNotifier
}{owners: make(map[syscall.Signal]*SignalNotifier)}

func claimSignal(sig syscall.Signal, owner *SignalNotifier) error {
	signalClaims.Lock()
	defer signalClaims.Unlock()

	if cur, ok := signalClaims.owners[sig]; ok && cur != owner {
		return fmt.Errorf("%w: %s is owned by another notifier", ErrSignalClaimed, sig)
	}
	if signal.Ignored(sig) {
		return fmt.Errorf("%w: %s is ignored by the host", ErrSignalClaimed, sig)
	}
	signalClaims.owners[sig] = owner
	return nil
}

func releaseSignal(sig syscall.Signal, owner *SignalNotifier) {
	signalClaims.Lock()
	defer signalClaims.Unlock()

	if signalClaims.owners[sig] == owner {
		delete(signalClaims.owners, sig)
	}
}
