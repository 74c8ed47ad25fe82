//go:build darwin

package core

import (
	"testing"
	"time"
)

// TestSignalNotifier_TimerWakesOnDarwin verifies the timer kind raises SIGALRM
// Given: A registered OS-timer notifier
// When: Notify arms the one-shot timer
// Then: The relay observes SIGALRM and the notifier reaches Firing
func TestSignalNotifier_TimerWakesOnDarwin(t *testing.T) {
	// Arrange
	n, err := NewSignalNotifier(SignalNotifierOptions{Kind: NotifierOSTimer})
	if err != nil {
		t.Fatalf("NewSignalNotifier(timer) = %v", err)
	}
	t.Cleanup(func() { _ = n.Close() })
	if err := n.Register(); err != nil {
		t.Fatalf("Register() = %v", err)
	}

	// Act
	if err := n.Notify(); err != nil {
		t.Fatalf("Notify() = %v", err)
	}

	// Assert
	select {
	case <-n.Ready():
	case <-time.After(2 * time.Second):
		t.Fatalf("no readiness within 2s, state %v", n.State())
	}
	if n.State() != NotifierFiring {
		t.Errorf("state = %v, want Firing", n.State())
	}
	n.Settle()
	if n.State() != NotifierIdle {
		t.Errorf("state after Settle = %v, want Idle", n.State())
	}
}
