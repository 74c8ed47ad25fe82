//go:build linux

package core

import (
	"time"

	"golang.org/x/sys/unix"
)

const timerSupported = true

// timerArmDelay is the expiry of the single-shot timer. It must be non-zero:
// a zero value disarms the timer instead.
const timerArmDelay = time.Microsecond

func armOneShotTimer() error {
	_, err := unix.Setitimer(unix.ItimerReal, unix.Itimerval{
		Value: unix.NsecToTimeval(timerArmDelay.Nanoseconds()),
	})
	return err
}

func disarmOneShotTimer() {
	_, _ = unix.Setitimer(unix.ItimerReal, unix.Itimerval{})
}
