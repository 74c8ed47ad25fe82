//go:build darwin

package core

import (
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

const timerSupported = true

// timerArmDelay matches the linux itimer expiry.
const timerArmDelay = time.Microsecond

// x/sys/unix has no Setitimer on darwin, so the one-shot timer is a runtime
// timer that raises SIGALRM at the process when it expires.
var oneShot struct {
	mu    sync.Mutex
	timer *time.Timer
}

func armOneShotTimer() error {
	pid := unix.Getpid()
	oneShot.mu.Lock()
	defer oneShot.mu.Unlock()
	if oneShot.timer != nil {
		oneShot.timer.Stop()
	}
	oneShot.timer = time.AfterFunc(timerArmDelay, func() {
		_ = unix.Kill(pid, unix.SIGALRM)
	})
	return nil
}

func disarmOneShotTimer() {
	oneShot.mu.Lock()
	defer oneShot.mu.Unlock()
	if oneShot.timer != nil {
		oneShot.timer.Stop()
		oneShot.timer = nil
	}
}
