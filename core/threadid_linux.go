//go:build linux

package core

import "golang.org/x/sys/unix"

// CurrentThreadID returns the OS thread id of the caller. It is only stable
// across calls on a goroutine that has called runtime.LockOSThread.
func CurrentThreadID() int64 {
	return int64(unix.Gettid())
}
