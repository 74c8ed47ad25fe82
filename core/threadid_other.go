//go:build !linux

package core

import "runtime"

// CurrentThreadID returns the goroutine id of the caller. Without gettid the
// goroutine that owns the main loop stands in for the main thread.
func CurrentThreadID() int64 {
	b := make([]byte, 64)
	b = b[:runtime.Stack(b, false)]
	// Parse "goroutine 123 [running]:"
	var id int64
	for i := len("goroutine "); i < len(b); i++ {
		if b[i] >= '0' && b[i] <= '9' {
			id = id*10 + int64(b[i]-'0')
		} else {
			break
		}
	}
	return id
}
