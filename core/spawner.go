package core

import "runtime"

// Spawner starts a detached worker that runs fn once. Workers are never
// joined or tracked. An error means the worker could not be started.
type Spawner interface {
	Spawn(fn func()) error
}

// SpawnerFunc adapts a function to Spawner.
type SpawnerFunc func(fn func()) error

func (f SpawnerFunc) Spawn(fn func()) error {
	return f(fn)
}

// GoSpawner runs each worker on a new goroutine.
type GoSpawner struct {
	// LockOSThread wires the worker to its own OS thread for its whole life.
	// The thread exits with the goroutine, which gives thread-local C
	// libraries a fresh thread per task.
	LockOSThread bool
}

func (s GoSpawner) Spawn(fn func()) error {
	go func() {
		if s.LockOSThread {
			runtime.LockOSThread()
		}
		fn()
	}()
	return nil
}
