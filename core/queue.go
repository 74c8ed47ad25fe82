package core

import (
	"sync"
)

const (
	defaultQueueCap     = 16
	compactMinCap       = 64 // Don't compact if capacity is less than this
	compactShrinkFactor = 4  // Trigger compaction when len < cap/4
)

// QueueKind names one of the dispatcher's three queues.
type QueueKind uint8

const (
	// QueueActive holds units ready to run on the main thread.
	QueueActive QueueKind = iota + 1

	// QueueTask holds background units awaiting RunTask.
	QueueTask

	// QueueEvent holds main-thread units awaiting RunEventOnMainThread.
	QueueEvent
)

func (k QueueKind) String() string {
	switch k {
	case QueueActive:
		return "active"
	case QueueTask:
		return "task"
	case QueueEvent:
		return "event"
	default:
		return "unknown"
	}
}

// =============================================================================
// UnitQueue: FIFO of units behind its own lock
// =============================================================================

// UnitQueue is a mutex-protected FIFO. Every operation takes and releases the
// lock, so callers never hold it while a unit runs.
type UnitQueue struct {
	mu    sync.Mutex
	units []*Unit
}

func NewUnitQueue() *UnitQueue {
	return &UnitQueue{
		units: make([]*Unit, 0, defaultQueueCap),
	}
}

func (q *UnitQueue) Push(u *Unit) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.units = append(q.units, u)
}

func (q *UnitQueue) Pop() (*Unit, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.units) == 0 {
		return nil, false
	}

	u := q.units[0]
	// Zero out the element in the underlying array to prevent memory leak
	q.units[0] = nil
	q.units = q.units[1:]
	q.maybeCompactLocked()

	return u, true
}

func (q *UnitQueue) maybeCompactLocked() {
	n := len(q.units)
	c := cap(q.units)

	if c < compactMinCap {
		return
	}
	if n == 0 {
		q.units = make([]*Unit, 0, defaultQueueCap)
		return
	}
	if n*compactShrinkFactor >= c {
		return
	}

	newCap := max(max(c/2, defaultQueueCap), n)

	newSlice := make([]*Unit, n, newCap)
	copy(newSlice, q.units)
	q.units = newSlice
}

func (q *UnitQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.units)
}

func (q *UnitQueue) IsEmpty() bool {
	return q.Len() == 0
}

// Clear discards all units without invoking them and returns how many were
// dropped.
func (q *UnitQueue) Clear() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.units)
	q.units = make([]*Unit, 0, defaultQueueCap)
	return n
}
