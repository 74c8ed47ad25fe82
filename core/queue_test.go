package core

import (
	"sync"
	"testing"
)

// TestUnitQueue_FIFO verifies push order is pop order
// Given: Units pushed in order 0..9
// When: The queue is popped until empty
// Then: Units come back in the same order and the queue reports empty
func TestUnitQueue_FIFO(t *testing.T) {
	// Arrange
	q := NewUnitQueue()
	var order []int
	for i := 0; i < 10; i++ {
		q.Push(Bind1(func(n int) { order = append(order, n) }, i))
	}

	// Act
	for {
		u, ok := q.Pop()
		if !ok {
			break
		}
		_ = u.Invoke()
	}

	// Assert
	if len(order) != 10 {
		t.Fatalf("len(order) = %d, want 10", len(order))
	}
	for i, n := range order {
		if n != i {
			t.Errorf("order[%d] = %d, want %d", i, n, i)
		}
	}
	if !q.IsEmpty() {
		t.Error("queue should be empty")
	}
}

// TestUnitQueue_Compaction verifies capacity shrinks after a burst drains
func TestUnitQueue_Compaction(t *testing.T) {
	q := NewUnitQueue()
	noop := func() {}
	for i := 0; i < 1024; i++ {
		q.Push(Bind(noop))
	}
	for i := 0; i < 1020; i++ {
		if _, ok := q.Pop(); !ok {
			t.Fatalf("Pop %d failed", i)
		}
	}

	q.mu.Lock()
	c := cap(q.units)
	n := len(q.units)
	q.mu.Unlock()

	if n != 4 {
		t.Fatalf("len = %d, want 4", n)
	}
	if c >= 1024 {
		t.Errorf("cap = %d, expected compaction below 1024", c)
	}
}

// TestUnitQueue_Clear verifies Clear drops units without invoking them
func TestUnitQueue_Clear(t *testing.T) {
	q := NewUnitQueue()
	invoked := false
	for i := 0; i < 3; i++ {
		q.Push(Bind(func() { invoked = true }))
	}

	if n := q.Clear(); n != 3 {
		t.Errorf("Clear() = %d, want 3", n)
	}
	if q.Len() != 0 {
		t.Errorf("Len() = %d, want 0", q.Len())
	}
	if invoked {
		t.Error("Clear invoked a unit")
	}
}

// TestUnitQueue_ConcurrentPush verifies no unit is lost under contention
func TestUnitQueue_ConcurrentPush(t *testing.T) {
	q := NewUnitQueue()
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				q.Push(Bind(func() {}))
			}
		}()
	}
	wg.Wait()

	if q.Len() != 800 {
		t.Errorf("Len() = %d, want 800", q.Len())
	}
}

func TestQueueKind_String(t *testing.T) {
	tests := map[QueueKind]string{
		QueueActive:  "active",
		QueueTask:    "task",
		QueueEvent:   "event",
		QueueKind(0): "unknown",
	}
	for kind, want := range tests {
		if got := kind.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", kind, got, want)
		}
	}
}
