package core

import (
	"sync"
	"sync/atomic"
	"testing"
)

// TestPendingQueue_TakeReturnsPushedUnit verifies identity resolution
// Given: Several units pushed to a pending queue
// When: Each is taken by the Identity returned from its Push
// Then: Exactly that unit comes back, and only once
func TestPendingQueue_TakeReturnsPushedUnit(t *testing.T) {
	// Arrange
	q := NewPendingQueue(QueueTask)
	units := make([]*Unit, 5)
	ids := make([]Identity, 5)
	for i := range units {
		units[i] = Bind(func() {})
		ids[i] = q.Push(units[i])
	}

	// Act & Assert - take out of order
	for _, i := range []int{3, 0, 4, 1, 2} {
		got, ok := q.Take(ids[i])
		if !ok {
			t.Fatalf("Take(%v) not found", ids[i])
		}
		if got != units[i] {
			t.Errorf("Take(%v) returned a different unit", ids[i])
		}
		if _, ok := q.Take(ids[i]); ok {
			t.Errorf("second Take(%v) succeeded", ids[i])
		}
	}
	if q.Len() != 0 {
		t.Errorf("Len() = %d, want 0", q.Len())
	}
}

// TestPendingQueue_SlotReuseDoesNotAlias verifies generation counting
// Given: A unit pushed and taken, freeing its slot
// When: A new unit reuses the slot
// Then: The old Identity stays stale and the new one resolves
func TestPendingQueue_SlotReuseDoesNotAlias(t *testing.T) {
	// Arrange
	q := NewPendingQueue(QueueEvent)
	oldID := q.Push(Bind(func() {}))
	if _, ok := q.Take(oldID); !ok {
		t.Fatal("initial Take failed")
	}

	// Act
	fresh := Bind(func() {})
	newID := q.Push(fresh)

	// Assert
	if newID.index != oldID.index {
		t.Fatalf("expected slot reuse: old %v new %v", oldID, newID)
	}
	if newID == oldID {
		t.Fatal("reused slot issued the same Identity")
	}
	if _, ok := q.Take(oldID); ok {
		t.Error("stale Identity resolved to the new occupant")
	}
	if got, ok := q.Take(newID); !ok || got != fresh {
		t.Error("new Identity did not resolve to its unit")
	}
}

// TestPendingQueue_ClearInvalidatesIdentities verifies clearAll
func TestPendingQueue_ClearInvalidatesIdentities(t *testing.T) {
	q := NewPendingQueue(QueueTask)
	var invoked atomic.Int32
	var ids []Identity
	for i := 0; i < 3; i++ {
		ids = append(ids, q.Push(Bind(func() { invoked.Add(1) })))
	}

	if n := q.Clear(); n != 3 {
		t.Errorf("Clear() = %d, want 3", n)
	}
	for _, id := range ids {
		if _, ok := q.Take(id); ok {
			t.Errorf("Take(%v) succeeded after Clear", id)
		}
	}
	if invoked.Load() != 0 {
		t.Error("Clear invoked a unit")
	}

	// Slots are reusable after a clear.
	id := q.Push(Bind(func() {}))
	if _, ok := q.Take(id); !ok {
		t.Error("Push after Clear not resolvable")
	}
}

// TestPendingQueue_ForeignIdentity verifies identities are bound to their queue kind
func TestPendingQueue_ForeignIdentity(t *testing.T) {
	tasks := NewPendingQueue(QueueTask)
	events := NewPendingQueue(QueueEvent)

	taskID := tasks.Push(Bind(func() {}))
	events.Push(Bind(func() {}))

	if _, ok := events.Take(taskID); ok {
		t.Error("event queue resolved a task Identity")
	}
	if _, ok := tasks.Take(Identity{}); ok {
		t.Error("zero Identity resolved")
	}
	if _, ok := tasks.Take(Identity{kind: QueueTask, index: 99, gen: 1}); ok {
		t.Error("out-of-range Identity resolved")
	}
	if taskID.Queue() != QueueTask {
		t.Errorf("Queue() = %v, want task", taskID.Queue())
	}
}

// TestPendingQueue_TakeAllKeepsOrder verifies FIFO order survives removals
func TestPendingQueue_TakeAllKeepsOrder(t *testing.T) {
	q := NewPendingQueue(QueueTask)
	var order []int
	var ids []Identity
	for i := 0; i < 5; i++ {
		ids = append(ids, q.Push(Bind1(func(n int) { order = append(order, n) }, i)))
	}
	q.Take(ids[1])
	q.Push(Bind1(func(n int) { order = append(order, n) }, 5)) // reuses slot 1

	for _, u := range q.TakeAll() {
		_ = u.Invoke()
	}

	want := []int{0, 2, 3, 4, 5}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
	if q.TakeAll() != nil {
		t.Error("TakeAll on empty queue should return nil")
	}
}

// TestPendingQueue_ConcurrentTakeSingleWinner verifies at-most-once removal
// Given: One pending unit and many goroutines racing to take it
// When: All call Take with the same Identity
// Then: Exactly one succeeds
func TestPendingQueue_ConcurrentTakeSingleWinner(t *testing.T) {
	for round := 0; round < 50; round++ {
		q := NewPendingQueue(QueueTask)
		id := q.Push(Bind(func() {}))

		var wins atomic.Int32
		var wg sync.WaitGroup
		start := make(chan struct{})
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				if _, ok := q.Take(id); ok {
					wins.Add(1)
				}
			}()
		}
		close(start)
		wg.Wait()

		if wins.Load() != 1 {
			t.Fatalf("round %d: wins = %d, want 1", round, wins.Load())
		}
	}
}

func TestIdentity_String(t *testing.T) {
	if got := (Identity{}).String(); got != "none" {
		t.Errorf("zero String() = %q", got)
	}
	id := Identity{kind: QueueEvent, index: 3, gen: 2}
	if got := id.String(); got != "event#3.2" {
		t.Errorf("String() = %q, want event#3.2", got)
	}
	if id.IsZero() {
		t.Error("IsZero() = true for issued Identity")
	}
}
