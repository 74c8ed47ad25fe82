package core

import (
	"fmt"
	"sync"
)

// Identity addresses a unit that is still waiting in a pending queue.
//
// It pairs a slot index with that slot's generation. Taking or clearing a
// slot bumps the generation, so an Identity that has been used (or whose
// queue was cleared) never resolves again, even after the slot is reused.
// The zero Identity never resolves.
type Identity struct {
	kind  QueueKind
	index uint32
	gen   uint32
}

// IsZero reports whether id is the zero Identity.
func (id Identity) IsZero() bool {
	return id == Identity{}
}

// Queue returns the pending queue that issued id.
func (id Identity) Queue() QueueKind {
	return id.kind
}

func (id Identity) String() string {
	if id.IsZero() {
		return "none"
	}
	return fmt.Sprintf("%s#%d.%d", id.kind, id.index, id.gen)
}

type pendingSlot struct {
	unit *Unit
	gen  uint32
}

// PendingQueue holds units until they are taken by Identity.
//
// Live entries keep their insertion order. Resolving an Identity to its slot
// is O(1), but removing the entry from the order list is a linear scan, so
// Take is O(queue length). Pending queues are expected to stay small.
type PendingQueue struct {
	mu    sync.Mutex
	kind  QueueKind
	slots []pendingSlot
	free  []uint32
	order []uint32
}

// NewPendingQueue creates an empty pending queue. kind is stamped into every
// Identity it issues; identities from another queue never resolve here.
func NewPendingQueue(kind QueueKind) *PendingQueue {
	return &PendingQueue{
		kind:  kind,
		slots: make([]pendingSlot, 0, defaultQueueCap),
		order: make([]uint32, 0, defaultQueueCap),
	}
}

// Kind returns the queue kind stamped into issued identities.
func (q *PendingQueue) Kind() QueueKind {
	return q.kind
}

// Push appends u and returns a fresh Identity for it.
func (q *PendingQueue) Push(u *Unit) Identity {
	q.mu.Lock()
	defer q.mu.Unlock()

	var idx uint32
	if n := len(q.free); n > 0 {
		idx = q.free[n-1]
		q.free = q.free[:n-1]
	} else {
		idx = uint32(len(q.slots))
		q.slots = append(q.slots, pendingSlot{gen: 1})
	}

	q.slots[idx].unit = u
	q.order = append(q.order, idx)

	return Identity{kind: q.kind, index: idx, gen: q.slots[idx].gen}
}

// Take removes the unit addressed by id and hands ownership to the caller.
// It reports false if id does not resolve.
func (q *PendingQueue) Take(id Identity) (*Unit, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if id.kind != q.kind || int(id.index) >= len(q.slots) {
		return nil, false
	}
	slot := &q.slots[id.index]
	if slot.gen != id.gen || slot.unit == nil {
		return nil, false
	}

	u := slot.unit
	q.releaseLocked(id.index)

	for i, idx := range q.order {
		if idx == id.index {
			copy(q.order[i:], q.order[i+1:])
			q.order = q.order[:len(q.order)-1]
			break
		}
	}

	return u, true
}

// TakeAll removes every unit in insertion order.
func (q *PendingQueue) TakeAll() []*Unit {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.order) == 0 {
		return nil
	}

	units := make([]*Unit, 0, len(q.order))
	for _, idx := range q.order {
		units = append(units, q.slots[idx].unit)
		q.releaseLocked(idx)
	}
	q.order = q.order[:0]
	return units
}

// Clear discards all pending units without invoking them and returns how
// many were dropped. Every outstanding Identity becomes stale.
func (q *PendingQueue) Clear() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := len(q.order)
	for _, idx := range q.order {
		q.releaseLocked(idx)
	}
	q.order = q.order[:0]
	return n
}

// Len returns the number of pending units.
func (q *PendingQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.order)
}

func (q *PendingQueue) releaseLocked(idx uint32) {
	slot := &q.slots[idx]
	slot.unit = nil
	slot.gen++
	if slot.gen == 0 {
		// zero is reserved for the zero Identity
		slot.gen = 1
	}
	q.free = append(q.free, idx)
}
