// Package queue provides a thread-safe FIFO ring buffer that grows on demand.
//
// The queue sits between the price feed and slow consumers such as the tick
// archive. Producers never block: the ring doubles once it is 70% full, and
// when a maximum capacity is set and reached the oldest item is evicted.
package queue

import "sync"

// growThreshold is the fill percentage that triggers a resize.
const growThreshold = 70

// Queue is a growable FIFO ring buffer.
type Queue[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	ring   []T
	head   int // next read
	size   int
	max    int // 0 = unbounded
	closed bool

	sent    int64
	taken   int64
	dropped int64
	resizes int
}

// Stats is a point-in-time view of queue counters.
type Stats struct {
	Len      int
	Capacity int
	Sent     int64
	Taken    int64
	Dropped  int64
	Resizes  int
}

// New creates a queue with the given initial capacity. maxCapacity bounds
// growth; zero leaves it unbounded.
func New[T any](initialCapacity, maxCapacity int) *Queue[T] {
	if initialCapacity < 1 {
		initialCapacity = 1
	}
	if maxCapacity > 0 && maxCapacity < initialCapacity {
		maxCapacity = initialCapacity
	}
	q := &Queue[T]{
		ring: make([]T, initialCapacity),
		max:  maxCapacity,
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Send appends item. Returns false if the queue is closed.
func (q *Queue[T]) Send(item T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	if (q.size+1)*100 >= len(q.ring)*growThreshold {
		q.grow()
	}
	if q.size == len(q.ring) {
		// At max capacity: evict the oldest.
		q.popLocked()
		q.taken--
		q.dropped++
	}

	q.ring[(q.head+q.size)%len(q.ring)] = item
	q.size++
	q.sent++

	q.cond.Signal()
	return true
}

// Receive blocks until an item is available or the queue is closed and
// drained, in which case ok is false.
func (q *Queue[T]) Receive() (item T, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.size == 0 && !q.closed {
		q.cond.Wait()
	}
	if q.size == 0 {
		return item, false
	}
	return q.popLocked(), true
}

// TryReceive returns the next item without blocking.
func (q *Queue[T]) TryReceive() (item T, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.size == 0 {
		return item, false
	}
	return q.popLocked(), true
}

// Drain removes up to limit items (all if limit <= 0) in FIFO order.
func (q *Queue[T]) Drain(limit int) []T {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := q.size
	if limit > 0 && limit < n {
		n = limit
	}
	if n == 0 {
		return nil
	}

	out := make([]T, n)
	for i := range out {
		out[i] = q.popLocked()
	}
	return out
}

// Close stops further sends and wakes blocked receivers. Items already
// queued can still be received.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	q.cond.Broadcast()
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

// Cap returns the current ring capacity.
func (q *Queue[T]) Cap() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.ring)
}

// Stats returns queue counters.
func (q *Queue[T]) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return Stats{
		Len:      q.size,
		Capacity: len(q.ring),
		Sent:     q.sent,
		Taken:    q.taken,
		Dropped:  q.dropped,
		Resizes:  q.resizes,
	}
}

// popLocked removes the head item. Caller holds mu and size > 0.
func (q *Queue[T]) popLocked() T {
	var zero T
	item := q.ring[q.head]
	q.ring[q.head] = zero
	q.head = (q.head + 1) % len(q.ring)
	q.size--
	q.taken++
	return item
}

// grow doubles the ring, capped at max. Caller holds mu.
func (q *Queue[T]) grow() {
	newCap := len(q.ring) * 2
	if q.max > 0 && newCap > q.max {
		newCap = q.max
	}
	if newCap <= len(q.ring) {
		return
	}

	ring := make([]T, newCap)
	n := copy(ring, q.ring[q.head:min(q.head+q.size, len(q.ring))])
	if n < q.size {
		copy(ring[n:], q.ring[:q.size-n])
	}

	q.ring = ring
	q.head = 0
	q.resizes++
}
