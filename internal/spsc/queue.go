// Package spsc implements a bounded single-producer/single-consumer queue.
//
// The queue never grows. A push into a full queue is refused and counted,
// the same way a UART drops a byte it has no room for.
package spsc

import "sync/atomic"

type Queue[T any] struct {
	buf     []T
	mask    uint64
	head    atomic.Uint64 // next slot to read, written by the consumer only
	tail    atomic.Uint64 // next slot to write, written by the producer only
	dropped atomic.Uint64
}

// New returns a queue holding at least capacity elements. The
// capacity is rounded up to a power of two.
func New[T any](capacity int) *Queue[T] {
	size := uint64(1)
	for size < uint64(max(capacity, 1)) {
		size <<= 1
	}
	return &Queue[T]{
		buf:  make([]T, size),
		mask: size - 1,
	}
}

// Producer returns the write end. Only one goroutine may use it.
func (q *Queue[T]) Producer() Producer[T] {
	return Producer[T]{q: q}
}

// Consumer returns the read end. Only one goroutine may use it.
func (q *Queue[T]) Consumer() Consumer[T] {
	return Consumer[T]{q: q}
}

func (q *Queue[T]) Len() int {
	return int(q.tail.Load() - q.head.Load())
}

func (q *Queue[T]) Cap() int {
	return len(q.buf)
}

// Dropped is the number of pushes refused because the queue was full.
func (q *Queue[T]) Dropped() uint64 {
	return q.dropped.Load()
}

type Producer[T any] struct {
	q *Queue[T]
}

// Push appends v. It returns false, and drops v, when the queue is full.
func (p Producer[T]) Push(v T) bool {
	q := p.q
	tail := q.tail.Load()
	if tail-q.head.Load() == uint64(len(q.buf)) {
		q.dropped.Add(1)
		return false
	}
	q.buf[tail&q.mask] = v
	q.tail.Store(tail + 1)
	return true
}

func (p Producer[T]) Len() int {
	return p.q.Len()
}

func (p Producer[T]) Full() bool {
	return p.q.Len() == len(p.q.buf)
}

type Consumer[T any] struct {
	q *Queue[T]
}

// Pop removes the oldest element.
func (c Consumer[T]) Pop() (T, bool) {
	q := c.q
	head := q.head.Load()
	if head == q.tail.Load() {
		var zero T
		return zero, false
	}
	v := q.buf[head&q.mask]
	q.head.Store(head + 1)
	return v, true
}

func (c Consumer[T]) Len() int {
	return c.q.Len()
}

func (c Consumer[T]) Empty() bool {
	return c.q.Len() == 0
}
