// Package internal provides the unbounded event queue backing buffered
// subscriptions.
//
// Features and Guarantees:
//
//   - Unbounded Size: the queue grows as needed, limited only by available memory
//   - Non-Blocking Writes: Push appends without waiting for the consumer
//   - Single Producer, Single Consumer: one goroutine pushes (the connection's
//     dispatch goroutine), one goroutine drains via the Recv() channel
//   - FIFO: items are delivered in push order
package internal

import (
	"sync"
	"sync/atomic"
)

// node represents a single element in the queue
type node[T any] struct {
	value *T
	next  atomic.Pointer[node[T]]
}

// EventQueue decouples the connection's dispatch goroutine from a slow
// subscription callback. Pushes append to a linked list without blocking,
// a dedicated drain goroutine feeds the output channel.
type EventQueue[T any] struct {
	head   *node[T] // Owned by the drain goroutine
	tail   *node[T] // Owned by the producer
	out    chan *T
	closed atomic.Bool

	// Condition variable for efficient waiting
	mu   sync.Mutex
	cond *sync.Cond
}

// NewEventQueue creates a new queue and starts its drain goroutine
func NewEventQueue[T any]() *EventQueue[T] {
	// Sentinel node, head and tail never become nil
	sentinel := &node[T]{}

	q := &EventQueue[T]{
		head: sentinel,
		tail: sentinel,
		out:  make(chan *T),
	}
	q.cond = sync.NewCond(&q.mu)

	go q.drain()

	return q
}

// Push appends an item to the queue without blocking on the consumer.
// Returns true if the item was added, or false if the queue is closed.
//
// Thread-safety: only a single goroutine may push.
func (q *EventQueue[T]) Push(value *T) bool {
	if value == nil || q.closed.Load() {
		return false
	}

	newNode := &node[T]{value: value}
	q.tail.next.Store(newNode)
	q.tail = newNode

	// Signal under the lock, a drain goroutine between its empty check and
	// Wait must not miss the wakeup
	q.mu.Lock()
	q.cond.Signal()
	q.mu.Unlock()

	return true
}

// drain continuously moves items from the linked list to the output channel
// and frees the nodes behind it
func (q *EventQueue[T]) drain() {
	defer close(q.out)

	for {
		hasItems := false

		// Deliver all available items
		for {
			next := q.head.next.Load()
			if next == nil {
				break
			}
			hasItems = true

			// Capture value before moving the head pointer
			value := next.value
			q.head = next

			q.out <- value

			// Help the gc, safe to clear after sending
			next.value = nil
		}

		// Exit once closed and fully drained
		if !hasItems && q.closed.Load() {
			return
		}

		// Nothing available, wait for a signal
		if !hasItems {
			q.mu.Lock()
			if q.head.next.Load() == nil && !q.closed.Load() {
				q.cond.Wait()
			}
			q.mu.Unlock()
		}
	}
}

// Recv returns the receive-only channel the drain goroutine delivers to.
// The channel is closed once the queue is closed and fully drained, so it
// can be consumed with a plain range loop.
func (q *EventQueue[T]) Recv() <-chan *T {
	return q.out
}

// Close closes the queue, preventing further writes.
// Items already queued are still delivered.
func (q *EventQueue[T]) Close() {
	q.closed.Store(true)

	// Wake up the drain goroutine if it is waiting
	q.mu.Lock()
	q.cond.Signal()
	q.mu.Unlock()
}

// IsClosed returns true if the queue is closed
func (q *EventQueue[T]) IsClosed() bool {
	return q.closed.Load()
}
