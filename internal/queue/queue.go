package queue

import (
	"sync"
)

// Queue is a thread-safe FIFO drained in batches.
type Queue[T any] struct {
	mu    sync.Mutex
	items []T
}

// New creates a new empty queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{
		items: make([]T, 0),
	}
}

// Push appends items to the queue.
func (q *Queue[T]) Push(items ...T) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, items...)
}

// PopBatch removes and returns up to n items from the front, in push order.
// A non-positive n takes everything. Returns nil when empty.
func (q *Queue[T]) PopBatch(n int) []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil
	}
	if n <= 0 || n > len(q.items) {
		n = len(q.items)
	}
	batch := make([]T, n)
	copy(batch, q.items[:n])
	q.items = q.items[n:]
	if len(q.items) == 0 {
		q.items = make([]T, 0)
	}
	return batch
}

// Len returns the number of items in the queue.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Clear drops every pending item.
func (q *Queue[T]) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = make([]T, 0)
}
