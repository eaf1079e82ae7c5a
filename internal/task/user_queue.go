package task

import (
	"sync"

	"github.com/phrazzld/trackbot/internal/domain"
)

// UserQueue is an unbounded FIFO of work items for a single user.
// It is safe for concurrent use, but compound operations that must be atomic
// with the worker flag go through the Registry.
type UserQueue struct {
	mu    sync.Mutex
	items []domain.WorkItem
}

// NewUserQueue creates an empty queue.
func NewUserQueue() *UserQueue {
	return &UserQueue{}
}

// Push appends items to the back of the queue, preserving their order.
func (q *UserQueue) Push(items ...domain.WorkItem) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, items...)
}

// Pop removes and returns the item at the front of the queue.
// The second return value is false when the queue is empty.
func (q *UserQueue) Pop() (domain.WorkItem, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return domain.WorkItem{}, false
	}

	item := q.items[0]
	q.items[0] = domain.WorkItem{}
	q.items = q.items[1:]
	if len(q.items) == 0 {
		// release the backing array once drained
		q.items = nil
	}
	return item, true
}

// PeekNext returns the item at the front of the queue without removing it.
func (q *UserQueue) PeekNext() (domain.WorkItem, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return domain.WorkItem{}, false
	}
	return q.items[0], true
}

// Len returns the number of queued items.
func (q *UserQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Clear drops every queued item and returns how many were dropped.
func (q *UserQueue) Clear() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := len(q.items)
	q.items = nil
	return n
}
