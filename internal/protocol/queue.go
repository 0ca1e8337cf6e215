package protocol

import (
	"sync"

	"github.com/wagiedev/tmux-control-go/internal/errors"
)

// Queue is an unbounded FIFO with a non-blocking Push. Consumers wait on
// Ready and take everything queued with Drain.
//
// A closed Queue rejects Push but still hands out what it holds.
type Queue[T any] struct {
	mu     sync.Mutex
	items  []T
	closed bool
	ready  chan struct{}
}

// NewQueue creates an empty queue.
func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{
		ready: make(chan struct{}, 1),
	}
}

// Push appends item. It never blocks. Returns ErrQueueClosed after Close.
func (q *Queue[T]) Push(item T) error {
	q.mu.Lock()

	if q.closed {
		q.mu.Unlock()

		return errors.ErrQueueClosed
	}

	q.items = append(q.items, item)
	q.mu.Unlock()

	q.signal()

	return nil
}

// Drain removes and returns everything queued, oldest first. It never blocks
// and returns nil when the queue is empty.
func (q *Queue[T]) Drain() []T {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil
	}

	items := q.items
	q.items = nil

	return items
}

// Ready returns a channel that receives a value after Push or Close. One
// signal may cover several pushes.
func (q *Queue[T]) Ready() <-chan struct{} {
	return q.ready
}

// Close rejects further pushes and wakes any waiting consumer. Safe to call
// more than once.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	q.signal()
}

// Closed reports whether Close has been called.
func (q *Queue[T]) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.closed
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.items)
}

func (q *Queue[T]) signal() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}
