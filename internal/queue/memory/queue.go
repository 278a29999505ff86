// Package memory provides the channel-backed queue used between pipeline stages.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/JakeFAU/literary-clock/internal/queue"
)

// Queue is a bounded in-memory queue with context-aware operations.
type Queue[T any] struct {
	ch       chan T
	done     chan struct{}
	closeMu  sync.Mutex
	closed   bool
	doneOnce sync.Once
}

// NewQueue constructs a new queue with the provided capacity. A capacity of zero gives an
// unbuffered hand-off.
func NewQueue[T any](capacity int) *Queue[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Queue[T]{
		ch:   make(chan T, capacity),
		done: make(chan struct{}),
	}
}

// Enqueue blocks until the item is accepted, the consumer abandons the queue, or the
// context ends.
func (q *Queue[T]) Enqueue(ctx context.Context, item T) error {
	select {
	case <-q.done:
		return queue.ErrAbandoned
	default:
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("enqueue canceled: %w", ctx.Err())
	case <-q.done:
		return queue.ErrAbandoned
	case q.ch <- item:
		return nil
	}
}

// Dequeue pops the next item, respecting context cancellation. It returns queue.ErrClosed
// once the producer has closed the queue and every buffered item has been taken.
func (q *Queue[T]) Dequeue(ctx context.Context) (T, error) {
	var zero T
	select {
	case <-ctx.Done():
		return zero, fmt.Errorf("dequeue canceled: %w", ctx.Err())
	case item, ok := <-q.ch:
		if !ok {
			return zero, queue.ErrClosed
		}
		return item, nil
	}
}

// Close marks the end of input. Only the producing side may call it, after its last Enqueue.
func (q *Queue[T]) Close() {
	q.closeMu.Lock()
	defer q.closeMu.Unlock()
	if q.closed {
		return
	}
	close(q.ch)
	q.closed = true
}

// Abandon tells the producer that nothing will read from the queue again. Pending and
// future Enqueue calls return queue.ErrAbandoned instead of blocking.
func (q *Queue[T]) Abandon() {
	q.doneOnce.Do(func() { close(q.done) })
}

// Len returns the number of buffered items.
func (q *Queue[T]) Len() int { return len(q.ch) }

// Cap returns the queue capacity.
func (q *Queue[T]) Cap() int { return cap(q.ch) }
