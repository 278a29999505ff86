// Package queue defines the bounded hand-off used between pipeline stages.
package queue

import (
	"context"
	"errors"
	"iter"
)

var (
	// ErrClosed is returned by Dequeue once the queue is closed and drained.
	ErrClosed = errors.New("queue closed")
	// ErrAbandoned is returned by Enqueue once the consumer has stopped reading.
	ErrAbandoned = errors.New("queue abandoned by consumer")
)

// Queue is a point-to-point FIFO with a fixed capacity. One producer enqueues and closes,
// one consumer dequeues and may abandon.
type Queue[T any] interface {
	Enqueue(ctx context.Context, item T) error
	Dequeue(ctx context.Context) (T, error)
	Close()
	Abandon()
}

// Seq yields items from q until it is closed and drained or the context ends.
func Seq[T any](ctx context.Context, q Queue[T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			item, err := q.Dequeue(ctx)
			if err != nil {
				return
			}
			if !yield(item) {
				return
			}
		}
	}
}
