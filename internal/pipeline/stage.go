package pipeline

import (
	"context"
	"fmt"
	"iter"
)

// DefaultCapacity is the input queue size used for stages that do not implement Buffered.
const DefaultCapacity = 16

// Producer enumerates source records. It calls emit once per record and returns when the
// source is exhausted. A returned error aborts the run.
type Producer[T any] interface {
	Produce(ctx context.Context, emit func(T)) error
}

// Transform turns one input into zero or more outputs. The engine forwards every yielded
// record before taking the next input.
type Transform[T any] interface {
	Transform(ctx context.Context, in T) iter.Seq[T]
}

// Sink drains the records reaching the end of the pipeline. The sequence ends when the
// upstream queue is closed and empty; anything after the loop is the sink's final action.
type Sink[T any] interface {
	Consume(ctx context.Context, records iter.Seq[T])
}

// Buffered is implemented by consuming stages that want a specific input queue capacity.
type Buffered interface {
	InputCapacity() int
}

// Named is implemented by stages that want a stable label in logs and metrics.
type Named interface {
	Name() string
}

// TransformFunc adapts a plain function to Transform.
type TransformFunc[T any] func(ctx context.Context, in T) iter.Seq[T]

// Transform calls f(ctx, in).
func (f TransformFunc[T]) Transform(ctx context.Context, in T) iter.Seq[T] {
	return f(ctx, in)
}

// Filter returns a Transform forwarding only the inputs for which keep returns true.
func Filter[T any](keep func(T) bool) TransformFunc[T] {
	return func(_ context.Context, in T) iter.Seq[T] {
		return func(yield func(T) bool) {
			if keep(in) {
				yield(in)
			}
		}
	}
}

func capacityOf(stage any) int {
	if b, ok := stage.(Buffered); ok {
		if n := b.InputCapacity(); n >= 0 {
			return n
		}
	}
	return DefaultCapacity
}

func nameOf(stage any, fallback string) string {
	if n, ok := stage.(Named); ok && n.Name() != "" {
		return n.Name()
	}
	return fmt.Sprintf("%s(%T)", fallback, stage)
}
