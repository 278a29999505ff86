package pipeline

import (
	"context"
	"iter"
	"strconv"
	"strings"
)

// Handler processes one record at a time and runs a final action when input ends.
type Handler[T any] interface {
	Handle(ctx context.Context, record T)
	Finish(ctx context.Context)
}

// Handlers builds a Sink that passes every record to each handler in order, then calls
// Finish on each of them.
func Handlers[T any](capacity int, handlers ...Handler[T]) Sink[T] {
	return &handlerSink[T]{capacity: capacity, handlers: handlers}
}

type handlerSink[T any] struct {
	capacity int
	handlers []Handler[T]
}

func (s *handlerSink[T]) Consume(ctx context.Context, records iter.Seq[T]) {
	for r := range records {
		for _, h := range s.handlers {
			h.Handle(ctx, r)
		}
	}
	for _, h := range s.handlers {
		h.Finish(ctx)
	}
}

func (s *handlerSink[T]) InputCapacity() int { return s.capacity }

func (s *handlerSink[T]) Name() string {
	names := make([]string, 0, len(s.handlers))
	for i, h := range s.handlers {
		names = append(names, nameOf(h, "handler-"+strconv.Itoa(i)))
	}
	return "sink[" + strings.Join(names, ",") + "]"
}
