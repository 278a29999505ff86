package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/JakeFAU/literary-clock/internal/metrics"
	"github.com/JakeFAU/literary-clock/internal/queue"
	"github.com/JakeFAU/literary-clock/internal/queue/memory"
)

var (
	// ErrNoProducer is returned by Build when no Producer was registered.
	ErrNoProducer = errors.New("pipeline has no producer")
	// ErrNoSink is returned by Build when no Sink was registered.
	ErrNoSink = errors.New("pipeline has no sink")
)

// Builder assembles a pipeline declaratively. Transforms run in registration order.
type Builder[T any] struct {
	producer   Producer[T]
	transforms []Transform[T]
	sink       Sink[T]
	logger     *zap.Logger
}

// New starts a pipeline definition.
func New[T any](logger *zap.Logger) *Builder[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder[T]{logger: logger}
}

// From sets the producer.
func (b *Builder[T]) From(p Producer[T]) *Builder[T] {
	b.producer = p
	return b
}

// Then appends a transform.
func (b *Builder[T]) Then(t Transform[T]) *Builder[T] {
	b.transforms = append(b.transforms, t)
	return b
}

// To sets the sink.
func (b *Builder[T]) To(s Sink[T]) *Builder[T] {
	b.sink = s
	return b
}

// Build validates the definition.
func (b *Builder[T]) Build() (*Pipeline[T], error) {
	if b.producer == nil {
		return nil, ErrNoProducer
	}
	if b.sink == nil {
		return nil, ErrNoSink
	}
	return &Pipeline[T]{
		producer:   b.producer,
		transforms: append([]Transform[T](nil), b.transforms...),
		sink:       b.sink,
		logger:     b.logger,
	}, nil
}

// Pipeline is a validated producer -> transforms -> sink chain.
type Pipeline[T any] struct {
	producer   Producer[T]
	transforms []Transform[T]
	sink       Sink[T]
	logger     *zap.Logger
}

// Execute starts one goroutine per stage and blocks until every stage has returned.
// The only error reported is the producer's; downstream stages always drain.
func (p *Pipeline[T]) Execute(ctx context.Context) error {
	queues := make([]*memory.Queue[T], len(p.transforms)+1)
	for i, t := range p.transforms {
		queues[i] = memory.NewQueue[T](capacityOf(t))
	}
	queues[len(p.transforms)] = memory.NewQueue[T](capacityOf(p.sink))

	names := make([]string, len(p.transforms))
	for i, t := range p.transforms {
		names[i] = nameOf(t, fmt.Sprintf("transform-%d", i))
		p.logger.Debug("stage input queue", zap.String("stage", names[i]), zap.Int("capacity", queues[i].Cap()))
	}
	sinkName := nameOf(p.sink, "sink")
	p.logger.Debug("stage input queue", zap.String("stage", sinkName), zap.Int("capacity", queues[len(queues)-1].Cap()))

	var (
		wg          sync.WaitGroup
		producerErr error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		producerErr = p.runProducer(ctx, queues[0])
	}()

	for i, t := range p.transforms {
		wg.Add(1)
		go func(stage Transform[T], name string, in, out *memory.Queue[T]) {
			defer wg.Done()
			p.runTransform(ctx, stage, name, in, out)
		}(t, names[i], queues[i], queues[i+1])
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		p.runSink(ctx, sinkName, queues[len(queues)-1])
	}()

	wg.Wait()
	if producerErr != nil {
		return fmt.Errorf("producer: %w", producerErr)
	}
	return nil
}

func (p *Pipeline[T]) runProducer(ctx context.Context, out *memory.Queue[T]) (err error) {
	name := nameOf(p.producer, "producer")
	defer out.Close()
	defer func() {
		if r := recover(); r != nil {
			metrics.ObserveStagePanic(name)
			err = fmt.Errorf("panic in %s: %v", name, r)
		}
	}()
	emit := func(item T) {
		send(ctx, name, out, item)
	}
	return p.producer.Produce(ctx, emit)
}

func (p *Pipeline[T]) runTransform(ctx context.Context, stage Transform[T], name string, in, out *memory.Queue[T]) {
	defer out.Close()
	defer in.Abandon()
	defer p.recoverStage(name)
	for item := range queue.Seq[T](ctx, in) {
		metrics.ObserveStage(name, metrics.EventIn)
		for result := range stage.Transform(ctx, item) {
			send(ctx, name, out, result)
		}
	}
}

func (p *Pipeline[T]) runSink(ctx context.Context, name string, in *memory.Queue[T]) {
	defer in.Abandon()
	defer p.recoverStage(name)
	p.sink.Consume(ctx, func(yield func(T) bool) {
		for item := range queue.Seq[T](ctx, in) {
			metrics.ObserveStage(name, metrics.EventIn)
			if !yield(item) {
				return
			}
		}
	})
}

func (p *Pipeline[T]) recoverStage(name string) {
	if r := recover(); r != nil {
		metrics.ObserveStagePanic(name)
		p.logger.Error("pipeline stage crashed", zap.String("stage", name), zap.Any("panic", r))
	}
}

// send delivers best-effort: a consumer that is gone or a canceled context drops the record.
func send[T any](ctx context.Context, name string, out *memory.Queue[T], item T) {
	if err := out.Enqueue(ctx, item); err != nil {
		metrics.ObserveStage(name, metrics.EventDropped)
		return
	}
	metrics.ObserveStage(name, metrics.EventOut)
	metrics.SetQueueDepth(name, out.Len())
}
