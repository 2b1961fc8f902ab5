package audit

import (
	"context"
	"log/slog"
	"time"
)

const drainTimeout = 5 * time.Second

// Publisher buffers events between the request path and the sink worker.
// Emit never blocks: when the buffer is full the event is dropped and logged.
type Publisher struct {
	events chan Event
	logger *slog.Logger
}

func NewPublisher(bufferSize int, logger *slog.Logger) *Publisher {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	return &Publisher{
		events: make(chan Event, bufferSize),
		logger: logger,
	}
}

// Emit queues an event for the background worker. Safe to call from the
// request path; a nil publisher discards.
func (p *Publisher) Emit(ctx context.Context, event Event) {
	if p == nil {
		return
	}
	select {
	case p.events <- event:
	default:
		p.logger.WarnContext(ctx, "audit buffer full, dropping event",
			slog.String("kind", string(event.Kind)),
			slog.String("event_id", event.ID.String()))
	}
}

// Worker drains the publisher into a sink until ctx is done, then flushes
// whatever is still buffered.
type Worker struct {
	publisher *Publisher
	sink      Sink
	logger    *slog.Logger
}

func NewWorker(publisher *Publisher, sink Sink, logger *slog.Logger) *Worker {
	return &Worker{publisher: publisher, sink: sink, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return ctx.Err()
		case event := <-w.publisher.events:
			w.write(ctx, event)
		}
	}
}

func (w *Worker) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	for {
		select {
		case event := <-w.publisher.events:
			w.write(ctx, event)
		default:
			return
		}
	}
}

func (w *Worker) write(ctx context.Context, event Event) {
	if err := w.sink.Write(ctx, event); err != nil {
		w.logger.ErrorContext(ctx, "audit sink write failed",
			slog.String("kind", string(event.Kind)),
			slog.String("event_id", event.ID.String()),
			slog.String("error", err.Error()))
	}
}
