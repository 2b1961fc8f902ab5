package audit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForEvents(t *testing.T, sink *MemorySink, want int) []Event {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if events := sink.Events(); len(events) >= want {
			return events
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("sink never received %d events, got %d", want, len(sink.Events()))
	return nil
}

func TestWorkerDrainsEmittedEvents(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	publisher := NewPublisher(16, logger)
	sink := NewMemorySink()
	worker := NewWorker(publisher, sink, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = worker.Run(ctx)
	}()

	verifierID := uuid.New()
	publisher.Emit(ctx, NewEvent(EventPresentationVerified, verifierID, "req-1", map[string]any{"path": "v2"}))
	publisher.Emit(ctx, NewEvent(EventDisclosureRecorded, verifierID, "req-1", map[string]any{"count": 1}))

	events := waitForEvents(t, sink, 2)
	cancel()
	<-done

	assert.Equal(t, EventPresentationVerified, events[0].Kind)
	assert.Equal(t, EventDisclosureRecorded, events[1].Kind)
	assert.Equal(t, verifierID, events[0].VerifierID)
	assert.False(t, events[0].OccurredAt.IsZero())
}

func TestEmitDropsWhenBufferFull(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	publisher := NewPublisher(1, logger)

	// No worker draining: second emit must not block.
	publisher.Emit(context.Background(), NewEvent(EventTokenRotated, uuid.New(), "", nil))

	doneCh := make(chan struct{})
	go func() {
		publisher.Emit(context.Background(), NewEvent(EventTokenRotated, uuid.New(), "", nil))
		close(doneCh)
	}()

	select {
	case <-doneCh:
	case <-time.After(time.Second):
		t.Fatal("Emit blocked on a full buffer")
	}
}

func TestEmitOnNilPublisher(t *testing.T) {
	var publisher *Publisher
	publisher.Emit(context.Background(), NewEvent(EventTokenRotated, uuid.New(), "", nil))
}

func TestWorkerFlushesBufferedEventsOnShutdown(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	publisher := NewPublisher(16, logger)
	sink := NewMemorySink()
	worker := NewWorker(publisher, sink, logger)

	publisher.Emit(context.Background(), NewEvent(EventPresentationRejected, uuid.New(), "req-2", nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := worker.Run(ctx)
	require.True(t, errors.Is(err, context.Canceled))

	assert.Len(t, sink.Events(), 1)
}

type failingSink struct{ err error }

func (s *failingSink) Write(context.Context, Event) error { return s.err }
func (s *failingSink) Close() error                       { return nil }

func TestWorkerSurvivesSinkFailure(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	publisher := NewPublisher(16, logger)
	worker := NewWorker(publisher, &failingSink{err: errors.New("broker down")}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = worker.Run(ctx)
	}()

	publisher.Emit(ctx, NewEvent(EventPresentationVerified, uuid.New(), "req-3", nil))
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}
