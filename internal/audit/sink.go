package audit

import (
	"context"
	"sync"
)

// Sink is the durable end of the audit trail.
type Sink interface {
	Write(ctx context.Context, event Event) error
	Close() error
}

// MemorySink collects events in memory for tests.
type MemorySink struct {
	mu     sync.Mutex
	events []Event
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Write(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *MemorySink) Close() error { return nil }

// Events returns a copy of everything written so far.
func (s *MemorySink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

var _ Sink = (*MemorySink)(nil)
