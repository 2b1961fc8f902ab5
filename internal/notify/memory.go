package notify

import (
	"context"
	"sync"
)

// Published is one recorded notification.
type Published struct {
	UserID  string
	Channel string
	Payload any
}

// MemoryNotifier records notifications in memory for tests.
type MemoryNotifier struct {
	mu        sync.Mutex
	published []Published
	failWith  error
}

func NewMemoryNotifier() *MemoryNotifier {
	return &MemoryNotifier{}
}

// FailWith makes every subsequent Publish return err.
func (n *MemoryNotifier) FailWith(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failWith = err
}

func (n *MemoryNotifier) Publish(ctx context.Context, userID string, payload any) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failWith != nil {
		return n.failWith
	}
	n.published = append(n.published, Published{
		UserID:  userID,
		Channel: Channel(userID),
		Payload: payload,
	})
	return nil
}

// Published returns a copy of everything published so far.
func (n *MemoryNotifier) Published() []Published {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Published, len(n.published))
	copy(out, n.published)
	return out
}

var _ Notifier = (*MemoryNotifier)(nil)
