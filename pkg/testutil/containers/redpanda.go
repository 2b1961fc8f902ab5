//go:build integration

package containers

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcredpanda "github.com/testcontainers/testcontainers-go/modules/redpanda"
	"github.com/twmb/franz-go/pkg/kgo"
)

// RedpandaContainer wraps a Kafka-compatible Redpanda instance. Redpanda
// starts faster than Kafka proper and speaks the same protocol.
type RedpandaContainer struct {
	Container testcontainers.Container
	Brokers   string
}

// NewRedpandaContainer starts a Redpanda container.
func NewRedpandaContainer(t *testing.T) *RedpandaContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcredpanda.Run(ctx, "redpandadata/redpanda:v24.3.1")
	if err != nil {
		t.Fatalf("failed to start redpanda container: %v", err)
	}

	brokers, err := container.KafkaSeedBroker(ctx)
	if err != nil {
		terminate(container)
		t.Fatalf("failed to get redpanda broker: %v", err)
	}

	return &RedpandaContainer{Container: container, Brokers: brokers}
}

// NewConsumer creates a franz-go consumer reading the given topics from the
// start.
func (r *RedpandaContainer) NewConsumer(groupID string, topics ...string) (*kgo.Client, error) {
	return kgo.NewClient(
		kgo.SeedBrokers(r.Brokers),
		kgo.ConsumerGroup(groupID),
		kgo.ConsumeTopics(topics...),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
		kgo.DisableAutoCommit(),
	)
}

// WaitForRecord polls until a record matching the predicate arrives or the
// timeout elapses.
func (r *RedpandaContainer) WaitForRecord(ctx context.Context, client *kgo.Client, timeout time.Duration, match func(*kgo.Record) bool) *kgo.Record {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for {
		fetches := client.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			return nil
		}

		var found *kgo.Record
		fetches.EachRecord(func(rec *kgo.Record) {
			if found == nil && match(rec) {
				found = rec
			}
		})
		if found != nil {
			return found
		}
	}
}
